package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

// CartRepository is the pipeline's input collaborator: the cart belongs to
// exactly one user and only that user's requests (or the checkout clear)
// touch it.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// GetCartLines returns the user's cart items joined with their live products.
func (r *CartRepository) GetCartLines(ctx context.Context, userID string) ([]domain.CartLine, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		var product domain.Product
		err := r.db.WithContext(ctx).First(&product, "id = ?", item.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %s no longer exists", domain.ErrValidation, item.ProductID)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		lines = append(lines, domain.CartLine{CartItem: item, Product: product})
	}
	return lines, nil
}

// AddItem merges quantity into an existing line for the same product, else
// inserts a new one.
func (r *CartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.CartItem, error) {
	var existing domain.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&existing).Error

	switch {
	case err == nil:
		existing.Quantity += quantity
		existing.UpdatedAt = time.Now()
		if err := r.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		return &existing, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		item := domain.CartItem{
			ID:        uuid.New().String(),
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		return &item, nil
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
}

// RemoveItem deletes a single cart line owned by the user.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, itemID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, res.Error)
	}
	return nil
}

// Clear drops the whole cart outside a checkout, e.g. the explicit
// empty-cart action.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}
