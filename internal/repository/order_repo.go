package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder commits the order, its items and the cart clear as one
// transaction. Any failure rolls the whole unit back: no order without its
// items, and the purchaser's cart survives intact for a retry.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order, items []domain.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: order must have at least one item", domain.ErrValidation)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		return tx.Where("user_id = ?", order.UserID).Delete(&domain.CartItem{}).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	order.Items = items
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return &order, nil
}

// GetOrderByPaymentRef resolves the order holding a given gateway order
// reference, used by the asynchronous payment verification callback.
func (r *OrderRepository) GetOrderByPaymentRef(ctx context.Context, orderRef string) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, "payment_order_ref = ?", orderRef).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return &order, nil
}

func (r *OrderRepository) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return orders, nil
}

func (r *OrderRepository) GetOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	var orders []domain.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return orders, nil
}

// GetOrdersByStatusWithUsers is the admin list read: orders in one state,
// newest first, each carrying its items and a purchaser summary for the
// console.
func (r *OrderRepository) GetOrdersByStatusWithUsers(ctx context.Context, status domain.OrderStatus) ([]domain.OrderDetail, error) {
	orders, err := r.GetOrdersByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, order := range orders {
		if !seen[order.UserID] {
			seen[order.UserID] = true
			userIDs = append(userIDs, order.UserID)
		}
	}

	users := make(map[string]domain.User, len(userIDs))
	if len(userIDs) > 0 {
		var rows []domain.User
		if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		for _, user := range rows {
			users[user.ID] = user
		}
	}

	details := make([]domain.OrderDetail, 0, len(orders))
	for _, order := range orders {
		detail := domain.OrderDetail{Order: order}
		if user, ok := users[order.UserID]; ok {
			u := user
			detail.User = &u
		}
		details = append(details, detail)
	}
	return details, nil
}

// UpdateOrderStatus applies a transition with the current status as a
// precondition so two racing staff edits cannot both win. A zero-row update
// on an existing order means someone else got there first.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus) (*domain.Order, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": now,
	}
	if to == domain.OrderStatusDelivered {
		updates["delivered_at"] = now
	}

	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
		}
		if count == 0 {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.ErrConcurrentModification
	}

	return r.GetOrder(ctx, id)
}

// UpdatePaymentStatus records the gateway's verdict on the order's payment
// snapshot. The write only touches rows not already in that state, so
// concurrent verification callbacks resolve to one winner; the return
// reports whether this call was it.
func (r *OrderRepository) UpdatePaymentStatus(ctx context.Context, id, paymentStatus string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND payment_status <> ?", id, paymentStatus).
		Updates(map[string]interface{}{
			"payment_status": paymentStatus,
			"updated_at":     time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Acknowledge sets the watermark the first time staff open an active order.
// The IS NULL guard makes it first-write-wins and idempotent; terminal orders
// never take it.
func (r *OrderRepository) Acknowledge(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("id = ? AND acknowledged_at IS NULL AND status IN ?", id,
			[]domain.OrderStatus{domain.OrderStatusOrderIn, domain.OrderStatusPrepared}).
		Updates(map[string]interface{}{
			"acknowledged_at": time.Now(),
			"updated_at":      time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

// GetOrderDetail loads the order, its items and the purchaser for the admin
// detail view.
func (r *OrderRepository) GetOrderDetail(ctx context.Context, id string) (*domain.OrderDetail, error) {
	order, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.OrderDetail{Order: *order}

	var user domain.User
	err = r.db.WithContext(ctx).First(&user, "id = ?", order.UserID).Error
	if err == nil {
		detail.User = &user
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}

	return detail, nil
}
