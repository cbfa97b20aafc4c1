package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

// priceCart freezes the user's cart into order item drafts with the product
// name and unit price copied at this moment, and returns the subtotal.
// Historical orders stay immune to later catalog price edits because prices
// are copied here, never re-read.
func (s *OrderService) priceCart(ctx context.Context, userID string) ([]domain.OrderItem, decimal.Decimal, error) {
	lines, err := s.cartRepo.GetCartLines(ctx, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if len(lines) == 0 {
		return nil, decimal.Zero, fmt.Errorf("%w: cart is empty", domain.ErrValidation)
	}

	items := make([]domain.OrderItem, 0, len(lines))
	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, decimal.Zero, fmt.Errorf("%w: quantity must be at least 1 for product %s",
				domain.ErrValidation, line.ProductID)
		}
		item := domain.OrderItem{
			ID:          uuid.New().String(),
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Price:       line.Product.Price,
			Quantity:    line.Quantity,
		}
		items = append(items, item)
		subtotal = subtotal.Add(item.Subtotal())
	}
	return items, subtotal, nil
}

// orderTotal applies the delivery fee and tax on top of the item subtotal.
// Only this server-side recomputation is ever trusted; client-supplied
// totals are ignored.
func (s *OrderService) orderTotal(subtotal decimal.Decimal) (total, fee, tax decimal.Decimal) {
	fee = s.deliveryFee
	tax = subtotal.Mul(s.taxRate).Round(2)
	total = subtotal.Add(fee).Add(tax)
	return total, fee, tax
}
