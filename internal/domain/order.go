package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOrderIn   OrderStatus = "orderin"
	OrderStatusPrepared  OrderStatus = "prepared"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the durable unit of a purchase. It is created exactly once by the
// fulfillment pipeline and afterwards mutated only through status transitions
// and the acknowledgment watermark. Orders are never deleted.
type Order struct {
	ID                  string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID              string          `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Status              OrderStatus     `json:"status" gorm:"type:varchar(16);not null;index"`
	TotalAmount         decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2);not null"`
	DeliveryFee         decimal.Decimal `json:"delivery_fee" gorm:"type:decimal(10,2);not null"`
	Tax                 decimal.Decimal `json:"tax" gorm:"type:decimal(10,2);not null"`
	PaymentMethod       string          `json:"payment_method" gorm:"type:varchar(32)"`
	PaymentStatus       string          `json:"payment_status" gorm:"type:varchar(32)"`
	PaymentID           string          `json:"payment_id" gorm:"type:varchar(64)"`
	PaymentOrderRef     string          `json:"payment_order_ref" gorm:"type:varchar(64);index"`
	CustomerName        string          `json:"customer_name" gorm:"type:varchar(128);not null"`
	CustomerPhone       string          `json:"customer_phone" gorm:"type:varchar(32);not null"`
	DeliveryAddress     string          `json:"delivery_address" gorm:"type:varchar(512);not null"`
	Items               []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null;index"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"not null"`
	AcknowledgedAt      *time.Time      `json:"acknowledged_at"`
	DeliveredAt         *time.Time      `json:"delivered_at"`
	EstimatedDeliveryAt *time.Time      `json:"estimated_delivery_at"`
}

// OrderItem freezes a cart line at checkout time. Name and price are copied
// from the product so later catalog edits never rewrite purchase history.
type OrderItem struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID     string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID   string          `json:"product_id" gorm:"type:varchar(36);not null"`
	ProductName string          `json:"product_name" gorm:"type:varchar(128);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity    int             `json:"quantity" gorm:"not null"`
}

// Subtotal is price times quantity for this line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string          `json:"name" gorm:"type:varchar(128);not null"`
	Description string          `json:"description" gorm:"type:varchar(512)"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	IsAvailable bool            `json:"is_available" gorm:"not null;default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// User carries the purchaser identity shown on the admin order detail view.
// Account management itself lives with the auth collaborator.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string    `json:"email" gorm:"type:varchar(128);uniqueIndex"`
	FirstName string    `json:"first_name" gorm:"type:varchar(64)"`
	LastName  string    `json:"last_name" gorm:"type:varchar(64)"`
	Phone     string    `json:"phone" gorm:"type:varchar(32)"`
	CreatedAt time.Time `json:"created_at"`
}

type CheckoutRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerPhone   string `json:"customer_phone" binding:"required"`
	DeliveryAddress string `json:"delivery_address" binding:"required"`
	PaymentID       string `json:"payment_id" binding:"required"`
}

type VerifyPaymentRequest struct {
	OrderRef   string `json:"razorpay_order_id" binding:"required"`
	PaymentRef string `json:"razorpay_payment_id" binding:"required"`
	Signature  string `json:"razorpay_signature" binding:"required"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CartLine is a cart item joined with its live product.
type CartLine struct {
	CartItem
	Product Product `json:"product"`
}

// OrderDetail is the admin detail payload: the order, its lines and the
// purchaser identity.
type OrderDetail struct {
	Order
	User *User `json:"user,omitempty"`
}
