package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/domain"
	"github.com/saif87211/SkFoodDelight/internal/events"
	"github.com/saif87211/SkFoodDelight/internal/payment"
	"github.com/saif87211/SkFoodDelight/internal/repository"
)

const estimatedDeliveryWindow = 45 * time.Minute

// IntegrationPublisher mirrors committed lifecycle changes onto the
// integration stream. May be absent when no brokers are configured.
type IntegrationPublisher interface {
	PublishOrderCreated(events.OrderCreatedEvent) error
	PublishStatusChanged(events.OrderStatusChangedEvent) error
}

// OrderService is the fulfillment pipeline: it validates checkout input,
// reconciles the payment with the gateway, commits the order atomically and
// only then notifies connected admin sessions.
type OrderService struct {
	orderRepo   *repository.OrderRepository
	cartRepo    *repository.CartRepository
	statsRepo   *repository.StatsRepository
	gateway     payment.Gateway
	hub         *events.Hub
	producer    IntegrationPublisher
	logger      *zap.Logger
	deliveryFee decimal.Decimal
	taxRate     decimal.Decimal
	currency    string
}

type Config struct {
	DeliveryFee decimal.Decimal
	TaxRate     decimal.Decimal
	Currency    string
}

func NewOrderService(
	orderRepo *repository.OrderRepository,
	cartRepo *repository.CartRepository,
	statsRepo *repository.StatsRepository,
	gateway payment.Gateway,
	hub *events.Hub,
	producer IntegrationPublisher,
	logger *zap.Logger,
	cfg Config,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		statsRepo:   statsRepo,
		gateway:     gateway,
		hub:         hub,
		producer:    producer,
		logger:      logger,
		deliveryFee: cfg.DeliveryFee,
		taxRate:     cfg.TaxRate,
		currency:    cfg.Currency,
	}
}

// CreatePaymentIntent opens a gateway intent for the user's current cart.
// The amount comes from the server-side recomputation, never from the
// client.
func (s *OrderService) CreatePaymentIntent(ctx context.Context, userID string) (payment.Intent, error) {
	_, subtotal, err := s.priceCart(ctx, userID)
	if err != nil {
		return payment.Intent{}, err
	}
	total, _, _ := s.orderTotal(subtotal)

	intent, err := s.gateway.CreateIntent(ctx, total, s.currency)
	if err != nil {
		return payment.Intent{}, err
	}

	s.logger.Info("payment intent created",
		zap.String("user_id", userID),
		zap.String("intent_id", intent.ID),
		zap.String("amount", total.String()))
	return intent, nil
}

// Checkout runs the fulfillment pipeline for one paid cart. The response
// returns once the database commit succeeds; notification fan-out never
// delays it.
func (s *OrderService) Checkout(ctx context.Context, userID string, req domain.CheckoutRequest, requestID string) (*domain.Order, error) {
	items, subtotal, err := s.priceCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	pay, err := s.gateway.FetchPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if pay.Status != payment.StatusCaptured {
		return nil, fmt.Errorf("%w: payment %s is %s", domain.ErrPaymentRejected, pay.ID, pay.Status)
	}

	total, fee, tax := s.orderTotal(subtotal)
	now := time.Now()
	eta := now.Add(estimatedDeliveryWindow)

	order := &domain.Order{
		ID:                  uuid.New().String(),
		UserID:              userID,
		Status:              domain.OrderStatusOrderIn,
		TotalAmount:         total,
		DeliveryFee:         fee,
		Tax:                 tax,
		PaymentMethod:       pay.Method,
		PaymentStatus:       string(pay.Status),
		PaymentID:           pay.ID,
		PaymentOrderRef:     pay.OrderRef,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		DeliveryAddress:     req.DeliveryAddress,
		CreatedAt:           now,
		UpdatedAt:           now,
		EstimatedDeliveryAt: &eta,
	}

	if err := s.orderRepo.CreateOrder(ctx, order, items); err != nil {
		s.logger.Error("failed to save order",
			zap.String("order_id", order.ID),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, err
	}

	s.notifyOrderCreated(*order, requestID)

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", order.UserID),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("items", len(order.Items)))
	return order, nil
}

// VerifyPayment handles the asynchronous gateway callback: it checks the
// signature, marks the order's payment captured and fires the same
// notification as the synchronous checkout path. The capture write is
// conditional in the database, so repeated or racing callbacks push at
// most once.
func (s *OrderService) VerifyPayment(ctx context.Context, req domain.VerifyPaymentRequest, requestID string) (*domain.Order, error) {
	if !s.gateway.VerifySignature(req.OrderRef, req.PaymentRef, req.Signature) {
		return nil, fmt.Errorf("%w: invalid signature", domain.ErrPaymentRejected)
	}

	order, err := s.orderRepo.GetOrderByPaymentRef(ctx, req.OrderRef)
	if err != nil {
		return nil, err
	}

	captured, err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, string(payment.StatusCaptured))
	if err != nil {
		return nil, err
	}
	order.PaymentStatus = string(payment.StatusCaptured)
	if captured {
		s.notifyOrderCreated(*order, requestID)
	}

	return order, nil
}

// UpdateStatus applies one state-machine transition on behalf of staff. The
// legality check runs against the loaded status and the write carries that
// status as its precondition, so racing edits resolve to exactly one winner.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, to domain.OrderStatus, requestID string) (*domain.Order, error) {
	if !domain.ValidStatus(to) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}

	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if !domain.CanTransition(from, to) {
		return nil, &domain.InvalidTransitionError{From: from, To: to}
	}

	updated, err := s.orderRepo.UpdateOrderStatus(ctx, orderID, from, to)
	if err != nil {
		return nil, err
	}

	if s.producer != nil {
		event := events.OrderStatusChangedEvent{
			EventID:   uuid.New().String(),
			OrderID:   orderID,
			From:      from,
			To:        to,
			Timestamp: time.Now(),
			RequestID: requestID,
		}
		go func() {
			if err := s.producer.PublishStatusChanged(event); err != nil {
				s.logger.Error("failed to publish status change",
					zap.String("order_id", orderID), zap.Error(err))
			}
		}()
	}

	s.logger.Info("order status updated",
		zap.String("order_id", orderID),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return updated, nil
}

// AdminOrderDetail returns the full order with purchaser identity and sets
// the acknowledgment watermark on the first read of an active order.
func (s *OrderService) AdminOrderDetail(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	detail, err := s.orderRepo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if detail.AcknowledgedAt == nil && domain.Active(detail.Status) {
		if err := s.orderRepo.Acknowledge(ctx, orderID); err != nil {
			return nil, err
		}
		refreshed, err := s.orderRepo.GetOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		detail.Order = *refreshed
	}

	return detail, nil
}

// UserOrder returns one order scoped to its owner.
func (s *OrderService) UserOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return order, nil
}

func (s *OrderService) UserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.orderRepo.GetUserOrders(ctx, userID)
}

// OrdersByStatus is the admin list read: every order in one lifecycle
// state, each with its items and a purchaser summary for the console.
func (s *OrderService) OrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]domain.OrderDetail, error) {
	if !domain.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}
	return s.orderRepo.GetOrdersByStatusWithUsers(ctx, status)
}

func (s *OrderService) Dashboard(ctx context.Context) (*repository.Dashboard, error) {
	return s.statsRepo.Dashboard(ctx)
}

// notifyOrderCreated fans out after the commit: the in-process hub feeds
// connected admin sessions, the integration producer feeds Kafka. Both are
// fire-and-forget.
func (s *OrderService) notifyOrderCreated(order domain.Order, requestID string) {
	event := events.OrderCreatedEvent{
		EventID:   uuid.New().String(),
		Order:     order,
		Timestamp: time.Now(),
		RequestID: requestID,
	}

	s.hub.Publish(event)

	if s.producer != nil {
		go func() {
			if err := s.producer.PublishOrderCreated(event); err != nil {
				s.logger.Error("failed to publish order created event",
					zap.String("order_id", order.ID), zap.Error(err))
			}
		}()
	}
}
