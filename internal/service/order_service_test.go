package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/saif87211/SkFoodDelight/internal/domain"
	"github.com/saif87211/SkFoodDelight/internal/events"
	"github.com/saif87211/SkFoodDelight/internal/payment"
	"github.com/saif87211/SkFoodDelight/internal/repository"
)

type fakeGateway struct {
	payment    payment.Payment
	fetchErr   error
	fetchCalls int
	intent     payment.Intent
	intentErr  error
	verifyOK   bool
}

func (f *fakeGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (payment.Intent, error) {
	if f.intentErr != nil {
		return payment.Intent{}, f.intentErr
	}
	return f.intent, nil
}

func (f *fakeGateway) FetchPayment(ctx context.Context, paymentID string) (payment.Payment, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return payment.Payment{}, f.fetchErr
	}
	return f.payment, nil
}

func (f *fakeGateway) VerifySignature(orderRef, paymentRef, signature string) bool {
	return f.verifyOK
}

type testEnv struct {
	db      *gorm.DB
	svc     *OrderService
	gateway *fakeGateway
	hub     *events.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))

	gateway := &fakeGateway{
		payment: payment.Payment{
			ID:       "pay_001",
			OrderRef: "order_001",
			Method:   "upi",
			Status:   payment.StatusCaptured,
		},
		intent:   payment.Intent{ID: "order_001", ProviderKey: "rzp_test_key"},
		verifyOK: true,
	}
	hub := events.NewHub(8, zap.NewNop())
	t.Cleanup(hub.Close)

	svc := NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCartRepository(db),
		repository.NewStatsRepository(db),
		gateway,
		hub,
		nil,
		zap.NewNop(),
		Config{DeliveryFee: decimal.Zero, TaxRate: decimal.Zero, Currency: "INR"},
	)

	return &testEnv{db: db, svc: svc, gateway: gateway, hub: hub}
}

func (e *testEnv) seedCart(t *testing.T, userID string, lines ...struct {
	name  string
	price int64
	qty   int
}) {
	t.Helper()
	for _, line := range lines {
		product := domain.Product{
			ID:          uuid.New().String(),
			Name:        line.name,
			Price:       decimal.NewFromInt(line.price),
			IsAvailable: true,
		}
		require.NoError(t, e.db.Create(&product).Error)
		item := domain.CartItem{
			ID:        uuid.New().String(),
			UserID:    userID,
			ProductID: product.ID,
			Quantity:  line.qty,
		}
		require.NoError(t, e.db.Create(&item).Error)
	}
}

type cartLine = struct {
	name  string
	price int64
	qty   int
}

func checkoutReq() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		CustomerName:    "Asha",
		CustomerPhone:   "9876543210",
		DeliveryAddress: "12 MG Road",
		PaymentID:       "pay_001",
	}
}

func TestCheckoutComputesExactTotal(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID,
		cartLine{name: "Paneer Tikka", price: 100, qty: 2},
		cartLine{name: "Garlic Naan", price: 50, qty: 1},
	)

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(250)),
		"got total %s", order.TotalAmount)
	require.Len(t, order.Items, 2)
	require.Equal(t, domain.OrderStatusOrderIn, order.Status)
	require.NotNil(t, order.EstimatedDeliveryAt)
	require.Equal(t, "upi", order.PaymentMethod)
	require.Equal(t, "order_001", order.PaymentOrderRef)

	// Total always matches the item-level recomputation plus fees.
	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.Subtotal())
	}
	require.True(t, order.TotalAmount.Equal(sum.Add(order.DeliveryFee).Add(order.Tax)))

	var cartCount int64
	env.db.Model(&domain.CartItem{}).Where("user_id = ?", userID).Count(&cartCount)
	require.Zero(t, cartCount)
}

func TestCheckoutAppliesFeeAndTax(t *testing.T) {
	env := newTestEnv(t)
	env.svc.deliveryFee = decimal.NewFromInt(30)
	env.svc.taxRate = decimal.RequireFromString("0.05")

	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	// 200 + 30 fee + 10 tax
	require.True(t, order.TotalAmount.Equal(decimal.NewFromInt(240)),
		"got total %s", order.TotalAmount)
	require.True(t, order.Tax.Equal(decimal.NewFromInt(10)))
}

func TestCheckoutEmptyCartRejectedBeforePayment(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Checkout(context.Background(), uuid.New().String(), checkoutReq(), "req-1")
	require.ErrorIs(t, err, domain.ErrValidation)
	require.Zero(t, env.gateway.fetchCalls, "gateway must not be called for an empty cart")
}

func TestCheckoutUnpaidPaymentRejected(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.payment.Status = payment.StatusFailed

	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	_, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.ErrorIs(t, err, domain.ErrPaymentRejected)

	var orderCount, cartCount int64
	env.db.Model(&domain.Order{}).Count(&orderCount)
	env.db.Model(&domain.CartItem{}).Where("user_id = ?", userID).Count(&cartCount)
	require.Zero(t, orderCount, "no order may exist for a rejected payment")
	require.EqualValues(t, 1, cartCount, "cart must survive a rejected payment")
}

func TestCheckoutGatewayUnavailableIsRetryable(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.fetchErr = fmt.Errorf("%w: connect timeout", domain.ErrPaymentGatewayUnavailable)

	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	_, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.ErrorIs(t, err, domain.ErrPaymentGatewayUnavailable)

	var orderCount int64
	env.db.Model(&domain.Order{}).Count(&orderCount)
	require.Zero(t, orderCount)
}

func TestCheckoutNotifiesConnectedSessionsAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	sub := env.hub.Subscribe()

	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	event := <-sub.C
	require.Equal(t, order.ID, event.Order.ID)
	require.Len(t, event.Order.Items, 1, "push payload carries the items")

	// The pushed order is already durable.
	var count int64
	env.db.Model(&domain.Order{}).Where("id = ?", event.Order.ID).Count(&count)
	require.EqualValues(t, 1, count)
}

func TestCreatePaymentIntentPricesFromCart(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 2})

	intent, err := env.svc.CreatePaymentIntent(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, "order_001", intent.ID)

	_, err = env.svc.CreatePaymentIntent(context.Background(), uuid.New().String())
	require.ErrorIs(t, err, domain.ErrValidation, "empty cart cannot open an intent")
}

func TestVerifyPaymentInvalidSignature(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.verifyOK = false

	_, err := env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		OrderRef:   "order_001",
		PaymentRef: "pay_001",
		Signature:  "bad",
	}, "req-1")
	require.ErrorIs(t, err, domain.ErrPaymentRejected)
}

func TestVerifyPaymentMarksCapturedAndNotifiesOnce(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})
	env.gateway.payment.Status = payment.StatusAuthorized

	// Order exists with a not-yet-captured payment snapshot.
	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.ErrorIs(t, err, domain.ErrPaymentRejected)
	require.Nil(t, order)

	// Re-run checkout with a captured payment to get an order on file, then
	// reset its payment status to simulate the async-callback flow.
	env.gateway.payment.Status = payment.StatusCaptured
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})
	order, err = env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-2")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&domain.Order{}).Where("id = ?", order.ID).
		Update("payment_status", string(payment.StatusAuthorized)).Error)

	sub := env.hub.Subscribe()

	got, err := env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		OrderRef:   "order_001",
		PaymentRef: "pay_001",
		Signature:  "sig",
	}, "req-3")
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)
	require.Equal(t, string(payment.StatusCaptured), got.PaymentStatus)

	event := <-sub.C
	require.Equal(t, order.ID, event.Order.ID)

	// A second callback for the same payment is a no-op, not a second push.
	_, err = env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		OrderRef:   "order_001",
		PaymentRef: "pay_001",
		Signature:  "sig",
	}, "req-4")
	require.NoError(t, err)
	select {
	case event := <-sub.C:
		t.Fatalf("duplicate notification %s for an already-captured payment", event.EventID)
	default:
	}
}

func TestVerifyPaymentUnknownOrderRef(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.VerifyPayment(context.Background(), domain.VerifyPaymentRequest{
		OrderRef:   "order_unknown",
		PaymentRef: "pay_001",
		Signature:  "sig",
	}, "req-1")
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	_, err = env.svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivered, "req-2")
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	var transition *domain.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	require.Equal(t, domain.OrderStatusOrderIn, transition.From)
	require.Equal(t, domain.OrderStatusDelivered, transition.To)

	_, err = env.svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatus("shipped"), "req-3")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateStatusHappyPath(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	prepared, err := env.svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusPrepared, "req-2")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusPrepared, prepared.Status)

	delivered, err := env.svc.UpdateStatus(context.Background(), order.ID, domain.OrderStatusDelivered, "req-3")
	require.NoError(t, err)
	require.Equal(t, domain.OrderStatusDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestAdminOrderDetailStampsWatermarkOnce(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	user := domain.User{ID: userID, Email: "asha@example.com", FirstName: "Asha"}
	require.NoError(t, env.db.Create(&user).Error)
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	first, err := env.svc.AdminOrderDetail(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, first.AcknowledgedAt)
	require.NotNil(t, first.User)
	require.Equal(t, "asha@example.com", first.User.Email)

	second, err := env.svc.AdminOrderDetail(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, first.AcknowledgedAt.Equal(*second.AcknowledgedAt),
		"re-reading must not move the watermark")
}

func TestUserOrderOwnershipScoping(t *testing.T) {
	env := newTestEnv(t)
	userID := uuid.New().String()
	env.seedCart(t, userID, cartLine{name: "Thali", price: 200, qty: 1})

	order, err := env.svc.Checkout(context.Background(), userID, checkoutReq(), "req-1")
	require.NoError(t, err)

	_, err = env.svc.UserOrder(context.Background(), uuid.New().String(), order.ID)
	require.ErrorIs(t, err, domain.ErrForbidden)

	own, err := env.svc.UserOrder(context.Background(), userID, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, own.ID)
}
