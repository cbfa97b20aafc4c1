package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/saif87211/SkFoodDelight/internal/domain"
)

// RazorpayGateway implements Gateway against Razorpay's REST API.
type RazorpayGateway struct {
	client        *razorpay.Client
	keyID         string
	webhookSecret []byte
	timeout       time.Duration
	logger        *zap.Logger
}

func NewRazorpayGateway(keyID, keySecret, webhookSecret string, timeout time.Duration, logger *zap.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client:        razorpay.NewClient(keyID, keySecret),
		keyID:         keyID,
		webhookSecret: []byte(webhookSecret),
		timeout:       timeout,
		logger:        logger,
	}
}

func (g *RazorpayGateway) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (Intent, error) {
	data := map[string]interface{}{
		"amount":   MinorUnits(amount),
		"currency": currency,
	}

	body, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.client.Order.Create(data, nil)
	})
	if err != nil {
		return Intent{}, err
	}

	id := stringField(body, "id")
	if id == "" {
		return Intent{}, fmt.Errorf("%w: provider returned no intent id", domain.ErrPaymentGatewayUnavailable)
	}
	return Intent{ID: id, ProviderKey: g.keyID}, nil
}

func (g *RazorpayGateway) FetchPayment(ctx context.Context, paymentID string) (Payment, error) {
	body, err := g.call(ctx, func() (map[string]interface{}, error) {
		return g.client.Payment.Fetch(paymentID, nil, nil)
	})
	if err != nil {
		return Payment{}, err
	}

	return Payment{
		ID:       stringField(body, "id"),
		OrderRef: stringField(body, "order_id"),
		Method:   stringField(body, "method"),
		Status:   Status(stringField(body, "status")),
	}, nil
}

func (g *RazorpayGateway) VerifySignature(orderRef, paymentRef, signature string) bool {
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, g.webhookSecret)
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hmac.Equal(mac.Sum(nil), sig)
}

// call bounds a provider request by the configured timeout and translates
// SDK errors into the domain taxonomy. The SDK has no context support, so
// the request runs in its own goroutine and a late result is discarded.
func (g *RazorpayGateway) call(ctx context.Context, fn func() (map[string]interface{}, error)) (map[string]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		body, err := fn()
		ch <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		g.logger.Warn("payment gateway call timed out", zap.Error(ctx.Err()))
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentGatewayUnavailable, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, g.translate(res.err)
		}
		return res.body, nil
	}
}

func (g *RazorpayGateway) translate(err error) error {
	switch err.(type) {
	case *rzperrors.BadRequestError:
		// The provider answered; the payment or request is invalid.
		return fmt.Errorf("%w: %v", domain.ErrPaymentRejected, err)
	default:
		g.logger.Warn("payment gateway unreachable", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrPaymentGatewayUnavailable, err)
	}
}

func stringField(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
