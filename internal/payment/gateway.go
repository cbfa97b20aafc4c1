package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Status is the provider-defined payment state. Only StatusCaptured may be
// forwarded to order creation.
type Status string

const (
	StatusCreated    Status = "created"
	StatusAuthorized Status = "authorized"
	StatusCaptured   Status = "captured"
	StatusFailed     Status = "failed"
	StatusRefunded   Status = "refunded"
)

// Intent is an open, payable amount at the provider. ProviderKey is the
// public key the browser widget needs to collect the payment.
type Intent struct {
	ID          string `json:"id"`
	ProviderKey string `json:"provider_key"`
}

// Payment is the authoritative snapshot of a payment fetched from the
// provider at order-creation time.
type Payment struct {
	ID       string `json:"id"`
	OrderRef string `json:"order_ref"`
	Method   string `json:"method"`
	Status   Status `json:"status"`
}

// Gateway wraps the third-party payment provider. Pure boundary component,
// no business state. Transport failures and timeouts surface as
// domain.ErrPaymentGatewayUnavailable; a provider answer that the payment is
// invalid surfaces as domain.ErrPaymentRejected.
type Gateway interface {
	// CreateIntent opens a payable intent for the exact amount. The gateway
	// owns the decimal-to-minor-unit conversion; nothing else in the system
	// handles minor units.
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (Intent, error)

	// FetchPayment reconciles a payment's state with the provider before it
	// is trusted.
	FetchPayment(ctx context.Context, paymentID string) (Payment, error)

	// VerifySignature recomputes the HMAC over orderRef + "|" + paymentRef
	// and compares in constant time. Malformed input is a verification
	// failure, never a panic.
	VerifySignature(orderRef, paymentRef, signature string) bool
}

// MinorUnits truncates a decimal currency amount into integer minor units
// (paise, cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Truncate(0).IntPart()
}
