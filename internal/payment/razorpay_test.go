package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(secret string) *RazorpayGateway {
	return NewRazorpayGateway("rzp_test_key", "key_secret", secret, 5*time.Second, zap.NewNop())
}

func sign(secret, orderRef, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignatureAcceptsValid(t *testing.T) {
	g := newTestGateway("whsec_1")
	sig := sign("whsec_1", "order_abc", "pay_xyz")
	require.True(t, g.VerifySignature("order_abc", "pay_xyz", sig))
}

// Every single-character mutation of a valid signature must fail
// verification.
func TestVerifySignatureRejectsAnyMutation(t *testing.T) {
	g := newTestGateway("whsec_1")
	sig := sign("whsec_1", "order_abc", "pay_xyz")

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		require.False(t, g.VerifySignature("order_abc", "pay_xyz", string(mutated)),
			"mutation at position %d must be rejected", i)
	}
}

func TestVerifySignatureRejectsMalformedInput(t *testing.T) {
	g := newTestGateway("whsec_1")

	require.False(t, g.VerifySignature("order_abc", "pay_xyz", ""))
	require.False(t, g.VerifySignature("order_abc", "pay_xyz", "not-hex-at-all!"))
	require.False(t, g.VerifySignature("", "", sign("whsec_1", "order_abc", "pay_xyz")))

	// Wrong secret on an otherwise well-formed signature.
	require.False(t, g.VerifySignature("order_abc", "pay_xyz", sign("whsec_2", "order_abc", "pay_xyz")))
}

func TestMinorUnitsTruncates(t *testing.T) {
	cases := []struct {
		amount string
		want   int64
	}{
		{"100", 10000},
		{"0.5", 50},
		{"249.999", 24999},
		{"0.009", 0},
		{"1234.56", 123456},
	}
	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		require.NoError(t, err)
		require.Equal(t, tc.want, MinorUnits(amount), "amount %s", tc.amount)
	}
}
