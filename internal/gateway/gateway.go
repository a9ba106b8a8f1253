// Package gateway talks to the payment provider and authenticates the
// payment callbacks it signs.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

const MaxReceiptLen = 40

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the provider-side order. Amount is in the currency's minor unit.
type Order struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity,omitempty"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status,omitempty"`
	Notes     map[string]string `json:"notes,omitempty"`
	CreatedAt int64             `json:"created_at,omitempty"`
}

type OrderCreator interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// MinorUnits converts a rupee amount to paise.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func NewReceipt() string {
	return "rcpt_" + strings.ToLower(ulid.Make().String())
}

// Sign returns the hex HMAC-SHA256 the provider computes over
// "order_id|payment_id".
func Sign(secret, gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type Verifier struct {
	Secret string
}

func (v Verifier) Verify(gatewayOrderID, paymentID, signature string) error {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return fmt.Errorf("missing payment fields")
	}
	expected := Sign(v.Secret, gatewayOrderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}
