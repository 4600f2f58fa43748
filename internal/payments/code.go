package payments

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cramsheets/cramsheets-backend/pkg/config"
)

// ReferenceFor derives the stable payment reference for an order. Regenerating
// a payment request therefore always yields the same reference.
func ReferenceFor(cfg config.PaymentConfig, orderID uuid.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", ""))
	return fmt.Sprintf("%s-%s", cfg.ReferencePrefix, compact[:12])
}

// BuildCode renders the SPAYD-style transfer payload clients turn into a QR
// code. The server never renders images.
func BuildCode(cfg config.PaymentConfig, reference string, amountCents int64) string {
	amount := decimal.NewFromInt(amountCents).Div(decimal.NewFromInt(100)).StringFixed(2)
	parts := []string{
		"SPD*1.0",
		"ACC:" + cfg.BeneficiaryAccount,
		"AM:" + amount,
		"CC:" + strings.ToUpper(cfg.Currency),
		"RN:" + sanitizeField(cfg.BeneficiaryName),
		"X-REF:" + reference,
		"MSG:" + sanitizeField(reference),
	}
	return strings.Join(parts, "*")
}

// SPAYD fields must not carry the separator character.
func sanitizeField(value string) string {
	value = strings.ReplaceAll(value, "*", " ")
	return strings.TrimSpace(value)
}
