package payments

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cramsheets/cramsheets-backend/pkg/config"
)

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		BeneficiaryAccount: "CZ6508000000192000145399",
		BeneficiaryName:    "CramSheets",
		Currency:           "eur",
		ReferencePrefix:    "CS",
	}
}

func TestReferenceForIsDeterministic(t *testing.T) {
	cfg := testPaymentConfig()
	orderID := uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")

	first := ReferenceFor(cfg, orderID)
	second := ReferenceFor(cfg, orderID)
	assert.Equal(t, first, second)
	assert.Equal(t, "CS-0123456789AB", first)

	other := ReferenceFor(cfg, uuid.New())
	assert.NotEqual(t, first, other)
}

func TestBuildCode(t *testing.T) {
	cfg := testPaymentConfig()
	code := BuildCode(cfg, "CS-0123456789AB", 72050)

	require.Equal(t,
		"SPD*1.0*ACC:CZ6508000000192000145399*AM:720.50*CC:EUR*RN:CramSheets*X-REF:CS-0123456789AB*MSG:CS-0123456789AB",
		code)
}

func TestBuildCodeZeroAmount(t *testing.T) {
	code := BuildCode(testPaymentConfig(), "CS-X", 0)
	assert.Contains(t, code, "AM:0.00")
}

func TestBuildCodeStripsSeparator(t *testing.T) {
	cfg := testPaymentConfig()
	cfg.BeneficiaryName = "Cram*Sheets"
	code := BuildCode(cfg, "CS-X", 100)
	assert.Contains(t, code, "RN:Cram Sheets")
}
