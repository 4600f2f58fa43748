package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

// Line is one priced item entering a quote.
type Line struct {
	PriceCents int64
}

// Quote is the arithmetic outcome of pricing a set of lines. All amounts are
// integer cents; total always equals subtotal minus discount.
type Quote struct {
	SubtotalCents int64              `json:"subtotal_cents"`
	DiscountKind  enums.DiscountKind `json:"discount_kind"`
	DiscountCents int64              `json:"discount_cents"`
	TotalCents    int64              `json:"total_cents"`
}

// Price computes the quote for the given lines. Carts with two or more items
// earn the bundle discount; single-item carts never discount. The discount is
// rounded half up to whole cents.
func Price(lines []Line, bundleDiscountPercent int) (Quote, error) {
	if bundleDiscountPercent < 0 || bundleDiscountPercent > 100 {
		return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "bundle discount percent out of range")
	}

	var subtotal int64
	for _, line := range lines {
		if line.PriceCents < 0 {
			return Quote{}, pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
		subtotal += line.PriceCents
	}

	quote := Quote{
		SubtotalCents: subtotal,
		DiscountKind:  enums.DiscountKindNone,
		TotalCents:    subtotal,
	}

	if len(lines) < 2 || bundleDiscountPercent == 0 {
		return quote, nil
	}

	discount := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromInt(int64(bundleDiscountPercent))).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	if discount > subtotal {
		discount = subtotal
	}

	quote.DiscountKind = enums.DiscountKindBundle
	quote.DiscountCents = discount
	quote.TotalCents = subtotal - discount
	return quote, nil
}
