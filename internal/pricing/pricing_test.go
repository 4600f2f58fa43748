package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

func TestPriceSingleItemNeverDiscounts(t *testing.T) {
	quote, err := Price([]Line{{PriceCents: 499}}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(499), quote.SubtotalCents)
	assert.Equal(t, enums.DiscountKindNone, quote.DiscountKind)
	assert.Equal(t, int64(0), quote.DiscountCents)
	assert.Equal(t, int64(499), quote.TotalCents)
}

func TestPriceBundleDiscount(t *testing.T) {
	quote, err := Price([]Line{{PriceCents: 500}, {PriceCents: 300}}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(800), quote.SubtotalCents)
	assert.Equal(t, enums.DiscountKindBundle, quote.DiscountKind)
	assert.Equal(t, int64(80), quote.DiscountCents)
	assert.Equal(t, int64(720), quote.TotalCents)
}

func TestPriceRoundsHalfUp(t *testing.T) {
	// 15% of 305 = 45.75 -> 46
	quote, err := Price([]Line{{PriceCents: 200}, {PriceCents: 105}}, 15)
	require.NoError(t, err)

	assert.Equal(t, int64(46), quote.DiscountCents)
	assert.Equal(t, int64(259), quote.TotalCents)

	// 10% of 105 = 10.5 -> 11
	quote, err = Price([]Line{{PriceCents: 100}, {PriceCents: 5}}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(11), quote.DiscountCents)
	assert.Equal(t, int64(94), quote.TotalCents)
}

func TestPriceZeroPercentKeepsKindNone(t *testing.T) {
	quote, err := Price([]Line{{PriceCents: 100}, {PriceCents: 100}}, 0)
	require.NoError(t, err)

	assert.Equal(t, enums.DiscountKindNone, quote.DiscountKind)
	assert.Equal(t, int64(200), quote.TotalCents)
}

func TestPriceFullDiscountClampsAtZero(t *testing.T) {
	quote, err := Price([]Line{{PriceCents: 100}, {PriceCents: 50}}, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(150), quote.DiscountCents)
	assert.Equal(t, int64(0), quote.TotalCents)
}

func TestPriceFreeItemsStayFree(t *testing.T) {
	quote, err := Price([]Line{{PriceCents: 0}, {PriceCents: 0}}, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(0), quote.SubtotalCents)
	assert.Equal(t, int64(0), quote.DiscountCents)
	assert.Equal(t, int64(0), quote.TotalCents)
}

func TestPriceEmptyCart(t *testing.T) {
	quote, err := Price(nil, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(0), quote.SubtotalCents)
	assert.Equal(t, enums.DiscountKindNone, quote.DiscountKind)
}

func TestPriceRejectsNegativeInputs(t *testing.T) {
	_, err := Price([]Line{{PriceCents: -1}}, 10)
	assert.Error(t, err)

	_, err = Price([]Line{{PriceCents: 1}}, 101)
	assert.Error(t, err)
}
