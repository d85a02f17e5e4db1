package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	cat := "cat-shirts"
	cart := Cart{Items: []CartItem{
		{ProductID: "a", Quantity: 2, Product: &Product{ID: "a", Title: "Oxford Shirt", CategoryID: &cat, Price: dec("500")}},
		{ProductID: "b", Quantity: 1, Product: &Product{ID: "b", Title: "Denim", Price: dec("900"), DiscountPrice: decimal.NewNullDecimal(dec("750"))}},
	}}

	snap := SnapshotFromCart(cart)
	raw, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)

	require.Len(t, decoded.Items, 2)
	assert.Equal(t, SnapshotVersion, decoded.Version)
	assert.Equal(t, "cat-shirts", decoded.Items[0].CategoryID)
	assert.Equal(t, "Oxford Shirt", decoded.Items[0].Title)
	assert.True(t, decoded.Items[1].UnitPrice.Equal(dec("750")))
	assert.True(t, decoded.Total().Equal(cart.TotalPrice()))
}

func TestDecodeLegacySnapshot(t *testing.T) {
	raw := `[{"product_id":"a","quantity":2,"product":{"product_id":"a","title":"Tee","price":"300","discount_price":"250"}},{"product_id":"b","quantity":1}]`

	snap, err := DecodeSnapshot([]byte(raw))
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.True(t, snap.Items[0].UnitPrice.Equal(dec("250")))
	assert.True(t, snap.Items[1].UnitPrice.IsZero())
	assert.Equal(t, 1, snap.Items[1].Quantity)

	snap, err = DecodeSnapshot([]byte(`[{"product_id":"c","quantity":0}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Items[0].Quantity)

	_, err = DecodeSnapshot([]byte(`[{"product_id":"a","quantity":2},{"product_id":"d","quantity":-3}]`))
	assert.ErrorIs(t, err, ErrMalformedSnapshot)
}

func TestDecodeMalformedSnapshot(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json", `{"version":1,"items":`, `{"version":7,"items":[]}`, `"x"`} {
		_, err := DecodeSnapshot([]byte(raw))
		assert.ErrorIsf(t, err, ErrMalformedSnapshot, "input %q", raw)
	}
}
