package services

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadline/storefront/app/models"
)

func product(id, title, price string) models.Product {
	return models.Product{ID: id, Title: title, Price: dec(price), Stock: 10}
}

type failingSnapshotStore struct {
	MemorySnapshotStore
}

func (f *failingSnapshotStore) Save(data []byte) error {
	return errors.New("disk full")
}

func TestAddToCartMergesQuantities(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	a := product("a", "Linen Shirt", "500")

	require.NoError(t, store.AddToCart(a, 2))
	require.NoError(t, store.AddToCart(a, 1))

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 3, store.TotalItems())
	assert.True(t, store.TotalPrice().Equal(decimal.NewFromInt(1500)))
}

func TestAddToCartRefreshesEmbeddedProduct(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	a := product("a", "Linen Shirt", "500")
	require.NoError(t, store.AddToCart(a, 1))

	a.DiscountPrice = decimal.NewNullDecimal(dec("450"))
	require.NoError(t, store.AddToCart(a, 1))

	assert.True(t, store.TotalPrice().Equal(decimal.NewFromInt(900)))
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))

	for _, qty := range []int{0, -3} {
		err := store.AddToCart(product("a", "Tee", "100"), qty)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
	assert.Empty(t, store.Items())
}

func TestUpdateQuantity(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 2))

	t.Run("rejects below one without removing", func(t *testing.T) {
		assert.ErrorIs(t, store.UpdateQuantity("a", 0), ErrInvalidQuantity)
		assert.ErrorIs(t, store.UpdateQuantity("a", -1), ErrInvalidQuantity)
		require.Len(t, store.Items(), 1)
		assert.Equal(t, 2, store.Items()[0].Quantity)
	})

	t.Run("sets quantity", func(t *testing.T) {
		require.NoError(t, store.UpdateQuantity("a", 5))
		assert.Equal(t, 5, store.TotalItems())
	})

	t.Run("absent product is a no-op", func(t *testing.T) {
		require.NoError(t, store.UpdateQuantity("missing", 4))
		assert.Len(t, store.Items(), 1)
	})
}

func TestRemoveFromCartIsIdempotent(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 1))
	require.NoError(t, store.AddToCart(product("b", "Cap", "50"), 1))

	store.RemoveFromCart("a")
	store.RemoveFromCart("a")

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ProductID)
}

func TestCartEvents(t *testing.T) {
	store := OpenCartStore(NewMemorySnapshotStore(nil))
	var events []CartEvent
	unsubscribe := store.Subscribe(func(e CartEvent) { events = append(events, e) })

	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 1))
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 1))
	store.RemoveFromCart("a")
	store.RemoveFromCart("a")

	require.Len(t, events, 3)
	assert.Equal(t, CartItemAdded, events[0].Kind)
	assert.Equal(t, "Added Tee to cart", events[0].Message)
	assert.Equal(t, "Updated Tee quantity", events[1].Message)
	assert.Equal(t, "Removed from cart", events[2].Message)

	unsubscribe()
	require.NoError(t, store.AddToCart(product("b", "Cap", "50"), 1))
	assert.Len(t, events, 3)
}

func TestCartSnapshotRoundTrip(t *testing.T) {
	snapshots := NewMemorySnapshotStore(nil)
	store := OpenCartStore(snapshots)

	a := product("a", "Tee", "100")
	a.DiscountPrice = decimal.NewNullDecimal(dec("80"))
	require.NoError(t, store.AddToCart(a, 2))
	require.NoError(t, store.AddToCart(product("b", "Cap", "50"), 1))

	reopened := OpenCartStore(snapshots)
	assert.Equal(t, store.TotalItems(), reopened.TotalItems())
	assert.True(t, store.TotalPrice().Equal(reopened.TotalPrice()))
	require.Len(t, reopened.Items(), 2)
	assert.Equal(t, "a", reopened.Items()[0].ProductID)
	assert.True(t, reopened.Items()[0].Product.DiscountPrice.Valid)
}

func TestOpenCartStoreHandlesBadSnapshots(t *testing.T) {
	cases := map[string][]byte{
		"absent":        nil,
		"not json":      []byte("{{{"),
		"wrong shape":   []byte(`{"items":1}`),
		"zero quantity": []byte(`[{"product_id":"a","quantity":0}]`),
		"duplicate":     []byte(`[{"product_id":"a","quantity":1},{"product_id":"a","quantity":2}]`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			snapshots := NewMemorySnapshotStore(raw)
			store := OpenCartStore(snapshots)
			assert.Empty(t, store.Items())
			assert.True(t, store.TotalPrice().IsZero())

			data, err := snapshots.Load()
			require.NoError(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestClearAndTeardown(t *testing.T) {
	snapshots := NewMemorySnapshotStore(nil)
	store := OpenCartStore(snapshots)
	calls := 0
	store.Subscribe(func(CartEvent) { calls++ })
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 1))

	store.ClearCart()
	assert.Empty(t, store.Items())
	data, _ := snapshots.Load()
	assert.Nil(t, data)

	store.Teardown()
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 1))
	assert.Equal(t, 1, calls)
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	store := OpenCartStore(&failingSnapshotStore{})
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 2))
	assert.Equal(t, 2, store.TotalItems())
}

func TestCartSnapshotFormat(t *testing.T) {
	snapshots := NewMemorySnapshotStore(nil)
	store := OpenCartStore(snapshots)
	require.NoError(t, store.AddToCart(product("a", "Tee", "100"), 2))

	data, err := snapshots.Load()
	require.NoError(t, err)

	var items []models.CartItem
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Tee", items[0].Product.Title)
}
