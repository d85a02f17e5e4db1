package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/utils/calc"
)

const SnapshotVersion = 1

var ErrMalformedSnapshot = errors.New("malformed order snapshot")

type OrderLineItem struct {
	ProductID  string          `json:"product_id"`
	CategoryID string          `json:"category_id,omitempty"`
	Title      string          `json:"title"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

func (li OrderLineItem) Subtotal() decimal.Decimal {
	return calc.LineTotal(li.UnitPrice, li.Quantity)
}

type OrderSnapshot struct {
	Version int             `json:"version"`
	Items   []OrderLineItem `json:"items"`
}

func (s OrderSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// SnapshotFromCart freezes the cart lines at their current effective prices.
func SnapshotFromCart(cart Cart) OrderSnapshot {
	items := make([]OrderLineItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		li := OrderLineItem{
			ProductID: ci.ProductID,
			UnitPrice: ci.UnitPrice(),
			Quantity:  ci.Quantity,
		}
		if ci.Product != nil {
			li.Title = ci.Product.Title
			li.CategoryID = ci.Product.CategoryRef()
		}
		items = append(items, li)
	}
	return OrderSnapshot{Version: SnapshotVersion, Items: items}
}

func EncodeSnapshot(s OrderSnapshot) (string, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode order snapshot: %w", err)
	}
	return string(b), nil
}

// legacyLineItem is the shape written by the first storefront: the raw cart entry with the
// product embedded.
type legacyLineItem struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product"`
}

// DecodeSnapshot reads a versioned snapshot, or a legacy bare array of cart entries.
func DecodeSnapshot(raw []byte) (OrderSnapshot, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return OrderSnapshot{}, ErrMalformedSnapshot
	}

	switch trimmed[0] {
	case '{':
		var s OrderSnapshot
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return OrderSnapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if s.Version != SnapshotVersion {
			return OrderSnapshot{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedSnapshot, s.Version)
		}
		return s, nil
	case '[':
		var legacy []legacyLineItem
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return OrderSnapshot{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		items := make([]OrderLineItem, 0, len(legacy))
		for _, l := range legacy {
			// Legacy carts omitted the quantity for single items.
			qty := l.Quantity
			if qty == 0 {
				qty = 1
			}
			if qty < 0 {
				return OrderSnapshot{}, fmt.Errorf("%w: negative quantity %d for %s", ErrMalformedSnapshot, qty, l.ProductID)
			}
			li := OrderLineItem{ProductID: l.ProductID, Quantity: qty, UnitPrice: calc.MissingProductPrice}
			if l.Product != nil {
				li.Title = l.Product.Title
				li.CategoryID = l.Product.CategoryRef()
				li.UnitPrice = l.Product.EffectivePrice()
			}
			items = append(items, li)
		}
		return OrderSnapshot{Version: 0, Items: items}, nil
	default:
		return OrderSnapshot{}, ErrMalformedSnapshot
	}
}
