package models

import (
	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/utils/calc"
)

// CartItem is one product selection. Product is the snapshot taken when the item was added
// and can be stale relative to the catalog.
type CartItem struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

func (ci CartItem) UnitPrice() decimal.Decimal {
	if ci.Product == nil {
		return calc.MissingProductPrice
	}
	return ci.Product.EffectivePrice()
}

func (ci CartItem) Subtotal() decimal.Decimal {
	return calc.LineTotal(ci.UnitPrice(), ci.Quantity)
}
