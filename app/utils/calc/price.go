package calc

import "github.com/shopspring/decimal"

// MissingProductPrice is the unit price used when a cart line no longer carries its product.
// Such a line contributes nothing to the total instead of failing the whole cart.
var MissingProductPrice = decimal.Zero

func LineTotal(unitPrice decimal.Decimal, qty int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

// SharePercent returns part/total*100 rounded to one decimal, or zero when total is zero.
func SharePercent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(1)
}

// BelowThreshold reports amount < threshold. The threshold itself is excluded.
func BelowThreshold(amount, threshold decimal.Decimal) bool {
	return amount.LessThan(threshold)
}
