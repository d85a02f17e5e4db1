package format

import (
	"github.com/leekchan/accounting"
	"github.com/shopspring/decimal"
)

var inr = accounting.Accounting{Symbol: "₹", Precision: 2, Thousand: ",", Decimal: "."}

// Price renders an amount in INR, e.g. ₹1,299.00.
func Price(amount decimal.Decimal) string {
	return inr.FormatMoney(amount.Round(2).InexactFloat64())
}
