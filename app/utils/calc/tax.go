package calc

import "github.com/shopspring/decimal"

// GetTaxPercent is the GST rate applied to in-store bills.
func GetTaxPercent() decimal.Decimal {
	var taxPercent = decimal.NewFromInt(18)

	return taxPercent
}

func CalculateTax(baseTotal decimal.Decimal) decimal.Decimal {

	taxPercent := GetTaxPercent()

	return baseTotal.Mul(taxPercent).Div(decimal.NewFromInt(100)).Round(2)

}

func CalculateGrandTotal(baseTotal, taxAmount decimal.Decimal) decimal.Decimal {
	return baseTotal.Add(taxAmount)
}
