package utils

import "github.com/shopspring/decimal"

// NotAvailable is the explicit marker rendered for any unresolved value.
const NotAvailable = "n/a"

// Displayed USD and rate figures round with banker's rounding to two
// decimal places, applied only at this formatting boundary.

// FormatUSD formats a USD value for display.
func FormatUSD(v decimal.Decimal) string {
	return v.RoundBank(2).StringFixed(2)
}

// FormatRatePercent formats a fractional rate (0.043) as a percentage ("4.30").
func FormatRatePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).RoundBank(2).StringFixed(2)
}

// FormatQuantity formats a normalized token quantity, trimming trailing zeros.
func FormatQuantity(v decimal.Decimal) string {
	return v.String()
}

// FormatLTV formats a loan-to-value ratio; nil renders as "n/a".
func FormatLTV(ltv *decimal.Decimal) string {
	if ltv == nil {
		return NotAvailable
	}
	return ltv.RoundBank(2).StringFixed(2)
}
