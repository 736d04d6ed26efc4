package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
}

// MajorUnits converts an amount in minor units (paise, cents) to major units.
func MajorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// FormatAmount renders a minor-unit amount for people, e.g. 19900 INR as "₹199.00".
func FormatAmount(amount int64, currency string) string {
	value := MajorUnits(amount).StringFixed(2)
	if symbol, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return symbol + value
	}
	return value + " " + strings.ToUpper(currency)
}
