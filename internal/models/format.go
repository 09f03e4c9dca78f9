package models

import (
	"github.com/shopspring/decimal"
)

// FormatCurrency rounds to cents for display, keeping the raw float for sorting
func FormatCurrency(value float64) FieldValue {
	return FieldValue{
		Raw:     value,
		Display: "$" + decimal.NewFromFloat(value).StringFixed(2),
		Type:    "currency",
	}
}

// FormatPnL is FormatCurrency with an explicit sign
func FormatPnL(value float64) FieldValue {
	d := decimal.NewFromFloat(value).Round(2)
	display := "$" + d.Abs().StringFixed(2)
	switch d.Sign() {
	case 1:
		display = "+" + display
	case -1:
		display = "-" + display
	}
	return FieldValue{
		Raw:     value,
		Display: display,
		Type:    "pnl",
	}
}

// FormatPercentage renders a decimal fraction as a percentage
func FormatPercentage(value float64) FieldValue {
	return FieldValue{
		Raw:     value,
		Display: decimal.NewFromFloat(value).Shift(2).StringFixed(2) + "%",
		Type:    "percentage",
	}
}

func FormatText(value string) FieldValue {
	return FieldValue{
		Raw:     value,
		Display: value,
		Type:    "text",
	}
}
