// Package cli renders planctl output for the terminal.
package cli

import (
	"fmt"
	"strings"

	"github.com/Overland-East-Bay/trip-budget-api/internal/domain"
)

// FormatMoney renders an amount with an optional ISO currency suffix ("630.00 EUR").
func FormatMoney(m domain.Money, currency string) string {
	if currency == "" {
		return m.String()
	}
	return m.String() + " " + currency
}

// FormatShare renders part as a percentage of whole with one decimal ("42.9%").
// A zero whole renders as "0.0%".
func FormatShare(part, whole domain.Money) string {
	if whole == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(whole))
}

// ProgressBar renders a fixed-width bar for a 0..1 fraction. Values outside the range are clamped.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	switch {
	case fraction < 0:
		fraction = 0
	case fraction > 1:
		fraction = 1
	}
	filled := int(fraction*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
