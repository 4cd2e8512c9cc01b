// Package utils provides display formatting for MarketDesk reports.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatUSD formats an amount as US dollars with thousands grouping
// ($12,345,678.90).
func FormatUSD(amount decimal.Decimal) string {
	prefix := "$"
	if amount.IsNegative() {
		prefix = "-$"
		amount = amount.Abs()
	}
	s := amount.StringFixed(2)
	intPart, decPart, _ := strings.Cut(s, ".")
	return prefix + groupThousands(intPart) + "." + decPart
}

// FormatUSDCompact formats an amount in compact notation.
// e.g., 2500000000 → "$2.5bn", 350000000 → "$350mn", 12500 → "$12.5K"
func FormatUSDCompact(amount decimal.Decimal) string {
	prefix := "$"
	if amount.IsNegative() {
		prefix = "-$"
		amount = amount.Abs()
	}

	switch {
	case amount.GreaterThanOrEqual(billion):
		return prefix + trimDecimals(amount.Div(billion)) + "bn"
	case amount.GreaterThanOrEqual(million):
		return prefix + trimDecimals(amount.Div(million)) + "mn"
	case amount.GreaterThanOrEqual(thousand):
		return prefix + trimDecimals(amount.Div(thousand)) + "K"
	default:
		return prefix + amount.StringFixed(2)
	}
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatRatio formats a percentage ratio without sign, e.g. 12.8 → "12.80%".
func FormatRatio(pct decimal.Decimal) string {
	return pct.StringFixed(2) + "%"
}

// FormatSeconds formats an optional duration in seconds. Nil and
// non-finite values read "n/a".
func FormatSeconds(secs *float64) string {
	if secs == nil || math.IsNaN(*secs) || math.IsInf(*secs, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1fs", *secs)
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// trimDecimals renders n with up to 2 decimal places, removing trailing zeros.
func trimDecimals(n decimal.Decimal) string {
	s := n.StringFixed(2)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
