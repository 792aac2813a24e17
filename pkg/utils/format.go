// Package utils provides common utility functions for finchat.
package utils

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// NotAvailable is rendered for any declared field the provider did not return.
const NotAvailable = "N/A"

// FormatGrouped renders a raw provider value for display.
// Numbers get "," thousands separators (1234567 → "1,234,567", 1234.5 → "1,234.5"),
// strings pass through unchanged and nil renders as "N/A".
func FormatGrouped(v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return passthrough(v)
	}
	return groupDecimal(d)
}

// FormatCurrency is FormatGrouped with a currency prefix placed after the sign,
// e.g. FormatCurrency(-1000, "$") → "-$1,000". Non-numeric values are not prefixed.
func FormatCurrency(v any, prefix string) string {
	d, ok := toDecimal(v)
	if !ok {
		return passthrough(v)
	}
	s := groupDecimal(d)
	if strings.HasPrefix(s, "-") {
		return "-" + prefix + s[1:]
	}
	return prefix + s
}

// IsNumeric reports whether FormatGrouped would treat v as a number.
func IsNumeric(v any) bool {
	_, ok := toDecimal(v)
	return ok
}

func passthrough(v any) string {
	switch t := v.(type) {
	case nil:
		return NotAvailable
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(n), true
	case float32:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint32:
		return decimal.NewFromInt(int64(n)), true
	}
	return decimal.Decimal{}, false
}

// groupDecimal inserts thousands separators into the integer part.
func groupDecimal(d decimal.Decimal) string {
	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	return sign + groupDigits(intPart) + frac
}

func groupDigits(digits string) string {
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
