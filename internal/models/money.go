package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered amount such as "12.34", "12,34",
// "1,234.50" or "1,00,000" and rounds it to cents. A comma followed by
// exactly three digits groups thousands; a single comma followed by one or
// two digits is a decimal comma. Zero and negative amounts are rejected.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		last := s[strings.LastIndex(s, ",")+1:]
		switch {
		case strings.Contains(s, ".") || len(last) == 3:
			s = strings.ReplaceAll(s, ",", "")
		case strings.Count(s, ",") == 1:
			s = strings.Replace(s, ",", ".", 1)
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return d.InexactFloat64(), nil
}

// FormatAmount renders an amount with two decimals and thousands separators,
// e.g. 12500 becomes "12,500.00".
func FormatAmount(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0.00"
	}
	d := decimal.NewFromFloat(amount).Round(2)

	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
