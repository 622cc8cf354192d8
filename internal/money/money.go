// Package money holds defensive cents arithmetic and formatting used by the
// invoice and payout pipeline. All amounts cross API boundaries as integer
// cents; floats only appear at conversion edges and are never allowed to
// leak NaN or Infinity into stored amounts.
package money

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatOptions controls FormatMoney output.
type FormatOptions struct {
	// Compact renders values of $1000 or more as e.g. "$1.5k".
	Compact bool
	// ShowSign prefixes strictly positive values with "+".
	ShowSign bool
}

// SafeCents rounds a float amount to integer cents, returning 0 for NaN or
// infinite input. Rounding is half away from zero.
func SafeCents(v float64) int64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(math.Round(v))
}

// SafeCentsPtr is SafeCents over a nullable amount; nil yields 0.
func SafeCentsPtr(v *float64) int64 {
	if v == nil {
		return 0
	}
	return SafeCents(*v)
}

// SumCents sums nullable cent amounts, treating nil as 0.
func SumCents(values []*int64) int64 {
	var sum int64
	for _, v := range values {
		if v != nil {
			sum += *v
		}
	}
	return sum
}

// FormatMoney renders integer cents as a dollar string, e.g. 1234 -> "$12.34".
// Negative amounts carry a leading "-"; with ShowSign, positive amounts carry
// a leading "+" (zero never gets one). With Compact, absolute values of
// $1000+ render as "$1.5k" with a trailing ".0" stripped.
func FormatMoney(cents int64, opts FormatOptions) string {
	dollars := float64(cents) / 100

	prefix := ""
	switch {
	case dollars < 0:
		prefix = "-"
	case opts.ShowSign && dollars > 0:
		prefix = "+"
	}
	abs := math.Abs(dollars)

	if opts.Compact && abs >= 1000 {
		k := strconv.FormatFloat(abs/1000, 'f', 1, 64)
		k = strings.TrimSuffix(k, ".0")
		return prefix + "$" + k + "k"
	}
	return prefix + fmt.Sprintf("$%.2f", abs)
}

// FormatMoneyPtr is FormatMoney over a nullable amount; nil renders "$0.00".
func FormatMoneyPtr(cents *int64, opts FormatOptions) string {
	if cents == nil {
		return FormatMoney(0, opts)
	}
	return FormatMoney(*cents, opts)
}

// DollarsToCents converts a dollar amount to cents, defensive against
// non-finite input.
func DollarsToCents(dollars float64) int64 {
	if math.IsNaN(dollars) || math.IsInf(dollars, 0) {
		return 0
	}
	return int64(math.Round(dollars * 100))
}

// CentsToDollars converts integer cents to a dollar amount.
func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
