package money

import (
	"math"
	"testing"
)

func TestSafeCents(t *testing.T) {
	cases := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{12.6, 13},
		{12.4, 12},
		{-12.6, -13},
		{math.NaN(), 0},
		{math.Inf(1), 0},
		{math.Inf(-1), 0},
	}
	for _, c := range cases {
		if got := SafeCents(c.in); got != c.want {
			t.Errorf("SafeCents(%v): got %d, want %d", c.in, got, c.want)
		}
	}
}

func TestSafeCentsPtr(t *testing.T) {
	if got := SafeCentsPtr(nil); got != 0 {
		t.Errorf("SafeCentsPtr(nil): got %d, want 0", got)
	}
	v := 99.5
	if got := SafeCentsPtr(&v); got != 100 {
		t.Errorf("SafeCentsPtr(99.5): got %d, want 100", got)
	}
}

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		name  string
		cents int64
		opts  FormatOptions
		want  string
	}{
		{"zero", 0, FormatOptions{}, "$0.00"},
		{"zero with sign flag", 0, FormatOptions{ShowSign: true}, "$0.00"},
		{"basic", 1234, FormatOptions{}, "$12.34"},
		{"negative", -500, FormatOptions{}, "-$5.00"},
		{"positive with sign", 500, FormatOptions{ShowSign: true}, "+$5.00"},
		{"negative with sign flag", -500, FormatOptions{ShowSign: true}, "-$5.00"},
		{"compact", 150000, FormatOptions{Compact: true}, "$1.5k"},
		{"compact whole thousands", 200000, FormatOptions{Compact: true}, "$2k"},
		{"compact under threshold", 99999, FormatOptions{Compact: true}, "$999.99"},
		{"compact negative", -150000, FormatOptions{Compact: true}, "-$1.5k"},
		{"compact positive with sign", 150000, FormatOptions{Compact: true, ShowSign: true}, "+$1.5k"},
	}
	for _, c := range cases {
		if got := FormatMoney(c.cents, c.opts); got != c.want {
			t.Errorf("%s: FormatMoney(%d, %+v): got %q, want %q", c.name, c.cents, c.opts, got, c.want)
		}
	}
}

func TestFormatMoneyPtr(t *testing.T) {
	if got := FormatMoneyPtr(nil, FormatOptions{}); got != "$0.00" {
		t.Errorf("FormatMoneyPtr(nil): got %q, want $0.00", got)
	}
	if got := FormatMoneyPtr(nil, FormatOptions{ShowSign: true}); got != "$0.00" {
		t.Errorf("FormatMoneyPtr(nil, ShowSign): got %q, want $0.00", got)
	}
	v := int64(1050)
	if got := FormatMoneyPtr(&v, FormatOptions{}); got != "$10.50" {
		t.Errorf("FormatMoneyPtr(1050): got %q, want $10.50", got)
	}
}

func TestSumCents(t *testing.T) {
	a, b, c := int64(100), int64(-30), int64(5)
	got := SumCents([]*int64{&a, nil, &b, &c, nil})
	if got != 75 {
		t.Errorf("SumCents: got %d, want 75", got)
	}
	if got := SumCents(nil); got != 0 {
		t.Errorf("SumCents(nil): got %d, want 0", got)
	}
}

func TestDollarConversions(t *testing.T) {
	if got := DollarsToCents(12.34); got != 1234 {
		t.Errorf("DollarsToCents(12.34): got %d, want 1234", got)
	}
	if got := DollarsToCents(math.NaN()); got != 0 {
		t.Errorf("DollarsToCents(NaN): got %d, want 0", got)
	}
	if got := CentsToDollars(1234); got != 12.34 {
		t.Errorf("CentsToDollars(1234): got %v, want 12.34", got)
	}
}
