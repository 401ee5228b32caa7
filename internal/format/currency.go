// Package format holds the presentation rules shared by the table and the
// charts: one currency rule and the period label layouts.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Supported digit-grouping locales.
const (
	LocaleIndia = "en-IN" // 1,00,00,000
	LocaleUS    = "en-US" // 10,000,000
)

// Currency is the symbol-prefix plus locale-grouping rule applied to every
// rendered amount.
type Currency struct {
	Symbol string `json:"symbol"`
	Locale string `json:"locale"`
}

// DefaultCurrency is the rupee with Indian digit grouping.
var DefaultCurrency = Currency{Symbol: "₹", Locale: LocaleIndia}

// NewCurrency validates a locale and builds the rule.
func NewCurrency(symbol, locale string) (Currency, error) {
	switch locale {
	case LocaleIndia, LocaleUS:
	default:
		return Currency{}, fmt.Errorf("unsupported currency locale %q: must be %s or %s", locale, LocaleIndia, LocaleUS)
	}
	return Currency{Symbol: symbol, Locale: locale}, nil
}

// FormatTick renders an axis value: up to three fraction digits, trailing
// zeros dropped, sign after the symbol ("₹1,00,000", "₹1,234.5", "₹-200").
func (c Currency) FormatTick(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return c.compose(neg, s)
}

// FormatAmount renders a transaction amount with exactly two decimals
// ("₹1,000.00").
func (c Currency) FormatAmount(d decimal.Decimal) string {
	neg := d.IsNegative()
	return c.compose(neg, d.Abs().StringFixed(2))
}

func (c Currency) compose(neg bool, plain string) string {
	intPart, frac, hasFrac := strings.Cut(plain, ".")
	grouped := c.group(intPart)
	if hasFrac {
		grouped += "." + frac
	}
	if neg && strings.Trim(plain, "0.") != "" {
		grouped = "-" + grouped
	}
	return c.Symbol + grouped
}

// group inserts thousands separators into a run of digits.
func (c Currency) group(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	size := 3
	if c.Locale == LocaleIndia {
		size = 2
	}

	var parts []string
	for len(head) > size {
		parts = append([]string{head[len(head)-size:]}, parts...)
		head = head[:len(head)-size]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(append(parts, tail), ",")
}
