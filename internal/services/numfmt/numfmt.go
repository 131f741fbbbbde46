// Package numfmt converts between human-formatted market text and numeric
// quantities. Scraped text is noisy, so parsing never fails: anything
// unusable degrades to zero and callers decide what a zero means.
package numfmt

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var groupedPrinter = message.NewPrinter(language.English)

// ParseQuantity parses a human-formatted quantity string such as "$1,234.5K"
// into its numeric value. Currency symbols and thousands separators are
// stripped and trailing K/M/B magnitude suffixes are recognized
// case-insensitively. Returns 0 on empty or non-numeric input.
func ParseQuantity(text string) float64 {
	if text == "" {
		return 0
	}

	clean := strings.ToUpper(strings.TrimSpace(text))
	clean = strings.ReplaceAll(clean, "$", "")
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.TrimSpace(clean)

	multiplier := 1.0
	switch {
	case strings.HasSuffix(clean, "K"):
		multiplier = 1e3
		clean = strings.TrimSuffix(clean, "K")
	case strings.HasSuffix(clean, "M"):
		multiplier = 1e6
		clean = strings.TrimSuffix(clean, "M")
	case strings.HasSuffix(clean, "B"):
		multiplier = 1e9
		clean = strings.TrimSuffix(clean, "B")
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(clean), 64)
	if err != nil {
		return 0
	}

	return value * multiplier
}

// FormatPrice renders a USD price with precision tiered by magnitude, so
// sub-cent token prices keep their significant digits while ordinary prices
// read like money. Trailing zeros after the decimal point are trimmed.
func FormatPrice(value float64) string {
	if value == 0 {
		return "0"
	}

	var digits int
	switch {
	case value < 1e-7:
		digits = 11
	case value < 1e-3:
		digits = 8
	case value < 1:
		digits = 5
	default:
		digits = 2
	}

	return trimFractionZeros(strconv.FormatFloat(value, 'f', digits, 64))
}

// FormatAmount renders a token quantity compactly: millions and thousands
// collapse to M/K suffixes, dust keeps six decimals, and everything else is
// locale-grouped with at most two fraction digits.
func FormatAmount(value float64) string {
	switch {
	case value >= 1e6:
		return fmt.Sprintf("%.2fM", value/1e6)
	case value >= 1e3:
		return fmt.Sprintf("%.2fK", value/1e3)
	case value < 1e-3:
		return fmt.Sprintf("%.6f", value)
	default:
		return groupedPrinter.Sprint(number.Decimal(value, number.MaxFractionDigits(2)))
	}
}

func trimFractionZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
