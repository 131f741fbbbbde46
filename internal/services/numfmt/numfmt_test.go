package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected float64
	}{
		{"empty", "", 0},
		{"plain integer", "1234", 1234},
		{"plain decimal", "12.5", 12.5},
		{"currency symbol", "$150.25", 150.25},
		{"thousands separators", "1,234,567", 1234567},
		{"symbol separators and suffix", "$1,234.5K", 1234500},
		{"lowercase suffix", "2.5m", 2500000},
		{"billions", "$1B", 1e9},
		{"surrounding whitespace", "  $42.1K ", 42100},
		{"garbage", "N/A", 0},
		{"suffix only", "K", 0},
		{"dashes", "--", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, ParseQuantity(tt.text), 1e-9)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"zero", 0, "0"},
		{"sub-microprice keeps 11 decimals", 0.0000000456, "0.0000000456"},
		{"sub-microprice trailing zeros trimmed", 0.00000001, "0.00000001"},
		{"sub-millicent 8 decimals", 0.000123, "0.000123"},
		{"below one 5 decimals", 0.12345, "0.12345"},
		{"below one trims zeros", 0.5, "0.5"},
		{"ordinary price", 150.25, "150.25"},
		{"ordinary price trims zeros", 150.00, "150"},
		{"ordinary price half", 2.50, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPrice(tt.value))
		})
	}
}

func TestFormatPriceStable(t *testing.T) {
	// formatting the same value twice must yield identical strings
	for _, v := range []float64{0, 0.0000000456, 0.004, 0.9, 42.42, 150} {
		assert.Equal(t, FormatPrice(v), FormatPrice(v))
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"millions", 150000000, "150.00M"},
		{"millions fractional", 1234567, "1.23M"},
		{"thousands", 150000, "150.00K"},
		{"thousands fractional", 1234.5, "1.23K"},
		{"dust keeps six decimals", 0.0005, "0.000500"},
		{"ordinary", 123.456, "123.46"},
		{"small", 0.5, "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAmount(tt.value))
		})
	}
}
