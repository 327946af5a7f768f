package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{
			name:     "plain number",
			input:    "1299",
			expected: 1299,
			ok:       true,
		},
		{
			name:     "thousands separator with decimals",
			input:    "1,299.00",
			expected: 1299.00,
			ok:       true,
		},
		{
			name:     "baht symbol",
			input:    "฿80",
			expected: 80,
			ok:       true,
		},
		{
			name:     "baht suffix text",
			input:    "2,790 บาท",
			expected: 2790,
			ok:       true,
		},
		{
			name:     "dollar symbol with decimals",
			input:    "$19.99",
			expected: 19.99,
			ok:       true,
		},
		{
			name:     "multiple dots keeps only last as decimal",
			input:    "1.299.50",
			expected: 1299.50,
			ok:       true,
		},
		{
			name:  "empty string",
			input: "",
			ok:    false,
		},
		{
			name:  "no digits",
			input: "ราคาพิเศษ",
			ok:    false,
		},
		{
			name:  "whitespace only",
			input: "   ",
			ok:    false,
		},
		{
			name:  "zero is rejected",
			input: "0",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePrice(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 0.001)
			}
		})
	}
}

func TestExtractPricesLabeled(t *testing.T) {
	text := "ราคาปกติ 3,290 บาท ราคา 2,790 บาท"

	current, original := ExtractPrices(text)

	require.NotNil(t, current)
	require.NotNil(t, original)
	assert.InDelta(t, 2790, *current, 0.001)
	assert.InDelta(t, 3290, *original, 0.001)
}

func TestExtractPricesMinMaxFallback(t *testing.T) {
	text := "1,500.00 1,200.00 1,500.00"

	current, original := ExtractPrices(text)

	require.NotNil(t, current)
	require.NotNil(t, original)
	assert.InDelta(t, 1200, *current, 0.001)
	assert.InDelta(t, 1500, *original, 0.001)
}

func TestExtractPricesSingle(t *testing.T) {
	text := "ราคา 990 บาท"

	current, original := ExtractPrices(text)

	require.NotNil(t, current)
	assert.InDelta(t, 990, *current, 0.001)
	assert.Nil(t, original)
}

func TestExtractPricesNone(t *testing.T) {
	current, original := ExtractPrices("no prices here")

	assert.Nil(t, current)
	assert.Nil(t, original)
}
