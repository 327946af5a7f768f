package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "clean text passes through",
			input:    "ตู้เย็น 2 ประตู",
			maxLen:   100,
			expected: "ตู้เย็น 2 ประตู",
		},
		{
			name:     "css class contamination rejected",
			input:    `class="quickInfo-brand-123"`,
			maxLen:   100,
			expected: "",
		},
		{
			name:     "synthetic class token stripped",
			input:    "ไม้สัก productPrice-oldPrice-Xy3",
			maxLen:   100,
			expected: "ไม้สัก",
		},
		{
			name:     "url rejected",
			input:    "https://example.com/product/123",
			maxLen:   100,
			expected: "",
		},
		{
			name:     "json fragment stripped",
			input:    `{"@type":"Product"} Modern Sofa`,
			maxLen:   100,
			expected: "Modern Sofa",
		},
		{
			name:     "too long rejected",
			input:    "very long brand name that keeps going and going and going past any plausible limit",
			maxLen:   20,
			expected: "",
		},
		{
			name:     "single rune rejected",
			input:    "A",
			maxLen:   100,
			expected: "",
		},
		{
			name:     "whitespace collapsed",
			input:    "  Modern   Sofa  ",
			maxLen:   100,
			expected: "Modern Sofa",
		},
		{
			name:     "empty input",
			input:    "",
			maxLen:   100,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Text(tt.input, tt.maxLen))
		})
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "Modern Sofa", StripTags("<span>Modern</span> <b>Sofa</b>"))
	assert.Equal(t, `A & "B"`, StripTags("A &amp; &quot;B&quot;"))
	assert.Equal(t, "a b", StripTags("a&nbsp;b"))
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "triple dimension survives markup",
			input:    `ขนาด 10x20x30 ซม. class="dim-info"`,
			expected: "10x20x30",
		},
		{
			name:     "double dimension",
			input:    "15 x 25 cm",
			expected: "15 x 25",
		},
		{
			name:     "unicode multiplication sign",
			input:    "60×120 ซม.",
			expected: "60×120",
		},
		{
			name:     "css var stripped before matching",
			input:    "var(--spacing-md) 40x60",
			expected: "40x60",
		},
		{
			name:     "plain text falls through to generic pipeline",
			input:    "ขนาดมาตรฐาน",
			expected: "ขนาดมาตรฐาน",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dimensions(tt.input))
		})
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain color name",
			input:    "สีขาว",
			expected: "สีขาว",
		},
		{
			name:     "hex code rejected",
			input:    "#ff0000",
			expected: "",
		},
		{
			name:     "rgb rejected",
			input:    "rgb(255, 0, 0)",
			expected: "",
		},
		{
			name:     "color name with hex residue cleaned",
			input:    "#ff5733 น้ำตาลเข้ม",
			expected: "น้ำตาลเข้ม",
		},
		{
			name:     "bare hex without hash rejected",
			input:    "ff0000",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Color(tt.input))
		})
	}
}

func TestMaterial(t *testing.T) {
	assert.Equal(t, "ไม้สัก", Material("วัสดุ: ไม้สัก"))
	assert.Equal(t, "Stainless Steel", Material("Material: Stainless Steel"))
	assert.Equal(t, "", Material(""))
}

func TestSKU(t *testing.T) {
	assert.Equal(t, "ABC-123", SKU("ABC-123"))
	assert.Equal(t, "", SKU("https://example.com/product/123"))
	assert.Equal(t, "", SKU("A"))
}

func TestIsValidSKU(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"alphanumeric with dash", "ABC-123", true},
		{"digits only", "60287551", true},
		{"underscore", "SKU_900", true},
		{"url", "https://x.com/product/123", false},
		{"www prefix", "www.example.com", false},
		{"domain fragment", "shop.co.th", false},
		{"path fragment", "item/product/123", false},
		{"date", "2024-01-01", false},
		{"slash", "AB/CD", false},
		{"too short", "A", false},
		{"empty", "", false},
		{"thai characters", "รหัส123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidSKU(tt.input))
		})
	}
}
