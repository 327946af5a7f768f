package pricing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Price text on Thai retailer pages mixes baht signs, latin currency
// symbols and comma grouping ("฿1,299.00", "3,290 บาท"). ParsePrice
// reduces any of these to a float; ExtractPrices pulls a current/original
// pair out of free text.

var (
	currencySymbols = regexp.MustCompile(`[฿$€£¥,\s]`)
	nonNumeric      = regexp.MustCompile(`[^0-9.]`)

	numberToken = regexp.MustCompile(`[฿$]?[\d,]+\.?\d*`)

	currentPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ราคา|price)[:\s]*([฿$]?[\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)([฿$]?[\d,]+\.?\d*)\s*(?:บาท|THB|฿)`),
		regexp.MustCompile(`(?i)ตอนนี้[:\s]*([฿$]?[\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)ลดเหลือ[:\s]*([฿$]?[\d,]+\.?\d*)`),
	}

	originalPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:ราคาปกติ|ปกติ|original|regular)[:\s]*([฿$]?[\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)([฿$]?[\d,]+\.?\d*)\s*(?:บาท|THB|฿)\s*(?:ปกติ|regular|original)`),
		regexp.MustCompile(`(?i)ก่อนลด[:\s]*([฿$]?[\d,]+\.?\d*)`),
		regexp.MustCompile(`(?i)ราคาพิเศษ[:\s]*([฿$]?[\d,]+\.?\d*)`),
	}
)

// ParsePrice converts localized price text to a numeric value. The second
// return value is false when the text holds no parseable number. Zero and
// negative values are rejected too: a free product price is noise on these
// storefronts, and a zero would pin the min side of the ExtractPrices
// fallback pair.
func ParsePrice(text string) (float64, bool) {
	if strings.TrimSpace(text) == "" {
		return 0, false
	}

	cleaned := currencySymbols.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = nonNumeric.ReplaceAllString(cleaned, "")

	// Thousands-dot plus decimal-dot ambiguity: only the last dot is the
	// decimal separator.
	if parts := strings.Split(cleaned, "."); len(parts) > 2 {
		cleaned = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

// ExtractPrices finds the current and original price in free text. Labeled
// matches win; without labels it falls back to collecting every numeric
// token and assuming the maximum is the original price and the minimum the
// current one. That assumption misfires on pages listing unrelated prices
// (shipping, bundles) and is kept as a best-effort heuristic only.
func ExtractPrices(text string) (current, original *float64) {
	if text == "" {
		return nil, nil
	}

	for _, pattern := range currentPricePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, ok := ParsePrice(m[1]); ok {
				current = &v
				break
			}
		}
	}

	for _, pattern := range originalPricePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			if v, ok := ParsePrice(m[1]); ok {
				original = &v
				break
			}
		}
	}

	if current != nil || original != nil {
		return current, original
	}

	distinct := distinctPrices(text)
	switch {
	case len(distinct) >= 2:
		lo, hi := distinct[0], distinct[len(distinct)-1]
		current, original = &lo, &hi
	case len(distinct) == 1:
		current = &distinct[0]
	}
	return current, original
}

// distinctPrices returns all parseable numeric tokens in ascending order
// with duplicates removed.
func distinctPrices(text string) []float64 {
	seen := make(map[float64]bool)
	var prices []float64
	for _, token := range numberToken.FindAllString(text, -1) {
		v, ok := ParsePrice(token)
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		prices = append(prices, v)
	}
	sort.Float64s(prices)
	return prices
}
