// Package sanitize cleans raw captured text before it is allowed onto a
// product record. Retailer pages routinely leak CSS class names, broken
// tag fragments and JSON-LD fragments into naive regex captures; every
// routine here rejects by default (returns "") rather than guessing at a
// partially cleaned value. A missing field is preferable to a
// contaminated one.
package sanitize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Max lengths per field, in runes.
const (
	MaxBrandLen      = 100
	MaxMaterialLen   = 100
	MaxColorLen      = 50
	MaxSKULen        = 50
	MaxDimensionsLen = 200
)

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	// HTML/CSS contamination left behind by markup-crossing captures.
	cssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)class="[^"]*"`),
		regexp.MustCompile(`(?i)style="[^"]*"`),
		regexp.MustCompile(`(?i)id="[^"]*"`),
		regexp.MustCompile(`quickInfo-infoLabel-[^"\s]*`),
		regexp.MustCompile(`quickInfo-infoValue-[^"\s]*`),
		// synthetic class tokens generated by CSS-in-JS bundlers,
		// e.g. "productPrice-oldPrice-Xy3"
		regexp.MustCompile(`\b[a-z][a-zA-Z]*-[a-z][a-zA-Z]*-[A-Za-z0-9]{2,4}\b`),
		regexp.MustCompile(`(?i)<label[^>]*>`),
		regexp.MustCompile(`(?i)</label>`),
		regexp.MustCompile(`(?i)<span[^>]*>`),
		regexp.MustCompile(`(?i)</span>`),
		regexp.MustCompile(`(?i)<div[^>]*>`),
		regexp.MustCompile(`(?i)</div>`),
	}

	urlPatterns = []*regexp.Regexp{
		regexp.MustCompile(`https?://[^\s<>"']+`),
		regexp.MustCompile(`www\.[^\s<>"']+`),
		regexp.MustCompile(`[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}(?:/[^\s<>"']*)?`),
	}

	jsonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\{[^}]*\}`),
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`(?i)"@?[^"]*"\s*:\s*"[^"]*"`),
		regexp.MustCompile(`\b(?:true|false|null)\b`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}[T\s]\d{2}:\d{2}:\d{2}`),
	}

	structuralChars = regexp.MustCompile(`[{}\[\]"',:;\\<>]`)

	rejectedChars  = []string{"{", "}", "[", "]", `"`, "'", `\`, "<", ">", "="}
	rejectedPrefix = []string{"http", "www", "data:", "class=", "style="}

	cssVarPattern = regexp.MustCompile(`(?i)var\([^)]+\)`)

	dimensionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?\s*[x×]\s*\d+(?:\.\d+)?\s*[x×]\s*\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?\s*[x×]\s*\d+(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)`),
	}

	cssColorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`#[0-9a-fA-F]{3,6}`),
		regexp.MustCompile(`(?i)rgba?\([^)]+\)`),
		regexp.MustCompile(`(?i)hsla?\([^)]+\)`),
		regexp.MustCompile(`(?i)color:\s*[^;\\]+`),
		regexp.MustCompile(`(?i)background:\s*[^;\\]+`),
		cssVarPattern,
	}
	bareHexPattern = regexp.MustCompile(`^[0-9a-fA-F]{3,6}$`)

	materialLabelPattern = regexp.MustCompile(`(?i)(?:วัสดุ|Material|ผลิตจาก|เนื้อวัสดุ)\s*[:\s]*`)

	skuCharsPattern = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
	skuDatePattern  = regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}$`)
)

// StripTags removes HTML tags and common entities, collapsing whitespace.
// It is a pre-cleaning step for regex captures, not a sanitizer.
func StripTags(text string) string {
	if text == "" {
		return ""
	}
	text = tagPattern.ReplaceAllString(text, " ")
	text = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	).Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

// Text runs the generic sanitization pipeline and returns the cleaned
// value, or "" when the input is rejected. Stages run in order: CSS/HTML
// contamination, URL-like substrings, JSON fragments, structural
// punctuation, whitespace collapse, then the final reject checks.
func Text(raw string, maxLen int) string {
	if raw == "" {
		return ""
	}
	text := raw

	for _, p := range cssPatterns {
		text = p.ReplaceAllString(text, "")
	}
	for _, p := range urlPatterns {
		text = p.ReplaceAllString(text, "")
	}
	for _, p := range jsonPatterns {
		text = p.ReplaceAllString(text, "")
	}

	text = structuralChars.ReplaceAllString(text, "")
	text = strings.TrimRight(text, ",;")
	text = strings.Join(strings.Fields(text), " ")

	if !accept(text, maxLen) {
		return ""
	}
	return text
}

func accept(text string, maxLen int) bool {
	n := utf8.RuneCountInString(text)
	if n <= 1 || n > maxLen {
		return false
	}
	lower := strings.ToLower(text)
	for _, prefix := range rejectedPrefix {
		if strings.HasPrefix(lower, prefix) {
			return false
		}
	}
	for _, ch := range rejectedChars {
		if strings.Contains(text, ch) {
			return false
		}
	}
	return true
}

// Dimensions extracts a numeric size pattern ("10x20x30", "15 x 25", lone
// "42") directly from the raw text when one exists, bypassing the generic
// pipeline so measurements survive heavy markup contamination. Without a
// numeric pattern it falls through to generic sanitization.
func Dimensions(raw string) string {
	if raw == "" {
		return ""
	}
	text := cssVarPattern.ReplaceAllString(raw, "")

	for _, p := range dimensionPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			dim := strings.TrimSpace(m[1])
			if dim != "" && utf8.RuneCountInString(dim) <= MaxDimensionsLen {
				return dim
			}
		}
	}
	return Text(text, MaxDimensionsLen)
}

// Color strips CSS color syntaxes before generic sanitization and rejects
// values that still look like color codes.
func Color(raw string) string {
	if raw == "" {
		return ""
	}
	text := raw
	for _, p := range cssColorPatterns {
		text = p.ReplaceAllString(text, "")
	}
	text = strings.Join(strings.Fields(text), " ")

	text = Text(text, MaxColorLen)
	if text == "" {
		return ""
	}

	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "#") ||
		strings.HasPrefix(lower, "rgb") ||
		strings.HasPrefix(lower, "hsl") ||
		bareHexPattern.MatchString(text) {
		return ""
	}
	return text
}

// Material strips localized field-label prefixes ("Material:", "วัสดุ")
// before generic sanitization.
func Material(raw string) string {
	if raw == "" {
		return ""
	}
	text := materialLabelPattern.ReplaceAllString(raw, "")
	text = strings.Join(strings.Fields(text), " ")
	return Text(text, MaxMaterialLen)
}

// Brand is pure generic sanitization at brand length.
func Brand(raw string) string {
	return Text(raw, MaxBrandLen)
}

// SKU sanitizes then validates a SKU candidate; invalid candidates are
// rejected outright.
func SKU(raw string) string {
	sku := Text(raw, MaxSKULen)
	if sku == "" || !IsValidSKU(sku) {
		return ""
	}
	return sku
}

// IsValidSKU reports whether s is a plausible product code rather than a
// URL slug, path fragment or date that leaked out of the page.
func IsValidSKU(s string) bool {
	if s == "" {
		return false
	}
	n := utf8.RuneCountInString(s)
	if n < 2 || n > MaxSKULen {
		return false
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "www") {
		return false
	}
	for _, fragment := range []string{
		".com", ".co.th", ".net", ".org",
		"/product/", "/item/", "/category/", "/search/", "/page/",
	} {
		if strings.Contains(lower, fragment) {
			return false
		}
	}
	if strings.ContainsAny(s, `/\`) {
		return false
	}
	if skuDatePattern.MatchString(s) {
		return false
	}
	return skuCharsPattern.MatchString(s)
}
