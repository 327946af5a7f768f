// Package extractor turns raw retailer page HTML into sanitized product
// fields. Extraction is layered: JSON-LD structured data first, then
// retailer-specific rules, then generic pattern fallbacks. The package
// performs no I/O and is safe to call from any number of workers.
package extractor

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/pricing"
	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// Extractor produces raw (already sanitized) field values from page HTML.
// Implementations must treat per-field failures as absence, never as
// errors; the error return is reserved for bespoke pipelines blowing up
// wholesale, in which case the dispatcher degrades to the generic engine.
type Extractor interface {
	Fields(html, pageURL string) (models.RawFields, error)
}

// retailerNameDenylist rejects name candidates that are just site
// branding; retailerNamePrefixes are stripped off otherwise-good names.
var retailerNameDenylist = []string{
	"megahome", "mega home", "homepro", "home pro", "boonthavorn",
	"dohome", "do home", "global house", "thai watsadu", "watsadu",
	"power buy", "powerbuy", "lazada", "shopee", "central", "jaymart",
	"vivin", "banner",
}

var htmlElementNames = map[string]bool{
	"html": true, "body": true, "div": true, "span": true,
	"section": true, "article": true, "header": true, "footer": true,
}

// Engine is the generic pattern-based extractor used for every retailer
// without a specialized strategy, and as the fallback layer inside the
// specialized ones.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Fields extracts every logical field from the page. Fields that fail
// extraction or sanitization stay empty; the method itself never fails.
func (e *Engine) Fields(html, pageURL string) (models.RawFields, error) {
	ld := parseJSONLD(html)

	fields := models.RawFields{
		URL:         pageURL,
		Name:        e.extractNameWithLD(html, ld),
		Description: e.extractDescriptionWithLD(html, ld),
		Brand:       e.extractBrand(html, ld),
		Model:       e.extractModel(html, ld),
		SKU:         e.extractSKU(html, pageURL, ld),
		Category:    e.extractCategory(html, ld),
		Volume:      sanitize.Text(evalRules(html, volumeRules), 50),
		Dimensions:  sanitize.Dimensions(evalRules(html, dimensionRules)),
		Material:    sanitize.Material(evalRules(html, materialRules)),
		Color:       sanitize.Color(evalRules(html, colorRules)),
		Images:      e.extractImages(html, pageURL, ld),
	}

	fields.CurrentPrice, fields.OriginalPrice = e.extractPrices(html, ld)

	return fields, nil
}

// ExtractField extracts a single logical text field by name. Unknown
// field names and numeric fields yield "".
func (e *Engine) ExtractField(html, fieldName string) string {
	ld := parseJSONLD(html)
	switch fieldName {
	case "name":
		return e.extractNameWithLD(html, ld)
	case "description":
		return e.extractDescriptionWithLD(html, ld)
	case "brand":
		return e.extractBrand(html, ld)
	case "model":
		return e.extractModel(html, ld)
	case "sku":
		return e.extractSKU(html, "", ld)
	case "category":
		return e.extractCategory(html, ld)
	case "volume":
		return sanitize.Text(evalRules(html, volumeRules), 50)
	case "dimensions":
		return sanitize.Dimensions(evalRules(html, dimensionRules))
	case "material":
		return sanitize.Material(evalRules(html, materialRules))
	case "color":
		return sanitize.Color(evalRules(html, colorRules))
	}
	return ""
}

func (e *Engine) extractNameWithLD(html string, ld *jsonLDProduct) string {
	if ld != nil && ld.Name != "" {
		name := sanitize.Text(ld.Name, 500)
		if utf8.RuneCountInString(name) > 3 && !isDenylistedName(strings.ToLower(name)) {
			return name
		}
	}
	return e.extractName(html)
}

func (e *Engine) extractDescriptionWithLD(html string, ld *jsonLDProduct) string {
	if ld != nil && ld.Description != "" {
		desc := sanitize.Text(ld.Description, 2000)
		if utf8.RuneCountInString(desc) > 10 {
			return desc
		}
	}
	return e.extractDescription(html)
}

func (e *Engine) extractName(html string) string {
	for _, r := range nameRules {
		m := r.re.FindStringSubmatch(html)
		if m == nil || len(m) <= r.group {
			continue
		}
		name := sanitize.StripTags(m[r.group])
		if name == "" {
			continue
		}

		// A candidate that is nothing but site branding is skipped in
		// favor of the next pattern; a branding prefix is stripped.
		lower := strings.ToLower(strings.TrimSpace(name))
		if isDenylistedName(lower) {
			continue
		}
		for _, retailer := range retailerNameDenylist {
			if strings.HasPrefix(lower, retailer+" ") {
				name = strings.TrimSpace(name[len(retailer):])
				break
			}
		}

		if utf8.RuneCountInString(name) > 3 {
			return name
		}
	}
	return ""
}

func isDenylistedName(lower string) bool {
	for _, retailer := range retailerNameDenylist {
		if lower == retailer {
			return true
		}
	}
	return false
}

func (e *Engine) extractDescription(html string) string {
	for _, r := range descriptionRules {
		m := r.re.FindStringSubmatch(html)
		if m == nil || len(m) <= r.group {
			continue
		}
		desc := sanitize.StripTags(m[r.group])
		if utf8.RuneCountInString(desc) > 10 {
			return desc
		}
	}
	return ""
}

func (e *Engine) extractBrand(html string, ld *jsonLDProduct) string {
	if ld != nil && ld.Brand != "" {
		if brand := sanitize.Brand(ld.Brand); brand != "" {
			return brand
		}
	}

	if raw := evalRules(html, brandRules); raw != "" {
		if brand := sanitize.Brand(raw); brand != "" {
			return brand
		}
	}

	// Last resort: the first two title/heading words often carry the
	// brand. Only accepted when it survives sanitization and starts
	// with an uppercase letter.
	for _, source := range titleTextSources(html) {
		words := strings.Fields(source)
		if len(words) < 2 {
			continue
		}
		brand := sanitize.Brand(strings.Join(words[:2], " "))
		if utf8.RuneCountInString(brand) >= 3 && startsUpper(brand) &&
			!isDenylistedName(strings.ToLower(brand)) {
			return brand
		}
	}
	return ""
}

func (e *Engine) extractModel(html string, ld *jsonLDProduct) string {
	if ld != nil && ld.Model != "" {
		if model := cleanModel(ld.Model); model != "" {
			return model
		}
	}

	if raw := evalRules(html, modelRules); raw != "" {
		if model := cleanModel(raw); model != "" {
			return model
		}
	}

	// Mine model-shaped tokens from title, heading and description.
	sources := titleTextSources(html)
	if desc := e.extractDescription(html); desc != "" {
		sources = append(sources, desc)
	}
	for _, source := range sources {
		for _, pattern := range modelTextPatterns {
			m := pattern.FindStringSubmatch(source)
			if m == nil {
				continue
			}
			model := cleanModel(m[1])
			if utf8.RuneCountInString(model) >= 2 {
				return model
			}
		}
	}
	return ""
}

// cleanModel sanitizes a model candidate and rejects bare HTML element
// names that leak out of tag-crossing captures.
func cleanModel(raw string) string {
	model := sanitize.Text(raw, 200)
	if model == "" || htmlElementNames[strings.ToLower(model)] {
		return ""
	}
	return model
}

func (e *Engine) extractSKU(html, pageURL string, ld *jsonLDProduct) string {
	if ld != nil && ld.SKU != "" {
		if sku := sanitize.SKU(ld.SKU); sku != "" {
			return sku
		}
	}

	for _, r := range skuRules {
		m := r.re.FindStringSubmatch(html)
		if m == nil || len(m) <= r.group {
			continue
		}
		if sku := sanitize.SKU(sanitize.StripTags(m[r.group])); sku != "" {
			return sku
		}
	}

	// URL path mining; every candidate is revalidated.
	if pageURL != "" {
		for _, pattern := range skuURLPatterns {
			m := pattern.FindStringSubmatch(pageURL)
			if m == nil {
				continue
			}
			candidate := strings.TrimSpace(m[1])
			if sanitize.IsValidSKU(candidate) {
				return candidate
			}
		}
	}
	return ""
}

func (e *Engine) extractCategory(html string, ld *jsonLDProduct) string {
	if ld != nil && ld.Category != "" {
		if category := sanitize.Text(ld.Category, 100); category != "" {
			return category
		}
	}
	return sanitize.Text(evalRules(html, categoryRules), 100)
}

// extractPrices prefers the JSON-LD offers path, then labeled price
// markup, then the min/max fallback over every numeric token found in
// price-bearing elements.
func (e *Engine) extractPrices(html string, ld *jsonLDProduct) (current, original *float64) {
	if ld != nil && ld.CurrentPrice != nil {
		return ld.CurrentPrice, ld.OriginalPrice
	}

	var allPrices []float64
	for _, pattern := range pricePatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if v, ok := pricing.ParsePrice(sanitize.StripTags(m[1])); ok {
				allPrices = append(allPrices, v)
			}
		}
	}
	for _, pattern := range priceTextPatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if v, ok := pricing.ParsePrice(m[1]); ok {
				allPrices = append(allPrices, v)
			}
		}
	}

	var origPrices []float64
	for _, pattern := range originalPriceMarkupPatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			if v, ok := pricing.ParsePrice(sanitize.StripTags(m[1])); ok {
				origPrices = append(origPrices, v)
			}
		}
	}

	if len(origPrices) > 0 {
		// The highest labeled price is the original; current is the
		// lowest remaining price.
		hi := maxOf(origPrices)
		original = &hi
		var others []float64
		for _, p := range allPrices {
			if p != hi {
				others = append(others, p)
			}
		}
		if len(others) > 0 {
			lo := minOf(others)
			current = &lo
		}
		return current, original
	}

	distinct := distinctSorted(allPrices)
	switch {
	case len(distinct) >= 2:
		lo, hi := distinct[0], distinct[len(distinct)-1]
		return &lo, &hi
	case len(distinct) == 1:
		return &distinct[0], nil
	}
	return nil, nil
}

func (e *Engine) extractImages(html, pageURL string, ld *jsonLDProduct) []string {
	var raw []string
	for _, pattern := range imagePatterns {
		for _, m := range pattern.FindAllStringSubmatch(html, -1) {
			raw = append(raw, m[1])
		}
	}
	if ld != nil {
		raw = append(raw, ld.Images...)
	}

	resolved := make([]string, 0, len(raw))
	for _, img := range raw {
		if u := resolveImageURL(pageURL, img); u != "" {
			resolved = append(resolved, u)
		}
	}
	return models.FilterImageURLs(resolved)
}

// resolveImageURL turns a possibly-relative image reference into an
// absolute URL. Non-http(s) schemes are dropped, not left unresolved.
func resolveImageURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	for _, scheme := range []string{"data:", "mailto:", "tel:", "javascript:"} {
		if strings.HasPrefix(ref, scheme) {
			return ""
		}
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if base == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := baseURL.ResolveReference(refURL)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// titleTextSources yields the document title and main heading text, tag
// stripped, in priority order.
func titleTextSources(html string) []string {
	var sources []string
	for _, r := range []rule{
		{re: titlePattern, group: 1},
		{re: productTitleH1Pattern, group: 1},
		{re: h1Pattern, group: 1},
	} {
		if m := r.re.FindStringSubmatch(html); m != nil {
			if text := sanitize.StripTags(m[1]); text != "" {
				sources = append(sources, text)
			}
		}
	}
	return sources
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func distinctSorted(values []float64) []float64 {
	seen := make(map[float64]bool)
	var distinct []float64
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	sort.Float64s(distinct)
	return distinct
}
