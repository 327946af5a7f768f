package extractor

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/siamscrape/product-scraper/internal/pricing"
)

// jsonLDProduct holds the fields a schema.org Product block can
// contribute. It is the highest-priority extraction source.
type jsonLDProduct struct {
	Name          string
	Description   string
	Brand         string
	Model         string
	SKU           string
	Category      string
	CurrentPrice  *float64
	OriginalPrice *float64
	Images        []string
}

func (p *jsonLDProduct) empty() bool {
	return p.Name == "" && p.Description == "" && p.Brand == "" &&
		p.Model == "" && p.SKU == "" && p.Category == "" &&
		p.CurrentPrice == nil && p.OriginalPrice == nil && len(p.Images) == 0
}

// parseJSONLD scans all <script type="application/ld+json"> blocks and
// merges every Product / ProductModel object found, including @graph
// members. Malformed blocks are skipped, never fatal.
func parseJSONLD(html string) *jsonLDProduct {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	product := &jsonLDProduct{}
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		switch v := data.(type) {
		case map[string]any:
			if isProductType(v["@type"]) {
				product.merge(v)
			}
			if graph, ok := v["@graph"].([]any); ok {
				for _, item := range graph {
					if obj, ok := item.(map[string]any); ok && isProductType(obj["@type"]) {
						product.merge(obj)
					}
				}
			}
		case []any:
			for _, item := range v {
				if obj, ok := item.(map[string]any); ok && isProductType(obj["@type"]) {
					product.merge(obj)
				}
			}
		}
	})

	if product.empty() {
		return nil
	}
	return product
}

func isProductType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Product" || v == "ProductModel"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && (s == "Product" || s == "ProductModel") {
				return true
			}
		}
	}
	return false
}

func (p *jsonLDProduct) merge(data map[string]any) {
	setIfEmpty(&p.Name, stringValue(data["name"]))
	setIfEmpty(&p.Description, stringValue(data["description"]))
	setIfEmpty(&p.Model, stringValue(data["model"]))
	setIfEmpty(&p.SKU, stringValue(data["sku"]))

	// brand may be {"name": "Acme"} or a bare string
	switch brand := data["brand"].(type) {
	case map[string]any:
		setIfEmpty(&p.Brand, stringValue(brand["name"]))
	case string:
		setIfEmpty(&p.Brand, brand)
	}

	switch category := data["category"].(type) {
	case []any:
		if len(category) > 0 {
			setIfEmpty(&p.Category, stringValue(category[0]))
		}
	case string:
		setIfEmpty(&p.Category, category)
	}

	var offer map[string]any
	switch offers := data["offers"].(type) {
	case map[string]any:
		offer = offers
	case []any:
		if len(offers) > 0 {
			offer, _ = offers[0].(map[string]any)
		}
	}
	if offer != nil {
		if p.CurrentPrice == nil {
			p.CurrentPrice = priceValue(offer["price"])
		}
		if p.OriginalPrice == nil {
			p.OriginalPrice = priceValue(offer["highPrice"])
		}
	}

	switch images := data["image"].(type) {
	case []any:
		for _, img := range images {
			if s := stringValue(img); s != "" {
				p.Images = append(p.Images, s)
			}
		}
	case string:
		if images != "" {
			p.Images = append(p.Images, images)
		}
	}
}

func setIfEmpty(dst *string, value string) {
	if *dst == "" && value != "" {
		*dst = strings.TrimSpace(value)
	}
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

// priceValue handles JSON-LD prices arriving as either a number or a
// string like "19.99".
func priceValue(v any) *float64 {
	switch value := v.(type) {
	case float64:
		return &value
	case string:
		if parsed, ok := pricing.ParsePrice(value); ok {
			return &parsed
		}
	}
	return nil
}
