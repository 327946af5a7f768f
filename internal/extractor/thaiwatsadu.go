package extractor

import (
	"regexp"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// thaiWatsadu layers Thai Watsadu specifics over the generic engine.
// Their product URLs carry a numeric SKU segment, and their spec tables
// leak CSS custom-property tokens into dimension, color and material
// captures, so those fields get a second sanitization pass.
type thaiWatsadu struct {
	engine *Engine
}

var thaiWatsaduSKUPattern = regexp.MustCompile(`/sku/(\d+)`)

func newThaiWatsadu(engine *Engine) *thaiWatsadu {
	return &thaiWatsadu{engine: engine}
}

func (t *thaiWatsadu) Fields(html, pageURL string) (models.RawFields, error) {
	fields, err := t.engine.Fields(html, pageURL)
	if err != nil {
		return fields, err
	}

	if m := thaiWatsaduSKUPattern.FindStringSubmatch(pageURL); m != nil {
		if sanitize.IsValidSKU(m[1]) {
			fields.SKU = m[1]
		}
	}

	fields.Dimensions = sanitize.Dimensions(fields.Dimensions)
	fields.Color = sanitize.Color(fields.Color)
	fields.Material = sanitize.Material(fields.Material)

	return fields, nil
}
