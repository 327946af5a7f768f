package extractor

import (
	"regexp"
	"strings"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// megaHome layers MegaHome specifics over the generic engine: their
// titles prepend the store name, model captures frequently pick up bare
// HTML element names, and product URLs end in a numeric /p/ segment.
type megaHome struct {
	engine *Engine
}

var (
	megaHomeNameScrub  = regexp.MustCompile(`(?i)^\s*(?:mega\s*home|เมกาโฮม)\s*[|:\-]?\s*`)
	megaHomeSKUPattern = regexp.MustCompile(`/p/(\d+)`)
)

func newMegaHome(engine *Engine) *megaHome {
	return &megaHome{engine: engine}
}

func (m *megaHome) Fields(html, pageURL string) (models.RawFields, error) {
	fields, err := m.engine.Fields(html, pageURL)
	if err != nil {
		return fields, err
	}

	fields.Name = strings.TrimSpace(megaHomeNameScrub.ReplaceAllString(fields.Name, ""))

	if htmlElementNames[strings.ToLower(fields.Model)] {
		fields.Model = ""
	}

	if sku := megaHomeSKUPattern.FindStringSubmatch(pageURL); sku != nil {
		if sanitize.IsValidSKU(sku[1]) {
			fields.SKU = sku[1]
		}
	}

	fields.Dimensions = sanitize.Dimensions(fields.Dimensions)
	fields.Material = sanitize.Material(fields.Material)

	return fields, nil
}
