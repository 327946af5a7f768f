package extractor

import (
	"regexp"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// homePro rides on the generic engine; HomePro pages are close enough to
// the common layout that only the numeric URL SKU needs special handling.
type homePro struct {
	engine *Engine
}

var homeProSKUPattern = regexp.MustCompile(`(\d{7,})\.html`)

func newHomePro(engine *Engine) *homePro {
	return &homePro{engine: engine}
}

func (h *homePro) Fields(html, pageURL string) (models.RawFields, error) {
	fields, err := h.engine.Fields(html, pageURL)
	if err != nil {
		return fields, err
	}

	if fields.SKU == "" {
		if m := homeProSKUPattern.FindStringSubmatch(pageURL); m != nil {
			if sanitize.IsValidSKU(m[1]) {
				fields.SKU = m[1]
			}
		}
	}
	return fields, nil
}
