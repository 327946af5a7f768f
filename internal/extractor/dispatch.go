package extractor

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/retailer"
)

// ErrEmptyContent is returned when there is no page content to extract
// from.
var ErrEmptyContent = errors.New("empty page content")

// strategy binds a retailer domain substring to its extractor. The table
// is checked in order; the first matching entry wins.
type strategy struct {
	domain    string
	extractor Extractor
}

// Dispatcher routes a page to the right extractor for its retailer and
// builds the final record. Unrecognized retailers get the generic engine.
type Dispatcher struct {
	registry   *retailer.Registry
	engine     *Engine
	strategies []strategy
	logger     *slog.Logger
}

func NewDispatcher(registry *retailer.Registry, logger *slog.Logger) *Dispatcher {
	engine := NewEngine()
	return &Dispatcher{
		registry: registry,
		engine:   engine,
		strategies: []strategy{
			{domain: "thaiwatsadu.com", extractor: newThaiWatsadu(engine)},
			{domain: "boonthavorn.com", extractor: newBoonthavorn(engine)},
			{domain: "megahome.co.th", extractor: newMegaHome(engine)},
			{domain: "homepro.co.th", extractor: newHomePro(engine)},
		},
		logger: logger.With("component", "extractor"),
	}
}

// ExtractorFor returns the extractor responsible for the page URL.
func (d *Dispatcher) ExtractorFor(pageURL string) Extractor {
	lower := strings.ToLower(pageURL)
	for _, s := range d.strategies {
		if strings.Contains(lower, s.domain) {
			return s.extractor
		}
	}
	return d.engine
}

// ExtractRecord runs the full pipeline on one page: route to the
// retailer's extractor, degrade to the generic engine if the specialized
// one fails, then build the canonical record. A specialized failure is
// logged and absorbed; only empty content and a missing URL are fatal.
func (d *Dispatcher) ExtractRecord(html, pageURL string) (*models.ProductRecord, error) {
	if strings.TrimSpace(html) == "" {
		return nil, ErrEmptyContent
	}

	ext := d.ExtractorFor(pageURL)
	fields, err := safeFields(ext, html, pageURL)
	if err != nil {
		d.logger.Warn("specialized extraction failed, using generic engine",
			"url", pageURL, "error", err)
		fields, _ = d.engine.Fields(html, pageURL)
	}
	fields.URL = pageURL

	return models.NewProductRecord(fields, d.registry.NameForURL(pageURL))
}

// safeFields shields the dispatcher from a panicking extractor so one bad
// page cannot take down a batch run.
func safeFields(ext Extractor, html, pageURL string) (fields models.RawFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extractor panic: %v", r)
		}
	}()
	return ext.Fields(html, pageURL)
}

// mergeFields fills every empty field of primary from fallback. It is how
// specialized extractors layer their bespoke results over the generic
// engine's: a specialized value always wins, absence falls through.
func mergeFields(primary, fallback models.RawFields) models.RawFields {
	mergeString(&primary.Name, fallback.Name)
	mergeString(&primary.Description, fallback.Description)
	mergeString(&primary.Brand, fallback.Brand)
	mergeString(&primary.Model, fallback.Model)
	mergeString(&primary.SKU, fallback.SKU)
	mergeString(&primary.Category, fallback.Category)
	mergeString(&primary.Volume, fallback.Volume)
	mergeString(&primary.Dimensions, fallback.Dimensions)
	mergeString(&primary.Material, fallback.Material)
	mergeString(&primary.Color, fallback.Color)

	if primary.CurrentPrice == nil {
		primary.CurrentPrice = fallback.CurrentPrice
	}
	if primary.OriginalPrice == nil {
		primary.OriginalPrice = fallback.OriginalPrice
	}
	if len(primary.Images) == 0 {
		primary.Images = fallback.Images
	}
	return primary
}

func mergeString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}
