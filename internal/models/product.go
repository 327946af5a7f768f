package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ErrMissingURL is returned when a record is built without the one
// mandatory identity field.
var ErrMissingURL = errors.New("product record requires a url")

// MaxImages caps the image list on a record.
const MaxImages = 10

// ProductRecord is the canonical extracted entity. It is built once per
// successful extraction and never mutated afterwards; a re-scrape produces
// a brand-new record.
type ProductRecord struct {
	ProductKey string `json:"product_key"`
	URL        string `json:"url"`
	Retailer   string `json:"retailer"`

	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Brand       string `json:"brand,omitempty"`
	Model       string `json:"model,omitempty"`
	SKU         string `json:"sku,omitempty"`
	Category    string `json:"category,omitempty"`
	Volume      string `json:"volume,omitempty"`
	Dimensions  string `json:"dimensions,omitempty"`
	Material    string `json:"material,omitempty"`
	Color       string `json:"color,omitempty"`

	CurrentPrice  *float64 `json:"current_price"`
	OriginalPrice *float64 `json:"original_price"`
	// Discount fields are always present and consistent: HasDiscount is
	// true iff DiscountAmount > 0, and the amounts are never negative.
	HasDiscount     bool    `json:"has_discount"`
	DiscountAmount  float64 `json:"discount_amount"`
	DiscountPercent float64 `json:"discount_percent"`

	Images    []string  `json:"images"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// RawFields carries the sanitized extractor output into record
// construction. String fields hold "" for absent values; price fields are
// nil when unparseable.
type RawFields struct {
	URL         string
	Retailer    string
	Name        string
	Description string
	Brand       string
	Model       string
	SKU         string
	Category    string
	Volume      string
	Dimensions  string
	Material    string
	Color       string

	CurrentPrice  *float64
	OriginalPrice *float64

	Images []string
}

// NewProductRecord normalizes raw extracted fields into a canonical
// record: trims text, rounds prices, computes the stable product key and
// the discount derivation, and filters images down to absolute http(s)
// URLs. The only hard failure is a missing URL.
func NewProductRecord(raw RawFields, retailer string) (*ProductRecord, error) {
	if strings.TrimSpace(raw.URL) == "" {
		return nil, ErrMissingURL
	}

	rec := &ProductRecord{
		URL:         strings.TrimSpace(raw.URL),
		Retailer:    strings.TrimSpace(raw.Retailer),
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		Brand:       strings.TrimSpace(raw.Brand),
		Model:       strings.TrimSpace(raw.Model),
		SKU:         strings.TrimSpace(raw.SKU),
		Category:    strings.TrimSpace(raw.Category),
		Volume:      strings.TrimSpace(raw.Volume),
		Dimensions:  strings.TrimSpace(raw.Dimensions),
		Material:    strings.TrimSpace(raw.Material),
		Color:       strings.TrimSpace(raw.Color),
		ScrapedAt:   time.Now().UTC(),
	}

	if rec.Retailer == "" {
		rec.Retailer = retailer
	}

	rec.CurrentPrice = roundPrice(raw.CurrentPrice)
	rec.OriginalPrice = roundPrice(raw.OriginalPrice)
	rec.computeDiscount()

	rec.Images = FilterImageURLs(raw.Images)
	rec.ProductKey = ProductKey(rec.URL, rec.Name, rec.Brand, rec.SKU)

	return rec, nil
}

// ProductKey derives the stable identity digest from URL, name, brand and
// SKU. Missing components contribute an empty string, so the key is
// byte-identical across repeated runs on the same input.
func ProductKey(url, name, brand, sku string) string {
	content := fmt.Sprintf("%s:%s:%s:%s", url, name, brand, sku)
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// FilterImageURLs keeps only absolute http(s) URLs, deduplicated in
// first-seen order and capped at MaxImages.
func FilterImageURLs(urls []string) []string {
	images := make([]string, 0, len(urls))
	seen := make(map[string]bool)
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		seen[u] = true
		images = append(images, u)
		if len(images) == MaxImages {
			break
		}
	}
	return images
}

func (r *ProductRecord) computeDiscount() {
	r.HasDiscount = false
	r.DiscountAmount = 0.0
	r.DiscountPercent = 0.0

	if r.CurrentPrice == nil || r.OriginalPrice == nil || *r.OriginalPrice <= 0 {
		return
	}

	amount := round2(*r.OriginalPrice - *r.CurrentPrice)
	if amount <= 0 {
		// A current price above the "original" is treated as no
		// discount, not a negative one.
		return
	}

	r.DiscountAmount = amount
	r.DiscountPercent = round2(amount / *r.OriginalPrice * 100)
	r.HasDiscount = true
}

func roundPrice(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := round2(*p)
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
