package extractor

import (
	"regexp"
	"strings"

	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/pricing"
	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// boonthavorn handles Boonthavorn's CSS-in-JS storefront, whose class
// names are synthesized per build ("quickInfo-infoLabel-x7K"). Field
// values live in a label/value quick-info grid keyed by Thai labels, and
// the pre-discount price is split across per-digit spans. Anything the
// bespoke paths miss falls through to the generic engine.
type boonthavorn struct {
	engine *Engine
}

var (
	boonQuickInfoPattern = regexp.MustCompile(
		`class="quickInfo-infoLabel-[^"]+">([^<]+)</label><label class="quickInfo-infoValue-[^"]+">([^<]+)</label>`)
	boonOldPricePattern = regexp.MustCompile(
		`(?s)productPrice-oldPrice.*?price-currency-[^>]+>บาท</span>((?:<span>[^<]+</span>)+)`)
	boonModelFromName = regexp.MustCompile(`รุ่น\s+([A-Za-z0-9\-_\s]+)`)

	boonSKUFromURL = []*regexp.Regexp{
		regexp.MustCompile(`-(\d+)$`),
		regexp.MustCompile(`/product/([^/]+)`),
		regexp.MustCompile(`/item/([^/]+)`),
	}
)

func newBoonthavorn(engine *Engine) *boonthavorn {
	return &boonthavorn{engine: engine}
}

func (b *boonthavorn) Fields(html, pageURL string) (models.RawFields, error) {
	var fields models.RawFields

	if ld := parseJSONLD(html); ld != nil {
		fields.Name = sanitize.Text(ld.Name, 500)
		fields.Description = sanitize.Text(ld.Description, 2000)
		fields.Brand = sanitize.Brand(ld.Brand)
		fields.SKU = sanitize.SKU(ld.SKU)
		fields.Category = sanitize.Text(ld.Category, 100)
		fields.CurrentPrice = ld.CurrentPrice
		fields.OriginalPrice = ld.OriginalPrice
		fields.Images = ld.Images
	}

	b.applyQuickInfo(html, &fields)

	if fields.OriginalPrice == nil {
		if v, ok := b.oldPrice(html); ok {
			fields.OriginalPrice = &v
		}
	}

	// The model number rides inside the product name ("... รุ่น XR-500").
	if fields.Model == "" && fields.Name != "" {
		if m := boonModelFromName.FindStringSubmatch(fields.Name); m != nil {
			fields.Model = sanitize.Text(m[1], 200)
		}
	}

	if fields.SKU == "" {
		for _, pattern := range boonSKUFromURL {
			m := pattern.FindStringSubmatch(pageURL)
			if m == nil {
				continue
			}
			if sanitize.IsValidSKU(m[1]) {
				fields.SKU = m[1]
				break
			}
		}
	}

	generic, err := b.engine.Fields(html, pageURL)
	if err != nil {
		return fields, err
	}
	return mergeFields(fields, generic), nil
}

// applyQuickInfo walks the label/value grid and maps the Thai labels onto
// record fields.
func (b *boonthavorn) applyQuickInfo(html string, fields *models.RawFields) {
	for _, m := range boonQuickInfoPattern.FindAllStringSubmatch(html, -1) {
		label := strings.TrimSpace(m[1])
		value := strings.TrimSpace(m[2])
		switch label {
		case "สี":
			mergeString(&fields.Color, sanitize.Color(value))
		case "ขนาดสินค้า":
			mergeString(&fields.Dimensions, sanitize.Dimensions(value))
		case "หน่วยนับ":
			mergeString(&fields.Volume, sanitize.Text(value, 50))
		case "ยี่ห้อ":
			mergeString(&fields.Brand, sanitize.Brand(value))
		case "รหัสสินค้า":
			mergeString(&fields.SKU, sanitize.SKU(value))
		}
	}
}

// oldPrice reassembles the pre-discount price from its per-digit spans.
func (b *boonthavorn) oldPrice(html string) (float64, bool) {
	m := boonOldPricePattern.FindStringSubmatch(html)
	if m == nil {
		return 0, false
	}
	digits := sanitize.StripTags(m[1])
	digits = strings.ReplaceAll(digits, " ", "")
	return pricing.ParsePrice(digits)
}
