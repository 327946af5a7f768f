package extractor

import (
	"regexp"
	"strings"

	"github.com/siamscrape/product-scraper/internal/sanitize"
)

// rule is one entry in an ordered extraction table: a pattern, the capture
// group holding the value, and an optional post-processor applied to the
// raw capture. Tables are evaluated top to bottom, first acceptable match
// wins, so higher-priority sources (structured data, semantic selectors)
// sit above localized-label and generic fallbacks.
type rule struct {
	re    *regexp.Regexp
	group int
	post  func(string) string
}

// evalRules runs a table against raw HTML and returns the first capture
// that survives tag stripping and the rule's post-processor.
func evalRules(html string, rules []rule) string {
	for _, r := range rules {
		m := r.re.FindStringSubmatch(html)
		if m == nil || len(m) <= r.group {
			continue
		}
		value := sanitize.StripTags(m[r.group])
		if r.post != nil {
			value = r.post(value)
		}
		if value != "" {
			return value
		}
	}
	return ""
}

// Title/heading sources reused by the brand and model text-mining
// fallbacks.
var (
	titlePattern          = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	productTitleH1Pattern = regexp.MustCompile(`(?is)<h1[^>]*class="[^"]*product[^"]*"[^>]*>(.*?)</h1>`)
	h1Pattern             = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
)

var nameRules = []rule{
	{re: regexp.MustCompile(`(?is)<h1[^>]*class="[^"]*product[^"]*"[^>]*>(.*?)</h1>`), group: 1},
	{re: regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`), group: 1},
	{re: regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`), group: 1},
	{re: regexp.MustCompile(`(?i)<meta[^>]*property=["']og:title["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*product-title[^"]*"[^>]*>(.*?)</div>`), group: 1},
	{re: regexp.MustCompile(`(?is)<span[^>]*class="[^"]*product-name[^"]*"[^>]*>(.*?)</span>`), group: 1},
}

var descriptionRules = []rule{
	{re: regexp.MustCompile(`(?i)<meta[^>]*name=["']description["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?i)<meta[^>]*property=["']og:description["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*product-description[^"]*"[^>]*>(.*?)</div>`), group: 1},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*description[^"]*"[^>]*>(.*?)</div>`), group: 1},
	{re: regexp.MustCompile(`(?is)<p[^>]*class="[^"]*description[^"]*"[^>]*>(.*?)</p>`), group: 1},
}

var brandRules = []rule{
	{re: regexp.MustCompile(`(?i)<meta[^>]*property=["']og:brand["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?i)<meta[^>]*name=["']brand["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?is)<span[^>]*class="[^"]*brand[^"]*"[^>]*>(.*?)</span>`), group: 1},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*brand[^"]*"[^>]*>(.*?)</div>`), group: 1},
	{re: regexp.MustCompile(`(?is)<a[^>]*class="[^"]*brand[^"]*"[^>]*>(.*?)</a>`), group: 1},
	{re: regexp.MustCompile(`(?i)ยี่ห้อ[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)แบรนด์[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Brand[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Manufacturer[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)ผู้ผลิต[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)เครื่องหมาย[:\s]*([^\n<]+)`), group: 1},
}

var modelRules = []rule{
	{re: regexp.MustCompile(`(?i)<meta[^>]*property=["']product:model["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?i)<meta[^>]*name=["']model["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?is)<span[^>]*class="[^"]*model[^"]*"[^>]*>(.*?)</span>`), group: 1},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*model[^"]*"[^>]*>(.*?)</div>`), group: 1},
	{re: regexp.MustCompile(`(?i)รุ่น[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)โมเดล[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Model No[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Model Number[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Model[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)แบบ[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)รหัสแบบ[:\s]*([^\n<]+)`), group: 1},
}

// modelTextPatterns mine model-shaped tokens out of title, heading and
// description text when no explicit model markup exists.
var modelTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`รุ่น\s+([A-Za-z0-9\-_]+)`),
	regexp.MustCompile(`โมเดล\s+([A-Za-z0-9\-_]+)`),
	regexp.MustCompile(`(?i)Model[:\s]+([A-Za-z0-9\-_]+)`),
	regexp.MustCompile(`(?i)Type[:\s]+([A-Za-z0-9\-_]+)`),
	regexp.MustCompile(`([A-Z]{2,4}-?\d{3,6})`),
	regexp.MustCompile(`([A-Z][a-z]*-\d+[A-Za-z]*)`),
}

var skuRules = []rule{
	{re: regexp.MustCompile(`(?is)<span[^>]*class="[^"]*sku[^"]*"[^>]*>(.*?)</span>`), group: 1},
	{re: regexp.MustCompile(`(?i)<meta[^>]*property=["']product:retailer_item_id["'][^>]*content=["']([^"']+)["']`), group: 1},
	{re: regexp.MustCompile(`(?i)รหัสสินค้า[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)SKU[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Article No[:\s]*([^\n<]+)`), group: 1},
}

// skuURLPatterns mine SKU candidates out of the page URL path; every
// candidate still has to pass sanitize.IsValidSKU.
var skuURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/product/([^/]+?)(?:/|$)`),
	regexp.MustCompile(`(?i)/item/([^/]+?)(?:/|$)`),
	regexp.MustCompile(`(?i)/p/([^/]+?)(?:/|$)`),
	regexp.MustCompile(`(?i)sku[=/]([^/&]+)`),
	regexp.MustCompile(`/(\d{6,})`),
	regexp.MustCompile(`-([A-Z0-9]{4,})`),
}

var categoryRules = []rule{
	{re: regexp.MustCompile(`(?is)<nav[^>]*class="[^"]*breadcrumb[^"]*"[^>]*>.*?</nav>`), group: 0, post: lastBreadcrumb},
	{re: regexp.MustCompile(`(?is)<div[^>]*class="[^"]*breadcrumb[^"]*"[^>]*>.*?</div>`), group: 0, post: lastBreadcrumb},
	{re: regexp.MustCompile(`(?i)หมวดหมู่[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Category[:\s]*([^\n<]+)`), group: 1},
}

var volumeRules = []rule{
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ลิตร|L|l)\b`), group: 1},
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:มล|ml|ML)\b`), group: 1},
	{re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:แกลลอน|gallon)`), group: 1},
	{re: regexp.MustCompile(`(?i)ความจุ[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Volume[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Capacity[:\s]*([^\n<]+)`), group: 1},
}

var dimensionRules = []rule{
	{re: regexp.MustCompile(`(?i)(\d+(?:\.\d+)?\s*[x×]\s*\d+(?:\.\d+)?\s*[x×]\s*\d+(?:\.\d+)?)\s*(?:ซม|cm|mm|m)`), group: 1},
	{re: regexp.MustCompile(`(?i)ขนาด[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Dimension[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Size[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)\s*ซม`), group: 1},
}

var materialRules = []rule{
	{re: regexp.MustCompile(`(?i)วัสดุ[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Material[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)ผลิตจาก[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)เนื้อวัสดุ[:\s]*([^\n<]+)`), group: 1},
}

var colorRules = []rule{
	{re: regexp.MustCompile(`(?i)สีแบบ[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)สี[:\s]*([^\n<]+)`), group: 1},
	{re: regexp.MustCompile(`(?i)Color[:\s]*([^\n<]+)`), group: 1},
}

// pricePatterns capture price-bearing markup; their text feeds the price
// parser rather than being used directly.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<span[^>]*class="[^"]*price[^"]*"[^>]*>(.*?)</span>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*price[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?i)<meta[^>]*property=["']product:price:amount["'][^>]*content=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<meta[^>]*property=["']og:price:amount["'][^>]*content=["']([^"']+)["']`),
}

var priceTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ราคา[:\s]*([฿$]?[\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)Price[:\s]*([฿$]?[\d,]+\.?\d*)`),
	regexp.MustCompile(`([฿$]?[\d,]+\.?\d*)\s*บาท`),
}

var originalPriceMarkupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<span[^>]*class="[^"]*original[^"]*price[^"]*"[^>]*>(.*?)</span>`),
	regexp.MustCompile(`(?is)<span[^>]*class="[^"]*was[^"]*"[^>]*>(.*?)</span>`),
	regexp.MustCompile(`(?is)<div[^>]*class="[^"]*original-price[^"]*"[^>]*>(.*?)</div>`),
	regexp.MustCompile(`(?i)ราคาปกติ[:\s]*([฿$]?[\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)ปกติ[:\s]*([฿$]?[\d,]+\.?\d*)`),
}

var imagePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<img[^>]*class="[^"]*product[^"]*image[^"]*"[^>]*src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<img[^>]*class="[^"]*product-image[^"]*"[^>]*src=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<meta[^>]*property=["']og:image["'][^>]*content=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<meta[^>]*property=["']product:image["'][^>]*content=["']([^"']+)["']`),
	regexp.MustCompile(`(?i)<img[^>]*src=["']([^"']*product[^"']*)["']`),
}

// lastBreadcrumb keeps the deepest segment of a ">"-delimited breadcrumb
// trail.
func lastBreadcrumb(s string) string {
	if !strings.Contains(s, ">") {
		return s
	}
	parts := strings.Split(s, ">")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return s
}
