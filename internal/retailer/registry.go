package retailer

import (
	"net/url"
	"strings"
)

// Registry maps domain substrings to retailer display names. One instance
// is built at startup and shared by the extractor dispatcher and the
// record builder so the two can never drift apart.
type Registry struct {
	domains map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		domains: map[string]string{
			"advice.co.th":      "Advice",
			"banana-it":         "Banana IT",
			"boonthavorn.com":   "Boonthavorn",
			"central.co.th":     "Central",
			"dohome.co.th":      "DoHome",
			"globalhouse.co.th": "Global House",
			"homepro.co.th":     "HomePro",
			"jaymart.co.th":     "Jaymart",
			"lazada.co.th":      "Lazada",
			"megahome.co.th":    "Mega Home",
			"powerbuy.co.th":    "Power Buy",
			"shopee.co.th":      "Shopee",
			"thaiwatsadu.com":   "Thai Watsadu",
		},
	}
}

// NameForURL returns the display name of the retailer serving rawURL.
// Unknown domains fall back to a title-cased second-level domain label,
// e.g. "https://shop.example.com/p/1" -> "Example".
func (r *Registry) NameForURL(rawURL string) string {
	if rawURL == "" {
		return "Unknown Retailer"
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return "Unknown Retailer"
	}

	domain := strings.ToLower(parsed.Hostname())
	domain = strings.TrimPrefix(domain, "www.")

	for pattern, name := range r.domains {
		if strings.Contains(domain, pattern) {
			return name
		}
	}

	parts := strings.Split(domain, ".")
	if len(parts) >= 2 {
		return titleCase(parts[len(parts)-2])
	}
	return titleCase(domain)
}

// Known reports whether rawURL belongs to a registered retailer domain.
func (r *Registry) Known(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	domain := strings.ToLower(parsed.Hostname())
	for pattern := range r.domains {
		if strings.Contains(domain, pattern) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
