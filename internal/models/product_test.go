package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestNewProductRecordRequiresURL(t *testing.T) {
	_, err := NewProductRecord(RawFields{}, "HomePro")
	assert.ErrorIs(t, err, ErrMissingURL)

	_, err = NewProductRecord(RawFields{URL: "   "}, "HomePro")
	assert.ErrorIs(t, err, ErrMissingURL)
}

func TestNewProductRecordDiscount(t *testing.T) {
	rec, err := NewProductRecord(RawFields{
		URL:           "https://www.thaiwatsadu.com/th/product/sku/60287551",
		Name:          "ตู้เย็น 2 ประตู",
		CurrentPrice:  floatPtr(2790),
		OriginalPrice: floatPtr(3290),
	}, "Thai Watsadu")
	require.NoError(t, err)

	assert.True(t, rec.HasDiscount)
	assert.InDelta(t, 500, rec.DiscountAmount, 0.001)
	assert.InDelta(t, 15.2, rec.DiscountPercent, 0.001)
}

func TestNewProductRecordNoNegativeDiscount(t *testing.T) {
	rec, err := NewProductRecord(RawFields{
		URL:           "https://example.com/p/1",
		CurrentPrice:  floatPtr(500),
		OriginalPrice: floatPtr(400),
	}, "Unknown Retailer")
	require.NoError(t, err)

	assert.False(t, rec.HasDiscount)
	assert.Zero(t, rec.DiscountAmount)
	assert.Zero(t, rec.DiscountPercent)
}

func TestNewProductRecordMissingPrices(t *testing.T) {
	rec, err := NewProductRecord(RawFields{
		URL:          "https://example.com/p/1",
		CurrentPrice: floatPtr(990),
	}, "HomePro")
	require.NoError(t, err)

	assert.False(t, rec.HasDiscount)
	assert.Nil(t, rec.OriginalPrice)
	require.NotNil(t, rec.CurrentPrice)
	assert.InDelta(t, 990, *rec.CurrentPrice, 0.001)
}

func TestProductKeyDeterministic(t *testing.T) {
	a := ProductKey("https://example.com/p/1", "Sofa", "Acme", "A-1")
	b := ProductKey("https://example.com/p/1", "Sofa", "Acme", "A-1")
	c := ProductKey("https://example.com/p/2", "Sofa", "Acme", "A-1")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestProductKeyMissingComponents(t *testing.T) {
	a := ProductKey("https://example.com/p/1", "", "", "")
	b := ProductKey("https://example.com/p/1", "", "", "")

	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestFilterImageURLs(t *testing.T) {
	urls := []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/a.jpg",
		"/relative/b.jpg",
		"data:image/png;base64,xyz",
		"http://cdn.example.com/c.jpg",
		"",
	}

	filtered := FilterImageURLs(urls)

	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"http://cdn.example.com/c.jpg",
	}, filtered)
}

func TestFilterImageURLsCap(t *testing.T) {
	var urls []string
	for i := 0; i < 25; i++ {
		urls = append(urls, "https://cdn.example.com/img"+string(rune('a'+i))+".jpg")
	}

	assert.Len(t, FilterImageURLs(urls), MaxImages)
}

func TestNewProductRecordRetailerFallback(t *testing.T) {
	rec, err := NewProductRecord(RawFields{
		URL: "https://www.homepro.co.th/p/123",
	}, "HomePro")
	require.NoError(t, err)
	assert.Equal(t, "HomePro", rec.Retailer)

	rec, err = NewProductRecord(RawFields{
		URL:      "https://www.homepro.co.th/p/123",
		Retailer: "Custom",
	}, "HomePro")
	require.NoError(t, err)
	assert.Equal(t, "Custom", rec.Retailer)
}
