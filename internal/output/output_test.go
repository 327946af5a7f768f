package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamscrape/product-scraper/internal/models"
)

func sampleRecord() *models.ProductRecord {
	price := 2790.0
	orig := 3290.0
	return &models.ProductRecord{
		ProductKey:      "00000000deadbeef",
		URL:             "https://www.homepro.co.th/p/1.html",
		Retailer:        "HomePro",
		Name:            "โซฟาหนังแท้",
		CurrentPrice:    &price,
		OriginalPrice:   &orig,
		HasDiscount:     true,
		DiscountAmount:  500,
		DiscountPercent: 15.2,
		Images:          []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
		ScrapedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestJSONLWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("jsonl", &buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec models.ProductRecord
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "HomePro", rec.Retailer)
	assert.True(t, rec.HasDiscount)
}

func TestJSONWriterArray(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("json", &buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Close())

	var records []models.ProductRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestJSONWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("json", &buf)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var records []models.ProductRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	assert.Empty(t, records)
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := New("csv", &buf)
	require.NoError(t, err)

	require.NoError(t, w.Write(sampleRecord()))
	require.NoError(t, w.Close())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, csvHeader, rows[0])
	row := rows[1]
	assert.Equal(t, "00000000deadbeef", row[0])
	assert.Equal(t, "2790.00", row[13])
	assert.Equal(t, "true", row[15])
	assert.Equal(t, "https://cdn.example.com/a.jpg; https://cdn.example.com/b.jpg", row[18])
}

func TestUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	_, err := New("xml", &buf)
	assert.Error(t, err)
}

func TestSummary(t *testing.T) {
	s := NewSummary()
	s.Record(sampleRecord())
	s.Record(sampleRecord())
	s.Failure()

	var buf bytes.Buffer
	require.NoError(t, s.Finish(&buf))

	var got Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Succeeded)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 2, got.Discounted)
	assert.Equal(t, 2, got.ByRetailer["HomePro"])
	assert.NotEmpty(t, got.Duration)
}
