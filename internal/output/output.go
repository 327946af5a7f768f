// Package output writes extracted product records to files in JSON,
// JSON Lines or CSV form.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/siamscrape/product-scraper/internal/models"
)

// Writer emits product records to a sink. Close flushes any buffered
// framing (the JSON array close bracket, CSV buffers).
type Writer interface {
	Write(rec *models.ProductRecord) error
	Close() error
}

// New returns a writer for the given format: "json", "jsonl" or "csv".
func New(format string, w io.Writer) (Writer, error) {
	switch strings.ToLower(format) {
	case "json":
		return &jsonWriter{w: w}, nil
	case "jsonl":
		return &jsonlWriter{enc: json.NewEncoder(w)}, nil
	case "csv":
		return newCSVWriter(w)
	}
	return nil, fmt.Errorf("unsupported output format: %s", format)
}

// jsonWriter emits one JSON array, streaming records as they arrive.
type jsonWriter struct {
	w     io.Writer
	count int
}

func (j *jsonWriter) Write(rec *models.ProductRecord) error {
	prefix := ",\n  "
	if j.count == 0 {
		prefix = "[\n  "
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if _, err := io.WriteString(j.w, prefix+string(data)); err != nil {
		return err
	}
	j.count++
	return nil
}

func (j *jsonWriter) Close() error {
	if j.count == 0 {
		_, err := io.WriteString(j.w, "[]\n")
		return err
	}
	_, err := io.WriteString(j.w, "\n]\n")
	return err
}

type jsonlWriter struct {
	enc *json.Encoder
}

func (j *jsonlWriter) Write(rec *models.ProductRecord) error {
	return j.enc.Encode(rec)
}

func (j *jsonlWriter) Close() error {
	return nil
}

var csvHeader = []string{
	"product_key", "url", "retailer", "name", "description", "brand",
	"model", "sku", "category", "volume", "dimensions", "material",
	"color", "current_price", "original_price", "has_discount",
	"discount_amount", "discount_percent", "images", "scraped_at",
}

type csvWriter struct {
	w *csv.Writer
}

func newCSVWriter(w io.Writer) (*csvWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	return &csvWriter{w: cw}, nil
}

func (c *csvWriter) Write(rec *models.ProductRecord) error {
	row := []string{
		rec.ProductKey,
		rec.URL,
		rec.Retailer,
		rec.Name,
		rec.Description,
		rec.Brand,
		rec.Model,
		rec.SKU,
		rec.Category,
		rec.Volume,
		rec.Dimensions,
		rec.Material,
		rec.Color,
		priceString(rec.CurrentPrice),
		priceString(rec.OriginalPrice),
		strconv.FormatBool(rec.HasDiscount),
		strconv.FormatFloat(rec.DiscountAmount, 'f', 2, 64),
		strconv.FormatFloat(rec.DiscountPercent, 'f', 2, 64),
		strings.Join(rec.Images, "; "),
		rec.ScrapedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	return c.w.Write(row)
}

func (c *csvWriter) Close() error {
	c.w.Flush()
	return c.w.Error()
}

func priceString(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

// Summary aggregates the outcome of one scrape run.
type Summary struct {
	Total      int            `json:"total"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Discounted int            `json:"discounted"`
	ByRetailer map[string]int `json:"by_retailer"`
	StartedAt  time.Time      `json:"started_at"`
	Duration   string         `json:"duration"`
}

func NewSummary() *Summary {
	return &Summary{
		ByRetailer: make(map[string]int),
		StartedAt:  time.Now().UTC(),
	}
}

func (s *Summary) Record(rec *models.ProductRecord) {
	s.Total++
	s.Succeeded++
	s.ByRetailer[rec.Retailer]++
	if rec.HasDiscount {
		s.Discounted++
	}
}

func (s *Summary) Failure() {
	s.Total++
	s.Failed++
}

// Finish stamps the duration and writes the summary as indented JSON.
func (s *Summary) Finish(w io.Writer) error {
	s.Duration = time.Since(s.StartedAt).Round(time.Millisecond).String()
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
