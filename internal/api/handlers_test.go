package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siamscrape/product-scraper/internal/extractor"
	"github.com/siamscrape/product-scraper/internal/retailer"
)

func testRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := extractor.NewDispatcher(retailer.NewRegistry(), logger)
	return NewRouter(NewHandlers(dispatcher, nil, nil, logger))
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestExtractEndpoint(t *testing.T) {
	router := testRouter()

	resp := postJSON(t, router, "/api/v1/extract", ExtractRequest{
		HTML: `<html><body><h1>โซฟาหนังแท้ 3 ที่นั่ง</h1><span class="price">฿12,900</span></body></html>`,
		URL:  "https://www.homepro.co.th/p/1001234.html",
	})

	require.Equal(t, http.StatusOK, resp.Code)

	var body ExtractResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotNil(t, body.Record)
	assert.Equal(t, "HomePro", body.Record.Retailer)
	assert.Equal(t, "โซฟาหนังแท้ 3 ที่นั่ง", body.Record.Name)
	require.NotNil(t, body.Record.CurrentPrice)
	assert.InDelta(t, 12900, *body.Record.CurrentPrice, 0.001)
}

func TestExtractEndpointEmptyHTML(t *testing.T) {
	router := testRouter()

	resp := postJSON(t, router, "/api/v1/extract", ExtractRequest{
		HTML: "",
		URL:  "https://www.homepro.co.th/p/1.html",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestExtractEndpointMissingURL(t *testing.T) {
	router := testRouter()

	resp := postJSON(t, router, "/api/v1/extract", ExtractRequest{HTML: "<html></html>"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestExtractEndpointBadBody(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScrapeEndpointDisabled(t *testing.T) {
	router := testRouter()

	resp := postJSON(t, router, "/api/v1/scrape", CreateScrapeJobRequest{
		URLs: []string{"https://www.homepro.co.th/p/1.html"},
	})

	assert.Equal(t, http.StatusNotImplemented, resp.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
