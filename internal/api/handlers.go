// Package api exposes the extraction pipeline over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/siamscrape/product-scraper/internal/database"
	"github.com/siamscrape/product-scraper/internal/extractor"
	"github.com/siamscrape/product-scraper/internal/models"
	"github.com/siamscrape/product-scraper/internal/scraper"
)

type Handlers struct {
	dispatcher *extractor.Dispatcher
	tracker    *scraper.JobTracker
	records    *database.RecordRepository
	logger     *slog.Logger
}

// NewHandlers wires the HTTP layer. tracker and records may be nil when
// the server runs extraction-only.
func NewHandlers(dispatcher *extractor.Dispatcher, tracker *scraper.JobTracker, records *database.RecordRepository, logger *slog.Logger) *Handlers {
	return &Handlers{
		dispatcher: dispatcher,
		tracker:    tracker,
		records:    records,
		logger:     logger,
	}
}

// ExtractRequest carries pre-fetched page HTML plus its URL.
type ExtractRequest struct {
	HTML string `json:"html"`
	URL  string `json:"url"`
}

type ExtractResponse struct {
	Record *models.ProductRecord `json:"record,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Extract runs the extraction pipeline on caller-supplied HTML.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.URL == "" {
		h.respondError(w, http.StatusBadRequest, "url is required")
		return
	}

	record, err := h.dispatcher.ExtractRecord(req.HTML, req.URL)
	if err != nil {
		if errors.Is(err, extractor.ErrEmptyContent) {
			h.respondError(w, http.StatusUnprocessableEntity, "html is empty")
			return
		}
		h.logger.Error("extraction failed", "url", req.URL, "error", err)
		h.respondJSON(w, http.StatusOK, ExtractResponse{Error: err.Error()})
		return
	}

	h.respondJSON(w, http.StatusOK, ExtractResponse{Record: record})
}

// CreateScrapeJobRequest starts an asynchronous scrape of a URL list.
type CreateScrapeJobRequest struct {
	URLs []string `json:"urls"`
}

type CreateScrapeJobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (h *Handlers) CreateScrapeJob(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		h.respondError(w, http.StatusNotImplemented, "scraping is not enabled on this server")
		return
	}

	var req CreateScrapeJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.URLs) == 0 {
		h.respondError(w, http.StatusBadRequest, "urls is required")
		return
	}

	job := h.tracker.Submit(req.URLs)

	h.respondJSON(w, http.StatusCreated, CreateScrapeJobResponse{
		JobID:  job.ID,
		Status: string(job.Status),
	})
}

func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil {
		h.respondError(w, http.StatusNotImplemented, "scraping is not enabled on this server")
		return
	}

	jobID := chi.URLParam(r, "jobID")
	if jobID == "" {
		h.respondError(w, http.StatusBadRequest, "job ID is required")
		return
	}

	job, err := h.tracker.Get(jobID)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "job not found")
		return
	}

	h.respondJSON(w, http.StatusOK, job)
}

func (h *Handlers) ListRecords(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		h.respondError(w, http.StatusNotImplemented, "record storage is not enabled on this server")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	retailer := r.URL.Query().Get("retailer")

	records, err := h.records.List(r.Context(), retailer, limit, offset)
	if err != nil {
		h.logger.Error("failed to list records", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list records")
		return
	}
	if records == nil {
		records = []*models.ProductRecord{}
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *Handlers) GetRecord(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		h.respondError(w, http.StatusNotImplemented, "record storage is not enabled on this server")
		return
	}

	key := chi.URLParam(r, "productKey")
	record, err := h.records.GetByKey(r.Context(), key)
	if err != nil {
		if errors.Is(err, database.ErrRecordNotFound) {
			h.respondError(w, http.StatusNotFound, "record not found")
			return
		}
		h.logger.Error("failed to get record", "product_key", key, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get record")
		return
	}

	h.respondJSON(w, http.StatusOK, record)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
