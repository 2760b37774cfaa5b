package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/user/announcement-crawler/internal/delivery/http/response"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/usecase"
	"go.uber.org/zap"
)

// StatusReader is the read side of the URL store.
type StatusReader interface {
	Statistics() (entity.Statistics, error)
	Plan() ([]string, error)
	Status(ctx context.Context, url string) (*entity.RecordStatus, error)
}

type Handler struct {
	status StatusReader
	logger *zap.Logger
}

func NewHandler(status StatusReader, logger *zap.Logger) *Handler {
	return &Handler{
		status: status,
		logger: logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.status.Statistics()
	if err != nil {
		h.logger.Error("Failed to get statistics", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, response.NewStatisticsResponse(stats))
}

func (h *Handler) HandleListURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.status.Plan()
	if err != nil {
		h.logger.Error("Failed to get crawl plan", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if urls == nil {
		urls = []string{}
	}
	h.writeJSON(w, http.StatusOK, response.URLListResponse{Count: len(urls), URLs: urls})
}

func (h *Handler) HandleGetURLStatus(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return
	}

	status, err := h.status.Status(r.Context(), rawURL)
	if err != nil {
		if errors.Is(err, usecase.ErrURLNotFound) {
			h.writeJSONError(w, "URL not found in store", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get URL status", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.NewURLStatusResponse(status))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
