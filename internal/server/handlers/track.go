// internal/server/handlers/track.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"villrein/internal/domain/track"
)

// TrackHandler handles track-related HTTP requests
type TrackHandler struct {
	service track.Service
	logger  *zap.Logger
}

// NewTrackHandler creates a new track handler
func NewTrackHandler(service track.Service, logger *zap.Logger) *TrackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackHandler{
		service: service,
		logger:  logger,
	}
}

// ListYears returns the years that have stored data
func (h *TrackHandler) ListYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.service.Years(r.Context())
	if err != nil {
		h.respondWithServiceError(w, "Failed to list years", err)
		return
	}

	respondWithJSON(w, http.StatusOK, years)
}

// GetYear returns a year's tracks. details is one of full, day or week
// (default day); num narrows the result to one track.
func (h *TrackHandler) GetYear(w http.ResponseWriter, r *http.Request) {
	year := chi.URLParam(r, "year")
	if _, err := strconv.Atoi(year); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	details := track.DetailsDay
	if d := r.URL.Query().Get("details"); d != "" {
		details = track.Details(d)
	}
	if !details.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid details, expected full, day or week", nil)
		return
	}

	var num *int
	if n := r.URL.Query().Get("num"); n != "" {
		parsed, err := strconv.Atoi(n)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid num", err)
			return
		}
		num = &parsed
	}

	tracks, err := h.service.Tracks(r.Context(), year, details, num)
	if err != nil {
		h.respondWithServiceError(w, "Failed to get tracks", err)
		return
	}

	respondWithJSON(w, http.StatusOK, tracks)
}

func (h *TrackHandler) respondWithServiceError(w http.ResponseWriter, message string, err error) {
	if errors.Is(err, track.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Not found", err)
		return
	}

	h.logger.Error(message, zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, message, err)
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	response := map[string]string{"error": message}
	if err != nil && code < 500 {
		response["detail"] = err.Error()
	}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(jsonResponse)
}
