package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/review-risk/internal/analyze"
	"github.com/sells-group/review-risk/internal/features"
	"github.com/sells-group/review-risk/internal/pipeline"
)

// Analyzer is the service behind the handlers.
type Analyzer interface {
	Analyze(ctx context.Context, placeID string, refresh bool) (*pipeline.Report, error)
	Search(ctx context.Context, query string) ([]analyze.Candidate, error)
}

// Pinger reports backing store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds the HTTP handlers.
type Handlers struct {
	svc   Analyzer
	store Pinger
}

// NewHandlers creates Handlers. store may be nil.
func NewHandlers(svc Analyzer, store Pinger) *Handlers {
	return &Handlers{svc: svc, store: store}
}

type analyzeRequest struct {
	PlaceID string `json:"place_id"`
	Refresh bool   `json:"refresh,omitempty"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// Health reports liveness and store reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok", "store": "ok"}
	if h.store == nil {
		status["store"] = "unavailable"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			status["store"] = "unavailable"
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// Analyze scores one place.
func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	report, err := h.svc.Analyze(r.Context(), req.PlaceID, req.Refresh)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Search lists venue candidates for ?query=.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.svc.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		mfe    *features.MissingFieldError
		acqErr *analyze.AcquisitionError
		upErr  *analyze.UpstreamError
	)

	status := http.StatusInternalServerError
	msg := "internal error"
	switch {
	case errors.Is(err, analyze.ErrInvalidPlaceID):
		status, msg = http.StatusBadRequest, "place_id is required"
	case errors.Is(err, analyze.ErrQueryTooShort):
		status, msg = http.StatusBadRequest, "query must be at least 2 characters"
	case errors.As(err, &mfe):
		status, msg = http.StatusUnprocessableEntity, "review data is malformed"
	case errors.As(err, &acqErr):
		status, msg = http.StatusBadGateway, "review acquisition failed"
	case errors.As(err, &upErr):
		status, msg = http.StatusBadGateway, "search failed"
	case errors.Is(err, analyze.ErrStoreUnavailable):
		status, msg = http.StatusServiceUnavailable, "store unavailable"
	case errors.Is(err, analyze.ErrSearchUnavailable):
		status, msg = http.StatusServiceUnavailable, "search is not configured"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusGatewayTimeout, "request timed out"
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("api: request failed", zap.Int("status", status), zap.Error(err))
	} else {
		zap.L().Warn("api: request rejected", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: msg, Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("api: encode response", zap.Error(err))
	}
}
