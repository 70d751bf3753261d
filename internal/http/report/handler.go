package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfreitas/lucre/internal/alert"
	"github.com/mfreitas/lucre/internal/batch"
	"github.com/mfreitas/lucre/internal/http/snapshot"
	"github.com/mfreitas/lucre/internal/metrics"
	"github.com/mfreitas/lucre/internal/period"
	"github.com/mfreitas/lucre/internal/record"
	"github.com/mfreitas/lucre/internal/report"
)

type Handler struct {
	svc     *report.Service
	targets metrics.Targets
}

func NewHandler(svc *report.Service, targets metrics.Targets) *Handler {
	return &Handler{svc: svc, targets: targets}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/monthly", h.monthly)
	r.Post("/preview", h.preview)
}

type runResponse struct {
	BatchID        uuid.UUID               `json:"batch_id"`
	Snapshot       snapshot.Response       `json:"snapshot"`
	Invalid        []record.Invalid        `json:"invalid_records"`
	MonthOverMonth *snapshot.DeltaResponse `json:"month_over_month"`
	YearOverYear   *snapshot.DeltaResponse `json:"year_over_year"`
	Alerts         []alert.Event           `json:"alerts"`
	LowStock       []alert.Event           `json:"low_stock"`
}

// monthly ingests one batch document, rolls it up into the snapshot for
// the month of as_of (default: now), persists it, and returns the
// snapshot with comparisons, alerts, and the rejected-row list.
func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	in, err := batch.Parse(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in.Targets = h.targets

	in.Now, err = asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Run(r.Context(), in)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, runResponse{
		BatchID:        result.BatchID,
		Snapshot:       snapshot.ToResponse(result.Snapshot),
		Invalid:        result.Invalid,
		MonthOverMonth: snapshot.ToDeltaResponse(result.MonthOverMonth),
		YearOverYear:   snapshot.ToDeltaResponse(result.YearOverYear),
		Alerts:         result.Alerts,
		LowStock:       result.LowStock,
	})
}

type previewResponse struct {
	Snapshot snapshot.Response `json:"snapshot"`
	Invalid  []record.Invalid  `json:"invalid_records"`
}

// preview aggregates a batch over a non-monthly window (day, 7d, 30d,
// 90d) without touching the history store.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	in, err := batch.Parse(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	in.Targets = h.targets

	in.Now, err = asOf(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var window period.Window

	switch r.URL.Query().Get("window") {
	case "", "month":
		window = period.MonthOf(in.Now)
	case "day":
		window = period.DayOf(in.Now)
	case "7d":
		window = period.TrailingDays(in.Now, 7)
	case "30d":
		window = period.TrailingDays(in.Now, 30)
	case "90d":
		window = period.TrailingDays(in.Now, 90)
	default:
		http.Error(w, "unknown window", http.StatusBadRequest)
		return
	}

	snap, invalid := h.svc.Preview(in, window)

	writeJSON(w, http.StatusOK, previewResponse{
		Snapshot: snapshot.ToResponse(snap),
		Invalid:  invalid,
	})
}

// asOf reads the optional as_of query parameter, allowing past months
// to be recomputed from a replayed batch.
func asOf(r *http.Request) (time.Time, error) {
	s := r.URL.Query().Get("as_of")
	if s == "" {
		return time.Now().UTC(), nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}

	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
