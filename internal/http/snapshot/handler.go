package snapshot

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mfreitas/lucre/internal/analytics"
	"github.com/mfreitas/lucre/internal/history"
	"github.com/mfreitas/lucre/internal/period"
)

type Handler struct {
	history   *history.Service
	analytics *analytics.Service
}

func NewHandler(hist *history.Service, anl *analytics.Service) *Handler {
	return &Handler{history: hist, analytics: anl}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.series)
	r.Get("/trends", h.trends)
	r.Get("/{period}", h.get)
	r.Get("/{period}/deltas", h.deltas)
}

// series returns the last N months ending at the current month, with
// explicit has_data=false entries for unwritten months.
func (h *Handler) series(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 12)

	entries, err := h.history.Series(r.Context(), period.KeyOf(time.Now()), months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ToSeries(entries))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	key, err := period.Parse(chi.URLParam(r, "period"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.history.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			http.Error(w, "no snapshot for period", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, ToStoredResponse(stored))
}

type deltasResponse struct {
	MonthOverMonth *DeltaResponse `json:"month_over_month"`
	YearOverYear   *DeltaResponse `json:"year_over_year"`
}

// deltas compares a stored month against its preceding month and the
// same month of the prior year. Missing anchors yield null sets.
func (h *Handler) deltas(w http.ResponseWriter, r *http.Request) {
	key, err := period.Parse(chi.URLParam(r, "period"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.history.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			http.Error(w, "no snapshot for period", http.StatusNotFound)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	mom, err := h.analytics.MonthOverMonth(r.Context(), stored.Snapshot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	yoy, err := h.analytics.YearOverYear(r.Context(), stored.Snapshot)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, deltasResponse{
		MonthOverMonth: ToDeltaResponse(mom),
		YearOverYear:   ToDeltaResponse(yoy),
	})
}

type trendPoint struct {
	PeriodKey     string   `json:"period_key"`
	HasData       bool     `json:"has_data"`
	Value         *float64 `json:"value"`
	MovingAverage *float64 `json:"moving_average"`
}

type trendsResponse struct {
	Metric string       `json:"metric"`
	Window int          `json:"window"`
	Points []trendPoint `json:"points"`
}

// trends returns one metric's month series with a trailing moving
// average. The first window−1 positions have no average, and months
// without data contribute nothing to the windows they fall in.
func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	metric, err := analytics.ParseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	months := queryInt(r, "months", 12)
	window := queryInt(r, "window", 3)

	entries, err := h.history.Series(r.Context(), period.KeyOf(time.Now()), months)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	averages := analytics.MovingAverage(entries, metric, window)

	points := make([]trendPoint, len(entries))
	for i, e := range entries {
		points[i] = trendPoint{
			PeriodKey:     e.Key.String(),
			HasData:       e.HasData,
			MovingAverage: averages[i],
		}

		if e.HasData {
			v := analytics.Value(e.Snapshot, metric)
			points[i].Value = &v
		}
	}

	writeJSON(w, http.StatusOK, trendsResponse{Metric: string(metric), Window: window, Points: points})
}

func queryInt(r *http.Request, name string, fallback int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}

	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
