package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wanderquiz/beacon/internal/config"
	"github.com/wanderquiz/beacon/internal/event"
	"github.com/wanderquiz/beacon/internal/ingest"
	"github.com/wanderquiz/beacon/internal/metrics"
	"github.com/wanderquiz/beacon/internal/summary"
	"github.com/wanderquiz/beacon/internal/telemetry"
)

const maxBatchSize = 100

// tierHeader tells the dashboard which tier served a response; it exists
// for observability only, callers must not branch on it.
const tierHeader = "X-Beacon-Tier"

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *ingest.Engine
	store  *telemetry.Store
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *ingest.Engine, store *telemetry.Store, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, store: store, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/events", h.ingestEvent)
	h.mux.HandleFunc("POST /v1/events/batch", h.ingestBatch)
	h.mux.HandleFunc("GET /v1/events", h.listEvents)
	h.mux.HandleFunc("GET /v1/events/summary", h.eventSummary)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// POST /v1/events — single-event ingestion. A malformed body is the only
// caller-visible failure; tier failures still answer 200 so clients never
// retry-storm a non-critical path.
func (h *Handler) ingestEvent(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	ev, err := eventFromBody(body, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := h.eng.WriteSync(r.Context(), ev)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recorded": true,
		"event_id": res.EventID,
		"tier":     res.Tier,
		"pending":  res.Pending,
	})
}

// POST /v1/events/batch — async batch ingestion (up to 100 events).
// Rejected events were dropped on a full queue; that is reported for
// observability, not as an error.
func (h *Handler) ingestBatch(w http.ResponseWriter, r *http.Request) {
	var bodies []map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&bodies); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(bodies) == 0 {
		writeError(w, http.StatusBadRequest, "batch must contain at least one event")
		return
	}
	if len(bodies) > maxBatchSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("batch size %d exceeds max %d", len(bodies), maxBatchSize))
		return
	}

	now := time.Now()
	jobID := uuid.New().String()
	queued := 0
	for _, body := range bodies {
		ev, err := eventFromBody(body, now)
		if err != nil {
			continue
		}
		if h.eng.WriteAsync(ev) {
			queued++
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   jobID,
		"total":    len(bodies),
		"queued":   queued,
		"rejected": len(bodies) - queued,
	})
}

// GET /v1/events — the most recent events, newest first.
func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := h.loader.Config().Telemetry.ReadLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := parsePositiveInt(raw); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		} else if n < limit {
			limit = n
		}
	}

	events, tier := h.store.ReadRecent(r.Context(), limit)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].EffectiveTime().After(events[j].EffectiveTime())
	})

	w.Header().Set(tierHeader, string(tier))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
		"tier":   tier,
	})
}

// GET /v1/events/summary?period=day|week|month|year — aggregated funnel
// metrics. Defined only on the remote tier, which holds the retained
// history the aggregates need.
func (h *Handler) eventSummary(w http.ResponseWriter, r *http.Request) {
	if !h.store.RemoteConfigured() {
		writeError(w, http.StatusBadRequest, "advanced analytics unavailable: remote tier not configured")
		return
	}
	period, err := summary.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, tier := h.store.ReadRecent(r.Context(), config.MaxReadLimit)
	w.Header().Set(tierHeader, string(tier))
	writeJSON(w, http.StatusOK, summary.Compute(events, period, time.Now()))
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the ingest queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// eventFromBody builds an Event from the flat ingest body
// { eventName, clientTimestamp?, ...attributes }, stamping an ID and the
// server timestamp.
func eventFromBody(body map[string]interface{}, now time.Time) (event.Event, error) {
	name, _ := body["eventName"].(string)
	ev := event.Event{
		ID:              uuid.New().String(),
		Name:            name,
		ServerTimestamp: now,
	}
	if raw, ok := body["clientTimestamp"].(string); ok {
		// An unparsable producer clock is dropped; server time rules.
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			ev.ClientTimestamp = &ts
		}
	}
	attrs := make(map[string]interface{})
	for k, v := range body {
		if k == "eventName" || k == "clientTimestamp" {
			continue
		}
		attrs[k] = v
	}
	if len(attrs) > 0 {
		ev.Attributes = attrs
	}
	if err := ev.Validate(); err != nil {
		return event.Event{}, err
	}
	return ev, nil
}

func parsePositiveInt(raw string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return n, nil
}
