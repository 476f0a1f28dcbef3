package observability

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/yungbote/recharge-backend/internal/platform/logger"
)

// Metrics is a small Prometheus text-format registry for the API and the
// quest engine. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests *vec
	apiLatency  *HistogramVec
	apiInflight *vec

	questsAssigned  *vec
	questsCompleted *vec
	xpAwarded       *vec
	levelUps        *vec
	catalogCache    *vec
	busPublish      *vec

	aggregateOps       *HistogramVec
	aggregateConflicts *vec
	aggregateRetries   *vec
}

func NewMetrics(log *logger.Logger) *Metrics {
	m := &Metrics{
		apiRequests: newCounterVec("rc_api_requests_total", "Total API requests by method/route/status.", "method", "route", "status"),
		apiLatency: NewHistogramVec(
			"rc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: newGaugeVec("rc_api_inflight_requests", "In-flight API requests."),

		questsAssigned:  newCounterVec("rc_quests_assigned_total", "Assignment rows created by source/mode.", "source", "mode"),
		questsCompleted: newCounterVec("rc_quest_completions_total", "Completion calls by outcome.", "outcome"),
		xpAwarded:       newCounterVec("rc_xp_awarded_total", "XP awarded by profession.", "profession"),
		levelUps:        newCounterVec("rc_level_ups_total", "Tier increases by profession and new niveau.", "profession", "niveau"),
		catalogCache:    newCounterVec("rc_catalog_cache_total", "Quest set cache lookups by result.", "result"),
		busPublish:      newCounterVec("rc_bus_publish_total", "Progression events published by type/status.", "type", "status"),

		aggregateOps: NewHistogramVec(
			"rc_aggregate_operation_duration_seconds",
			"Aggregate write duration by operation/status.",
			[]string{"operation", "status"},
			[]float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		),
		aggregateConflicts: newCounterVec("rc_aggregate_conflicts_total", "Aggregate compare-and-set conflicts.", "operation"),
		aggregateRetries:   newCounterVec("rc_aggregate_retryable_total", "Aggregate writes that failed with a retryable error.", "operation"),
	}
	if log != nil {
		log.Info("Observability metrics enabled")
	}
	return m
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.questsAssigned, m.questsCompleted, m.xpAwarded, m.levelUps,
		m.catalogCache, m.busPublish,
		m.aggregateOps, m.aggregateConflicts, m.aggregateRetries,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.add(1, method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.add(1)
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.add(-1)
}

func (m *Metrics) AddQuestsAssigned(source, mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.questsAssigned.add(float64(n), source, mode)
}

// ObserveCompletion records one completion call. A zero award counts as a
// suppressed duplicate.
func (m *Metrics) ObserveCompletion(professionSlug string, awarded int64, levelUp bool, niveau int) {
	if m == nil {
		return
	}
	if awarded <= 0 {
		m.questsCompleted.add(1, "suppressed")
		return
	}
	m.questsCompleted.add(1, "awarded")
	m.xpAwarded.add(float64(awarded), professionSlug)
	if levelUp {
		m.levelUps.add(1, professionSlug, strconv.Itoa(niveau))
	}
}

func (m *Metrics) IncCatalogCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.catalogCache.add(1, "hit")
		return
	}
	m.catalogCache.add(1, "miss")
}

func (m *Metrics) IncBusPublish(eventType string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.busPublish.add(1, eventType, status)
}

func (m *Metrics) ObserveAggregateOperation(op, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Observe(dur.Seconds(), op, status)
}

func (m *Metrics) IncAggregateConflict(op string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.add(1, op)
}

func (m *Metrics) IncAggregateRetry(op string) {
	if m == nil {
		return
	}
	m.aggregateRetries.add(1, op)
}

// Value reads a counter or gauge sample; meant for tests.
func (m *Metrics) Value(name string, labels ...string) float64 {
	if m == nil {
		return 0
	}
	for _, v := range []*vec{
		m.apiRequests, m.apiInflight, m.questsAssigned, m.questsCompleted,
		m.xpAwarded, m.levelUps, m.catalogCache, m.busPublish,
		m.aggregateConflicts, m.aggregateRetries,
	} {
		if v.name == name {
			return v.get(labels...)
		}
	}
	return 0
}
