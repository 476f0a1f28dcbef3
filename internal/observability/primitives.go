package observability

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// Minimal Prometheus text-format series. Label values are joined into the
// rendered label block, which doubles as the map key.

type collector interface {
	WritePrometheus(w io.Writer) error
}

type family struct {
	name   string
	help   string
	kind   string
	labels []string
}

func (f family) header(w io.Writer) error {
	_, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", f.name, f.help, f.name, f.kind)
	return err
}

func (f family) key(values []string) string {
	if len(f.labels) == 0 {
		return ""
	}
	pairs := make([]string, len(f.labels))
	for i, name := range f.labels {
		v := "unknown"
		if i < len(values) && values[i] != "" {
			v = values[i]
		}
		pairs[i] = name + `="` + labelEscaper.Replace(v) + `"`
	}
	return "{" + strings.Join(pairs, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// vec is a counter or gauge keyed by label values.
type vec struct {
	family
	mu     sync.RWMutex
	values map[string]float64
}

func newCounterVec(name, help string, labels ...string) *vec {
	return &vec{family: family{name, help, "counter", labels}, values: map[string]float64{}}
}

func newGaugeVec(name, help string, labels ...string) *vec {
	return &vec{family: family{name, help, "gauge", labels}, values: map[string]float64{}}
}

func (v *vec) add(delta float64, values ...string) {
	if v == nil {
		return
	}
	k := v.key(values)
	v.mu.Lock()
	v.values[k] += delta
	v.mu.Unlock()
}

func (v *vec) get(values ...string) float64 {
	if v == nil {
		return 0
	}
	k := v.key(values)
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[k]
}

func (v *vec) WritePrometheus(w io.Writer) error {
	if v == nil {
		return nil
	}
	if err := v.header(w); err != nil {
		return err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if len(v.labels) == 0 && len(v.values) == 0 {
		_, err := fmt.Fprintf(w, "%s 0\n", v.name)
		return err
	}
	for _, k := range slices.Sorted(maps.Keys(v.values)) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", v.name, k, v.values[k]); err != nil {
			return err
		}
	}
	return nil
}

var defaultBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// HistogramVec counts observations per upper bound; counts are made
// cumulative only when written.
type HistogramVec struct {
	family
	bounds []float64
	mu     sync.Mutex
	series map[string]*histSeries
}

type histSeries struct {
	perBucket []uint64 // len(bounds)+1, last slot is +Inf
	sum       float64
	count     uint64
}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	bounds := slices.Clone(buckets)
	slices.Sort(bounds)
	return &HistogramVec{family: family{name, help, "histogram", labels}, bounds: bounds, series: map[string]*histSeries{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	k := h.key(values)
	// first bound >= v; len(bounds) lands in +Inf
	idx, _ := slices.BinarySearch(h.bounds, v)

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.series[k]
	if s == nil {
		s = &histSeries{perBucket: make([]uint64, len(h.bounds)+1)}
		h.series[k] = s
	}
	s.perBucket[idx]++
	s.sum += v
	s.count++
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := h.header(w); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, k := range slices.Sorted(maps.Keys(h.series)) {
		s := h.series[k]
		var cum uint64
		for i, n := range s.perBucket {
			cum += n
			le := "+Inf"
			if i < len(h.bounds) {
				le = strconv.FormatFloat(h.bounds[i], 'g', -1, 64)
			}
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, le), cum); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n", h.name, k, s.sum, h.name, k, s.count); err != nil {
			return err
		}
	}
	return nil
}

func withLe(labels, le string) string {
	if labels == "" {
		return `{le="` + le + `"}`
	}
	return labels[:len(labels)-1] + `,le="` + le + `"}`
}
