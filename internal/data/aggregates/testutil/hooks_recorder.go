package testutil

import (
	"sync"

	"github.com/yungbote/recharge-backend/internal/data/aggregates"
)

// HooksRecorder keeps every outcome an aggregate reports.
type HooksRecorder struct {
	mu       sync.Mutex
	outcomes []aggregates.Outcome
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) Record(o aggregates.Outcome) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.outcomes = append(h.outcomes, o)
}

func (h *HooksRecorder) Outcomes() []aggregates.Outcome {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]aggregates.Outcome(nil), h.outcomes...)
}

// Statuses lists outcome statuses in call order.
func (h *HooksRecorder) Statuses() []string {
	out := []string{}
	for _, o := range h.Outcomes() {
		out = append(out, o.Status)
	}
	return out
}
