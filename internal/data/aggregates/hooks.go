package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/siteproof-backend/internal/observability"
)

// Hooks captures write-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncTransient(name string)
	ObserveAssetWrite(assetType string, replayed bool)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncTransient(string)                            {}
func (noopHooks) ObserveAssetWrite(string, bool)                 {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks creates hooks backed by the Prometheus metrics set.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveWrite(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string) {
	h.metrics.IncWriteConflict(strings.TrimSpace(name))
}

func (h *observabilityHooks) IncTransient(name string) {
	h.metrics.IncWriteTransient(strings.TrimSpace(name))
}

func (h *observabilityHooks) ObserveAssetWrite(assetType string, replayed bool) {
	h.metrics.IncAssetWrite(assetType, replayed)
}
