package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// BulkMetrics records the outcome of bulk create workflows.
type BulkMetrics struct {
	accepted *prometheus.CounterVec
	rejected *prometheus.CounterVec
	items    *prometheus.CounterVec
}

// NewBulkMetrics registers the bulk workflow metrics on the provided registerer.
func NewBulkMetrics(reg prometheus.Registerer) *BulkMetrics {
	if reg == nil {
		return &BulkMetrics{}
	}
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_batches_accepted",
		Help: "Bulk batches committed successfully.",
	}, []string{"resource"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_batches_rejected",
		Help: "Bulk batches rejected before or during the transaction.",
	}, []string{"resource"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_items_written",
		Help: "Rows written by accepted bulk batches.",
	}, []string{"resource"})
	reg.MustRegister(accepted, rejected, items)
	return &BulkMetrics{
		accepted: accepted,
		rejected: rejected,
		items:    items,
	}
}

// IncAccepted counts a committed batch and its written rows.
func (b *BulkMetrics) IncAccepted(resource string, count int) {
	if b == nil || b.accepted == nil {
		return
	}
	b.accepted.WithLabelValues(normalizeLabel(resource)).Inc()
	b.items.WithLabelValues(normalizeLabel(resource)).Add(float64(count))
}

// IncRejected counts a rejected batch.
func (b *BulkMetrics) IncRejected(resource string) {
	if b == nil || b.rejected == nil {
		return
	}
	b.rejected.WithLabelValues(normalizeLabel(resource)).Inc()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
