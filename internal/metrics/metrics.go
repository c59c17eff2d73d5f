// Package metrics records batch run metrics for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "iflowgraph"

// Document outcomes.
const (
	OutcomeProcessed = "processed"
	OutcomeFailed    = "failed"
	OutcomeFallback  = "fallback"
)

type Batch struct {
	registry      *prometheus.Registry
	documents     *prometheus.CounterVec
	duration      prometheus.Histogram
	nodes         prometheus.Counter
	relationships prometheus.Counter
	lastRun       prometheus.Gauge
}

func NewBatch() *Batch {
	b := &Batch{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents handled by batch runs, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_duration_seconds",
			Help:      "Time to extract and materialize one document.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		nodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_written_total",
			Help:      "Nodes written, including Folder nodes.",
		}),
		relationships: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relationships_written_total",
			Help:      "Relationships written.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last batch run finished.",
		}),
	}
	b.registry.MustRegister(b.documents, b.duration, b.nodes, b.relationships, b.lastRun)
	for _, outcome := range []string{OutcomeProcessed, OutcomeFailed, OutcomeFallback} {
		b.documents.WithLabelValues(outcome)
	}
	return b
}

func (b *Batch) Registry() *prometheus.Registry {
	return b.registry
}

// ObserveDocument records one document. Fallback documents count as processed and
// fallback.
func (b *Batch) ObserveDocument(outcome string, elapsed time.Duration, nodes, relationships int) {
	b.documents.WithLabelValues(outcome).Inc()
	if outcome == OutcomeFallback {
		b.documents.WithLabelValues(OutcomeProcessed).Inc()
	}
	b.duration.Observe(elapsed.Seconds())
	b.nodes.Add(float64(nodes))
	b.relationships.Add(float64(relationships))
}

func (b *Batch) MarkRunFinished(at time.Time) {
	b.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes every metric to path in the text exposition format.
func (b *Batch) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, b.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
