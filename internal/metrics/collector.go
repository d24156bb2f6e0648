// Package metrics exposes Prometheus instrumentation for ingestion, retrieval
// and generation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Collector records pipeline metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	ingestsTotal     *prometheus.CounterVec
	ingestDuration   prometheus.Histogram
	documentChunks   prometheus.Gauge
	queriesTotal     *prometheus.CounterVec
	queryDuration    prometheus.Histogram
	generationsTotal *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector creates the collector and registers it with reg. A nil reg
// uses the default registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		ingestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingests_total",
			Help:      "Total number of document ingestions",
		}, []string{"status"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Document ingestion duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		documentChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_chunks",
			Help:      "Number of chunks in the active document",
		}),
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Total number of retrieval queries",
		}, []string{"status"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Retrieval query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		generationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Total number of answer generations",
		}, []string{"status"}),
		logger: logger.With(zap.String("component", "metrics")),
	}
	for _, col := range []prometheus.Collector{
		c.ingestsTotal, c.ingestDuration, c.documentChunks,
		c.queriesTotal, c.queryDuration, c.generationsTotal,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RecordIngest records one ingestion attempt. chunks is only applied on success.
func (c *Collector) RecordIngest(status string, duration time.Duration, chunks int) {
	if c == nil {
		return
	}
	c.ingestsTotal.WithLabelValues(status).Inc()
	c.ingestDuration.Observe(duration.Seconds())
	if status == StatusSuccess {
		c.documentChunks.Set(float64(chunks))
	}
	c.logger.Debug("ingest recorded", zap.String("status", status), zap.Duration("duration", duration))
}

// RecordQuery records one retrieval query.
func (c *Collector) RecordQuery(status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.queriesTotal.WithLabelValues(status).Inc()
	c.queryDuration.Observe(duration.Seconds())
}

// RecordGeneration records one call to the answer generator.
func (c *Collector) RecordGeneration(status string) {
	if c == nil {
		return
	}
	c.generationsTotal.WithLabelValues(status).Inc()
}

// Status maps an error to a status label.
func Status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}
