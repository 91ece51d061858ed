// Package metrics holds Prometheus collectors for record encoding.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Kinds used as the "kind" label.
const (
	KindClaim       = "claim"
	KindRecord      = "record"
	KindEndorsement = "endorsement"
	KindMultiMap    = "multimap"
	KindAttestation = "attestation"
)

// Metrics holds the collectors for the records service.
type Metrics struct {
	EncodedTotal        *prometheus.CounterVec   // encodings by kind and format
	DecodeFailuresTotal *prometheus.CounterVec   // rejected buffers by kind
	EncodedBytes        *prometheus.HistogramVec // encoded size by kind
	BatchDuration       prometheus.Histogram
	SignaturesTotal     *prometheus.CounterVec // signing attempts by result
}

// New registers the collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		EncodedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valu_records_encoded_total",
			Help: "Total number of records encoded, labeled by kind and format",
		}, []string{"kind", "format"}),
		DecodeFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valu_records_decode_failures_total",
			Help: "Total number of buffers that failed to decode, labeled by kind",
		}, []string{"kind"}),
		EncodedBytes: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "valu_records_encoded_bytes",
			Help:    "Size of encoded records in bytes, labeled by kind",
			Buckets: prometheus.ExponentialBuckets(32, 2, 10),
		}, []string{"kind"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "valu_records_batch_duration_seconds",
			Help:    "Duration of batch claim issuance in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		SignaturesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "valu_records_signatures_total",
			Help: "Total number of endorsement signing attempts, labeled by result",
		}, []string{"result"}),
	}
}

// RecordEncoded counts one encoding of size bytes.
func (m *Metrics) RecordEncoded(kind, format string, size int) {
	m.EncodedTotal.WithLabelValues(kind, format).Inc()
	m.EncodedBytes.WithLabelValues(kind).Observe(float64(size))
}

func (m *Metrics) RecordDecodeFailure(kind string) {
	m.DecodeFailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveBatchDuration(seconds float64) {
	m.BatchDuration.Observe(seconds)
}

// RecordSignature counts a signing attempt as "ok" or "error".
func (m *Metrics) RecordSignature(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SignaturesTotal.WithLabelValues(result).Inc()
}
