package metrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"valu/internal/records/metrics"
)

func TestRecordEncoded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.RecordEncoded(metrics.KindClaim, "descriptor-sequence", 405)
	m.RecordEncoded(metrics.KindClaim, "descriptor-sequence", 200)
	m.RecordEncoded(metrics.KindRecord, "document", 40)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EncodedTotal.WithLabelValues(metrics.KindClaim, "descriptor-sequence")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EncodedTotal.WithLabelValues(metrics.KindRecord, "document")))

	count, err := testutil.GatherAndCount(reg, "valu_records_encoded_bytes")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one histogram series per kind")
}

func TestFailuresAndSignatures(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.RecordDecodeFailure(metrics.KindEndorsement)
	m.RecordSignature(nil)
	m.RecordSignature(errors.New("bad key"))
	m.RecordSignature(nil)
	m.ObserveBatchDuration(0.01)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeFailuresTotal.WithLabelValues(metrics.KindEndorsement)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SignaturesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignaturesTotal.WithLabelValues("error")))
}

func TestNewRegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)
	assert.Panics(t, func() { metrics.New(reg) }, "duplicate registration is rejected")
}
