package tracer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"valu/internal/platform/tracer"
	dErrors "valu/pkg/domain-errors"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanIssueClaim,
		tracer.String(tracer.AttrClaimType, "skill"),
		tracer.Bool(tracer.AttrSigned, false),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int(tracer.AttrBytes, 405))
	span.AddEvent(tracer.EventClaimEncoded, tracer.Int("count", 1))
	span.End(errors.New("boom"))
}

func TestOTelTracer_Start(t *testing.T) {
	tr := tracer.NewOTel(noop.NewTracerProvider())

	ctx, span := tr.Start(context.Background(), tracer.SpanDecode,
		tracer.String(tracer.AttrKind, "claim"),
		tracer.Int(tracer.AttrBytes, 12),
		tracer.Attribute{Key: "ignored", Value: struct{}{}},
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.AddEvent(tracer.EventPublished)
	span.End(dErrors.New(dErrors.CodeMalformedBuffer, "short read"))

	assert.NotNil(t, tracer.NewOTel(nil))
}

func TestDigest(t *testing.T) {
	assert.Empty(t, tracer.Digest(nil))
	a := tracer.Digest([]byte{0x01, 0x02})
	assert.Len(t, a, 16)
	assert.Equal(t, a, tracer.Digest([]byte{0x01, 0x02}))
	assert.NotEqual(t, a, tracer.Digest([]byte{0x02, 0x01}))
}

func TestAttributeConstructors(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		attr := tracer.String("key", "value")
		assert.Equal(t, "key", attr.Key)
		assert.Equal(t, "value", attr.Value)
	})

	t.Run("Int", func(t *testing.T) {
		attr := tracer.Int("n", 7)
		assert.Equal(t, 7, attr.Value)
	})

	t.Run("Bool", func(t *testing.T) {
		attr := tracer.Bool(tracer.AttrSigned, true)
		assert.Equal(t, true, attr.Value)
	})
}
