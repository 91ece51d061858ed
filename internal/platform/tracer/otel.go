package tracer

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	dErrors "valu/pkg/domain-errors"
)

// InstrumentationName names the records tracer on the provider.
const InstrumentationName = "valu/records"

// AttrErrorCode carries the domain error code of a failed span.
const AttrErrorCode = "error.code"

// OTelTracer opens record spans on an OpenTelemetry provider.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTel uses tp, or the global provider when tp is nil.
func NewOTel(tp trace.TracerProvider) *OTelTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &OTelTracer{tracer: tp.Tracer(InstrumentationName)}
}

func (t *OTelTracer) Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(toOTel(attrs)...))
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

// End marks a failed span with the error and its code. Codec failures are
// input problems, so only internal and invariant errors set the Error status.
func (s *otelSpan) End(err error) {
	if err != nil {
		code := errorCode(err)
		s.span.RecordError(err, trace.WithAttributes(attribute.String(AttrErrorCode, string(code))))
		s.span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
		if isFault(code) {
			s.span.SetStatus(codes.Error, err.Error())
		}
	}
	s.span.End()
}

func (s *otelSpan) SetAttributes(attrs ...Attribute) {
	s.span.SetAttributes(toOTel(attrs)...)
}

func (s *otelSpan) AddEvent(name string, attrs ...Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toOTel(attrs)...))
}

func errorCode(err error) dErrors.Code {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return dErrors.CodeInternal
}

func isFault(code dErrors.Code) bool {
	return code == dErrors.CodeInternal || code == dErrors.CodeInvariantViolation
}

// Values other than string, bool and int are dropped.
func toOTel(attrs []Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, a := range attrs {
		switch v := a.Value.(type) {
		case string:
			out = append(out, attribute.String(a.Key, v))
		case bool:
			out = append(out, attribute.Bool(a.Key, v))
		case int:
			out = append(out, attribute.Int(a.Key, v))
		}
	}
	return out
}

var (
	_ Tracer = (*OTelTracer)(nil)
	_ Span   = (*otelSpan)(nil)
)
