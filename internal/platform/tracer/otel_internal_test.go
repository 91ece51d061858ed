package tracer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"

	dErrors "valu/pkg/domain-errors"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  dErrors.Code
		fault bool
	}{
		{"domain", dErrors.New(dErrors.CodeUnsupportedType, "x"), dErrors.CodeUnsupportedType, false},
		{"wrapped domain", fmt.Errorf("decode: %w", dErrors.ErrMalformedBuffer), dErrors.CodeMalformedBuffer, false},
		{"invariant", dErrors.New(dErrors.CodeInvariantViolation, "len"), dErrors.CodeInvariantViolation, true},
		{"canceled", context.Canceled, "canceled", false},
		{"plain", errors.New("boom"), dErrors.CodeInternal, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := errorCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.fault, isFault(code))
		})
	}
}

func TestToOTelDropsUnsupportedValues(t *testing.T) {
	got := toOTel([]Attribute{
		String(AttrKind, "claim"),
		Bool(AttrSigned, true),
		Int(AttrBytes, 3),
		{Key: "ratio", Value: 0.5},
	})
	assert.Equal(t, []attribute.KeyValue{
		attribute.String(AttrKind, "claim"),
		attribute.Bool(AttrSigned, true),
		attribute.Int(AttrBytes, 3),
	}, got)
	assert.Empty(t, toOTel(nil))
}
