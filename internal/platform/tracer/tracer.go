// Package tracer is the tracing abstraction used by the records service.
//
// Callers depend on the Tracer and Span interfaces only. NoopTracer serves
// tests and the CLI default; OTelTracer adapts OpenTelemetry.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Span is an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed. Call it
	// exactly once, usually via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start opens a span and returns a context carrying it.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanIssueClaim,
	//       tracer.String(tracer.AttrClaimType, "skill"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key/value pair attached to a span.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Digest returns the first 8 bytes of SHA-256(b) as hex, for correlating
// encoded payloads across spans without attaching them.
func Digest(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	hash := sha256.Sum256(b)
	return hex.EncodeToString(hash[:8])
}

// Span names.
const (
	SpanIssueClaim   = "records.issue_claim"
	SpanIssueClaims  = "records.issue_claims"
	SpanIssueRecord  = "records.issue_record"
	SpanEndorse      = "records.endorse"
	SpanDecode       = "records.decode"
	SpanPublish      = "records.publish"
	SpanAttestations = "records.attestations"
)

// Attribute keys.
const (
	AttrBatchID     = "batch_id"
	AttrBatchSize   = "batch.size"
	AttrClaimType   = "claim_type"
	AttrFormat      = "format"
	AttrMapping     = "mapping"
	AttrBytes       = "bytes"
	AttrDigest      = "digest"
	AttrKind        = "kind"
	AttrSigned      = "signed"
	AttrIdentityKey = "identity_key"
)

// Event names.
const (
	EventClaimEncoded = "claim.encoded"
	EventPublished    = "identity_update.published"
)
