package service

import (
	"context"

	"valu/internal/claim"
	"valu/internal/endorsement"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/vdxf"
)

// DecodeClaims reads a content multi-map and unpacks every entry under the
// generic claim key. Document entries are read in the configured document
// format.
func (s *Service) DecodeClaims(ctx context.Context, b []byte) (out []claim.Stored, err error) {
	ctx, span := s.startDecode(ctx, metrics.KindMultiMap, b)
	defer func() { span.End(err) }()

	m, err := vdxf.DecodeContentMultiMap(b, s.cfg.Registry)
	if err != nil {
		return nil, s.decodeFailed(ctx, metrics.KindMultiMap, err)
	}
	recordFormat := claim.FormatDocument
	if s.cfg.Format == claim.FormatDocumentTagged {
		recordFormat = claim.FormatDocumentTagged
	}
	out, err = claim.UnpackClaims(m, claim.UnpackOptions{
		RecordFormat: recordFormat,
		Mapping:      s.cfg.Mapping,
		Registry:     s.cfg.Registry,
	})
	if err != nil {
		return nil, s.decodeFailed(ctx, metrics.KindClaim, err)
	}
	return out, nil
}

// DecodeClaim reads one descriptor-sequence claim of type t.
func (s *Service) DecodeClaim(ctx context.Context, t claim.Type, b []byte) (c *claim.Claim, err error) {
	ctx, span := s.startDecode(ctx, metrics.KindClaim, b)
	defer func() { span.End(err) }()

	c, err = claim.DecodeClaim(t, b, s.cfg.Registry, claim.WithMapping(s.cfg.Mapping))
	if err != nil {
		return nil, s.decodeFailed(ctx, metrics.KindClaim, err)
	}
	return c, nil
}

// DecodeRecord reads one document record in format f.
func (s *Service) DecodeRecord(ctx context.Context, f claim.Format, b []byte) (r *claim.Record, err error) {
	ctx, span := s.startDecode(ctx, metrics.KindRecord, b)
	defer func() { span.End(err) }()

	r, err = claim.DecodeRecord(b, f, s.cfg.Mapping)
	if err != nil {
		return nil, s.decodeFailed(ctx, metrics.KindRecord, err)
	}
	return r, nil
}

// DecodeEndorsement reads one endorsement.
func (s *Service) DecodeEndorsement(ctx context.Context, b []byte) (e *endorsement.Endorsement, err error) {
	ctx, span := s.startDecode(ctx, metrics.KindEndorsement, b)
	defer func() { span.End(err) }()

	e, err = endorsement.Decode(b, s.cfg.Registry)
	if err != nil {
		return nil, s.decodeFailed(ctx, metrics.KindEndorsement, err)
	}
	return e, nil
}

func (s *Service) startDecode(ctx context.Context, kind string, b []byte) (context.Context, tracer.Span) {
	return s.tracer.Start(ctx, tracer.SpanDecode,
		tracer.String(tracer.AttrKind, kind),
		tracer.Int(tracer.AttrBytes, len(b)),
		tracer.String(tracer.AttrDigest, tracer.Digest(b)),
	)
}

func (s *Service) decodeFailed(ctx context.Context, kind string, err error) error {
	s.recordDecodeFailure(kind)
	s.logger.WarnContext(ctx, "decode failed", "kind", kind, "error", err)
	return err
}
