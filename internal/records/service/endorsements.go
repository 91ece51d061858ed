package service

import (
	"context"

	"valu/internal/endorsement"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/vdxf"
	"valu/pkg/domain"
	dErrors "valu/pkg/domain-errors"
)

// EndorsementRequest describes one endorsement. An empty Reference draws a
// fresh one.
type EndorsementRequest struct {
	Endorsee  string
	Message   string
	Reference string
	Metadata  *vdxf.UniValue
	Sign      bool
}

// Endorsed is a built endorsement and its encoding.
type Endorsed struct {
	Endorsement *endorsement.Endorsement
	Encoded     []byte
}

// Endorse builds, optionally signs, and encodes an endorsement.
func (s *Service) Endorse(ctx context.Context, req EndorsementRequest) (out *Endorsed, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEndorse, tracer.Bool(tracer.AttrSigned, req.Sign))
	defer func() { span.End(err) }()

	if req.Endorsee == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "endorsee is required")
	}
	if req.Message == "" {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "endorsement message is required")
	}
	if req.Sign && s.signer == nil {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "no signer configured")
	}
	ref, err := s.reference(req.Reference)
	if err != nil {
		return nil, err
	}

	e := endorsement.New(req.Endorsee, req.Message, ref)
	if req.Metadata != nil {
		e.AttachMetadata(req.Metadata)
	}
	if req.Sign {
		err = e.Sign(s.signer)
		if s.metrics != nil {
			s.metrics.RecordSignature(err)
		}
		if err != nil {
			s.logger.ErrorContext(ctx, "endorsement not signed", "endorsee", req.Endorsee, "error", err)
			return nil, err
		}
	}

	encoded, err := e.MarshalBinary()
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		tracer.Int(tracer.AttrBytes, len(encoded)),
		tracer.String(tracer.AttrDigest, tracer.Digest(encoded)),
	)
	s.recordEncoded(metrics.KindEndorsement, "binary", len(encoded))
	s.logger.DebugContext(ctx, "endorsement issued", "endorsee", req.Endorsee, "signed", req.Sign, "bytes", len(encoded))
	return &Endorsed{Endorsement: e, Encoded: encoded}, nil
}

// AggregateEndorsements packs es under typ. A zero typ means the default
// endorsement type.
func (s *Service) AggregateEndorsements(ctx context.Context, typ vdxf.Identifier, es ...*endorsement.Endorsement) (*vdxf.ContentMultiMap, error) {
	if len(es) == 0 {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "no endorsements to aggregate")
	}
	m, err := endorsement.StoreMultipleEndorsements(typ, es)
	if err != nil {
		return nil, err
	}
	s.recordEncoded(metrics.KindMultiMap, "endorsements", m.ByteLength())
	s.logger.DebugContext(ctx, "endorsements aggregated", "count", len(es), "bytes", m.ByteLength())
	return m, nil
}

func (s *Service) reference(hexRef string) (domain.ReferenceID, error) {
	if hexRef != "" {
		return domain.ParseReferenceID(hexRef)
	}
	return domain.NewReferenceID(s.random)
}
