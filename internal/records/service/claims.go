package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"valu/internal/claim"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/vdxf"
	"valu/pkg/domain"
	dErrors "valu/pkg/domain-errors"
)

// ClaimRequest is one claim to issue.
type ClaimRequest struct {
	Type   claim.Type
	Fields claim.Fields
}

// Issued is a built claim. Exactly one of Claim and Record is set,
// depending on Format.
type Issued struct {
	Type    claim.Type
	Format  claim.Format
	Claim   *claim.Claim
	Record  *claim.Record
	Encoded []byte
}

// Batch is a set of claims packed under the generic claim key.
type Batch struct {
	ID       domain.BatchID
	Items    []*Issued
	MultiMap *vdxf.ContentMultiMap
}

// IdentityUpdate lists every union of the batch as serialized hex under its
// multi-map key.
func (b *Batch) IdentityUpdate() (*vdxf.IdentityUpdate, error) {
	u := vdxf.NewIdentityUpdate()
	for _, key := range b.MultiMap.Keys() {
		for _, value := range b.MultiMap.Get(key) {
			raw, err := value.MarshalBinary()
			if err != nil {
				return nil, err
			}
			if err := u.AddSerialized(key, raw); err != nil {
				return nil, err
			}
		}
	}
	return u, nil
}

// IssueClaim builds and encodes one claim in the configured format.
func (s *Service) IssueClaim(ctx context.Context, req ClaimRequest) (issued *Issued, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssueClaim,
		tracer.String(tracer.AttrClaimType, string(req.Type)),
		tracer.String(tracer.AttrFormat, string(s.cfg.Format)),
	)
	defer func() { span.End(err) }()

	issued, err = s.build(req)
	if err != nil {
		s.logger.WarnContext(ctx, "claim rejected", "claim_type", req.Type, "error", err)
		return nil, err
	}
	span.SetAttributes(
		tracer.Int(tracer.AttrBytes, len(issued.Encoded)),
		tracer.String(tracer.AttrDigest, tracer.Digest(issued.Encoded)),
	)
	s.recordEncoded(kindOf(issued), string(issued.Format), len(issued.Encoded))
	s.logger.DebugContext(ctx, "claim issued", "claim_type", issued.Type, "format", issued.Format, "bytes", len(issued.Encoded))
	return issued, nil
}

// IssueClaims builds every request concurrently, bounded by
// BatchConcurrency, and packs the results in request order. The first
// failure cancels the rest and is returned.
func (s *Service) IssueClaims(ctx context.Context, reqs []ClaimRequest) (batch *Batch, err error) {
	id := domain.NewBatchID()
	ctx, span := s.tracer.Start(ctx, tracer.SpanIssueClaims,
		tracer.String(tracer.AttrBatchID, id.String()),
		tracer.Int(tracer.AttrBatchSize, len(reqs)),
	)
	defer func() { span.End(err) }()

	if len(reqs) == 0 {
		return nil, dErrors.New(dErrors.CodeMissingRequiredField, "batch has no claims")
	}
	start := time.Now()

	items := make([]*Issued, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			issued, err := s.IssueClaim(gctx, req)
			if err != nil {
				return err
			}
			items[i] = issued
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "batch rejected", "batch_id", id.String(), "error", err)
		return nil, err
	}

	m, err := pack(s.cfg.Format, items)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveBatchDuration(time.Since(start).Seconds())
		s.metrics.RecordEncoded(metrics.KindMultiMap, string(s.cfg.Format), m.ByteLength())
	}
	s.logger.InfoContext(ctx, "batch issued", "batch_id", id.String(), "claims", len(items), "bytes", m.ByteLength())
	return &Batch{ID: id, Items: items, MultiMap: m}, nil
}

func (s *Service) build(req ClaimRequest) (*Issued, error) {
	t, err := claim.ParseType(string(req.Type))
	if err != nil {
		return nil, err
	}
	issued := &Issued{Type: t, Format: s.cfg.Format}

	switch s.cfg.Format {
	case claim.FormatDescriptorSequence:
		opts := []claim.Option{claim.WithMapping(s.cfg.Mapping), claim.WithFieldOrder(s.cfg.FieldOrder)}
		if s.random != nil {
			opts = append(opts, claim.WithRandom(s.random))
		}
		c := claim.New(t, opts...)
		if err := c.CreateClaimData(req.Fields); err != nil {
			return nil, err
		}
		issued.Claim = c
		issued.Encoded, err = c.MarshalBinary()
	case claim.FormatDocument, claim.FormatDocumentTagged:
		opts := []claim.RecordOption{claim.WithRecordMapping(s.cfg.Mapping)}
		if s.cfg.Format == claim.FormatDocumentTagged {
			opts = append(opts, claim.Tagged())
		}
		var r *claim.Record
		r, err = claim.RecordFromFields(t, req.Fields, s.random, opts...)
		if err != nil {
			return nil, err
		}
		issued.Record = r
		issued.Encoded, err = r.MarshalBinary()
	default:
		return nil, dErrors.New(dErrors.CodeUnsupportedType, "unknown claim format: "+string(s.cfg.Format))
	}
	if err != nil {
		return nil, err
	}
	return issued, nil
}

func pack(format claim.Format, items []*Issued) (*vdxf.ContentMultiMap, error) {
	if format == claim.FormatDescriptorSequence {
		claims := make([]*claim.Claim, len(items))
		for i, it := range items {
			claims[i] = it.Claim
		}
		return claim.StoreMultipleClaims(claims)
	}
	records := make([]*claim.Record, len(items))
	for i, it := range items {
		records[i] = it.Record
	}
	return claim.StoreMultipleRecords(records)
}

func kindOf(i *Issued) string {
	if i.Record != nil {
		return metrics.KindRecord
	}
	return metrics.KindClaim
}
