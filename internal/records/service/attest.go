package service

import (
	"context"

	"valu/internal/attestation"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/vdxf"
)

// AttestationRequest names the MMR export metadata.
type AttestationRequest struct {
	IdentityFor   string
	Title         string
	PublicAddress string
}

// Attest exports src as MMR data with the title and recipients first.
func (s *Service) Attest(ctx context.Context, src attestation.Source, req AttestationRequest) (data vdxf.MMRData, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanAttestations)
	defer func() { span.End(err) }()

	data, err = attestation.MMRData(s.cfg.Registry, src, req.IdentityFor, req.Title, req.PublicAddress)
	if err != nil {
		return nil, err
	}
	size := 0
	for _, d := range data.Descriptors() {
		size += d.ByteLength()
	}
	span.SetAttributes(tracer.Int("leaves", len(data)))
	s.recordEncoded(metrics.KindAttestation, "mmr", size)
	s.logger.DebugContext(ctx, "attestation exported", "leaves", len(data))
	return data, nil
}
