// Package service builds, aggregates, signs, decodes and publishes records.
// It is the only layer above the codecs that logs, traces or counts.
package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"valu/internal/claim"
	"valu/internal/platform/logger"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/vdxf"
	dErrors "valu/pkg/domain-errors"
)

// Publisher hands an identity update to the identity-update builder.
type Publisher interface {
	Publish(ctx context.Context, identity string, update *vdxf.IdentityUpdate) error
}

// Signer signs endorsement bytes.
type Signer interface {
	Sign(msg []byte) (*vdxf.SignatureData, error)
}

// Config selects how claims are encoded and how batches run.
type Config struct {
	Format           claim.Format
	Mapping          claim.Mapping
	FieldOrder       claim.FieldOrder
	BatchConcurrency int
	Registry         *vdxf.Registry
}

const defaultBatchConcurrency = 4

type Option func(*Service)

// Service is safe for concurrent use. Records it returns belong to the
// caller.
type Service struct {
	cfg       Config
	publisher Publisher
	signer    Signer
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    tracer.Tracer
	random    io.Reader
}

func New(cfg Config, opts ...Option) *Service {
	svc := &Service{
		cfg:    cfg,
		logger: logger.Discard(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.cfg.Format == "" {
		svc.cfg.Format = claim.FormatDescriptorSequence
	}
	if svc.cfg.Mapping == "" {
		svc.cfg.Mapping = claim.MappingCurrent
	}
	if svc.cfg.FieldOrder == "" {
		svc.cfg.FieldOrder = claim.ReferenceLast
	}
	if svc.cfg.BatchConcurrency <= 0 {
		svc.cfg.BatchConcurrency = defaultBatchConcurrency
	}
	if svc.cfg.Registry == nil {
		svc.cfg.Registry = vdxf.DefaultRegistry
	}
	return svc
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithSigner enables signed endorsements.
func WithSigner(sig Signer) Option {
	return func(s *Service) {
		s.signer = sig
	}
}

// WithPublisher enables Publish.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// WithRandom replaces crypto/rand as the source of fresh reference ids.
func WithRandom(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.random = &lockedReader{r: r}
		}
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Publish sends update for identity to the configured Publisher.
func (s *Service) Publish(ctx context.Context, identity string, update *vdxf.IdentityUpdate) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanPublish, tracer.String(tracer.AttrIdentityKey, identity))
	defer func() { span.End(err) }()

	if s.publisher == nil {
		return dErrors.New(dErrors.CodeMissingRequiredField, "no publisher configured")
	}
	if identity == "" {
		return dErrors.New(dErrors.CodeMissingRequiredField, "identity is required")
	}
	if update == nil {
		return dErrors.New(dErrors.CodeMissingRequiredField, "identity update is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, identity, update); err != nil {
		s.logger.ErrorContext(ctx, "identity update not published", "identity", identity, "error", err)
		return err
	}
	span.AddEvent(tracer.EventPublished)
	s.logger.InfoContext(ctx, "identity update published", "identity", identity)
	return nil
}

func (s *Service) recordEncoded(kind, format string, size int) {
	if s.metrics != nil {
		s.metrics.RecordEncoded(kind, format, size)
	}
}

func (s *Service) recordDecodeFailure(kind string) {
	if s.metrics != nil {
		s.metrics.RecordDecodeFailure(kind)
	}
}

// lockedReader lets batch workers share one random source.
type lockedReader struct {
	mu sync.Mutex
	r  io.Reader
}

func (l *lockedReader) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Read(p)
}
