package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"valu/internal/claim"
	"valu/internal/platform/config"
	"valu/internal/platform/logger"
	"valu/internal/platform/tracer"
	"valu/internal/records/metrics"
	"valu/internal/records/service"
	"valu/internal/vdxf"
	"valu/internal/vdxf/signer"
)

// app carries what every subcommand needs once the config is loaded.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	registry *vdxf.Registry
	gatherer *prometheus.Registry
	metrics  *metrics.Metrics
	signer   *signer.Signer
}

func newApp(configPath string, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		log:      logger.NewWithWriter(stderr, cfg.LogLevel),
		registry: reg,
		gatherer: prometheus.NewRegistry(),
	}
	a.metrics = metrics.New(a.gatherer)
	if cfg.Signer.Key != "" {
		a.signer, err = signer.FromHex(cfg.Signer.Key, cfg.Signer.SystemID)
		if err != nil {
			return nil, err
		}
	}
	a.log.Debug("configuration loaded",
		"format", cfg.Claim.Format,
		"mapping", cfg.Claim.Mapping,
		"field_order", cfg.Claim.FieldOrder,
		"keys", len(reg.Keys()),
	)
	return a, nil
}

// service returns a records service. A non-empty format overrides the
// configured one.
func (a *app) service(format claim.Format) *service.Service {
	if format == "" {
		format = a.cfg.Claim.Format
	}
	opts := []service.Option{
		service.WithLogger(a.log),
		service.WithMetrics(a.metrics),
		service.WithTracer(tracer.NewOTel(nil)),
	}
	if a.signer != nil {
		opts = append(opts, service.WithSigner(a.signer))
	}
	return service.New(service.Config{
		Format:           format,
		Mapping:          a.cfg.Claim.Mapping,
		FieldOrder:       a.cfg.Claim.FieldOrder,
		BatchConcurrency: a.cfg.BatchConcurrency,
		Registry:         a.registry,
	}, opts...)
}

// writeMetrics dumps the gathered metrics in the text exposition format.
func (a *app) writeMetrics(w io.Writer) error {
	families, err := a.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// readInput returns the named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func writeLine(w io.Writer, s string) error {
	_, err := fmt.Fprintln(w, s)
	return err
}

func writeJSON(w io.Writer, v any) error {
	b, err := vdxf.MarshalOrdered(v)
	if err != nil {
		return err
	}
	return writeLine(w, string(b))
}

func trimHex(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "0x")
}
