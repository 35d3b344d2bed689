// Package generator orchestrates report generation across the HTML,
// PDF and flipbook targets.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/finstrategist/stockreport/internal/platform/httpx"
	"github.com/finstrategist/stockreport/internal/render"
	"github.com/finstrategist/stockreport/internal/settings"
	"github.com/finstrategist/stockreport/internal/stockdata"
)

// Target identifies one output type. Dispatch is always through the
// explicit table below, never by name construction.
type Target string

// Known targets.
const (
	TargetHTML     Target = "html"
	TargetPDF      Target = "pdf"
	TargetFlipbook Target = "flipbook"
)

// AllTargets lists every target in generation order.
var AllTargets = []Target{TargetHTML, TargetPDF, TargetFlipbook}

// targetLabels are the display names used in batch failure entries.
var targetLabels = map[Target]string{
	TargetHTML:     "HTML",
	TargetPDF:      "PDF",
	TargetFlipbook: "Flipbook",
}

// ParseTargets resolves a report_type value into the target list. The
// sentinel "all" expands to every target.
func ParseTargets(reportType string) ([]Target, error) {
	switch Target(reportType) {
	case TargetHTML, TargetPDF, TargetFlipbook:
		return []Target{Target(reportType)}, nil
	}
	if reportType == "all" {
		return AllTargets, nil
	}
	return nil, fmt.Errorf("%w: unknown report type: %s", httpx.ErrValidation, reportType)
}

// Converter is the black-box HTML-to-PDF boundary.
type Converter interface {
	ConvertToFile(ctx context.Context, html, outPath string) error
}

// ConfigSource resolves stored configurations. The orchestrator never
// touches raw storage itself.
type ConfigSource interface {
	List() ([]settings.ReportConfig, error)
	GetByID(id int) (settings.ReportConfig, error)
}

// Service generates report artifacts from resolved configurations.
type Service struct {
	configs    ConfigSource
	converter  Converter
	dataDir    string
	imagesDir  string
	reportsDir string
	logger     *slog.Logger
}

// NewService wires the orchestrator.
func NewService(configs ConfigSource, converter Converter, dataDir, imagesDir, reportsDir string, logger *slog.Logger) *Service {
	return &Service{
		configs:    configs,
		converter:  converter,
		dataDir:    dataDir,
		imagesDir:  imagesDir,
		reportsDir: reportsDir,
		logger:     logger,
	}
}

// Result reports one generation call. Targets succeed or fail
// independently; partial success is a valid outcome.
type Result struct {
	Success   bool              `json:"success"`
	Generated map[Target]string `json:"generated"`
	Failed    map[Target]string `json:"failed"`
}

// Generate renders the requested targets for one configuration. A
// failure in one target never blocks the others. Generation only reads
// the configuration; it mutates no stored state.
func (s *Service) Generate(ctx context.Context, cfg settings.ReportConfig, targets []Target) Result {
	if len(targets) == 0 {
		targets = AllTargets
	}
	result := Result{
		Generated: make(map[Target]string),
		Failed:    make(map[Target]string),
	}

	if err := os.MkdirAll(s.reportsDir, 0o755); err != nil {
		for _, t := range targets {
			result.Failed[t] = fmt.Sprintf("create reports directory: %v", err)
		}
		return result
	}

	// One loader per call: all targets share a single read of the
	// data source, and the cache dies with the request.
	loader := stockdata.NewLoader()
	renderer := render.NewRenderer(render.NewEngine(), s.imagesDir)

	dispatch := map[Target]func(context.Context, settings.ReportConfig, []stockdata.Record, *render.Renderer) (string, error){
		TargetHTML:     s.generateHTML,
		TargetPDF:      s.generatePDF,
		TargetFlipbook: s.generateFlipbook,
	}

	for _, t := range targets {
		fn, ok := dispatch[t]
		if !ok {
			result.Failed[t] = fmt.Sprintf("unknown target: %s", t)
			continue
		}
		records, err := loader.Load(filepath.Join(s.dataDir, cfg.DataSource), cfg.NumberOfStocks)
		if err != nil {
			result.Failed[t] = err.Error()
			continue
		}
		file, err := fn(ctx, cfg, records, renderer)
		if err != nil {
			s.logger.Warn("generate target failed",
				slog.String("report", cfg.FileName),
				slog.String("target", string(t)),
				slog.Any("error", err))
			result.Failed[t] = err.Error()
			continue
		}
		result.Generated[t] = file
	}

	result.Success = len(result.Failed) == 0 && len(result.Generated) > 0
	return result
}

func (s *Service) generateHTML(_ context.Context, cfg settings.ReportConfig, records []stockdata.Record, r *render.Renderer) (string, error) {
	file := cfg.SanitizedName() + ".html"
	out := r.HTML(cfg, records)
	if err := os.WriteFile(filepath.Join(s.reportsDir, file), []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("write html report: %w", err)
	}
	return file, nil
}

func (s *Service) generatePDF(ctx context.Context, cfg settings.ReportConfig, records []stockdata.Record, r *render.Renderer) (string, error) {
	file := cfg.SanitizedName() + ".pdf"
	doc := r.PDFDocument(cfg, records)
	if err := s.converter.ConvertToFile(ctx, doc, filepath.Join(s.reportsDir, file)); err != nil {
		return "", err
	}
	return file, nil
}

func (s *Service) generateFlipbook(_ context.Context, cfg settings.ReportConfig, records []stockdata.Record, r *render.Renderer) (string, error) {
	file := cfg.SanitizedName() + "_flipbook.html"
	out := r.Flipbook(cfg, records)
	if err := os.WriteFile(filepath.Join(s.reportsDir, file), []byte(out), 0o644); err != nil {
		return "", fmt.Errorf("write flipbook report: %w", err)
	}
	return file, nil
}

// BatchResult aggregates a multi-configuration run. Generated is keyed
// by target and lists the titles of configurations that produced that
// target; Failed carries one entry per failed item.
type BatchResult struct {
	Generated map[Target][]string `json:"generated"`
	Failed    []string            `json:"failed"`
}

// GenerateBatch regenerates every target for each configuration ID.
// Each ID resolves independently; an unknown ID contributes a failure
// entry and never aborts the batch.
func (s *Service) GenerateBatch(ctx context.Context, ids []int) BatchResult {
	batch := BatchResult{
		Generated: map[Target][]string{TargetHTML: {}, TargetPDF: {}, TargetFlipbook: {}},
		Failed:    []string{},
	}
	for _, id := range ids {
		cfg, err := s.configs.GetByID(id)
		if err != nil {
			batch.Failed = append(batch.Failed, fmt.Sprintf("Config ID %d (not found)", id))
			continue
		}
		result := s.Generate(ctx, cfg, AllTargets)
		for _, t := range AllTargets {
			if _, ok := result.Generated[t]; ok {
				batch.Generated[t] = append(batch.Generated[t], cfg.Title)
			} else if msg, ok := result.Failed[t]; ok {
				batch.Failed = append(batch.Failed, fmt.Sprintf("%s (%s: %s)", cfg.Title, targetLabels[t], msg))
			}
		}
	}
	return batch
}

// GenerateAll expands the "all" sentinel to every stored configuration
// in store order. An empty store is a reportable failure, not a vacuous
// success.
func (s *Service) GenerateAll(ctx context.Context) (BatchResult, error) {
	reports, err := s.configs.List()
	if err != nil {
		return BatchResult{}, err
	}
	if len(reports) == 0 {
		return BatchResult{}, fmt.Errorf("%w: no configurations found", httpx.ErrNotFound)
	}
	ids := make([]int, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}
	return s.GenerateBatch(ctx, ids), nil
}
