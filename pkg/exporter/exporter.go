package exporter

import (
	"context"
	"fmt"
	"time"

	"mfcexport/pkg/config"
	"mfcexport/pkg/logger"
	"mfcexport/pkg/mfc"
	"mfcexport/pkg/models"
	"mfcexport/pkg/storage"
	"mfcexport/pkg/ui"
)

// Exporter turns a user's collection listing into a CSV export
type Exporter struct {
	client   CatalogClient
	storage  *storage.Manager
	config   *config.Config
	logger   logger.Logger
	progress Progress
}

// Result describes a completed export
type Result struct {
	Username string
	Pages    int
	Figures  int
	Records  []models.FigureRecord
	Skipped  []int
	Path     string
	Duration time.Duration
}

// Summary converts the result for ui.RenderSummary
func (r *Result) Summary() ui.Summary {
	return ui.Summary{
		Username: r.Username,
		Pages:    r.Pages,
		Figures:  r.Figures,
		Records:  len(r.Records),
		Skipped:  r.Skipped,
		Path:     r.Path,
		Duration: r.Duration,
	}
}

// New creates an Exporter from its collaborators
func New(cfg *config.Config, client CatalogClient, store *storage.Manager, log logger.Logger) *Exporter {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Exporter{
		client:   client,
		storage:  store,
		config:   cfg,
		logger:   log.WithField("component", "exporter"),
		progress: nopProgress{},
	}
}

// NewFromConfig wires the MFC client and output storage described by cfg
func NewFromConfig(cfg *config.Config) (*Exporter, error) {
	log := logger.GetLogger()

	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.CRLF)
	if err != nil {
		log.WithError(err).WithField("output_dir", cfg.Output.Directory).Error("Failed to create storage manager")
		return nil, fmt.Errorf("failed to create storage manager: %w", err)
	}

	return New(cfg, mfc.NewClient(cfg, log), store, log), nil
}

// SetProgress sets the progress receiver for subsequent exports
func (e *Exporter) SetProgress(p Progress) {
	if p == nil {
		p = nopProgress{}
	}
	e.progress = p
}

// Export collects, enriches and writes the collection of username.
// Nothing is written unless every stage succeeds.
func (e *Exporter) Export(ctx context.Context, username string) (*Result, error) {
	start := time.Now()

	logger.LogComponentStart(e.logger, "exporter", map[string]interface{}{
		"username":     username,
		"base_url":     e.client.BaseURL(),
		"output_dir":   e.storage.GetOutputDir(),
		"on_ambiguous": e.config.Export.OnAmbiguous,
	})

	refs, pages, err := e.Collect(ctx, username)
	if err != nil {
		return nil, err
	}

	records, skipped, err := e.Enrich(ctx, refs)
	if err != nil {
		return nil, err
	}

	e.logger.InfoWithFields("Writing figures", map[string]interface{}{
		"username": username,
		"records":  len(records),
		"path":     e.storage.Path(username),
	})

	path, err := e.storage.WriteFigures(username, records)
	if err != nil {
		e.logger.WithError(err).WithField("username", username).Error("Failed to write export")
		return nil, err
	}

	result := &Result{
		Username: username,
		Pages:    pages,
		Figures:  len(refs),
		Records:  storage.SortByID(records),
		Skipped:  skipped,
		Path:     path,
		Duration: time.Since(start),
	}

	e.logger.InfoWithFields("Export completed", map[string]interface{}{
		"username":    username,
		"records":     len(result.Records),
		"skipped":     len(skipped),
		"path":        path,
		"duration_ms": result.Duration.Milliseconds(),
	})

	return result, nil
}
