// Package pipeline wires loading, column type resolution and rendering together.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/coltype/internal/cache"
	"github.com/ppiankov/coltype/internal/dataset"
	"github.com/ppiankov/coltype/internal/infer"
	"github.com/ppiankov/coltype/internal/model"
)

// Pipeline orchestrates the complete profiling process
type Pipeline struct {
	loader       *dataset.Loader
	orchestrator *infer.Orchestrator
	cache        cache.Cache // nil if disabled
	renderer     *Renderer
	config       *model.Config
	logger       *slog.Logger
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithCache overrides the profile cache
func WithCache(c cache.Cache) Option {
	return func(p *Pipeline) {
		p.cache = c
	}
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	orchestrator, err := infer.NewOrchestrator(cfg.Inference, logger)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		loader:       dataset.NewLoader(cfg.Loader, dataset.WithLogger(logger)),
		orchestrator: orchestrator,
		renderer:     NewRenderer(cfg.Output.Format, cfg.Output.Explain),
		config:       cfg,
		logger:       logger,
	}
	if cfg.Cache.Enabled {
		p.cache = cache.NewMemoryCache(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Renderer returns the renderer configured for this pipeline
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// ProfileFile loads the dataset at path and resolves every column
func (p *Pipeline) ProfileFile(ctx context.Context, path string) (*model.Profile, error) {
	start := time.Now()

	key := p.cacheKey(path)
	if key != "" {
		if profile, found := p.cache.Get(key); found {
			p.logger.Debug("profile cache hit", "path", path)
			return withSource(profile, path), nil
		}
	}

	ds, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	profile, err := p.Profile(ctx, ds)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if err := p.cache.Set(key, profile, p.config.Cache.TTL); err != nil {
			p.logger.Warn("cache write failed", "path", path, "error", err)
		}
	}

	p.logger.Info("profiled dataset", "path", path, "rows", profile.Rows, "columns", profile.Types.Len(), "elapsed", time.Since(start))
	return profile, nil
}

// Profile resolves the columns of an already loaded dataset
func (p *Pipeline) Profile(ctx context.Context, ds *model.Dataset) (*model.Profile, error) {
	types, err := p.orchestrator.ResolveDataset(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ds.Source, err)
	}

	return &model.Profile{
		Source: ds.Source,
		Format: ds.Format,
		Rows:   ds.Rows,
		Types:  types,
	}, nil
}

// cacheKey returns an empty key when caching is off or the input cannot be fingerprinted
func (p *Pipeline) cacheKey(path string) string {
	if p.cache == nil || path == "-" {
		return ""
	}
	digest, err := cache.FileDigest(path)
	if err != nil {
		// The loader reports the real error
		return ""
	}
	// TSV detection depends on the extension, so it is part of the identity
	ext := strings.ToLower(filepath.Ext(path))
	return cache.CacheKey(digest+ext, p.config)
}

func withSource(profile *model.Profile, path string) *model.Profile {
	if profile.Source == path {
		return profile
	}
	cp := *profile
	cp.Source = path
	return &cp
}
