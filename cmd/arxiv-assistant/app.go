// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/catalog"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/convert"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/download"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/tracker"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg     types.Config
	store   *store.Store
	catalog *catalog.Catalog
	arxiv   *acquire.ArxivClient
}

// newApp opens the store and catalog. The catalog is optional: when it
// cannot be opened the app runs without it.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	st := store.New(cfg.Storage.Path)
	if err := st.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("preparing storage: %w", err)
	}

	a := &app{
		cfg:   cfg,
		store: st,
		arxiv: acquire.NewArxivClient(nil, cfg.HTTP),
	}

	cat, err := catalog.Open(catalog.Path(cfg.Storage))
	if err != nil {
		slog.Warn("paper catalog unavailable, continuing without it", "error", err)
	} else {
		a.catalog = cat
	}
	return a, nil
}

// orchestrator builds the download pipeline with the configured converter.
func (a *app) orchestrator(ctx context.Context) (*download.Orchestrator, error) {
	conv, err := convert.New(ctx, a.cfg.Conversion, nil)
	if err != nil {
		return nil, fmt.Errorf("setting up %s converter: %w", a.cfg.Conversion.Backend, err)
	}

	opts := []download.Option{
		download.WithStepTimeout(a.cfg.Download.StepTimeout),
		download.WithInspector(convert.Inspector{MaxPages: a.cfg.Conversion.MaxPages}),
	}
	if a.catalog != nil {
		opts = append(opts, download.WithRecorder(a.catalog))
	}
	return download.New(a.store, tracker.New(), a.arxiv, a.arxiv, conv, opts...), nil
}

func (a *app) Close() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			slog.Warn("closing catalog", "error", err)
		}
	}
}
