// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/download"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/tracker"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// Orchestrator is the part of download.Orchestrator the handlers use.
type Orchestrator interface {
	DownloadAndConvert(ctx context.Context, id string) download.Outcome
	Start(ctx context.Context, id string) download.Outcome
	CheckStatus(id string) download.StatusReport
}

// PaperStore is the read side of store.Store.
type PaperStore interface {
	List() ([]string, error)
	Read(id string) (string, error)
	PathFor(id string) string
	ResourceURI(id string) string
	ReadMetadata(id string) (*types.Paper, error)
}

// PaperCatalog is the read side of the SQLite catalog.
type PaperCatalog interface {
	List(ctx context.Context) ([]types.Paper, error)
	Get(ctx context.Context, id string) (*types.Paper, error)
}

// StatusSnapshotter exposes the tracker table.
type StatusSnapshotter interface {
	Snapshot() []tracker.Status
}
