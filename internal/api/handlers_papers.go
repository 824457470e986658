// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/catalog"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// metadataReaders bounds concurrent sidecar reads while listing.
const metadataReaders = 8

type paperInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Abstract    string   `json:"abstract,omitempty"`
	PDFURL      string   `json:"pdf_url,omitempty"`
	ResourceURI string   `json:"resource_uri"`
}

type listResponse struct {
	TotalPapers int         `json:"total_papers"`
	Papers      []paperInfo `json:"papers"`
}

type readRequest struct {
	PaperID string `json:"paper_id"`
}

type readMetadata struct {
	PaperID string   `json:"paper_id"`
	Path    string   `json:"path"`
	Format  string   `json:"format"`
	Title   string   `json:"title,omitempty"`
	Authors []string `json:"authors,omitempty"`
	Pages   int      `json:"page_count,omitempty"`
}

type readResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Content  string        `json:"content,omitempty"`
	Metadata *readMetadata `json:"metadata,omitempty"`
}

// PapersHandler serves list_papers and read_paper from local storage only.
type PapersHandler struct {
	store   PaperStore
	catalog PaperCatalog
}

// NewPapersHandler creates a papers handler. cat may be nil, in which
// case listings read the metadata sidecars.
func NewPapersHandler(st PaperStore, cat PaperCatalog) *PapersHandler {
	return &PapersHandler{store: st, catalog: cat}
}

// HandleListPapers lists every converted paper with whatever metadata is
// known locally.
func (h *PapersHandler) HandleListPapers(c echo.Context) error {
	papers, err := h.collect(c.Request().Context())
	if err != nil {
		return NewInternalError("listing papers", err)
	}
	return c.JSON(http.StatusOK, listResponse{TotalPapers: len(papers), Papers: papers})
}

// collect joins the stored artifacts with catalog rows, falling back to the
// YAML sidecars for papers the catalog does not know.
func (h *PapersHandler) collect(ctx context.Context) ([]paperInfo, error) {
	stems, err := h.store.List()
	if err != nil {
		return nil, err
	}

	known := make(map[string]types.Paper)
	if h.catalog != nil {
		rows, err := h.catalog.List(ctx)
		if err != nil {
			slog.Warn("catalog unavailable, reading metadata sidecars", "error", err)
		}
		for _, p := range rows {
			known[store.FileStem(p.ID)] = p
		}
	}

	infos := make([]paperInfo, len(stems))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(metadataReaders)
	for i, stem := range stems {
		i, stem := i, stem // per-iteration copy (Go <1.22 loop semantics)
		if p, ok := known[stem]; ok {
			infos[i] = h.info(stem, &p)
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := h.store.ReadMetadata(stem)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				slog.Warn("reading metadata sidecar", "paper", stem, "error", err)
			}
			infos[i] = h.info(stem, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func (h *PapersHandler) info(stem string, p *types.Paper) paperInfo {
	if p == nil {
		return paperInfo{ID: stem, ResourceURI: h.store.ResourceURI(stem)}
	}
	return paperInfo{
		ID:          p.ID,
		Title:       p.Title,
		Authors:     p.Authors,
		Abstract:    p.Abstract,
		PDFURL:      p.PDFURL,
		ResourceURI: h.store.ResourceURI(p.ID),
	}
}

// HandleReadPaper returns the converted Markdown of a stored paper.
func (h *PapersHandler) HandleReadPaper(c echo.Context) error {
	var req readRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if strings.TrimSpace(req.PaperID) == "" {
		return NewValidationError("paper_id", nil)
	}
	id, err := acquire.Classify(req.PaperID)
	if err != nil {
		return NewValidationError("paper_id", err)
	}

	content, err := h.store.Read(id)
	if errors.Is(err, store.ErrNotFound) {
		return c.JSON(http.StatusOK, readResponse{
			Status:  statusError,
			Message: fmt.Sprintf("Paper %s not found in storage", id),
		})
	}
	if err != nil {
		return c.JSON(http.StatusOK, readResponse{
			Status:  statusError,
			Message: fmt.Sprintf("Error reading paper: %v", err),
		})
	}

	meta := &readMetadata{
		PaperID: id,
		Path:    h.store.PathFor(id),
		Format:  "markdown",
	}
	if p := h.lookup(c.Request().Context(), id); p != nil {
		meta.Title = p.Title
		meta.Authors = p.Authors
		meta.Pages = p.PageCount
	}
	return c.JSON(http.StatusOK, readResponse{
		Status:   statusSuccess,
		Content:  content,
		Metadata: meta,
	})
}

// lookup finds the paper record in the catalog, then in the sidecar. It
// returns nil when neither knows the paper.
func (h *PapersHandler) lookup(ctx context.Context, id string) *types.Paper {
	if h.catalog != nil {
		p, err := h.catalog.Get(ctx, id)
		if err == nil {
			return p
		}
		if !errors.Is(err, catalog.ErrNotFound) {
			slog.Warn("catalog lookup", "paper_id", id, "error", err)
		}
	}
	p, err := h.store.ReadMetadata(id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Warn("reading metadata sidecar", "paper_id", id, "error", err)
		}
		return nil
	}
	return p
}
