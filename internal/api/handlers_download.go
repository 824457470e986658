// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/download"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/tracker"
)

// Response status values for download_paper.
const (
	statusSuccess    = "success"
	statusError      = "error"
	statusInProgress = "in_progress"
	statusNotFound   = "not_found"
)

type downloadRequest struct {
	PaperID     string `json:"paper_id"`
	CheckStatus bool   `json:"check_status"`
	Async       bool   `json:"async"`
}

type downloadResponse struct {
	Status      string     `json:"status"`
	Message     string     `json:"message"`
	PaperID     string     `json:"paper_id"`
	ResourceURI string     `json:"resource_uri,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	Failure     string     `json:"failure,omitempty"`
}

// DownloadHandler serves download_paper and the conversions table.
type DownloadHandler struct {
	orch     Orchestrator
	store    PaperStore
	statuses StatusSnapshotter
}

// NewDownloadHandler creates a download handler.
func NewDownloadHandler(orch Orchestrator, st PaperStore, statuses StatusSnapshotter) *DownloadHandler {
	return &DownloadHandler{orch: orch, store: st, statuses: statuses}
}

// HandleDownloadPaper runs the orchestrator, or with check_status only
// reports progress. Domain outcomes are always HTTP 200 with a status field.
func (h *DownloadHandler) HandleDownloadPaper(c echo.Context) error {
	var req downloadRequest
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

	if req.CheckStatus {
		return c.JSON(http.StatusOK, h.statusResponse(h.orch.CheckStatus(id)))
	}

	// The pipeline outlives a disconnected client; each step has its own
	// timeout inside the orchestrator.
	ctx := context.WithoutCancel(c.Request().Context())
	var out download.Outcome
	if req.Async {
		out = h.orch.Start(ctx, id)
	} else {
		out = h.orch.DownloadAndConvert(ctx, id)
	}
	return c.JSON(http.StatusOK, h.outcomeResponse(id, out))
}

func (h *DownloadHandler) outcomeResponse(id string, out download.Outcome) downloadResponse {
	resp := downloadResponse{PaperID: id, Failure: string(out.Failure)}
	withStatusTimes(&resp, out.Status)

	switch out.Kind {
	case download.AlreadyAvailable:
		resp.Status = statusSuccess
		resp.Message = fmt.Sprintf("Paper %s is already available", id)
		resp.ResourceURI = h.store.ResourceURI(id)
	case download.Completed:
		resp.Status = statusSuccess
		resp.Message = fmt.Sprintf("Paper %s downloaded and converted", id)
		resp.ResourceURI = h.store.ResourceURI(id)
	case download.InProgress:
		resp.Status = statusInProgress
		if out.Failure == download.FailureAlreadyInProgress {
			resp.Message = fmt.Sprintf("Paper %s is already being processed (%s)", id, out.Status.State)
		} else {
			resp.Message = fmt.Sprintf("Download of paper %s started; poll with check_status", id)
		}
	case download.NotFoundUpstream:
		resp.Status = statusError
		resp.Message = fmt.Sprintf("Paper %s not found on arXiv", id)
		resp.Error = out.Reason
	default:
		resp.Status = statusError
		resp.Message = fmt.Sprintf("Failed to process paper %s", id)
		resp.Error = out.Reason
	}
	return resp
}

func (h *DownloadHandler) statusResponse(r download.StatusReport) downloadResponse {
	resp := downloadResponse{PaperID: r.PaperID}

	switch {
	case r.State == download.StateAvailable:
		resp.Status = statusSuccess
		resp.Message = fmt.Sprintf("Paper %s is ready", r.PaperID)
		resp.ResourceURI = h.store.ResourceURI(r.PaperID)
	case r.Status != nil:
		withStatusTimes(&resp, *r.Status)
		resp.Status = r.State
		resp.Message = fmt.Sprintf("Paper %s is %s", r.PaperID, r.State)
		resp.Error = r.Status.Error
	default:
		resp.Status = statusNotFound
		resp.Message = fmt.Sprintf("No download or conversion found for paper %s", r.PaperID)
	}
	return resp
}

func withStatusTimes(resp *downloadResponse, st tracker.Status) {
	if !st.StartedAt.IsZero() {
		started := st.StartedAt
		resp.StartedAt = &started
	}
	resp.CompletedAt = st.CompletedAt
}

// HandleConversions lists every tracker entry.
func (h *DownloadHandler) HandleConversions(c echo.Context) error {
	snap := h.statuses.Snapshot()
	if snap == nil {
		snap = []tracker.Status{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":       len(snap),
		"conversions": snap,
	})
}
