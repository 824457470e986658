// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/search"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Category   string `json:"category"`
}

type searchResponse struct {
	Total   int                  `json:"total"`
	Results []types.SearchResult `json:"results"`
}

// SearchHandler passes queries through to arXiv.
type SearchHandler struct {
	querier search.Querier
}

// NewSearchHandler creates a search handler.
func NewSearchHandler(q search.Querier) *SearchHandler {
	return &SearchHandler{querier: q}
}

// HandleSearch runs the query and returns results in arXiv order.
func (h *SearchHandler) HandleSearch(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	results, err := search.Search(c.Request().Context(), h.querier, search.Query{
		Text:       req.Query,
		Category:   req.Category,
		MaxResults: req.MaxResults,
	})
	if errors.Is(err, search.ErrEmptyQuery) {
		return NewValidationError("query", err)
	}
	if err != nil {
		return NewUpstreamError("arXiv search failed", err)
	}
	return c.JSON(http.StatusOK, searchResponse{Total: len(results), Results: results})
}
