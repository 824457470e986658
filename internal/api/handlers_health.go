// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler serves liveness probes and the root banner.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a health handler reporting version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// HandleHealth returns server health status.
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "arxiv-assistant is running",
		"version": h.version,
	})
}

// HandleRoot lists the available tools.
func (h *HealthHandler) HandleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"name":    "arxiv-assistant",
		"version": h.version,
		"tools":   toolNames,
	})
}

// HandleUnknownTool answers POST /tools/:tool for unregistered names.
func (h *HealthHandler) HandleUnknownTool(c echo.Context) error {
	return NewNotFoundError("tool", c.Param("tool"))
}
