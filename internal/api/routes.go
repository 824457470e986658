// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api exposes the download workflow and the local paper library
// over HTTP with echo.
package api

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/search"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// bodyLimit caps request bodies; every tool takes a small JSON object.
const bodyLimit = "64K"

var toolNames = []string{"download_paper", "download", "list_papers", "read_paper", "search"}

// Dependencies holds everything the handlers need.
type Dependencies struct {
	Orchestrator Orchestrator
	Store        PaperStore
	Statuses     StatusSnapshotter
	Catalog      PaperCatalog
	Querier      search.Querier
	Version      string
}

// Handlers groups the handler instances.
type Handlers struct {
	Health   *HealthHandler
	Download *DownloadHandler
	Papers   *PapersHandler
	Search   *SearchHandler
}

// NewHandlers creates all handler instances.
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Download: NewDownloadHandler(deps.Orchestrator, deps.Store, deps.Statuses),
		Papers:   NewPapersHandler(deps.Store, deps.Catalog),
		Search:   NewSearchHandler(deps.Querier),
	}
}

// RegisterRoutes registers every route. A non-empty token guards /tools.
func RegisterRoutes(e *echo.Echo, handlers *Handlers, token string) {
	e.GET("/", handlers.Health.HandleRoot)
	e.GET("/health", handlers.Health.HandleHealth)

	tools := e.Group("/tools")
	if token != "" {
		tools.Use(BearerAuth(token))
	}
	tools.POST("/download_paper", handlers.Download.HandleDownloadPaper)
	tools.POST("/download", handlers.Download.HandleDownloadPaper)
	tools.POST("/list_papers", handlers.Papers.HandleListPapers)
	tools.POST("/read_paper", handlers.Papers.HandleReadPaper)
	tools.POST("/search", handlers.Search.HandleSearch)
	tools.GET("/conversions", handlers.Download.HandleConversions)
	tools.POST("/:tool", handlers.Health.HandleUnknownTool)
}

// BearerAuth requires "Authorization: Bearer <token>".
func BearerAuth(token string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup:  "header:" + echo.HeaderAuthorization,
		AuthScheme: "Bearer",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1, nil
		},
		ErrorHandler: func(err error, c echo.Context) error {
			return NewUnauthorizedError()
		},
	})
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(cfg types.ServerConfig, deps *Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.RequestLogging {
				return true
			}
			return strings.HasSuffix(c.Request().URL.Path, "/health")
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))

	RegisterRoutes(e, NewHandlers(deps), cfg.APIToken)
	return e
}
