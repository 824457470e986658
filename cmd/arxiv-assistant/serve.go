// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/api"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the download workflow over HTTP:

  POST /tools/download_paper   download and convert, or poll with check_status
  POST /tools/list_papers      list stored papers
  POST /tools/read_paper       return a stored paper's Markdown
  POST /tools/search           search arXiv
  GET  /tools/conversions      conversion status table
  GET  /health                 liveness

When an api-token secret or server.api_token is set, /tools requires
"Authorization: Bearer <token>".`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("host", "", "listen address (default 0.0.0.0)")
	serveCmd.Flags().Int("port", 0, "listen port (default 8000)")

	bindFlag("server.host", serveCmd.Flags().Lookup("host"))
	bindFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator(ctx)
	if err != nil {
		return err
	}

	deps := &api.Dependencies{
		Orchestrator: orch,
		Store:        a.store,
		Statuses:     orch.Tracker(),
		Querier:      a.arxiv,
		Version:      version,
	}
	if a.catalog != nil {
		deps.Catalog = a.catalog
	}
	e := api.NewServer(a.cfg.Server, deps)

	addr := net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port))
	slog.Info("serving", "addr", addr, "storage", a.store.Root(),
		"backend", a.cfg.Conversion.Backend, "auth", a.cfg.Server.APIToken != "")

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Warn("server shutdown", "error", err)
	}
	orch.Wait()
	return nil
}
