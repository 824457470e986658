// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download [identifiers...]",
	Short: "Download arXiv papers and convert them to Markdown",
	Long: `Download fetches each paper's metadata and PDF from arXiv, converts the
PDF to Markdown, and stores the result. Papers already in the store are
skipped. Identifiers may be new-style (2101.00001, arXiv:2101.00001v2),
old-style (hep-th/9901001), or arxiv.org abs/pdf URLs.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().Int("concurrency", 0, "papers processed at once (default 2)")
	downloadCmd.Flags().Duration("step-timeout", 0, "timeout for each of metadata, download, and conversion (default 5m)")

	bindFlag("download.concurrency", downloadCmd.Flags().Lookup("concurrency"))
	bindFlag("download.step_timeout", downloadCmd.Flags().Lookup("step-timeout"))

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	orch, err := a.orchestrator(cmd.Context())
	if err != nil {
		return err
	}

	result, err := orch.Batch(cmd.Context(), args, a.cfg.Download.Concurrency, os.Stdout)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d paper(s) failed", result.Failed)
	}
	return nil
}
