// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status [identifiers...]",
	Short: "Report whether papers are available in the local store",
	Long: `Status checks the paper store for each identifier without contacting
arXiv. Conversion progress lives in the server process; poll a running server
with check_status to see it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st := store.New(cfg.Storage.Path)

	missing := 0
	for _, raw := range args {
		id, err := acquire.Classify(raw)
		if err != nil {
			fmt.Fprintf(os.Stdout, "invalid:   %s\n", raw)
			missing++
			continue
		}
		if st.Has(id) {
			fmt.Fprintf(os.Stdout, "available: %s -> %s\n", id, st.PathFor(id))
			continue
		}
		fmt.Fprintf(os.Stdout, "unknown:   %s\n", id)
		missing++
	}
	if missing > 0 {
		return fmt.Errorf("%d paper(s) not available", missing)
	}
	return nil
}
