// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List papers in the local store",
	RunE:  runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	stems, err := a.store.List()
	if err != nil {
		return err
	}

	known := make(map[string]types.Paper)
	if a.catalog != nil {
		rows, err := a.catalog.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range rows {
			known[store.FileStem(p.ID)] = p
		}
	}

	papers := make([]types.Paper, 0, len(stems))
	for _, stem := range stems {
		p, ok := known[stem]
		if !ok {
			if meta, err := a.store.ReadMetadata(stem); err == nil {
				p = *meta
			} else {
				p = types.Paper{ID: stem}
			}
		}
		papers = append(papers, p)
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	}

	if len(papers) == 0 {
		fmt.Println("No papers stored in", a.store.Root())
		return nil
	}
	for _, p := range papers {
		fmt.Printf("%-18s  %s\n", p.ID, p.Title)
		if len(p.Authors) > 0 {
			fmt.Printf("%-18s  %s\n", "", strings.Join(p.Authors, ", "))
		}
	}
	fmt.Printf("\n%d papers in %s\n", len(papers), a.store.Root())
	return nil
}
