// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search arXiv",
	Long: `Search passes the query to the arXiv API unchanged, so field prefixes
such as ti:, au:, abs: and boolean operators work. Results are printed in the
order arXiv returns them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("max-results", search.DefaultMaxResults, "maximum number of results")
	searchCmd.Flags().String("category", "", "restrict to an arXiv category, e.g. cs.AI")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")
	category, _ := cmd.Flags().GetString("category")
	asJSON, _ := cmd.Flags().GetBool("json")

	client := acquire.NewArxivClient(nil, cfg.HTTP)
	results, err := search.Search(cmd.Context(), client, search.Query{
		Text:       strings.Join(args, " "),
		Category:   category,
		MaxResults: maxResults,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return search.FormatJSON(results, os.Stdout)
	}
	search.FormatTable(results, os.Stdout)
	return nil
}
