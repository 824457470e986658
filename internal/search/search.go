// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search passes free-text queries through to the arXiv API and
// returns the results in the order arXiv ranks them.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

const (
	// DefaultMaxResults applies when a query does not set MaxResults.
	DefaultMaxResults = 10

	// MaxResultsLimit caps MaxResults; arXiv asks clients to page beyond this.
	MaxResultsLimit = 100
)

// ErrEmptyQuery is returned for a query with no search text.
var ErrEmptyQuery = errors.New("query is empty")

// Querier runs raw arXiv API queries. acquire.ArxivClient implements it.
type Querier interface {
	Query(ctx context.Context, params url.Values) ([]*types.Paper, error)
}

// Query holds the search parameters.
type Query struct {
	// Text is passed to arXiv as search_query verbatim, so field prefixes
	// such as "ti:" or "au:" work.
	Text string

	// Category, when set, restricts results with an AND cat:<Category> clause.
	Category string

	MaxResults int
}

// params builds the arXiv API query string.
func (q Query) params() url.Values {
	text := strings.TrimSpace(q.Text)
	if q.Category != "" {
		text = fmt.Sprintf("(%s) AND cat:%s", text, q.Category)
	}

	n := q.MaxResults
	if n <= 0 {
		n = DefaultMaxResults
	}
	if n > MaxResultsLimit {
		n = MaxResultsLimit
	}

	v := url.Values{}
	v.Set("search_query", text)
	v.Set("start", "0")
	v.Set("max_results", strconv.Itoa(n))
	v.Set("sortBy", "relevance")
	v.Set("sortOrder", "descending")
	return v
}

// Search runs q against arXiv. Results are not re-ranked.
func Search(ctx context.Context, qr Querier, q Query) ([]types.SearchResult, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, ErrEmptyQuery
	}

	papers, err := qr.Query(ctx, q.params())
	if err != nil {
		return nil, fmt.Errorf("searching arXiv: %w", err)
	}

	results := make([]types.SearchResult, 0, len(papers))
	for _, p := range papers {
		r := types.SearchResult{
			ID:       p.ID,
			Title:    p.Title,
			Authors:  p.Authors,
			Abstract: p.Abstract,
			Date:     p.Published,
			Category: q.Category,
			URL:      p.PDFURL,
		}
		if r.Category == "" && len(p.Categories) > 0 {
			r.Category = p.Categories[0]
		}
		results = append(results, r)
	}
	return results, nil
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, w io.Writer) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-18s  %-60s  %-20s  %-4s  %s\n",
		"Rank", "ID", "Title", "Authors", "Year", "Category")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range results {
		year := ""
		if !r.Date.IsZero() {
			year = strconv.Itoa(r.Date.Year())
		}
		fmt.Fprintf(w, "%-4d  %-18s  %-60s  %-20s  %-4s  %s\n",
			i+1, r.ID, truncate(r.Title, 60), formatAuthors(r.Authors), year, r.Category)
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
