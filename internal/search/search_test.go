// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

type mockQuerier struct {
	papers []*types.Paper
	err    error
	got    url.Values
}

func (m *mockQuerier) Query(_ context.Context, params url.Values) ([]*types.Paper, error) {
	m.got = params
	return m.papers, m.err
}

func samplePapers() []*types.Paper {
	return []*types.Paper{
		{
			ID:         "1706.03762v7",
			Title:      "Attention Is All You Need",
			Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
			Abstract:   "The dominant sequence transduction models.",
			Categories: []string{"cs.CL", "cs.LG"},
			PDFURL:     "http://arxiv.org/pdf/1706.03762v7",
			Published:  time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:      "1810.04805v2",
			Title:   "BERT: Pre-training of Deep Bidirectional Transformers",
			Authors: []string{"Jacob Devlin"},
		},
	}
}

func TestSearchPassesQueryThrough(t *testing.T) {
	m := &mockQuerier{papers: samplePapers()}

	results, err := Search(context.Background(), m, Query{Text: "ti:attention AND au:vaswani"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "ti:attention AND au:vaswani", m.got.Get("search_query"))
	assert.Equal(t, "10", m.got.Get("max_results"))
	assert.Equal(t, "relevance", m.got.Get("sortBy"))

	assert.Equal(t, "1706.03762v7", results[0].ID, "arXiv order is preserved")
	assert.Equal(t, "cs.CL", results[0].Category)
	assert.Equal(t, "http://arxiv.org/pdf/1706.03762v7", results[0].URL)
	assert.Equal(t, 2017, results[0].Date.Year())
	assert.Empty(t, results[1].Category)
}

func TestSearchCategory(t *testing.T) {
	m := &mockQuerier{papers: samplePapers()}

	results, err := Search(context.Background(), m, Query{Text: "transformers", Category: "cs.AI", MaxResults: 3})
	require.NoError(t, err)
	assert.Equal(t, "(transformers) AND cat:cs.AI", m.got.Get("search_query"))
	assert.Equal(t, "3", m.got.Get("max_results"))
	for _, r := range results {
		assert.Equal(t, "cs.AI", r.Category)
	}
}

func TestSearchMaxResultsCapped(t *testing.T) {
	m := &mockQuerier{}
	_, err := Search(context.Background(), m, Query{Text: "x", MaxResults: 5000})
	require.NoError(t, err)
	assert.Equal(t, "100", m.got.Get("max_results"))
}

func TestSearchEmptyQuery(t *testing.T) {
	m := &mockQuerier{}
	_, err := Search(context.Background(), m, Query{Text: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
	assert.Nil(t, m.got, "no upstream call for an empty query")
}

func TestSearchUpstreamError(t *testing.T) {
	_, err := Search(context.Background(), &mockQuerier{err: errors.New("HTTP 503")}, Query{Text: "x"})
	assert.ErrorContains(t, err, "HTTP 503")
}

func toResults(t *testing.T) []types.SearchResult {
	t.Helper()
	results, err := Search(context.Background(), &mockQuerier{papers: samplePapers()}, Query{Text: "x"})
	require.NoError(t, err)
	return results
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(toResults(t), &buf)
	out := buf.String()

	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "Ashish Vaswani et al.")
	assert.Contains(t, out, "2017")
	assert.Contains(t, out, "2 results")
	assert.Equal(t, 6, strings.Count(out, "\n"))
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(toResults(t), &buf))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "1706.03762v7", decoded[0]["id"])
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "Schrödinger", truncate("Schrödinger", 11))
	assert.Equal(t, "Schrödi...", truncate("Schrödinger equations", 10))
	assert.True(t, utf8.ValidString(truncate("ééééééééééééééé", 8)))
}
