// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire talks to arXiv: it resolves identifiers to metadata
// through the Atom API and downloads source PDFs.
package acquire

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/httputil"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// ErrPaperNotFound is returned when arXiv has no entry for an identifier.
var ErrPaperNotFound = errors.New("paper not found on arXiv")

// ArxivClient fetches metadata and PDFs from arXiv.
type ArxivClient struct {
	client     *http.Client
	userAgent  string
	maxRetries int
}

// NewArxivClient builds a client from the shared HTTP settings. A nil
// client gets one with cfg.Timeout.
func NewArxivClient(client *http.Client, cfg types.HTTPConfig) *ArxivClient {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &ArxivClient{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
	}
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID              string          `xml:"id"`
	Title           string          `xml:"title"`
	Summary         string          `xml:"summary"`
	Published       string          `xml:"published"`
	Updated         string          `xml:"updated"`
	Authors         []arxivAuthor   `xml:"author"`
	Links           []arxivLink     `xml:"link"`
	Categories      []arxivCategory `xml:"category"`
	PrimaryCategory arxivCategory   `xml:"primary_category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Rel   string `xml:"rel,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// isAPIError reports whether arXiv answered with its error pseudo-entry,
// which it does for malformed ids.
func (e arxivEntry) isAPIError() bool {
	return strings.Contains(e.ID, "/api/errors") || strings.TrimSpace(e.Title) == "Error"
}

// FetchMetadata looks id up in the arXiv API. It returns ErrPaperNotFound
// when the feed has no usable entry.
func (c *ArxivClient) FetchMetadata(ctx context.Context, id string) (*types.Paper, error) {
	q := url.Values{}
	q.Set("id_list", id)
	q.Set("max_results", "1")

	feed, err := c.query(ctx, arxivAPIBase+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 || feed.Entries[0].isAPIError() {
		return nil, fmt.Errorf("%s: %w", id, ErrPaperNotFound)
	}

	p := paperFromEntry(feed.Entries[0])
	p.ID = id
	return p, nil
}

// Query runs an arbitrary arXiv API query and returns the entries in feed
// order. Entry ids keep their version suffix.
func (c *ArxivClient) Query(ctx context.Context, params url.Values) ([]*types.Paper, error) {
	feed, err := c.query(ctx, arxivAPIBase+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	papers := make([]*types.Paper, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		if e.isAPIError() {
			return nil, fmt.Errorf("arXiv rejected query: %s", strings.TrimSpace(e.Summary))
		}
		papers = append(papers, paperFromEntry(e))
	}
	return papers, nil
}

// query performs one Atom API request and decodes the feed.
func (c *ArxivClient) query(ctx context.Context, apiURL string) (*arxivFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

func paperFromEntry(e arxivEntry) *types.Paper {
	p := &types.Paper{
		ID:       idFromEntryURL(strings.TrimSpace(e.ID)),
		Title:    collapseSpace(e.Title),
		Abstract: strings.TrimSpace(e.Summary),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	if e.PrimaryCategory.Term != "" {
		p.Categories = append(p.Categories, e.PrimaryCategory.Term)
	}
	for _, cat := range e.Categories {
		if cat.Term != "" && cat.Term != e.PrimaryCategory.Term {
			p.Categories = append(p.Categories, cat.Term)
		}
	}
	for _, l := range e.Links {
		if l.Href == "" {
			continue
		}
		p.Links = append(p.Links, l.Href)
		if l.Title == "pdf" || l.Type == "application/pdf" {
			p.PDFURL = l.Href
		}
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published)); err == nil {
		p.Published = t
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Updated)); err == nil {
		p.Updated = t
	}
	return p
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FetchDocument downloads the paper's PDF to destPath. The body goes to a
// temp file in the destination directory and is renamed into place only
// after a complete copy.
func (c *ArxivClient) FetchDocument(ctx context.Context, paper *types.Paper, destPath string) error {
	pdfURL := paper.PDFURL
	if pdfURL == "" {
		pdfURL = PDFURL(paper.ID)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", destPath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pdfURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/pdf")

	resp, err := httputil.DoWithRetry(ctx, c.client, req, c.maxRetries)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("PDF for %s: %w", paper.ID, ErrPaperNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, pdfURL)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	n, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if n == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("empty PDF response from %s", pdfURL)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
