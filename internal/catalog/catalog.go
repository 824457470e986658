// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a SQLite index of downloaded papers so listings do
// not need to re-read every metadata sidecar.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// DefaultFile is the catalog file name used when none is configured.
const DefaultFile = "catalog.db"

// ErrNotFound is returned by Get for ids that were never recorded.
var ErrNotFound = errors.New("paper not in catalog")

// Catalog is the papers table in one SQLite database.
type Catalog struct {
	db *sql.DB
}

// Open opens or creates the catalog at path and ensures the schema exists.
func Open(path string) (*Catalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return c, nil
}

// Path resolves the configured catalog file against the storage root.
func Path(cfg types.StorageConfig) string {
	file := cfg.CatalogFile
	if file == "" {
		file = DefaultFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(cfg.Path, file)
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			categories TEXT,
			pdf_url TEXT,
			published TEXT,
			pdf_path TEXT,
			markdown_path TEXT,
			page_count INTEGER,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_recorded_at ON papers(recorded_at)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts or replaces the row for p.
func (c *Catalog) Record(ctx context.Context, p *types.Paper) error {
	authors, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}
	categories, err := json.Marshal(p.Categories)
	if err != nil {
		return fmt.Errorf("encoding categories: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO papers
			(id, title, authors, abstract, categories, pdf_url, published, pdf_path, markdown_path, page_count, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Title, string(authors), p.Abstract, string(categories), p.PDFURL,
		formatTime(p.Published), p.PDFPath, p.MarkdownPath, p.PageCount,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", p.ID, err)
	}
	return nil
}

// Get returns the recorded paper for id.
func (c *Catalog) Get(ctx context.Context, id string) (*types.Paper, error) {
	row := c.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return p, nil
}

// List returns every recorded paper ordered by id.
func (c *Catalog) List(ctx context.Context) ([]types.Paper, error) {
	rows, err := c.db.QueryContext(ctx, selectColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

const selectColumns = `SELECT id, title, authors, abstract, categories, pdf_url, published, pdf_path, markdown_path, page_count FROM papers`

type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(s scanner) (*types.Paper, error) {
	var (
		p                   types.Paper
		title, abstract     sql.NullString
		authors, categories sql.NullString
		pdfURL, published   sql.NullString
		pdfPath, mdPath     sql.NullString
		pageCount           sql.NullInt64
	)
	if err := s.Scan(&p.ID, &title, &authors, &abstract, &categories, &pdfURL,
		&published, &pdfPath, &mdPath, &pageCount); err != nil {
		return nil, err
	}

	p.Title = title.String
	p.Abstract = abstract.String
	p.PDFURL = pdfURL.String
	p.PDFPath = pdfPath.String
	p.MarkdownPath = mdPath.String
	p.PageCount = int(pageCount.Int64)
	if authors.String != "" {
		if err := json.Unmarshal([]byte(authors.String), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", p.ID, err)
		}
	}
	if categories.String != "" {
		if err := json.Unmarshal([]byte(categories.String), &p.Categories); err != nil {
			return nil, fmt.Errorf("decoding categories of %s: %w", p.ID, err)
		}
	}
	if published.String != "" {
		if t, err := time.Parse(time.RFC3339, published.String); err == nil {
			p.Published = t
		}
	}
	return &p, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
