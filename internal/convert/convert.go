// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded PDFs into Markdown text with pluggable
// backends, and inspects PDFs before they are handed to a backend.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/container"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// ErrEmptyOutput is returned when a backend succeeds but produces no text.
var ErrEmptyOutput = errors.New("conversion produced empty output")

// Converter transforms the PDF at pdfPath into Markdown. Implementations
// must honour ctx cancellation and must return ErrEmptyOutput rather than
// an empty string.
type Converter interface {
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// New builds the converter selected by cfg. The markitdown backend needs a
// container runtime; pass nil to have one detected.
func New(ctx context.Context, cfg types.ConversionConfig, rt container.Runtime) (Converter, error) {
	switch cfg.Backend {
	case types.BackendMarkitdown, "":
		if rt == nil {
			detected, err := container.DetectRuntime(ctx)
			if err != nil {
				return nil, err
			}
			rt = detected
		}
		return NewMarkitdownConverter(ctx, rt)
	case types.BackendPdftotext:
		return NewPdftotextConverter(container.OSExecutor{})
	default:
		return nil, fmt.Errorf("unknown conversion backend %q", cfg.Backend)
	}
}

// checkOutput normalizes backend output and rejects whitespace-only text.
func checkOutput(out, pdfPath string) (string, error) {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("%s: %w", pdfPath, ErrEmptyOutput)
	}
	return out, nil
}

// AddFrontmatter prepends YAML frontmatter identifying the paper to body.
func AddFrontmatter(paper types.Paper, body string, convertedAt time.Time) string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "paper_id: %q\n", paper.ID)
	if paper.Title != "" {
		fmt.Fprintf(&b, "title: %q\n", paper.Title)
	}
	if paper.PDFURL != "" {
		fmt.Fprintf(&b, "source_url: %q\n", paper.PDFURL)
	}
	fmt.Fprintf(&b, "converted_at: %q\n", convertedAt.UTC().Format(time.RFC3339))
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}
