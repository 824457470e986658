// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/container"
)

const binPdftotext = "pdftotext"

// PdftotextConverter runs poppler's pdftotext binary on the host. Its output
// is plain text, which is valid Markdown without structure.
type PdftotextConverter struct {
	exec container.Executor
}

// NewPdftotextConverter fails when pdftotext is not on PATH.
func NewPdftotextConverter(exec container.Executor) (*PdftotextConverter, error) {
	if _, err := exec.LookPath(binPdftotext); err != nil {
		return nil, fmt.Errorf("%s not found on PATH: %w", binPdftotext, err)
	}
	return &PdftotextConverter{exec: exec}, nil
}

func (p *PdftotextConverter) Convert(ctx context.Context, pdfPath string) (string, error) {
	var out bytes.Buffer
	args := []string{"-layout", "-enc", "UTF-8", pdfPath, "-"}
	if err := p.exec.RunPiped(ctx, binPdftotext, args, nil, &out); err != nil {
		return "", fmt.Errorf("converting %s with pdftotext: %w", pdfPath, err)
	}
	return checkOutput(out.String(), pdfPath)
}
