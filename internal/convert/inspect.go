// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrTooManyPages is returned when a PDF exceeds the configured page limit.
var ErrTooManyPages = errors.New("PDF exceeds page limit")

// PDFInfo describes a validated source document.
type PDFInfo struct {
	PageCount int
}

// Inspector validates a PDF before conversion. A zero MaxPages disables the
// page limit.
type Inspector struct {
	MaxPages int
}

// Inspect validates the PDF structure in relaxed mode and counts its pages.
// Anything arXiv serves that pdfcpu cannot parse would also defeat the
// conversion backends, so it is rejected here.
func (i Inspector) Inspect(pdfPath string) (PDFInfo, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	if err := api.ValidateFile(pdfPath, conf); err != nil {
		return PDFInfo{}, fmt.Errorf("invalid PDF %s: %w", pdfPath, err)
	}

	pages, err := api.PageCountFile(pdfPath)
	if err != nil {
		return PDFInfo{}, fmt.Errorf("counting pages of %s: %w", pdfPath, err)
	}
	if i.MaxPages > 0 && pages > i.MaxPages {
		return PDFInfo{PageCount: pages}, fmt.Errorf("%s has %d pages (limit %d): %w", pdfPath, pages, i.MaxPages, ErrTooManyPages)
	}
	return PDFInfo{PageCount: pages}, nil
}
