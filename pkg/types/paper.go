// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionState is the state of one download/convert attempt for a paper.
// There is no "not started" value: a paper without a tracker entry has not
// been started.
type ConversionState string

const (
	StateDownloading ConversionState = "downloading"
	StateConverting  ConversionState = "converting"
	StateSuccess     ConversionState = "success"
	StateError       ConversionState = "error"
)

// Active reports whether the state belongs to an attempt that is still running.
func (s ConversionState) Active() bool {
	return s == StateDownloading || s == StateConverting
}

// Terminal reports whether the state ends an attempt.
func (s ConversionState) Terminal() bool {
	return s == StateSuccess || s == StateError
}

// Paper holds the arXiv metadata and local file locations for one paper.
type Paper struct {
	// ID is the normalized arXiv identifier (e.g. "2101.00001" or "hep-th/9901001").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with whitespace collapsed.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the arXiv summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Categories lists arXiv categories, primary first.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`

	// Links holds every link advertised by the arXiv entry.
	Links []string `json:"links,omitempty" yaml:"links,omitempty"`

	// PDFURL is the URL the source document is downloaded from.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	// Published is the first-version submission date.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the date of the latest version.
	Updated time.Time `json:"updated,omitzero" yaml:"updated,omitempty"`

	// PDFPath is the local path of the downloaded source document.
	PDFPath string `json:"pdf_path,omitempty" yaml:"pdf_path,omitempty"`

	// MarkdownPath is the local path of the converted-text artifact.
	MarkdownPath string `json:"markdown_path,omitempty" yaml:"markdown_path,omitempty"`

	// PageCount is the number of pages pdfcpu reported for the source document.
	PageCount int `json:"page_count,omitempty" yaml:"page_count,omitempty"`
}
