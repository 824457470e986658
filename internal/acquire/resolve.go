// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned by Classify for anything that is not an
// arXiv identifier.
var ErrInvalidIdentifier = errors.New("not an arXiv identifier")

// Base URLs for arXiv. Declared as vars so tests can substitute httptest
// servers.
var (
	arxivPDFBase = "https://arxiv.org/pdf/"
	arxivAPIBase = "https://export.arxiv.org/api/query"
)

// newStylePattern matches post-2007 ids: "2101.00001", "arXiv:2101.00001v2",
// "0704.0001".
var newStylePattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?)$`)

// oldStylePattern matches pre-2007 ids: "hep-th/9901001", "math.GT/0309136v1".
var oldStylePattern = regexp.MustCompile(`^(?i:arxiv:)?([a-z][a-z\-]*(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)

// absURLPattern pulls the id out of an abs or pdf URL.
var absURLPattern = regexp.MustCompile(`^https?://(?:export\.)?arxiv\.org/(?:abs|pdf)/(.+?)(?:\.pdf)?$`)

// Classify validates an identifier and returns its normalized form: the
// "arXiv:" prefix and surrounding whitespace are removed, and abs/pdf URLs
// are reduced to the id they name.
func Classify(identifier string) (string, error) {
	id := strings.TrimSpace(identifier)
	if m := absURLPattern.FindStringSubmatch(id); m != nil {
		id = m[1]
	}

	if m := newStylePattern.FindStringSubmatch(id); m != nil {
		return m[1], nil
	}
	if m := oldStylePattern.FindStringSubmatch(id); m != nil {
		return m[1], nil
	}
	return "", fmt.Errorf("%q: %w", identifier, ErrInvalidIdentifier)
}

// PDFURL returns the arxiv.org PDF endpoint for a normalized id.
func PDFURL(id string) string {
	return arxivPDFBase + id
}

// idFromEntryURL strips the abs URL prefix from an Atom entry id:
// "http://arxiv.org/abs/2101.00001v1" becomes "2101.00001v1".
func idFromEntryURL(entryID string) string {
	if i := strings.Index(entryID, "/abs/"); i >= 0 {
		return entryID[i+len("/abs/"):]
	}
	return entryID[strings.LastIndex(entryID, "/")+1:]
}
