// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the arxiv-assistant
// packages: paper metadata, conversion states, search results, and the
// configuration tree read at startup.
package types

import "time"

// SearchResult is one arXiv entry returned by a search query, in the order
// arXiv returned it.
type SearchResult struct {
	// ID is the arXiv identifier without the abs/ URL prefix.
	ID string `json:"id" yaml:"id"`

	Title    string    `json:"title" yaml:"title"`
	Authors  []string  `json:"authors" yaml:"authors"`
	Abstract string    `json:"abstract" yaml:"abstract"`
	Date     time.Time `json:"date" yaml:"date"`

	// Category is the primary arXiv category of the entry.
	Category string `json:"category" yaml:"category"`

	// URL is the PDF link for the entry.
	URL string `json:"url" yaml:"url"`
}
