// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store maps paper identifiers to their on-disk artifacts.
//
// The converted-text artifact <root>/<id>.md is the sole source of truth for
// "paper available". The raw source document sits next to it as
// <root>/<id>.pdf, and a YAML metadata sidecar lives under
// <root>/metadata/<id>.yaml.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

const (
	MarkdownExt = ".md"
	PDFExt      = ".pdf"
	metadataDir = "metadata"
	metadataExt = ".yaml"
)

// ErrNotFound is returned by Read and ReadMetadata when no artifact exists.
var ErrNotFound = errors.New("paper not found in storage")

// PersistenceError wraps an I/O failure while writing an artifact.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persisting %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is a filesystem-backed paper store rooted at one directory.
type Store struct {
	root string
}

// New returns a store rooted at root. It does not touch the filesystem;
// call EnsureRoot before the first write.
func New(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

// Root returns the storage root directory.
func (s *Store) Root() string { return s.root }

// EnsureRoot creates the storage root and the metadata directory.
func (s *Store) EnsureRoot() error {
	for _, dir := range []string{s.root, filepath.Join(s.root, metadataDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &PersistenceError{Path: dir, Err: err}
		}
	}
	return nil
}

// FileStem turns an identifier into a file name stem. Old-style arXiv ids
// carry a slash ("hep-th/9901001") which is flattened to an underscore.
func FileStem(id string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(id)
}

// PathFor returns the converted-text artifact location for id. It performs
// no I/O.
func (s *Store) PathFor(id string) string {
	return filepath.Join(s.root, FileStem(id)+MarkdownExt)
}

// SourcePathFor returns the raw source document location for id.
func (s *Store) SourcePathFor(id string) string {
	return filepath.Join(s.root, FileStem(id)+PDFExt)
}

// MetadataPathFor returns the metadata sidecar location for id.
func (s *Store) MetadataPathFor(id string) string {
	return filepath.Join(s.root, metadataDir, FileStem(id)+metadataExt)
}

// ResourceURI returns the file:// URI callers use to open the artifact.
func (s *Store) ResourceURI(id string) string {
	p, err := filepath.Abs(s.PathFor(id))
	if err != nil {
		p = s.PathFor(id)
	}
	return "file://" + filepath.ToSlash(p)
}

// Has reports whether the converted-text artifact exists for id.
func (s *Store) Has(id string) bool {
	info, err := os.Stat(s.PathFor(id))
	return err == nil && info.Mode().IsRegular()
}

// Read returns the converted text for id, or ErrNotFound.
func (s *Store) Read(id string) (string, error) {
	data, err := os.ReadFile(s.PathFor(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return "", fmt.Errorf("reading %s: %w", id, err)
	}
	return string(data), nil
}

// Write persists text as the artifact for id. The content goes to a temp
// file in the same directory first and is renamed into place, so Has never
// observes a partial artifact.
func (s *Store) Write(id, text string) error {
	return writeAtomic(s.PathFor(id), []byte(text))
}

// List returns the identifiers of every stored artifact, sorted. Stems are
// returned as stored, so old-style ids come back in their flattened form.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.root, err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != MarkdownExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, MarkdownExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// WriteMetadata stores the paper record as a YAML sidecar.
func (s *Store) WriteMetadata(p *types.Paper) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling metadata for %s: %w", p.ID, err)
	}
	return writeAtomic(s.MetadataPathFor(p.ID), data)
}

// ReadMetadata loads the YAML sidecar for id, or ErrNotFound.
func (s *Store) ReadMetadata(id string) (*types.Paper, error) {
	data, err := os.ReadFile(s.MetadataPathFor(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("metadata for %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("reading metadata for %s: %w", id, err)
	}
	var p types.Paper
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing metadata for %s: %w", id, err)
	}
	return &p, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: path, Err: writeErr}
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: path, Err: closeErr}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}
