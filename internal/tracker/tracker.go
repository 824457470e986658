// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tracker holds the in-memory conversion status of every paper the
// process has attempted to download and convert.
//
// The table is not persisted and is never pruned: entries accumulate for the
// lifetime of the process. A terminal entry (success or error) is replaced
// by the next Begin for the same paper, which is how callers retry after a
// failure.
package tracker

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

var (
	// ErrAlreadyInProgress is returned by Begin while an attempt is active.
	ErrAlreadyInProgress = errors.New("conversion already in progress")

	// ErrUnknownEntry is returned when a paper has no tracker entry.
	ErrUnknownEntry = errors.New("no conversion entry")
)

// TransitionError reports an illegal state change.
type TransitionError struct {
	PaperID string
	From    types.ConversionState
	To      types.ConversionState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %s: %s -> %s", e.PaperID, e.From, e.To)
}

// Status is a snapshot of one paper's conversion attempt.
type Status struct {
	PaperID     string                `json:"paper_id"`
	State       types.ConversionState `json:"status"`
	AttemptID   string                `json:"attempt_id"`
	StartedAt   time.Time             `json:"started_at"`
	CompletedAt *time.Time            `json:"completed_at,omitempty"`
	Error       string                `json:"error,omitempty"`
}

// Tracker is a mutex-guarded table of conversion statuses keyed by paper id.
type Tracker struct {
	mu      sync.RWMutex
	entries map[string]*Status
	now     func() time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// New creates an empty tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		entries: make(map[string]*Status),
		now:     time.Now,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Begin starts a new attempt for id in the downloading state. The check for
// an active entry and the insert happen under one lock, so of two
// concurrent callers for the same id exactly one succeeds.
func (t *Tracker) Begin(id string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[id]; ok && cur.State.Active() {
		return *cur, ErrAlreadyInProgress
	}

	s := &Status{
		PaperID:   id,
		State:     types.StateDownloading,
		AttemptID: uuid.NewString(),
		StartedAt: t.now(),
	}
	t.entries[id] = s
	return *s, nil
}

// Advance moves id to state. Terminal states stamp CompletedAt.
func (t *Tracker) Advance(id string, state types.ConversionState) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advanceLocked(id, state, "")
}

// Fail moves id to the error state and records message.
func (t *Tracker) Fail(id, message string) (Status, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advanceLocked(id, types.StateError, message)
}

func (t *Tracker) advanceLocked(id string, state types.ConversionState, message string) (Status, error) {
	cur, ok := t.entries[id]
	if !ok {
		return Status{}, fmt.Errorf("%s: %w", id, ErrUnknownEntry)
	}
	if !validTransition(cur.State, state) {
		return *cur, &TransitionError{PaperID: id, From: cur.State, To: state}
	}

	cur.State = state
	if state.Terminal() {
		now := t.now()
		cur.CompletedAt = &now
	}
	if state == types.StateError {
		cur.Error = message
	}
	return *cur, nil
}

// Peek returns a copy of the entry for id without modifying it.
func (t *Tracker) Peek(id string) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cur, ok := t.entries[id]
	if !ok {
		return Status{}, false
	}
	return *cur, true
}

// Snapshot returns copies of every entry, oldest attempt first.
func (t *Tracker) Snapshot() []Status {
	t.mu.RLock()
	out := make([]Status, 0, len(t.entries))
	for _, s := range t.entries {
		out = append(out, *s)
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].PaperID < out[j].PaperID
		}
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out
}

// validTransition enforces the per-attempt state machine edges.
func validTransition(from, to types.ConversionState) bool {
	switch from {
	case types.StateDownloading:
		return to == types.StateConverting || to == types.StateError
	case types.StateConverting:
		return to == types.StateSuccess || to == types.StateError
	default:
		return false
	}
}
