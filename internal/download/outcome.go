// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"github.com/itsShrizon/Arxiv-research-assistant/internal/tracker"
)

// Kind discriminates the result of one orchestration call.
type Kind int

const (
	// AlreadyAvailable means the artifact existed and no work was done.
	AlreadyAvailable Kind = iota
	// InProgress means an attempt for the paper is running; poll for status.
	InProgress
	// Completed means this call ran the full pipeline successfully.
	Completed
	// Failed means this call ran part of the pipeline and it failed.
	Failed
	// NotFoundUpstream means arXiv does not know the identifier.
	NotFoundUpstream
)

func (k Kind) String() string {
	switch k {
	case AlreadyAvailable:
		return "already_available"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case NotFoundUpstream:
		return "not_found_upstream"
	default:
		return "unknown"
	}
}

// Failure classifies why an attempt did not produce an artifact.
type Failure string

const (
	FailureNone              Failure = ""
	FailureNotFoundUpstream  Failure = "not_found_upstream"
	FailureDownload          Failure = "download_failure"
	FailureConversion        Failure = "conversion_failure"
	FailurePersistence       Failure = "persistence_error"
	FailureAlreadyInProgress Failure = "already_in_progress"
)

// Outcome is the result of DownloadAndConvert or Start.
type Outcome struct {
	Kind Kind

	// Location is the artifact path for AlreadyAvailable and Completed.
	Location string

	// Status is the tracker entry as of the return. It is zero for
	// AlreadyAvailable.
	Status tracker.Status

	// Reason is the human-readable failure text for Failed and
	// NotFoundUpstream.
	Reason string

	Failure Failure
}

// Report states that are not tracker states.
const (
	StateAvailable = "available"
	StateUnknown   = "unknown"
)

// StatusReport is the answer of the read-only status path.
type StatusReport struct {
	PaperID string

	// State is StateAvailable, a tracker state, or StateUnknown.
	State string

	// Location is set when State is StateAvailable.
	Location string

	// Status is the tracker entry, when one exists.
	Status *tracker.Status
}
