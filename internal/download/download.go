// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download runs the per-paper download and convert pipeline.
//
// The Orchestrator composes the paper store, the conversion tracker and the
// arXiv and conversion collaborators into one idempotent, pollable
// operation. A stored artifact short-circuits everything; otherwise the
// tracker's Begin decides which caller does the work and every other caller
// is told the attempt is in progress.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/convert"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/store"
	"github.com/itsShrizon/Arxiv-research-assistant/internal/tracker"
	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// MetadataFetcher resolves an identifier to its paper record. Unknown
// identifiers yield an error wrapping acquire.ErrPaperNotFound.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, id string) (*types.Paper, error)
}

// DocumentFetcher downloads the source PDF of paper to destPath. On error
// no file may be left at destPath.
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, paper *types.Paper, destPath string) error
}

// Converter turns a PDF into Markdown text.
type Converter interface {
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// Inspector validates a downloaded PDF before conversion.
type Inspector interface {
	Inspect(pdfPath string) (convert.PDFInfo, error)
}

// Recorder indexes completed papers, e.g. in the SQLite catalog.
type Recorder interface {
	Record(ctx context.Context, p *types.Paper) error
}

// Orchestrator runs DownloadAndConvert. It is safe for concurrent use.
type Orchestrator struct {
	store     *store.Store
	tracker   *tracker.Tracker
	metadata  MetadataFetcher
	documents DocumentFetcher
	converter Converter
	inspector Inspector
	recorder  Recorder

	stepTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time

	// background tracks attempts launched by Start.
	background sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithInspector validates each PDF before it is converted.
func WithInspector(i Inspector) Option {
	return func(o *Orchestrator) { o.inspector = i }
}

// WithRecorder records each completed paper.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithStepTimeout bounds the metadata fetch, the download and the
// conversion individually. Zero means no per-step bound.
func WithStepTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.stepTimeout = d }
}

// WithLogger replaces slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New builds an orchestrator. st, tr and the three collaborators are
// required.
func New(st *store.Store, tr *tracker.Tracker, meta MetadataFetcher, docs DocumentFetcher, conv Converter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:     st,
		tracker:   tr,
		metadata:  meta,
		documents: docs,
		converter: conv,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// DownloadAndConvert makes the artifact for id available, doing the work
// only if no artifact exists and no other attempt is running.
func (o *Orchestrator) DownloadAndConvert(ctx context.Context, id string) Outcome {
	if out, ok := o.claim(id); !ok {
		return out
	}
	return o.run(ctx, id)
}

// Start is the asynchronous form of DownloadAndConvert. When it claims the
// paper it runs the pipeline in the background and returns InProgress at
// once. The background attempt is detached from ctx cancellation; each
// step is still bounded by the step timeout.
func (o *Orchestrator) Start(ctx context.Context, id string) Outcome {
	out, ok := o.claim(id)
	if !ok {
		return out
	}

	bg := context.WithoutCancel(ctx)
	o.background.Add(1)
	go func() {
		defer o.background.Done()
		o.run(bg, id)
	}()
	return out
}

// Wait blocks until every attempt launched by Start has finished.
func (o *Orchestrator) Wait() {
	o.background.Wait()
}

// claim performs the cache check and the tracker Begin. ok is true when
// the caller now owns a fresh attempt; out then holds InProgress with the
// new entry.
func (o *Orchestrator) claim(id string) (out Outcome, ok bool) {
	if o.store.Has(id) {
		return Outcome{Kind: AlreadyAvailable, Location: o.store.PathFor(id)}, false
	}

	st, err := o.tracker.Begin(id)
	if errors.Is(err, tracker.ErrAlreadyInProgress) {
		if cur, found := o.tracker.Peek(id); found {
			st = cur
		}
		return Outcome{Kind: InProgress, Status: st, Failure: FailureAlreadyInProgress}, false
	}
	if err != nil {
		// Begin has no other failure today.
		return Outcome{Kind: Failed, Reason: err.Error(), Failure: FailureDownload}, false
	}

	// Another attempt may have stored the artifact between Has and Begin.
	if o.store.Has(id) {
		o.settle(id)
		return Outcome{Kind: AlreadyAvailable, Location: o.store.PathFor(id)}, false
	}

	o.logger.Info("conversion started", "paper_id", id, "attempt_id", st.AttemptID)
	return Outcome{Kind: InProgress, Status: st}, true
}

// settle closes an attempt that found the artifact already stored.
func (o *Orchestrator) settle(id string) {
	if _, err := o.tracker.Advance(id, types.StateConverting); err != nil {
		o.logger.Error("settling tracker entry", "paper_id", id, "error", err)
		return
	}
	if _, err := o.tracker.Advance(id, types.StateSuccess); err != nil {
		o.logger.Error("settling tracker entry", "paper_id", id, "error", err)
	}
}

// run executes steps three onward for an attempt the caller has begun.
// Every return path leaves the tracker entry terminal.
func (o *Orchestrator) run(ctx context.Context, id string) (out Outcome) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		cur, _ := o.tracker.Peek(id)
		switch cur.State {
		case types.StateSuccess:
			o.logger.Error("panic after conversion completed", "paper_id", id, "panic", r)
			out = Outcome{Kind: Completed, Location: o.store.PathFor(id), Status: cur}
		case types.StateConverting:
			out = o.fail(id, Failed, FailureConversion, fmt.Sprintf("internal error: %v", r))
		default:
			out = o.fail(id, Failed, FailureDownload, fmt.Sprintf("internal error: %v", r))
		}
	}()

	paper, err := o.fetchMetadata(ctx, id)
	if errors.Is(err, acquire.ErrPaperNotFound) {
		return o.fail(id, NotFoundUpstream, FailureNotFoundUpstream, "paper not found on arXiv")
	}
	if err != nil {
		return o.fail(id, Failed, FailureDownload, "fetching metadata: "+err.Error())
	}

	pdfPath := o.store.SourcePathFor(id)
	if err := o.fetchDocument(ctx, paper, pdfPath); err != nil {
		return o.fail(id, Failed, FailureDownload, "downloading PDF: "+err.Error())
	}
	paper.PDFPath = pdfPath

	if _, err := o.tracker.Advance(id, types.StateConverting); err != nil {
		return o.fail(id, Failed, FailureDownload, err.Error())
	}

	text, err := o.convertDocument(ctx, paper, pdfPath)
	if err != nil {
		return o.fail(id, Failed, FailureConversion, err.Error())
	}

	if err := o.store.Write(id, convert.AddFrontmatter(*paper, text, o.now())); err != nil {
		return o.fail(id, Failed, FailurePersistence, err.Error())
	}
	paper.MarkdownPath = o.store.PathFor(id)

	st, err := o.tracker.Advance(id, types.StateSuccess)
	if err != nil {
		o.logger.Error("finalizing tracker entry", "paper_id", id, "error", err)
	}

	o.persistMetadata(ctx, paper)
	o.logger.Info("conversion complete", "paper_id", id, "attempt_id", st.AttemptID, "pages", paper.PageCount)

	return Outcome{Kind: Completed, Location: paper.MarkdownPath, Status: st}
}

func (o *Orchestrator) fetchMetadata(ctx context.Context, id string) (*types.Paper, error) {
	ctx, cancel := o.stepContext(ctx)
	defer cancel()

	paper, err := o.metadata.FetchMetadata(ctx, id)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, errors.New("empty metadata response")
	}
	if paper.ID == "" {
		paper.ID = id
	}
	return paper, nil
}

func (o *Orchestrator) fetchDocument(ctx context.Context, paper *types.Paper, dest string) error {
	ctx, cancel := o.stepContext(ctx)
	defer cancel()
	return o.documents.FetchDocument(ctx, paper, dest)
}

// convertDocument inspects and converts the PDF under one step deadline.
// It records the page count on paper.
func (o *Orchestrator) convertDocument(ctx context.Context, paper *types.Paper, pdfPath string) (string, error) {
	ctx, cancel := o.stepContext(ctx)
	defer cancel()

	if o.inspector != nil {
		info, err := o.inspect(ctx, pdfPath)
		if err != nil {
			return "", err
		}
		paper.PageCount = info.PageCount
	}

	text, err := o.converter.Convert(ctx, pdfPath)
	if err != nil {
		return "", fmt.Errorf("converting PDF: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("converting PDF: %w", convert.ErrEmptyOutput)
	}
	return text, nil
}

// inspect runs the inspector until it returns or ctx ends. Inspect takes
// no context, so an abandoned call finishes in the background.
func (o *Orchestrator) inspect(ctx context.Context, pdfPath string) (convert.PDFInfo, error) {
	type result struct {
		info convert.PDFInfo
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("inspecting PDF: internal error: %v", r)}
			}
		}()
		info, err := o.inspector.Inspect(pdfPath)
		done <- result{info: info, err: err}
	}()

	select {
	case r := <-done:
		return r.info, r.err
	case <-ctx.Done():
		return convert.PDFInfo{}, fmt.Errorf("inspecting PDF: %w", ctx.Err())
	}
}

func (o *Orchestrator) stepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.stepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.stepTimeout)
}

// fail moves the tracker entry to error and builds the matching outcome.
func (o *Orchestrator) fail(id string, kind Kind, code Failure, reason string) Outcome {
	st, err := o.tracker.Fail(id, reason)
	if err != nil {
		o.logger.Error("recording failure in tracker", "paper_id", id, "error", err)
	}
	o.logger.Warn("conversion failed", "paper_id", id, "failure", string(code), "reason", reason)
	return Outcome{Kind: kind, Status: st, Reason: reason, Failure: code}
}

// persistMetadata writes the YAML sidecar and the catalog row. Neither is
// part of the availability contract, so failures are only logged.
func (o *Orchestrator) persistMetadata(ctx context.Context, paper *types.Paper) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("persisting metadata", "paper_id", paper.ID, "panic", r)
		}
	}()
	if err := o.store.WriteMetadata(paper); err != nil {
		o.logger.Warn("writing metadata sidecar", "paper_id", paper.ID, "error", err)
	}
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(context.WithoutCancel(ctx), paper); err != nil {
		o.logger.Warn("recording paper in catalog", "paper_id", paper.ID, "error", err)
	}
}

// CheckStatus reports progress for id without side effects.
func (o *Orchestrator) CheckStatus(id string) StatusReport {
	if o.store.Has(id) {
		return StatusReport{PaperID: id, State: StateAvailable, Location: o.store.PathFor(id)}
	}
	if st, ok := o.tracker.Peek(id); ok {
		return StatusReport{PaperID: id, State: string(st.State), Status: &st}
	}
	return StatusReport{PaperID: id, State: StateUnknown}
}

// Store returns the paper store the orchestrator writes to.
func (o *Orchestrator) Store() *store.Store { return o.store }

// Tracker returns the tracker the orchestrator reports through.
func (o *Orchestrator) Tracker() *tracker.Tracker { return o.tracker }
