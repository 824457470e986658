// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/itsShrizon/Arxiv-research-assistant/internal/acquire"
)

// BatchResult counts the outcomes of a Batch run.
type BatchResult struct {
	Converted int
	Skipped   int
	Busy      int
	Failed    int
	Outcomes  map[string]Outcome
}

// Total returns the number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Busy + r.Failed
}

// Batch runs DownloadAndConvert for every identifier with at most
// concurrency papers in flight, printing one line per paper and a summary
// to w. Invalid identifiers are counted as failures without touching the
// tracker. Individual failures never stop the batch; only ctx cancellation
// does.
func (o *Orchestrator) Batch(ctx context.Context, identifiers []string, concurrency int, w io.Writer) (BatchResult, error) {
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		mu     sync.Mutex
		result = BatchResult{Outcomes: make(map[string]Outcome, len(identifiers))}
	)
	report := func(id string, out Outcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Outcomes[id] = out
		switch out.Kind {
		case Completed:
			result.Converted++
			fmt.Fprintf(w, "converted: %s -> %s\n", id, out.Location)
		case AlreadyAvailable:
			result.Skipped++
			fmt.Fprintf(w, "skipped: %s (already available)\n", id)
		case InProgress:
			result.Busy++
			fmt.Fprintf(w, "busy:    %s (%s)\n", id, out.Status.State)
		default:
			result.Failed++
			if out.Failure == FailureNone {
				fmt.Fprintf(w, "failed:  %s (%s)\n", id, out.Reason)
			} else {
				fmt.Fprintf(w, "failed:  %s (%s: %s)\n", id, out.Failure, out.Reason)
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, raw := range identifiers {
		raw := raw // per-iteration copy (Go <1.22 loop semantics)
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			id, err := acquire.Classify(raw)
			if err != nil {
				report(raw, Outcome{Kind: Failed, Reason: err.Error()})
				return nil
			}
			report(id, o.DownloadAndConvert(gctx, id))
			return gctx.Err()
		})
	}
	err := g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d busy, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Busy, result.Failed, result.Total())
	return result, err
}
