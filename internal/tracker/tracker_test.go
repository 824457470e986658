// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tracker

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsShrizon/Arxiv-research-assistant/pkg/types"
)

// fakeClock returns a strictly increasing time on every call.
func fakeClock() func() time.Time {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var n int64
	return func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&n, 1)) * time.Second)
	}
}

func TestLifecycleSuccess(t *testing.T) {
	tr := New(WithClock(fakeClock()))

	s, err := tr.Begin("2101.00001")
	require.NoError(t, err)
	assert.Equal(t, types.StateDownloading, s.State)
	assert.NotEmpty(t, s.AttemptID)
	assert.Nil(t, s.CompletedAt)
	started := s.StartedAt

	s, err = tr.Advance("2101.00001", types.StateConverting)
	require.NoError(t, err)
	assert.Equal(t, types.StateConverting, s.State)
	assert.Nil(t, s.CompletedAt)

	s, err = tr.Advance("2101.00001", types.StateSuccess)
	require.NoError(t, err)
	assert.Equal(t, types.StateSuccess, s.State)
	require.NotNil(t, s.CompletedAt)
	assert.True(t, s.CompletedAt.After(started))
	assert.Equal(t, started, s.StartedAt, "started_at is immutable")
	assert.Empty(t, s.Error)
}

func TestFailFromEachActiveState(t *testing.T) {
	for _, from := range []types.ConversionState{types.StateDownloading, types.StateConverting} {
		t.Run(string(from), func(t *testing.T) {
			tr := New()
			_, err := tr.Begin("x")
			require.NoError(t, err)
			if from == types.StateConverting {
				_, err = tr.Advance("x", types.StateConverting)
				require.NoError(t, err)
			}

			s, err := tr.Fail("x", "boom")
			require.NoError(t, err)
			assert.Equal(t, types.StateError, s.State)
			assert.Equal(t, "boom", s.Error)
			assert.NotNil(t, s.CompletedAt)
		})
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup []types.ConversionState
		to    types.ConversionState
	}{
		{"downloading to success", nil, types.StateSuccess},
		{"downloading to downloading", nil, types.StateDownloading},
		{"converting to downloading", []types.ConversionState{types.StateConverting}, types.StateDownloading},
		{"success to downloading", []types.ConversionState{types.StateConverting, types.StateSuccess}, types.StateDownloading},
		{"success to error", []types.ConversionState{types.StateConverting, types.StateSuccess}, types.StateError},
		{"error to converting", []types.ConversionState{types.StateError}, types.StateConverting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			_, err := tr.Begin("x")
			require.NoError(t, err)
			for _, st := range tt.setup {
				_, err := tr.Advance("x", st)
				require.NoError(t, err)
			}
			before, _ := tr.Peek("x")

			_, err = tr.Advance("x", tt.to)
			var terr *TransitionError
			require.True(t, errors.As(err, &terr), "got %v", err)
			assert.Equal(t, before.State, terr.From)
			assert.Equal(t, tt.to, terr.To)

			after, _ := tr.Peek("x")
			assert.Equal(t, before, after, "rejected transition must not mutate the entry")
		})
	}
}

func TestUnknownEntry(t *testing.T) {
	tr := New()
	_, err := tr.Advance("missing", types.StateConverting)
	assert.ErrorIs(t, err, ErrUnknownEntry)
	_, err = tr.Fail("missing", "x")
	assert.ErrorIs(t, err, ErrUnknownEntry)
}

func TestBeginRejectsActive(t *testing.T) {
	tr := New()
	first, err := tr.Begin("x")
	require.NoError(t, err)

	cur, err := tr.Begin("x")
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
	assert.Equal(t, first.AttemptID, cur.AttemptID)

	_, err = tr.Advance("x", types.StateConverting)
	require.NoError(t, err)
	_, err = tr.Begin("x")
	assert.ErrorIs(t, err, ErrAlreadyInProgress)
}

func TestBeginOverwritesTerminal(t *testing.T) {
	tr := New(WithClock(fakeClock()))
	first, err := tr.Begin("x")
	require.NoError(t, err)
	_, err = tr.Fail("x", "network down")
	require.NoError(t, err)

	second, err := tr.Begin("x")
	require.NoError(t, err)
	assert.Equal(t, types.StateDownloading, second.State)
	assert.NotEqual(t, first.AttemptID, second.AttemptID)
	assert.True(t, second.StartedAt.After(first.StartedAt))
	assert.Empty(t, second.Error)
	assert.Nil(t, second.CompletedAt)
}

func TestPeekDoesNotMutate(t *testing.T) {
	tr := New()
	_, ok := tr.Peek("x")
	assert.False(t, ok)
	assert.Empty(t, tr.Snapshot(), "peek must not create entries")

	_, err := tr.Begin("x")
	require.NoError(t, err)

	s, ok := tr.Peek("x")
	require.True(t, ok)
	s.State = types.StateSuccess

	again, _ := tr.Peek("x")
	assert.Equal(t, types.StateDownloading, again.State, "returned status is a copy")
}

func TestConcurrentBeginSingleWinner(t *testing.T) {
	tr := New()
	const callers = 64

	var wins, rejected int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := tr.Begin("2101.00001")
			switch {
			case err == nil:
				atomic.AddInt32(&wins, 1)
			case errors.Is(err, ErrAlreadyInProgress):
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins)
	assert.Equal(t, int32(callers-1), rejected)
}

func TestSnapshotOrdered(t *testing.T) {
	tr := New(WithClock(fakeClock()))
	for _, id := range []string{"c", "a", "b"} {
		_, err := tr.Begin(id)
		require.NoError(t, err)
	}
	snap := tr.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "c", snap[0].PaperID)
	assert.Equal(t, "a", snap[1].PaperID)
	assert.Equal(t, "b", snap[2].PaperID)
}

func TestStatusMonotonic(t *testing.T) {
	tr := New()
	_, err := tr.Begin("x")
	require.NoError(t, err)

	order := map[types.ConversionState]int{
		types.StateDownloading: 0,
		types.StateConverting:  1,
		types.StateSuccess:     2,
		types.StateError:       2,
	}
	last := 0
	for _, st := range []types.ConversionState{types.StateConverting, types.StateDownloading, types.StateSuccess, types.StateConverting} {
		tr.Advance("x", st)
		cur, _ := tr.Peek("x")
		assert.GreaterOrEqual(t, order[cur.State], last)
		last = order[cur.State]
	}
}
