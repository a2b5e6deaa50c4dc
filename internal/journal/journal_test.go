// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/poembook/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "out", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBeginRunAssignsID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run, err := s.BeginRun(ctx, types.Run{Kind: "poem", Mode: types.ModePool, Model: "claude-sonnet-4-0"})
	require.NoError(t, err)

	_, err = uuid.Parse(run.ID)
	assert.NoError(t, err)
	assert.False(t, run.StartedAt.IsZero())
}

func TestLatestRunAndOutcomes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	_, err := s.BeginRun(ctx, types.Run{StartedAt: base, Kind: "poem"})
	require.NoError(t, err)
	latest, err := s.BeginRun(ctx, types.Run{StartedAt: base.Add(time.Minute), Kind: "melody", Mode: types.ModeSequential})
	require.NoError(t, err)

	rec := s.Recorder(latest.ID)
	require.NoError(t, rec.Record(ctx, types.Outcome{Index: 2, Topic: "grief", Status: types.StatusFailed, Err: errors.New("gave up after 3 attempts")}))
	require.NoError(t, rec.Record(ctx, types.Outcome{Index: 1, Topic: "joy", Path: "book/content/melodies/001_joy.tex", Status: types.StatusWritten}))
	require.NoError(t, s.FinishRun(ctx, latest.ID))

	got, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, "melody", got.Kind)
	assert.Equal(t, types.ModeSequential, got.Mode)
	assert.False(t, got.FinishedAt.IsZero())

	entries, err := s.Outcomes(ctx, latest.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "joy", entries[0].Topic)
	assert.Equal(t, types.StatusWritten, entries[0].Status)
	assert.Equal(t, "", entries[0].Error)
	assert.Equal(t, "grief", entries[1].Topic)
	assert.Equal(t, "gave up after 3 attempts", entries[1].Error)
}

func TestLatestRunSubsecondOrder(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 5, 0, time.UTC)
	tests := []struct {
		name          string
		first, second time.Time
	}{
		{"whole second then fraction", base, base.Add(500 * time.Millisecond)},
		{"fraction then next whole second", base.Add(500 * time.Millisecond), base.Add(time.Second)},
		{"non-UTC zone", base.In(time.FixedZone("EST", -5*3600)), base.Add(time.Millisecond)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			ctx := context.Background()

			_, err := s.BeginRun(ctx, types.Run{ID: "earlier", StartedAt: tt.first})
			require.NoError(t, err)
			_, err = s.BeginRun(ctx, types.Run{ID: "later", StartedAt: tt.second})
			require.NoError(t, err)

			got, err := s.LatestRun(ctx)
			require.NoError(t, err)
			assert.Equal(t, "later", got.ID)
			assert.True(t, got.StartedAt.Equal(tt.second))
		})
	}
}

func TestLatestRunEmpty(t *testing.T) {
	s := testStore(t)
	_, err := s.LatestRun(context.Background())
	assert.ErrorIs(t, err, ErrNoRuns)
}

func TestFinishRunUnknown(t *testing.T) {
	s := testStore(t)
	assert.Error(t, s.FinishRun(context.Background(), "missing"))
}

func TestConcurrentRecord(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	run, err := s.BeginRun(ctx, types.Run{Kind: "poem"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 25; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Record(ctx, run.ID, types.Outcome{Index: i, Topic: "t", Status: types.StatusSkipped}))
		}(i)
	}
	wg.Wait()

	entries, err := s.Outcomes(ctx, run.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 25)
	for i, e := range entries {
		assert.Equal(t, i+1, e.Index)
	}
}

func TestOpenReopensExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.BeginRun(context.Background(), types.Run{Kind: "poem"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
}
