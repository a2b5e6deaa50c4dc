// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package book

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/poembook/internal/artifact"
	"github.com/pdiddy/poembook/pkg/types"
)

// stubGenerator returns a fixed poem for every topic, or an error for topics
// listed in fail.
type stubGenerator struct {
	calls  atomic.Int32
	fail   map[string]error
	delay  time.Duration
	mu     sync.Mutex
	topics []string
}

func (g *stubGenerator) Generate(ctx context.Context, topic string) (artifact.Artifact, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.topics = append(g.topics, topic)
	g.mu.Unlock()
	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.delay):
		}
	}
	if err, ok := g.fail[topic]; ok {
		return nil, err
	}
	return &artifact.Poem{
		Topic:    topic,
		Equation: "H = a+b",
		Variables: []artifact.Variable{
			{Symbol: "H", Name: "Hope", Description: "d1"},
			{Symbol: "a", Name: "Action", Description: "d2"},
		},
		Explanation: "e",
	}, nil
}

// memRecorder collects journaled outcomes.
type memRecorder struct {
	mu       sync.Mutex
	outcomes []types.Outcome
}

func (r *memRecorder) Record(_ context.Context, o types.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
	return nil
}

func newBook(t *testing.T, gen Generator) *Book {
	t.Helper()
	return &Book{
		Paths:     types.PathsConfig{Root: t.TempDir()},
		Kind:      artifact.KindPoem,
		Generator: gen,
	}
}

func outline(chapters ...types.Chapter) types.Outline {
	return types.Outline{Chapters: chapters}
}

func TestBuildPages_WritesFragment(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)

	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "Intro", Topics: []string{"hope"}}), PageOptions{Mode: types.ModeSequential})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)

	files, err := os.ReadDir(b.FragmentDir())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "001_hope.tex", files[0].Name())

	data, err := os.ReadFile(filepath.Join(b.FragmentDir(), "001_hope.tex"))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, `\poem{hope}{hope = a+b}`), content)
	assert.Equal(t, 1, strings.Count(content, `\item`))
	assert.Contains(t, content, `\item $a$:`)
}

func TestBuildPages_SkipsExisting(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	path := filepath.Join(b.FragmentDir(), "001_hope.tex")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("hand edited"), 0o644))

	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "Intro", Topics: []string{"hope"}}), PageOptions{})
	require.NoError(t, err)

	assert.Equal(t, int32(0), gen.calls.Load())
	assert.Equal(t, 1, summary.Skipped)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hand edited", string(data))
}

func TestBuildPages_OverwriteRegenerates(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	path := filepath.Join(b.FragmentDir(), "001_hope.tex")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "Intro", Topics: []string{"hope"}}), PageOptions{Overwrite: true, Mode: types.ModeSequential})
	require.NoError(t, err)

	assert.Equal(t, int32(1), gen.calls.Load())
	assert.Equal(t, 1, summary.Written)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), `\poem{hope}`))
}

func TestBuildPages_LegacyRename(t *testing.T) {
	tests := []struct {
		name        string
		existing    []string
		wantStatus  types.OutcomeStatus
		wantCalls   int32
		wantPresent []string
	}{
		{"no legacy file", nil, types.StatusWritten, 1, []string{"002_hope.tex"}},
		{"one legacy file", []string{"007_hope.tex"}, types.StatusRenamed, 0, []string{"002_hope.tex"}},
		{"two legacy files", []string{"007_hope.tex", "009_hope.tex"}, types.StatusWritten, 1, []string{"002_hope.tex", "007_hope.tex", "009_hope.tex"}},
		{"other topic ignored", []string{"007_inner_hope.tex"}, types.StatusWritten, 1, []string{"002_hope.tex", "007_inner_hope.tex"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{}
			b := newBook(t, gen)
			dir := b.FragmentDir()
			require.NoError(t, os.MkdirAll(dir, 0o755))
			for _, name := range tt.existing {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("legacy "+name), 0o644))
			}

			o := outline(types.Chapter{Name: "Intro", Topics: []string{"joy", "hope"}})
			gen.fail = map[string]error{"joy": errors.New("not under test")}
			summary, err := b.BuildPages(context.Background(), o, PageOptions{Mode: types.ModeSequential, MigrateLegacy: true})
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, summary.Outcomes[1].Status)
			assert.Equal(t, tt.wantCalls+1, gen.calls.Load())

			files, err := os.ReadDir(dir)
			require.NoError(t, err)
			var names []string
			for _, f := range files {
				names = append(names, f.Name())
			}
			sort.Strings(names)
			assert.Equal(t, tt.wantPresent, names)
		})
	}
}

func TestBuildPages_LegacyRenameDisabled(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	dir := b.FragmentDir()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "007_hope.tex"), []byte("legacy"), 0o644))

	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "Intro", Topics: []string{"hope"}}), PageOptions{Mode: types.ModeSequential})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.FileExists(t, filepath.Join(dir, "007_hope.tex"))
}

func TestBuildPages_FailureIsolation(t *testing.T) {
	for _, mode := range []types.ConcurrencyMode{types.ModeSequential, types.ModePool, types.ModeConcurrent} {
		t.Run(string(mode), func(t *testing.T) {
			gen := &stubGenerator{fail: map[string]error{"t2": errors.New("gave up")}}
			b := newBook(t, gen)
			rec := &memRecorder{}
			b.Journal = rec

			o := outline(
				types.Chapter{Name: "A", Topics: []string{"t1", "t2"}},
				types.Chapter{Name: "B", Topics: []string{"t3", "t4", "t5"}},
			)
			summary, err := b.BuildPages(context.Background(), o, PageOptions{Mode: mode, Workers: 2})
			require.NoError(t, err)

			assert.Equal(t, 4, summary.Written)
			assert.Equal(t, 1, summary.Failed)
			assert.Equal(t, 5, summary.Total())
			assert.True(t, summary.HasFailures())

			for i, out := range summary.Outcomes {
				assert.Equal(t, i+1, out.Index, "outcomes are in outline order")
			}
			assert.Equal(t, types.StatusFailed, summary.Outcomes[1].Status)
			assert.EqualError(t, summary.Outcomes[1].Err, "gave up")
			assert.FileExists(t, filepath.Join(b.FragmentDir(), "005_t5.tex"))
			assert.NoFileExists(t, filepath.Join(b.FragmentDir(), "002_t2.tex"))
			assert.Len(t, rec.outcomes, 5)
		})
	}
}

func TestBuildPages_PoolRespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	gen := &gaugeGenerator{inFlight: &inFlight, peak: &peak}
	b := newBook(t, gen)

	var topics []string
	for i := 0; i < 12; i++ {
		topics = append(topics, "topic"+string(rune('a'+i)))
	}
	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "A", Topics: topics}), PageOptions{Mode: types.ModePool, Workers: 3})
	require.NoError(t, err)
	assert.Equal(t, 12, summary.Written)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

// gaugeGenerator tracks how many calls run at once.
type gaugeGenerator struct {
	inFlight *atomic.Int32
	peak     *atomic.Int32
	stub     stubGenerator
}

func (g *gaugeGenerator) Generate(ctx context.Context, topic string) (artifact.Artifact, error) {
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return g.stub.Generate(ctx, topic)
}

func TestBuildPages_UnknownMode(t *testing.T) {
	b := newBook(t, &stubGenerator{})
	_, err := b.BuildPages(context.Background(), outline(), PageOptions{Mode: "swarm"})
	assert.Error(t, err)
}

func TestBuildPages_CancelledContext(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := b.BuildPages(ctx, outline(types.Chapter{Name: "A", Topics: []string{"t1", "t2"}}), PageOptions{Mode: types.ModeSequential})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	assert.Equal(t, int32(0), gen.calls.Load())
	assert.ErrorIs(t, summary.Outcomes[0].Err, context.Canceled)
}

func TestBuildPages_WriteFailure(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	// A file where the content directory should be makes MkdirAll fail.
	require.NoError(t, os.MkdirAll(b.Paths.BookDir(), 0o755))
	require.NoError(t, os.WriteFile(b.Paths.ContentDir(), []byte("not a dir"), 0o644))

	summary, err := b.BuildPages(context.Background(), outline(types.Chapter{Name: "A", Topics: []string{"t1"}}), PageOptions{Mode: types.ModeSequential, Overwrite: true})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)

	var fse *FileSystemError
	require.True(t, errors.As(summary.Outcomes[0].Err, &fse))
	assert.Equal(t, "mkdir", fse.Op)
}

func TestSkeleton(t *testing.T) {
	b := newBook(t, &stubGenerator{})
	o := outline(
		types.Chapter{Name: "Intro", Topics: []string{"hope", "fear"}},
		types.Chapter{Name: "Love & Loss", Topics: []string{"grief"}},
	)

	got, err := b.Skeleton(o)
	require.NoError(t, err)
	want := strings.Join([]string{
		`\part{Intro}`,
		`\input{content/poems/001_hope}`,
		`\input{content/poems/002_fear}`,
		`\part{Love \& Loss}`,
		`\input{content/poems/003_grief}`,
	}, "\n")
	assert.Equal(t, want, got)
}

func TestBuildSkeleton_KeepsExisting(t *testing.T) {
	b := newBook(t, &stubGenerator{})
	o := outline(types.Chapter{Name: "Intro", Topics: []string{"hope"}})

	require.NoError(t, b.BuildSkeleton(o, false))
	data, err := os.ReadFile(b.Paths.SkeletonFile())
	require.NoError(t, err)
	assert.Contains(t, string(data), `\input{content/poems/001_hope}`)

	require.NoError(t, os.WriteFile(b.Paths.SkeletonFile(), []byte("custom"), 0o644))
	require.NoError(t, b.BuildSkeleton(o, false))
	data, err = os.ReadFile(b.Paths.SkeletonFile())
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))

	require.NoError(t, b.BuildSkeleton(o, true))
	data, err = os.ReadFile(b.Paths.SkeletonFile())
	require.NoError(t, err)
	assert.Equal(t, "\\part{Intro}\n\\input{content/poems/001_hope}", string(data))
}

func TestBuild(t *testing.T) {
	gen := &stubGenerator{}
	b := newBook(t, gen)
	b.Kind = artifact.KindMelody

	summary, err := b.Build(context.Background(), outline(types.Chapter{Name: "Intro", Topics: []string{"joy"}}), PageOptions{Mode: types.ModeConcurrent})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)
	assert.FileExists(t, b.Paths.SkeletonFile())
	assert.FileExists(t, filepath.Join(b.Paths.ContentDir(), "melodies", "001_joy.tex"))
}
