// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package book turns an outline into LaTeX fragments, one per topic, and
// writes the skeleton document that includes them.
package book

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/poembook/internal/artifact"
	"github.com/pdiddy/poembook/internal/logbook"
	"github.com/pdiddy/poembook/internal/texenc"
	"github.com/pdiddy/poembook/pkg/types"
)

const (
	fragmentExt    = ".tex"
	defaultWorkers = 5
)

// Generator produces one validated artifact for a topic.
type Generator interface {
	Generate(ctx context.Context, topic string) (artifact.Artifact, error)
}

// Recorder persists per-topic outcomes.
type Recorder interface {
	Record(ctx context.Context, o types.Outcome) error
}

// FileSystemError reports a failed directory, write, or rename operation
// for one fragment.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// Book orchestrates fragment generation for one artifact kind.
type Book struct {
	Paths     types.PathsConfig
	Kind      artifact.Kind
	Generator Generator
	Log       *logbook.Logbook

	// Journal is optional.
	Journal Recorder
}

// PageOptions controls a BuildPages run.
type PageOptions struct {
	Overwrite     bool
	Mode          types.ConcurrencyMode
	Workers       int
	MigrateLegacy bool
}

// PageSummary holds per-topic outcomes in outline order and their counts.
type PageSummary struct {
	Outcomes []types.Outcome
	Written  int
	Renamed  int
	Skipped  int
	Failed   int
}

// Total returns the number of topics processed.
func (s PageSummary) Total() int {
	return s.Written + s.Renamed + s.Skipped + s.Failed
}

// HasFailures reports whether any topic failed.
func (s PageSummary) HasFailures() bool {
	return s.Failed > 0
}

// FragmentDir is the directory holding this kind's fragments.
func (b *Book) FragmentDir() string {
	return filepath.Join(b.Paths.ContentDir(), b.Kind.Dir())
}

func (b *Book) fragmentPath(e types.Entry) string {
	return FragmentPath(b.FragmentDir(), e.Index, e.Topic, fragmentExt)
}

// BuildPages produces a fragment for every outline entry. One topic's
// failure never stops the others; it is reported in the summary. The error
// return is reserved for invalid options.
func (b *Book) BuildPages(ctx context.Context, outline types.Outline, opts PageOptions) (PageSummary, error) {
	entries := outline.Flatten()
	outcomes := make([]types.Outcome, len(entries))

	run := func(i int) {
		outcomes[i] = b.buildPage(ctx, entries[i], opts)
		b.record(ctx, outcomes[i])
	}

	switch opts.Mode {
	case types.ModeSequential:
		for i := range entries {
			run(i)
		}
	case types.ModePool, "":
		workers := opts.Workers
		if workers <= 0 {
			workers = defaultWorkers
		}
		var g errgroup.Group
		g.SetLimit(workers)
		for i := range entries {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		g.Wait()
	case types.ModeConcurrent:
		var g errgroup.Group
		for i := range entries {
			i := i
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		g.Wait()
	default:
		return PageSummary{}, fmt.Errorf("unknown concurrency mode %q", opts.Mode)
	}

	summary := PageSummary{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Status {
		case types.StatusWritten:
			summary.Written++
		case types.StatusRenamed:
			summary.Renamed++
		case types.StatusSkipped:
			summary.Skipped++
		case types.StatusFailed:
			summary.Failed++
		}
	}
	return summary, nil
}

func (b *Book) buildPage(ctx context.Context, e types.Entry, opts PageOptions) types.Outcome {
	path := b.fragmentPath(e)
	out := types.Outcome{Index: e.Index, Topic: e.Topic, Path: path}
	fail := func(err error) types.Outcome {
		out.Status = types.StatusFailed
		out.Err = err
		b.Log.Error("[%d] %s failed: %v", e.Index, e.Topic, err)
		return out
	}

	if !opts.Overwrite {
		_, err := os.Stat(path)
		if err == nil {
			out.Status = types.StatusSkipped
			b.Log.Skip("[%d] %s exists, skipping", e.Index, path)
			return out
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fail(&FileSystemError{Op: "stat", Path: path, Err: err})
		}

		if opts.MigrateLegacy {
			legacy, err := findLegacy(b.FragmentDir(), e.Topic, path)
			if err != nil {
				return fail(err)
			}
			if legacy != "" {
				if err := os.Rename(legacy, path); err != nil {
					return fail(&FileSystemError{Op: "rename", Path: legacy, Err: err})
				}
				out.Status = types.StatusRenamed
				b.Log.Warn("[%d] renamed %s to %s", e.Index, legacy, path)
				return out
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	b.Log.Info("[%d] writing %s for %s", e.Index, b.Kind, e.Topic)
	a, err := b.Generator.Generate(ctx, e.Topic)
	if err != nil {
		return fail(err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail(&FileSystemError{Op: "mkdir", Path: filepath.Dir(path), Err: err})
	}
	if err := os.WriteFile(path, []byte(a.Render()), 0o644); err != nil {
		return fail(&FileSystemError{Op: "write", Path: path, Err: err})
	}

	out.Status = types.StatusWritten
	b.Log.Done("[%d] wrote %s to %s", e.Index, e.Topic, path)
	return out
}

// findLegacy returns the single fragment for topic saved under another
// index, or "" when there is none or more than one.
func findLegacy(dir, topic, expected string) (string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", &FileSystemError{Op: "readdir", Path: dir, Err: err}
	}

	var matches []string
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		prefix, rest, ok := strings.Cut(de.Name(), "_")
		if !ok || prefix == "" || rest != topic+fragmentExt {
			continue
		}
		p := filepath.Join(dir, de.Name())
		if p == expected {
			continue
		}
		matches = append(matches, p)
	}
	if len(matches) != 1 {
		return "", nil
	}
	return matches[0], nil
}

func (b *Book) record(ctx context.Context, o types.Outcome) {
	if b.Journal == nil {
		return
	}
	// Recorded even when ctx is cancelled.
	if err := b.Journal.Record(context.WithoutCancel(ctx), o); err != nil {
		b.Log.Warn("[%d] journal: %v", o.Index, err)
	}
}

// BuildSkeleton writes the document that includes every fragment, grouped
// into parts by chapter. An existing skeleton is kept unless overwrite is
// set.
func (b *Book) BuildSkeleton(outline types.Outline, overwrite bool) error {
	path := b.Paths.SkeletonFile()
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			b.Log.Skip("%s exists, skipping", path)
			return nil
		}
	}

	content, err := b.Skeleton(outline)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &FileSystemError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &FileSystemError{Op: "write", Path: path, Err: err}
	}
	b.Log.Done("wrote skeleton with %d topics to %s", outline.Len(), path)
	return nil
}

// Skeleton renders the skeleton: a \part per chapter followed by an \input
// per topic, referencing fragments relative to the book directory without
// their extension.
func (b *Book) Skeleton(outline types.Outline) (string, error) {
	var lines []string
	idx := 0
	for _, ch := range outline.Chapters {
		lines = append(lines, fmt.Sprintf(`\part{%s}`, texenc.Text(ch.Name)))
		for _, topic := range ch.Topics {
			idx++
			p := b.fragmentPath(types.Entry{Index: idx, Chapter: ch.Name, Topic: topic})
			rel, err := filepath.Rel(b.Paths.BookDir(), p)
			if err != nil {
				return "", fmt.Errorf("relative path for %s: %w", p, err)
			}
			rel = filepath.ToSlash(strings.TrimSuffix(rel, fragmentExt))
			lines = append(lines, fmt.Sprintf(`\input{%s}`, rel))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Build writes the skeleton and then every fragment.
func (b *Book) Build(ctx context.Context, outline types.Outline, opts PageOptions) (PageSummary, error) {
	if err := b.BuildSkeleton(outline, opts.Overwrite); err != nil {
		return PageSummary{}, fmt.Errorf("building skeleton: %w", err)
	}
	return b.BuildPages(ctx, outline, opts)
}
