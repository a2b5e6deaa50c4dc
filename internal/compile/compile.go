// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compile drives the TeX engine and the index tool over the
// assembled book.
package compile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/pdiddy/poembook/pkg/types"
)

const (
	defaultEngine  = "lualatex"
	defaultIndexer = "makeindex"
	tailLines      = 20
)

// CompilationError reports a tool that could not start or exited non-zero.
type CompilationError struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s could not run: %v", e.Tool, e.Err)
	}
	if tail := lastLines(e.Output, tailLines); tail != "" {
		msg += "\n" + tail
	}
	return msg
}

func (e *CompilationError) Unwrap() error { return e.Err }

// Options selects engine flags for one compile.
type Options struct {
	// Draft runs a pre-pass that skips PDF output. Its exit code is
	// reported but never treated as an error.
	Draft       bool
	HaltOnError bool
	Quiet       bool
}

// Result describes a finished tool run.
type Result struct {
	Tool     string
	Args     []string
	ExitCode int
	Output   string
	Duration time.Duration
}

// Driver runs the engine and indexer against one book tree.
type Driver struct {
	Engine      string
	Indexer     string
	RootDir     string
	BookDir     string
	OutDir      string
	EntryDoc    string
	IndexSource string

	// Console receives tool output as it is produced. Optional.
	Console io.Writer

	exec executor
}

// NewDriver builds a driver for the paths and compile settings. Paths are
// made absolute because the engine runs from inside the book directory.
func NewDriver(paths types.PathsConfig, cfg types.CompileConfig, console io.Writer) (*Driver, error) {
	root, err := filepath.Abs(paths.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}
	abs := types.PathsConfig{Root: root}

	d := &Driver{
		Engine:      cfg.Engine,
		Indexer:     cfg.Indexer,
		RootDir:     root,
		BookDir:     abs.BookDir(),
		OutDir:      abs.OutDir(),
		EntryDoc:    abs.EntryDoc(),
		IndexSource: abs.IndexSource(),
		Console:     console,
		exec:        defaultExec,
	}
	if d.Engine == "" {
		d.Engine = defaultEngine
	}
	if d.Indexer == "" {
		d.Indexer = defaultIndexer
	}
	return d, nil
}

// Args returns the engine command line for opts.
func (d *Driver) Args(opts Options) []string {
	var args []string
	if opts.Draft {
		args = append(args, "-draftmode")
	}
	if opts.HaltOnError {
		args = append(args, "-halt-on-error")
	}
	if opts.Quiet {
		args = append(args, "-interaction=batchmode")
	}
	return append(args, "-output-directory", d.OutDir, d.EntryDoc)
}

// Compile runs the engine over the entry document from the book directory.
// A non-zero exit is a *CompilationError unless opts.Draft is set.
func (d *Driver) Compile(ctx context.Context, opts Options) (Result, error) {
	res, err := d.run(ctx, d.BookDir, d.Engine, d.Args(opts))
	if err != nil && opts.Draft && res.ExitCode > 0 {
		return res, nil
	}
	return res, err
}

// MakeIndex runs the indexer on the index source, addressed relative to the
// project root and run from there.
func (d *Driver) MakeIndex(ctx context.Context) (Result, error) {
	rel, err := filepath.Rel(d.RootDir, d.IndexSource)
	if err != nil {
		return Result{}, fmt.Errorf("relative index path: %w", err)
	}
	return d.run(ctx, d.RootDir, d.Indexer, []string{filepath.ToSlash(rel)})
}

// Available reports whether the engine is on PATH and answers --version.
func (d *Driver) Available(ctx context.Context) bool {
	if _, err := d.exec.LookPath(d.Engine); err != nil {
		return false
	}
	return d.exec.RunSilent(ctx, d.Engine, "--version") == nil
}

func (d *Driver) run(ctx context.Context, dir, tool string, args []string) (Result, error) {
	res := Result{Tool: tool, Args: args}

	if _, err := d.exec.LookPath(tool); err != nil {
		res.ExitCode = -1
		return res, &CompilationError{Tool: tool, Args: args, ExitCode: -1, Err: err}
	}

	var buf bytes.Buffer
	var out io.Writer = &buf
	if d.Console != nil {
		out = io.MultiWriter(&buf, d.Console)
	}

	start := time.Now()
	code, err := d.exec.Run(ctx, dir, tool, args, out)
	res.Duration = time.Since(start)
	res.ExitCode = code
	res.Output = buf.String()

	if err != nil || code != 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("running %s: %w", tool, ctxErr)
		}
		return res, &CompilationError{Tool: tool, Args: args, ExitCode: code, Output: res.Output, Err: err}
	}
	return res, nil
}

// PageCount opens a compiled PDF and returns its number of pages.
func PageCount(path string) (n int, err error) {
	// The PDF reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()
	return r.NumPage(), nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
