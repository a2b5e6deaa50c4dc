// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logbook writes level-tagged progress lines to the console and to a
// plain-text run log.
package logbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Level represents the severity of a log entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelSkip  Level = "SKIP"
	LevelDone  Level = "DONE"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// FileLayout names run logs by the minute they started.
const FileLayout = "2006-01-02-15-04"

// Logbook mirrors entries to a console writer and a run log file.
// A nil *Logbook discards everything.
type Logbook struct {
	mu      sync.Mutex
	console io.Writer
	file    *os.File
	path    string
	styles  map[Level]lipgloss.Style
}

// New creates a logbook that prints to console and, when logDir is not
// empty, appends to logDir/<start time>.log.
func New(console io.Writer, logDir string, start time.Time) (*Logbook, error) {
	l := &Logbook{console: console}
	if console != nil {
		r := lipgloss.NewRenderer(console)
		l.styles = map[Level]lipgloss.Style{
			LevelInfo:  r.NewStyle().Foreground(lipgloss.Color("11")),
			LevelSkip:  r.NewStyle().Foreground(lipgloss.Color("244")),
			LevelDone:  r.NewStyle().Foreground(lipgloss.Color("10")),
			LevelWarn:  r.NewStyle().Foreground(lipgloss.Color("214")),
			LevelError: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		}
	}
	if logDir == "" {
		return l, nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	path := filepath.Join(logDir, start.Format(FileLayout)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	l.file = f
	l.path = path
	return l, nil
}

// Path returns the run log file, or "" when there is none.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close flushes and closes the run log.
func (l *Logbook) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}

// Append writes a single entry.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	message = strings.TrimSpace(message)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.console != nil {
		line := message
		if st, ok := l.styles[level]; ok {
			line = st.Render(message)
		}
		fmt.Fprintln(l.console, line)
	}
	if l.file != nil {
		fmt.Fprintf(l.file, "%s %-5s %s\n", time.Now().UTC().Format(time.RFC3339), level, message)
	}
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Skip appends an entry for work that was not needed.
func (l *Logbook) Skip(format string, args ...any) {
	l.Append(LevelSkip, fmt.Sprintf(format, args...))
}

// Done appends a completion entry.
func (l *Logbook) Done(format string, args ...any) {
	l.Append(LevelDone, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
