// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logbook

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogbookWritesConsoleAndFile(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	start := time.Date(2026, 3, 4, 5, 6, 0, 0, time.UTC)

	book, err := New(&console, dir, start)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2026-03-04-05-06.log"), book.Path())

	book.Info("[%d] writing %s", 1, "hope")
	book.Skip("[%d] exists", 2)
	book.Done("[%d] wrote", 3)
	book.Warn("[%d] attempt failed", 4)
	book.Error("[%d] gave up", 5)
	require.NoError(t, book.Close())

	// Buffers are not terminals, so lipgloss renders plain text.
	assert.Equal(t, "[1] writing hope\n[2] exists\n[3] wrote\n[4] attempt failed\n[5] gave up\n", console.String())

	data, err := os.ReadFile(book.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	for i, level := range []Level{LevelInfo, LevelSkip, LevelDone, LevelWarn, LevelError} {
		assert.Contains(t, lines[i], string(level))
	}
	assert.Contains(t, lines[0], "[1] writing hope")
}

func TestLogbookNilIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Error("ignored")
	assert.Equal(t, "", book.Path())
	assert.NoError(t, book.Close())
}

func TestLogbookConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	book, err := New(&console, "", time.Now())
	require.NoError(t, err)
	book.Done("ok")
	assert.Equal(t, "", book.Path())
	assert.Equal(t, "ok\n", console.String())
}

func TestLogbookConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	book, err := New(nil, dir, time.Now())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			book.Info("entry-%d", i)
		}(i)
	}
	wg.Wait()
	require.NoError(t, book.Close())

	data, err := os.ReadFile(book.Path())
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 20)
}
