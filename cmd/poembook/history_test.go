// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/poembook/pkg/types"
)

func TestPrintHistory(t *testing.T) {
	run := types.Run{ID: "r1", StartedAt: time.Now(), Kind: "poem", Mode: types.ModePool, Model: "m"}
	entries := []types.RunEntry{
		{Index: 1, Topic: "hope", Status: types.StatusWritten},
		{Index: 2, Topic: "grief", Status: types.StatusFailed, Error: strings.Repeat("validation failed ", 10)},
		{Index: 3, Topic: "joy", Status: types.StatusSkipped},
	}

	var buf bytes.Buffer
	printHistory(&buf, run, entries, false)
	out := buf.String()

	assert.Contains(t, out, "run r1")
	assert.Contains(t, out, "(unfinished)")
	assert.Contains(t, out, "[1] written  hope")
	assert.Contains(t, out, "[2] failed   grief")
	assert.Contains(t, out, "1 written, 0 renamed, 1 skipped, 1 failed")
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), historyWrap+8, line)
	}

	buf.Reset()
	printHistory(&buf, run, entries, true)
	assert.NotContains(t, buf.String(), "hope")
	assert.Contains(t, buf.String(), "grief")
}

func TestNewBackendUnknownProvider(t *testing.T) {
	_, err := newBackend(types.AIConfig{Provider: "mistral", APIKey: "k"})
	assert.Error(t, err)
}

func TestNewBackendUsesConfiguredKey(t *testing.T) {
	b, err := newBackend(types.AIConfig{Provider: "anthropic", APIKey: "k", Model: "m"})
	assert.NoError(t, err)
	assert.NotNil(t, b)
}
