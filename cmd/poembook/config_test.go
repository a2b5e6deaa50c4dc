// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/poembook/internal/generate"
	"github.com/pdiddy/poembook/pkg/types"
)

func TestTemperature(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *float64
	}{
		{"zero is kept", 0.0, ptr(0)},
		{"configured value", 1.2, ptr(1.2)},
		{"empty leaves provider default", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := viper.Get("temperature")
			viper.Set("temperature", tt.value)
			defer viper.Set("temperature", old)

			got := temperature()
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestNewBackendRateLimitRetries(t *testing.T) {
	b, err := newBackend(types.AIConfig{Provider: "anthropic", APIKey: "k", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, 0, b.(*generate.ClaudeBackend).RateLimitRetries)

	b, err = newBackend(types.AIConfig{Provider: "anthropic", APIKey: "k", Model: "m", RateLimitRetries: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, b.(*generate.ClaudeBackend).RateLimitRetries)

	plain, err := newBackend(types.AIConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o"})
	require.NoError(t, err)
	retrying, err := newBackend(types.AIConfig{Provider: "openai", APIKey: "k", Model: "gpt-4o", RateLimitRetries: 2})
	require.NoError(t, err)
	assert.Len(t, retrying.(*generate.OpenAIBackend).Opts, len(plain.(*generate.OpenAIBackend).Opts)+1)
}

func ptr(f float64) *float64 { return &f }
