// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/openai/openai-go/option"
	"github.com/spf13/viper"

	"github.com/pdiddy/poembook/internal/artifact"
	"github.com/pdiddy/poembook/internal/generate"
	"github.com/pdiddy/poembook/internal/logbook"
	"github.com/pdiddy/poembook/internal/retry"
	"github.com/pdiddy/poembook/pkg/types"
)

// apiTimeout bounds a single model call.
const apiTimeout = 5 * time.Minute

// loadConfig assembles the book configuration from flags, env, and the
// config file.
func loadConfig() types.BookConfig {
	return types.BookConfig{
		Paths: types.PathsConfig{
			Root:        viper.GetString("root"),
			OutlineFile: viper.GetString("outline"),
		},
		Generation: types.GenerationConfig{
			AIConfig: types.AIConfig{
				Provider:    viper.GetString("provider"),
				Model:       viper.GetString("model"),
				APIKey:      viper.GetString("api_key"),
				BaseURL:     viper.GetString("base_url"),
				Temperature:      temperature(),
				MaxAttempts:      viper.GetInt("max_attempts"),
				RetryDelay:       viper.GetDuration("retry_delay"),
				RateLimitRetries: viper.GetInt("rate_limit_retries"),
				Proofread:        viper.GetBool("proofread"),
			},
			Kind:          viper.GetString("kind"),
			Mode:          types.ConcurrencyMode(viper.GetString("mode")),
			Workers:       viper.GetInt("workers"),
			Overwrite:     viper.GetBool("overwrite"),
			MigrateLegacy: viper.GetBool("migrate_legacy") && !viper.GetBool("no_migrate"),
			Journal:       viper.GetBool("journal"),
		},
		Compile: types.CompileConfig{
			Engine:      viper.GetString("engine"),
			Indexer:     viper.GetString("indexer"),
			Draft:       viper.GetBool("draft"),
			HaltOnError: viper.GetBool("halt_on_error"),
			Quiet:       viper.GetBool("quiet"),
		},
	}
}

// temperature returns the configured sampling temperature. An empty value
// leaves the provider's default.
func temperature() *float64 {
	if viper.GetString("temperature") == "" {
		return nil
	}
	t := viper.GetFloat64("temperature")
	return &t
}

// newLogbook opens the console and run-log logbook for this process.
func newLogbook(cfg types.BookConfig) (*logbook.Logbook, error) {
	return logbook.New(os.Stdout, cfg.Paths.LogDir(), time.Now())
}

// newBackend selects the model API for the configured provider.
func newBackend(ai types.AIConfig) (generate.Backend, error) {
	key := ai.APIKey
	if key == "" {
		var err error
		if key, err = loadedSecrets.APIKey(ai.Provider); err != nil {
			return nil, err
		}
	}

	switch ai.Provider {
	case "anthropic":
		return &generate.ClaudeBackend{
			APIKey:           key,
			Model:            ai.Model,
			Client:           &http.Client{Timeout: apiTimeout},
			RateLimitRetries: ai.RateLimitRetries,
		}, nil
	case "openai":
		b, err := generate.NewOpenAIBackend(key, ai.Model, ai.BaseURL)
		if err != nil {
			return nil, err
		}
		if ai.RateLimitRetries > 0 {
			b.Opts = append(b.Opts, option.WithMaxRetries(ai.RateLimitRetries))
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q (want anthropic or openai)", ai.Provider)
	}
}

// newGenerator builds the generator for the configured artifact kind.
func newGenerator(cfg types.GenerationConfig, log *logbook.Logbook) (*generate.Generator, artifact.Kind, error) {
	kind, err := artifact.ParseKind(cfg.Kind)
	if err != nil {
		return nil, "", err
	}
	backend, err := newBackend(cfg.AIConfig)
	if err != nil {
		return nil, "", err
	}
	return &generate.Generator{
		Backend:     backend,
		Schema:      artifact.NewSchema(kind),
		Policy:      retry.Policy{MaxAttempts: cfg.MaxAttempts, Delay: cfg.RetryDelay},
		Temperature: cfg.Temperature,
		Proofread:   cfg.Proofread,
		Log:         log,
	}, kind, nil
}
