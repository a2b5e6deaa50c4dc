// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"time"
)

// PathsConfig locates the book tree. Every path is derived from Root so a
// single --root flag relocates the whole project.
type PathsConfig struct {
	// Root is the project root (contains book/, out/, logs/).
	Root string `json:"root" yaml:"root"`

	// OutlineFile overrides the outline location (default book/outline.json).
	OutlineFile string `json:"outline_file,omitempty" yaml:"outline_file,omitempty"`
}

// BookDir is the document root; the compiler runs here.
func (p PathsConfig) BookDir() string { return filepath.Join(p.Root, "book") }

// ContentDir holds one subdirectory of fragments per artifact kind.
func (p PathsConfig) ContentDir() string { return filepath.Join(p.BookDir(), "content") }

// SkeletonFile is the generated file that includes every fragment.
func (p PathsConfig) SkeletonFile() string { return filepath.Join(p.BookDir(), "outline.tex") }

// Outline returns the outline path, defaulting to book/outline.json.
func (p PathsConfig) Outline() string {
	if p.OutlineFile != "" {
		return p.OutlineFile
	}
	return filepath.Join(p.BookDir(), "outline.json")
}

// EntryDoc is the master document handed to the TeX engine.
func (p PathsConfig) EntryDoc() string { return filepath.Join(p.BookDir(), "index.tex") }

// OutDir receives compiler output.
func (p PathsConfig) OutDir() string { return filepath.Join(p.Root, "out") }

// IndexSource is the .idx file the engine writes for makeindex.
func (p PathsConfig) IndexSource() string { return filepath.Join(p.OutDir(), "index.idx") }

// OutputPDF is the compiled book.
func (p PathsConfig) OutputPDF() string { return filepath.Join(p.OutDir(), "index.pdf") }

// LogDir holds one plain-text log per run.
func (p PathsConfig) LogDir() string { return filepath.Join(p.Root, "logs") }

// JournalFile is the SQLite run ledger.
func (p PathsConfig) JournalFile() string { return filepath.Join(p.OutDir(), "journal.db") }

// AIConfig holds shared settings for calls to a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: "anthropic" or "openai".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-0").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the provider endpoint (OpenAI-compatible gateways).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// Temperature is the sampling temperature (default 0.8). Nil leaves the
	// provider's default; zero is sent as zero.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`

	// MaxAttempts is the attempt ceiling per topic (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RetryDelay is the base delay between attempts; it doubles each time.
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay"`

	// RateLimitRetries is how many times a rate-limited call is retried
	// inside one attempt (default 0: rate limits count against MaxAttempts).
	RateLimitRetries int `json:"rate_limit_retries,omitempty" yaml:"rate_limit_retries,omitempty"`

	// Proofread enables the second corrective pass.
	Proofread bool `json:"proofread" yaml:"proofread"`
}

// ConcurrencyMode selects how topics are fanned out.
type ConcurrencyMode string

const (
	ModeSequential ConcurrencyMode = "sequential"
	ModePool       ConcurrencyMode = "pool"
	ModeConcurrent ConcurrencyMode = "concurrent"
)

// GenerationConfig holds settings for page generation.
type GenerationConfig struct {
	AIConfig `yaml:",inline"`

	// Kind selects the artifact: "poem" or "melody".
	Kind string `json:"kind" yaml:"kind"`

	// Mode selects the fan-out strategy (default pool).
	Mode ConcurrencyMode `json:"mode" yaml:"mode"`

	// Workers bounds the pool mode (default 5).
	Workers int `json:"workers" yaml:"workers"`

	// Overwrite regenerates fragments that already exist.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`

	// MigrateLegacy renames a single fragment left under an old index.
	MigrateLegacy bool `json:"migrate_legacy" yaml:"migrate_legacy"`

	// Journal records per-topic outcomes in the SQLite ledger.
	Journal bool `json:"journal" yaml:"journal"`
}

// CompileConfig holds settings for the TeX engine and indexer.
type CompileConfig struct {
	// Engine is the TeX engine binary (default "lualatex").
	Engine string `json:"engine" yaml:"engine"`

	// Indexer is the index tool binary (default "makeindex").
	Indexer string `json:"indexer" yaml:"indexer"`

	Draft       bool `json:"draft" yaml:"draft"`
	HaltOnError bool `json:"halt_on_error" yaml:"halt_on_error"`
	Quiet       bool `json:"quiet" yaml:"quiet"`
}

// BookConfig groups every setting, constructed once per process.
type BookConfig struct {
	Paths      PathsConfig      `json:"paths" yaml:"paths"`
	Generation GenerationConfig `json:"generation" yaml:"generation"`
	Compile    CompileConfig    `json:"compile" yaml:"compile"`
}
