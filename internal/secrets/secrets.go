// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads model API keys from a directory of plain-text files,
// one key per file, falling back to environment variables.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Key file names.
const (
	AnthropicKey = "anthropic-api-key"
	OpenAIKey    = "openai-api-key"
)

// envFallback maps a key file to the environment variable consulted when
// the file is absent.
var envFallback = map[string]string{
	AnthropicKey: "ANTHROPIC_API_KEY",
	OpenAIKey:    "OPENAI_API_KEY",
}

// providerKeys maps an AI provider name to its key file.
var providerKeys = map[string]string{
	"anthropic": AnthropicKey,
	"openai":    OpenAIKey,
}

// Warnings receives notices about unreadable key files.
var Warnings io.Writer = os.Stderr

// Secrets holds trimmed key values by file name.
type Secrets map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory is
// not an error and yields an empty set. Unreadable files are reported to
// Warnings and skipped.
func Load(dir string) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	s := make(Secrets)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(Warnings, "warning: could not read secret %s: %v\n", name, err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			s[name] = value
		}
	}
	return s, nil
}

// Lookup returns the value for key from the loaded files, then from the
// key's environment variable.
func (s Secrets) Lookup(key string) (string, bool) {
	if v, ok := s[key]; ok {
		return v, true
	}
	if env, ok := envFallback[key]; ok {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, true
		}
	}
	return "", false
}

// APIKey returns the key for an AI provider ("anthropic" or "openai").
func (s Secrets) APIKey(provider string) (string, error) {
	key, ok := providerKeys[provider]
	if !ok {
		return "", fmt.Errorf("unknown AI provider %q", provider)
	}
	v, ok := s.Lookup(key)
	if !ok {
		return "", fmt.Errorf("no API key for %s: add .secrets/%s or set %s", provider, key, envFallback[key])
	}
	return v, nil
}
