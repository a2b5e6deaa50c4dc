// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate asks a language model for one structured artifact per
// topic and retries until the response passes validation.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/poembook/internal/artifact"
	"github.com/pdiddy/poembook/internal/logbook"
	"github.com/pdiddy/poembook/internal/retry"
)

// Request is a single forced tool call.
type Request struct {
	System      string
	Prompt      string
	Tool        artifact.Tool
	// Temperature is omitted from the call when nil, leaving the
	// provider's default.
	Temperature *float64
}

// Backend abstracts the model API so tests can supply a mock. Invoke
// returns the arguments of the tool call the model made.
type Backend interface {
	Invoke(ctx context.Context, req Request) (json.RawMessage, error)
}

// ExhaustedError reports a topic whose every attempt failed. Last holds the
// final attempt's error, a *artifact.ValidationError when validation kept
// failing.
type ExhaustedError struct {
	Topic    string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generating %q: gave up after %d attempts: %v", e.Topic, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Generator produces validated artifacts of one kind.
type Generator struct {
	Backend     Backend
	Schema      artifact.Schema
	Policy      retry.Policy
	Temperature *float64

	// Proofread sends each draft back with a corrective checklist and uses
	// the corrected arguments.
	Proofread bool

	Log *logbook.Logbook
}

// Generate returns a validated, normalized artifact for topic. Network and
// validation failures are retried up to the policy's attempt ceiling.
func (g *Generator) Generate(ctx context.Context, topic string) (artifact.Artifact, error) {
	system, err := systemPrompt(g.Schema)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	a, err := retry.Do(ctx, g.Policy, func(ctx context.Context, attempt int) (artifact.Artifact, error) {
		a, err := g.attempt(ctx, system, topic)
		if err != nil && !retry.IsContextError(err) {
			g.Log.Warn("%q attempt %d failed: %v", topic, attempt, err)
		}
		return a, err
	})
	if err == nil {
		return a, nil
	}

	var ee *retry.ExhaustedError
	if errors.As(err, &ee) {
		return nil, &ExhaustedError{Topic: topic, Attempts: ee.Attempts, Last: ee.Last}
	}
	return nil, err
}

func (g *Generator) attempt(ctx context.Context, system, topic string) (artifact.Artifact, error) {
	tool := g.Schema.Tool()
	raw, err := g.Backend.Invoke(ctx, Request{
		System:      system,
		Prompt:      topic,
		Tool:        tool,
		Temperature: g.Temperature,
	})
	if err != nil {
		return nil, err
	}

	if g.Proofread {
		prompt, err := proofreadPrompt(g.Schema, topic, raw)
		if err != nil {
			return nil, fmt.Errorf("rendering proofread prompt: %w", err)
		}
		raw, err = g.Backend.Invoke(ctx, Request{
			System:      system,
			Prompt:      prompt,
			Tool:        tool,
			Temperature: g.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("proofreading: %w", err)
		}
	}

	return g.Schema.Decode(topic, raw)
}
