// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package artifact defines the structured units the model generates for each
// topic (an equation poem or a melody), validates them against field-level
// limits, and renders them to LaTeX fragments.
//
// The package performs no I/O.
package artifact

import (
	"fmt"
	"regexp"
)

// Kind identifies an artifact variant.
type Kind string

const (
	KindPoem   Kind = "poem"
	KindMelody Kind = "melody"
)

// ParseKind validates a kind name from configuration.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPoem, KindMelody:
		return Kind(s), nil
	case "":
		return KindPoem, nil
	default:
		return "", fmt.Errorf("unknown artifact kind %q: use poem or melody", s)
	}
}

// Dir returns the content subdirectory that holds fragments of this kind.
func (k Kind) Dir() string {
	if k == KindMelody {
		return "melodies"
	}
	return "poems"
}

// Artifact is one generated unit for a single topic. Implementations are
// constructed per generation call, validated, normalized, rendered, and
// then discarded.
type Artifact interface {
	Kind() Kind

	// Subject returns the topic the artifact was generated for.
	Subject() string

	// Validate checks every field against l and returns a *ValidationError
	// listing all violations.
	Validate(l Limits) error

	// Normalize returns a copy with names title-cased and free text
	// escaped for LaTeX.
	Normalize() Artifact

	// Render produces the LaTeX fragment.
	Render() string
}

// Range is an inclusive [Min, Max] bound. A zero Max means unbounded.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Contains reports whether n lies within the range.
func (r Range) Contains(n int) bool {
	if n < r.Min {
		return false
	}
	return r.Max == 0 || n <= r.Max
}

func (r Range) String() string {
	if r.Max == 0 {
		return fmt.Sprintf("at least %d", r.Min)
	}
	return fmt.Sprintf("between %d and %d", r.Min, r.Max)
}

// Limits bounds the lengths and counts of artifact fields. Melody uses only
// Explanation.
type Limits struct {
	Name        Range `json:"name" yaml:"name"`
	Description Range `json:"description" yaml:"description"`
	Variables   Range `json:"variables" yaml:"variables"`
	Explanation Range `json:"explanation" yaml:"explanation"`
}

// DefaultLimits returns the stock limits for a kind.
func DefaultLimits(k Kind) Limits {
	if k == KindMelody {
		return Limits{Explanation: Range{Min: 150, Max: 350}}
	}
	return Limits{
		Name:        Range{Min: 3, Max: 15},
		Description: Range{Min: 140, Max: 220},
		Variables:   Range{Min: 4, Max: 8},
		Explanation: Range{Min: 150, Max: 450},
	}
}

// lettersOnly matches names and melody topics: letters and spaces.
var lettersOnly = regexp.MustCompile(`^[A-Za-z\s]+$`)

const lettersRule = "must contain only letters and spaces"
