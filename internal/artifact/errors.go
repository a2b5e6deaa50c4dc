// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"strings"
)

// Violation is one failed rule on one field. Field uses a JSON-path-like
// form, e.g. "variables[2].name".
type Violation struct {
	Field string
	Rule  string
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Rule
	}
	return v.Field + ": " + v.Rule
}

// ValidationError enumerates every violated rule in a candidate artifact.
type ValidationError struct {
	Kind       Kind
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("invalid %s (%d violations): %s", e.Kind, len(e.Violations), strings.Join(parts, "; "))
}

// Has reports whether any violation names field.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// collector accumulates violations during validation.
type collector struct {
	kind       Kind
	violations []Violation
}

func (c *collector) add(field, format string, args ...any) {
	c.violations = append(c.violations, Violation{Field: field, Rule: fmt.Sprintf(format, args...)})
}

func (c *collector) length(field, value string, r Range) {
	if n := len([]rune(value)); !r.Contains(n) {
		c.add(field, "length %d must be %s characters", n, r)
	}
}

func (c *collector) err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Violations: c.violations}
}
