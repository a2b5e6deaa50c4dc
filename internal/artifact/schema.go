// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tool is a function/tool definition handed to the model so its response
// arrives as arguments shaped like the artifact.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Schema binds a kind to its limits. It produces the tool definition and
// turns raw tool arguments into a validated, normalized Artifact.
type Schema struct {
	Kind   Kind
	Limits Limits
}

// NewSchema returns a schema with the kind's default limits.
func NewSchema(k Kind) Schema {
	return Schema{Kind: k, Limits: DefaultLimits(k)}
}

// Tool describes the artifact's fields, types, and bounds as a JSON schema.
func (s Schema) Tool() Tool {
	if s.Kind == KindMelody {
		return Tool{
			Name:        "write_melody",
			Description: "Record a musical melody for the topic in MusiXTeX notation with an explanation.",
			Parameters: object(map[string]any{
				"melody":      str("The melody in MusiXTeX notation (\\setstaffs, \\generalmeter, \\startextract ... \\endextract).", Range{}),
				"explanation": str("How the melody relates to the topic and the emotional journey it represents.", s.Limits.Explanation),
			}, "melody", "explanation"),
		}
	}

	name := str("Clear, concise variable name (one word, letters only).", s.Limits.Name)
	name["pattern"] = lettersOnly.String()

	variable := object(map[string]any{
		"symbol":      str(`Mathematical symbol in LaTeX (e.g. "x", "v_0", "\alpha").`, Range{}),
		"name":        name,
		"description": str("The variable's role and its relationship to the other variables.", s.Limits.Description),
	}, "symbol", "name", "description")

	variables := map[string]any{
		"type":        "array",
		"description": "Every variable in the equation. The first is the quantity on the left-hand side.",
		"items":       variable,
		"minItems":    s.Limits.Variables.Min,
	}
	if s.Limits.Variables.Max > 0 {
		variables["maxItems"] = s.Limits.Variables.Max
	}

	return Tool{
		Name:        "write_equation",
		Description: "Record a mathematical equation for the topic with variable definitions and an explanation.",
		Parameters: object(map[string]any{
			"equation":    str("Complete equation in LaTeX, ready for math mode.", Range{}),
			"variables":   variables,
			"explanation": str("How the variables interact and what the equation means.", s.Limits.Explanation),
		}, "equation", "variables", "explanation"),
	}
}

func object(props map[string]any, required ...string) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}

func str(desc string, r Range) map[string]any {
	m := map[string]any{"type": "string", "description": desc}
	if r.Min > 0 {
		m["minLength"] = r.Min
	}
	if r.Max > 0 {
		m["maxLength"] = r.Max
	}
	return m
}

// Decode parses raw tool arguments for topic, validates them against the
// schema's limits, and returns the normalized artifact. Missing fields,
// JSON type mismatches, and rule failures all surface as *ValidationError.
func (s Schema) Decode(topic string, raw []byte) (Artifact, error) {
	var (
		a       Artifact
		missing []Violation
		err     error
	)
	switch s.Kind {
	case KindMelody:
		a, missing, err = decodeMelody(topic, raw)
	default:
		a, missing, err = decodePoem(topic, raw)
	}
	if err != nil {
		return nil, s.decodeError(err)
	}

	verr := a.Validate(s.Limits)
	violations := append([]Violation(nil), missing...)
	var ve *ValidationError
	if errors.As(verr, &ve) {
		for _, v := range ve.Violations {
			if !coveredBy(v.Field, missing) {
				violations = append(violations, v)
			}
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Kind: s.Kind, Violations: violations}
	}
	return a.Normalize(), nil
}

func (s Schema) decodeError(err error) error {
	var te *json.UnmarshalTypeError
	if errors.As(err, &te) {
		return &ValidationError{Kind: s.Kind, Violations: []Violation{
			{Field: te.Field, Rule: fmt.Sprintf("must be %s, got %s", te.Type, te.Value)},
		}}
	}
	return &ValidationError{Kind: s.Kind, Violations: []Violation{
		{Rule: fmt.Sprintf("malformed arguments: %v", err)},
	}}
}

// coveredBy reports whether field is, or lies under, an already-missing field.
func coveredBy(field string, missing []Violation) bool {
	for _, m := range missing {
		if field == m.Field || strings.HasPrefix(field, m.Field+".") || strings.HasPrefix(field, m.Field+"[") {
			return true
		}
	}
	return false
}

const requiredRule = "is required"

type poemArgs struct {
	Equation    *string         `json:"equation"`
	Variables   json.RawMessage `json:"variables"`
	Explanation *string         `json:"explanation"`
}

type variableArgs struct {
	Symbol      *string `json:"symbol"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func decodePoem(topic string, raw []byte) (*Poem, []Violation, error) {
	var args poemArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, nil, err
	}

	var missing []Violation
	p := &Poem{Topic: topic}
	p.Equation = deref(args.Equation, "equation", &missing)
	p.Explanation = deref(args.Explanation, "explanation", &missing)

	vars, err := unquoteArray(args.Variables)
	if err != nil {
		return nil, nil, err
	}
	if vars == nil {
		missing = append(missing, Violation{Field: "variables", Rule: requiredRule})
		return p, missing, nil
	}

	var list []variableArgs
	if err := json.Unmarshal(vars, &list); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) {
			te.Field = strings.TrimSuffix("variables."+te.Field, ".")
		}
		return nil, nil, err
	}
	for i, v := range list {
		field := fmt.Sprintf("variables[%d]", i)
		p.Variables = append(p.Variables, Variable{
			Symbol:      deref(v.Symbol, field+".symbol", &missing),
			Name:        deref(v.Name, field+".name", &missing),
			Description: deref(v.Description, field+".description", &missing),
		})
	}
	return p, missing, nil
}

type melodyArgs struct {
	Melody      *string `json:"melody"`
	Explanation *string `json:"explanation"`
}

func decodeMelody(topic string, raw []byte) (*Melody, []Violation, error) {
	var args melodyArgs
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, nil, err
	}
	var missing []Violation
	m := &Melody{Topic: topic}
	m.Notation = deref(args.Melody, "melody", &missing)
	m.Explanation = deref(args.Explanation, "explanation", &missing)
	return m, missing, nil
}

func deref(s *string, field string, missing *[]Violation) string {
	if s == nil {
		*missing = append(*missing, Violation{Field: field, Rule: requiredRule})
		return ""
	}
	return *s
}

// unquoteArray accepts an array either inline or encoded as a JSON string,
// which some models emit for nested tool arguments. It returns nil when the
// field is absent or null.
func unquoteArray(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, err
	}
	return json.RawMessage(inner), nil
}
