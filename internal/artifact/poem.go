// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"strings"

	"github.com/pdiddy/poembook/internal/texenc"
)

// Variable is one symbol in a poem's equation.
type Variable struct {
	// Symbol is the math-mode symbol (e.g. "K_i", `\alpha`).
	Symbol string `json:"symbol"`

	// Name is a short display name, letters and spaces only.
	Name string `json:"name"`

	// Description explains the variable's role in the equation.
	Description string `json:"description"`
}

// item renders the variable as an itemize entry with an index registration.
func (v Variable) item() string {
	return fmt.Sprintf(`\item $%s$: \index{%s}\textit{%s}. %s`, v.Symbol, v.Name, v.Name, v.Description)
}

// Poem is an equation that expresses a topic, with its variables and an
// explanation. The first variable is the quantity on the left-hand side.
type Poem struct {
	Topic       string     `json:"topic"`
	Equation    string     `json:"equation"`
	Variables   []Variable `json:"variables"`
	Explanation string     `json:"explanation"`
}

func (p *Poem) Kind() Kind      { return KindPoem }
func (p *Poem) Subject() string { return p.Topic }

// Validate checks the equation, variable count, every variable's fields,
// symbol uniqueness, and the explanation length.
func (p *Poem) Validate(l Limits) error {
	c := &collector{kind: KindPoem}

	if strings.TrimSpace(p.Equation) == "" {
		c.add("equation", "must not be empty")
	}

	if n := len(p.Variables); !l.Variables.Contains(n) {
		c.add("variables", "count %d must be %s", n, l.Variables)
	}

	seen := make(map[string]int)
	for i, v := range p.Variables {
		field := fmt.Sprintf("variables[%d]", i)

		sym := strings.TrimSpace(v.Symbol)
		key := symbolKey(sym)
		if sym == "" {
			c.add(field+".symbol", "must not be empty")
		} else if first, dup := seen[key]; dup {
			c.add(field+".symbol", "duplicates symbol %q of variables[%d]", sym, first)
		} else {
			seen[key] = i
		}

		name := strings.TrimSpace(v.Name)
		if !lettersOnly.MatchString(name) {
			c.add(field+".name", lettersRule)
		}
		c.length(field+".name", name, l.Name)
		c.length(field+".description", strings.TrimSpace(v.Description), l.Description)
	}

	c.length("explanation", strings.TrimSpace(p.Explanation), l.Explanation)

	return c.err()
}

// symbolKey is the rendered form of a symbol with grouping braces and spaces
// removed, so α, \alpha and {\alpha} compare equal.
func symbolKey(sym string) string {
	return symbolNoise.Replace(texenc.Symbol(sym))
}

var symbolNoise = strings.NewReplacer("{", "", "}", "", " ", "")

// Normalize title-cases variable names and escapes all free text. The
// equation is LaTeX already and is only trimmed.
func (p *Poem) Normalize() Artifact {
	out := &Poem{
		Topic:       texenc.Text(p.Topic),
		Equation:    strings.TrimSpace(p.Equation),
		Explanation: texenc.Text(p.Explanation),
		Variables:   make([]Variable, len(p.Variables)),
	}
	for i, v := range p.Variables {
		out.Variables[i] = Variable{
			Symbol:      texenc.Symbol(v.Symbol),
			Name:        texenc.Text(texenc.Title(v.Name)),
			Description: texenc.Text(v.Description),
		}
	}
	return out
}

// Render fills \poem{topic}{equation}{items}{explanation}. The equation's
// left-hand side is replaced by the topic, and the first variable (the
// left-hand quantity) is left out of the item list.
func (p *Poem) Render() string {
	var items []string
	if len(p.Variables) > 1 {
		for _, v := range p.Variables[1:] {
			items = append(items, v.item())
		}
	}
	return fmt.Sprintf(`\poem{%s}{%s}{%s}{%s}`,
		p.Topic, rewriteLHS(p.Equation, p.Topic), strings.Join(items, "\n"), p.Explanation)
}

// rewriteLHS replaces everything before the first "=" with "topic =".
// An equation without "=" is returned unchanged.
func rewriteLHS(equation, topic string) string {
	_, rhs, ok := strings.Cut(equation, "=")
	if !ok {
		return equation
	}
	return topic + " =" + rhs
}
