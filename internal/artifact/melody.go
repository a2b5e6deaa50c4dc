// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"fmt"
	"strings"

	"github.com/pdiddy/poembook/internal/texenc"
)

// staffPreamble opens a single-instrument MusiXTeX score.
const staffPreamble = `\parindent10mm
\instrumentnumber{1}`

// Melody is a short MusiXTeX melody that captures a topic.
type Melody struct {
	Topic       string `json:"topic"`
	Notation    string `json:"melody"`
	Explanation string `json:"explanation"`
}

func (m *Melody) Kind() Kind      { return KindMelody }
func (m *Melody) Subject() string { return m.Topic }

// Validate checks the topic, the notation, and the explanation length.
func (m *Melody) Validate(l Limits) error {
	c := &collector{kind: KindMelody}

	if !lettersOnly.MatchString(strings.TrimSpace(m.Topic)) {
		c.add("topic", lettersRule)
	}
	if strings.TrimSpace(m.Notation) == "" {
		c.add("melody", "must not be empty")
	}
	c.length("explanation", strings.TrimSpace(m.Explanation), l.Explanation)

	return c.err()
}

// Normalize title-cases the topic and escapes the explanation. Notation is
// MusiXTeX markup and is only trimmed.
func (m *Melody) Normalize() Artifact {
	return &Melody{
		Topic:       texenc.Text(texenc.Title(m.Topic)),
		Notation:    strings.TrimSpace(m.Notation),
		Explanation: texenc.Text(m.Explanation),
	}
}

// Render fills \melody{topic}{score}{explanation}.
func (m *Melody) Render() string {
	return fmt.Sprintf("\\melody{%s}{\n\\begin{music}\n%s\n%s\n\\end{music}\n}{%s}\n",
		m.Topic, staffPreamble, m.Notation, m.Explanation)
}
