// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/poembook/internal/artifact"
)

// poemPromptTmpl asks for an equation whose variables describe the topic.
var poemPromptTmpl = template.Must(template.New("poem").Parse(`For the topic provided, create an equation with {{.Limits.Variables.Min}}-{{.Limits.Variables.Max}} variables and use the full gamut of mathematics to express it (exponents, calculus, logs, trigonometry). Choose one or two of these. The equation should be profound and have a pedagogical tone. Topics are in the context of human life.

Write the equation in LaTeX. The first variable is the one on the left side of the equation. Give every variable a one-word name made of letters only ({{.Limits.Name}} characters) and a description of {{.Limits.Description}} characters explaining its role and how it relates to the other variables. Then write a detailed, poetic explanation of the equation and how the variables relate ({{.Limits.Explanation}} characters).

Here is an example:
Equation: C = \frac{K_i^n}{D + E}

Variables:
- $C$: *Curiosity*. A strong desire to know or learn something.
- $K_i$: *Knowledge*. The rate at which an individual absorbs and makes sense of new information, which is why it sits on top.
- $D$: *Distractions*. External factors that divert attention away from learning or exploring, which is why they sit on the bottom of the fraction.
- $E$: *Experience*. Accumulated mastery over a subject, which can both enhance and deter curiosity through familiarity.

Explanation:
Curiosity grows as knowledge compounds and withers under distraction. Experience sits beside distraction in the denominator because familiarity can dull the urge to explore, yet the exponent on knowledge reminds us that each new idea multiplies the pull of the next.

Respond by calling the {{.Tool}} tool.`))

// melodyPromptTmpl asks for a short MusiXTeX melody about the topic.
var melodyPromptTmpl = template.Must(template.New("melody").Parse(`For the topic provided, create a musical melody with 4-12 notes that captures the emotional essence of the topic. Topics are in the context of the human experience. Write the melody in MusiXTeX notation, then write a poetic yet informative explanation of how the melody relates to the topic ({{.Limits.Explanation}} characters). Make the melody rich, unique and profound. Avoid cliches and overly simple patterns.

Use this MusiXTeX pitch notation:

a = a3, b = b3, c = c4, d = d4, e = e4, f = f4, g = g4,
h = a4, i = b4, j = c5, k = d5, l = e5, m = f5, n = g5

For sharps and flats prefix the note with ^ or _: ^c is C sharp, _d is D flat.

Example:
Topic: Childhood

Melody:
\setstaffs1{1}
\generalmeter{\meterfrac34}
\generalsignature{2}
\startextract
\Notes\zq{c}\zq{e}\qu{g}\en
\Notes\hu{m}\en
\Notes\qu{e}\qu{f}\qu{g}\en
\Notes\wh{c}\en
\endextract

Explanation:
This melody captures childhood nostalgia, rising from C through bright major tones, descending reflectively to D, then climbing again like a recalled memory before returning to a gentle resolution on C.

Respond by calling the {{.Tool}} tool.`))

// proofreadPromptTmpl asks the model to correct a first draft.
var proofreadPromptTmpl = template.Must(template.New("proofread").Parse(`The following JSON is a draft for the topic "{{.Topic}}". Return a corrected version by calling the {{.Tool}} tool. Make sure that:
- the LaTeX is formatted correctly
{{- if .Poem}}
- there are between {{.Limits.Variables.Min}} and {{.Limits.Variables.Max}} variables (edit the equation as necessary)
- the equation is not overly complex
- variable descriptions are understandable and simple
- variable descriptions vary in length and structure ({{.Limits.Description}} characters)
- variable names are one word where possible without losing much meaning
{{- end}}
- the language is clear and concise

{{.Draft}}`))

type promptData struct {
	Topic  string
	Tool   string
	Limits artifact.Limits
	Poem   bool
	Draft  string
}

// systemPrompt renders the kind's instructions.
func systemPrompt(s artifact.Schema) (string, error) {
	tmpl := poemPromptTmpl
	if s.Kind == artifact.KindMelody {
		tmpl = melodyPromptTmpl
	}
	return execute(tmpl, promptData{Tool: s.Tool().Name, Limits: s.Limits, Poem: s.Kind == artifact.KindPoem})
}

// proofreadPrompt renders the corrective checklist around a draft.
func proofreadPrompt(s artifact.Schema, topic string, draft []byte) (string, error) {
	return execute(proofreadPromptTmpl, promptData{
		Topic:  topic,
		Tool:   s.Tool().Name,
		Limits: s.Limits,
		Poem:   s.Kind == artifact.KindPoem,
		Draft:  string(draft),
	})
}

func execute(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
