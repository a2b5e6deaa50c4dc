// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package texenc transliterates model-generated text into LaTeX-safe ASCII.
package texenc

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// specials are the characters LaTeX treats as markup in text mode.
var specials = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'$':  `\$`,
	'&':  `\&`,
	'#':  `\#`,
	'%':  `\%`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
	'^':  `\textasciicircum{}`,
}

// accents maps combining marks (after NFD) to LaTeX accent commands.
var accents = map[rune]string{
	'\u0300': "\\`",
	'\u0301': `\'`,
	'\u0302': `\^`,
	'\u0303': `\~`,
	'\u0304': `\=`,
	'\u0306': `\u`,
	'\u0307': `\.`,
	'\u0308': `\"`,
	'\u030A': `\r`,
	'\u030B': `\H`,
	'\u030C': `\v`,
	'\u0327': `\c`,
	'\u0328': `\k`,
}

// standalone covers runes that do not decompose into base + mark.
var standalone = map[rune]string{
	'ß':      `\ss{}`,
	'æ':      `\ae{}`,
	'Æ':      `\AE{}`,
	'ø':      `\o{}`,
	'Ø':      `\O{}`,
	'œ':      `\oe{}`,
	'Œ':      `\OE{}`,
	'ł':      `\l{}`,
	'Ł':      `\L{}`,
	'‘': "`",
	'’': "'",
	'“': "``",
	'”': "''",
	'–': "--",
	'—': "---",
	'…': `\ldots{}`,
	'\u00A0': "~",
}

// textMath maps math runes that appear in prose to text-mode forms.
var textMath = map[rune]string{
	'¹': `\textsuperscript{1}`,
	'²': `\textsuperscript{2}`,
	'³': `\textsuperscript{3}`,
	'×': `\ensuremath{\times}`,
	'÷': `\ensuremath{\div}`,
	'±': `\ensuremath{\pm}`,
	'·': `\ensuremath{\cdot}`,
	'≈': `\ensuremath{\approx}`,
	'≠': `\ensuremath{\neq}`,
	'≤': `\ensuremath{\leq}`,
	'≥': `\ensuremath{\geq}`,
	'→': `\ensuremath{\rightarrow}`,
	'←': `\ensuremath{\leftarrow}`,
	'∑': `\ensuremath{\sum}`,
	'∫': `\ensuremath{\int}`,
	'√': `\ensuremath{\surd}`,
	'∂': `\ensuremath{\partial}`,
	'∈': `\ensuremath{\in}`,
	'°': `\ensuremath{^\circ}`,
}

// Text trims s and escapes it for LaTeX text mode. Accented letters become
// accent commands and Greek letters become math commands. Runes with no
// known LaTeX form are kept as they are.
func Text(s string) string {
	runes := []rune(norm.NFD.String(strings.TrimSpace(s)))
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		j := i + 1
		for j < len(runes) && unicode.Is(unicode.Mn, runes[j]) {
			j++
		}
		marks := runes[i+1 : j]

		base := encodeRune(r)
		for _, m := range marks {
			if cmd, ok := accents[m]; ok && base != "" {
				base = cmd + "{" + base + "}"
			}
		}
		b.WriteString(base)
		i = j - 1
	}
	return b.String()
}

func encodeRune(r rune) string {
	if s, ok := specials[r]; ok {
		return s
	}
	if r < unicode.MaxASCII {
		return string(r)
	}
	if s, ok := standalone[r]; ok {
		return s
	}
	if s, ok := textMath[r]; ok {
		return s
	}
	if cmd, ok := greek[r]; ok {
		return `\ensuremath{` + cmd + `}`
	}
	return string(r)
}

// greek maps Unicode Greek letters to math-mode commands.
var greek = map[rune]string{
	'α': `\alpha`, 'β': `\beta`, 'γ': `\gamma`, 'δ': `\delta`, 'ε': `\epsilon`,
	'ζ': `\zeta`, 'η': `\eta`, 'θ': `\theta`, 'ι': `\iota`, 'κ': `\kappa`,
	'λ': `\lambda`, 'μ': `\mu`, 'ν': `\nu`, 'ξ': `\xi`, 'π': `\pi`,
	'ρ': `\rho`, 'σ': `\sigma`, 'τ': `\tau`, 'υ': `\upsilon`, 'φ': `\phi`,
	'χ': `\chi`, 'ψ': `\psi`, 'ω': `\omega`,
	'Γ': `\Gamma`, 'Δ': `\Delta`, 'Θ': `\Theta`, 'Λ': `\Lambda`, 'Ξ': `\Xi`,
	'Π': `\Pi`, 'Σ': `\Sigma`, 'Υ': `\Upsilon`, 'Φ': `\Phi`, 'Ψ': `\Psi`,
	'Ω': `\Omega`, '∞': `\infty`,
}

// Symbol trims a math-mode symbol and replaces Unicode Greek letters with
// their commands. LaTeX specials are left alone: symbols are markup.
func Symbol(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if cmd, ok := greek[r]; ok {
			b.WriteString("{" + cmd + "}")
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Title returns s trimmed and in English title case. Like Python's
// str.title, letters after the first of each word are lowered.
func Title(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
