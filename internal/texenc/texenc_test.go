// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package texenc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Hope grows.  ", "Hope grows."},
		{"specials", "50% of A&B #1 costs $5", `50\% of A\&B \#1 costs \$5`},
		{"braces and underscore", "{x_1}", `\{x\_1\}`},
		{"backslash", `a\b`, `a\textbackslash{}b`},
		{"tilde caret", "~^", `\textasciitilde{}\textasciicircum{}`},
		{"acute", "café", `caf\'{e}`},
		{"diaeresis", "naïve", `na\"{i}ve`},
		{"cedilla", "façade", `fa\c{c}ade`},
		{"sharp s", "Straße", `Stra\ss{}e`},
		{"quotes and dashes", "“yes”—no", "``yes''---no"},
		{"superscript", "E = mc²", `E = mc\textsuperscript{2}`},
		{"greek letter", "the ratio π grows", `the ratio \ensuremath{\pi} grows`},
		{"infinity", "toward ∞", `toward \ensuremath{\infty}`},
		{"operators", "2 × 3 ≈ 6", `2 \ensuremath{\times} 3 \ensuremath{\approx} 6`},
		{"comparisons and arrows", "a ≤ b ≥ c → d", `a \ensuremath{\leq} b \ensuremath{\geq} c \ensuremath{\rightarrow} d`},
		{"unknown rune kept", "a心b", "a心b"},
		{"emoji kept", "a😀b", "a😀b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.in))
		})
	}
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, `v_0`, Symbol(" v_0 "))
	assert.Equal(t, `\alpha`, Symbol(`\alpha`))
	assert.Equal(t, `{\alpha}_i`, Symbol("α_i"))
	assert.Equal(t, `{\Omega}`, Symbol("Ω"))
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Inner Peace", Title("  inner peace "))
	assert.Equal(t, "Hope", Title("hOPE"))
}
