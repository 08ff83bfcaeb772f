// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docxmath

// Greek letter names in Unicode order, starting at U+03B1 (lower) and U+0391
// (upper). Letters LaTeX spells with Latin glyphs map to the glyph.
var (
	lowerGreek = []string{
		`\alpha `, `\beta `, `\gamma `, `\delta `, `\epsilon `, `\zeta `, `\eta `, `\theta `,
		`\iota `, `\kappa `, `\lambda `, `\mu `, `\nu `, `\xi `, "o", `\pi `, `\rho `,
		`\varsigma `, `\sigma `, `\tau `, `\upsilon `, `\phi `, `\chi `, `\psi `, `\omega `,
	}
	upperGreek = []string{
		"A", "B", `\Gamma `, `\Delta `, "E", "Z", "H", `\Theta `,
		"I", "K", `\Lambda `, "M", "N", `\Xi `, "O", `\Pi `, "P",
		`\Theta `, `\Sigma `, "T", `\Upsilon `, `\Phi `, "X", `\Psi `, `\Omega `,
	}
	// Variant forms that follow omega in the math italic block.
	italicGreekTail = []string{
		`\partial `, `\varepsilon `, `\vartheta `, `\varkappa `, `\varphi `, `\varrho `, `\varpi `,
	}
)

// Start of the Mathematical Alphanumeric Symbols ranges used by equation editors.
const (
	italicUpperLatin = 0x1D434
	italicLowerLatin = 0x1D44E
	italicUpperGreek = 0x1D6E2
	italicLowerGreek = 0x1D6FC
	planckConstant   = 0x210E
)

var relations = map[rune]string{
	'→': `\rightarrow `, '←': `\leftarrow `, '↑': `\uparrow `, '↓': `\downarrow `,
	'↔': `\leftrightarrow `, '↕': `\updownarrow `, '↖': `\nwarrow `, '↗': `\nearrow `,
	'↘': `\searrow `, '↙': `\swarrow `, '⇒': `\Rightarrow `, '⇐': `\Leftarrow `,
	'⇔': `\Leftrightarrow `, '⋮': `\vdots `, '⋯': `\cdots `, '⋱': `\ddots `,
	'≠': `\ne `, '≤': `\leq `, '≥': `\geq `, '≦': `\leqq `, '≧': `\geqq `,
	'≪': `\ll `, '≫': `\gg `, '≈': `\approx `, '≡': `\equiv `, '∼': `\sim `,
	'∝': `\propto `, '∈': `\in `, '∉': `\notin `, '∋': `\ni `, '⊂': `\subset `,
	'⊃': `\supset `, '⊆': `\subseteq `, '⊇': `\supseteq `, '∪': `\cup `, '∩': `\cap `,
	'∞': `\infty `, '∂': `\partial `, '∇': `\nabla `, '∀': `\forall `, '∃': `\exists `,
	'∅': `\emptyset `, '±': `\pm `, '∓': `\mp `, '×': `\times `, '÷': `\div `,
	'⋅': `\cdot `, '·': `\cdot `, '∘': `\circ `, '√': `\surd `, '…': `\ldots `,
	'¬': `\neg `, '∧': `\wedge `, '∨': `\vee `, '⊕': `\oplus `, '⊗': `\otimes `,
	'ℏ': `\hbar `, 'ℓ': `\ell `, '°': `^{\circ}`,
}

var bigOperators = map[string]string{
	"∑": `\sum`, "∏": `\prod`, "∐": `\coprod`, "∫": `\int`, "∬": `\iint`, "∭": `\iiint`,
	"∮": `\oint`, "⋀": `\bigwedge`, "⋁": `\bigvee`, "⋂": `\bigcap`, "⋃": `\bigcup`,
	"⨀": `\bigodot`, "⨁": `\bigoplus`, "⨂": `\bigotimes`,
}

// accents maps combining marks and group characters to LaTeX commands taking
// one argument.
var accents = map[string]string{
	"\u0300": `\grave`, "\u0301": `\acute`, "\u0302": `\hat`, "\u0303": `\tilde`,
	"\u0304": `\bar`, "\u0305": `\overline`, "\u0306": `\breve`, "\u0307": `\dot`,
	"\u0308": `\ddot`, "\u030c": `\check`, "\u20d6": `\overleftarrow`, "\u20d7": `\vec`,
	"\u20db": `\dddot`, "\u20e1": `\overleftrightarrow`, "\u0331": `\underline`,
	"\u23de": `\overbrace`, "\u23df": `\underbrace`, "\u23b4": `\overbracket`,
	"\u23b5": `\underbracket`, "\u23dc": `\overparen`, "\u23dd": `\underparen`,
	"\u2192": `\overrightarrow`, "\u2190": `\overleftarrow`,
}

var knownFunctions = map[string]struct{}{
	"sin": {}, "cos": {}, "tan": {}, "cot": {}, "sec": {}, "csc": {},
	"arcsin": {}, "arccos": {}, "arctan": {}, "sinh": {}, "cosh": {}, "tanh": {}, "coth": {},
	"log": {}, "ln": {}, "lg": {}, "exp": {}, "det": {}, "dim": {}, "ker": {}, "deg": {},
	"gcd": {}, "arg": {},
}

// symbol maps a rune to its LaTeX spelling. Plain letters and digits are not
// symbols.
func symbol(r rune) (string, bool) {
	switch {
	case r == planckConstant:
		return "h", true
	case r >= italicUpperLatin && r < italicUpperLatin+26:
		return string(rune('A' + r - italicUpperLatin)), true
	case r >= italicLowerLatin && r < italicLowerLatin+26:
		return string(rune('a' + r - italicLowerLatin)), true
	case r >= italicUpperGreek && r < italicUpperGreek+rune(len(upperGreek)):
		return upperGreek[r-italicUpperGreek], true
	case r >= italicLowerGreek && r < italicLowerGreek+rune(len(lowerGreek)):
		return lowerGreek[r-italicLowerGreek], true
	case r >= italicLowerGreek+rune(len(lowerGreek)) && r < italicLowerGreek+rune(len(lowerGreek)+len(italicGreekTail)):
		return italicGreekTail[r-italicLowerGreek-rune(len(lowerGreek))], true
	case r >= 'α' && r <= 'ω':
		return lowerGreek[r-'α'], true
	case r >= 'Α' && r <= 'Ω' && r != 0x03A2:
		return upperGreek[r-'Α'], true
	}
	s, ok := relations[r]
	return s, ok
}
