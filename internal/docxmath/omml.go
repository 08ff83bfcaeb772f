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

// Package docxmath renders Office Math (OMML) elements as LaTeX.
package docxmath

import (
	"fmt"
	"strings"

	"github.com/conductor-oss/tomd/internal/ooxml"
)

// ToLaTeX renders an m:oMath or m:oMathPara element. Paragraphs with several
// equations are joined with a LaTeX line break.
func ToLaTeX(n *ooxml.Node) string {
	if n == nil {
		return ""
	}
	if n.Name() == "oMathPara" {
		var eqs []string
		for _, m := range n.ChildrenNamed("oMath") {
			if s := strings.TrimSpace(children(m)); s != "" {
				eqs = append(eqs, s)
			}
		}
		return strings.Join(eqs, ` \\ `)
	}
	return strings.TrimSpace(children(n))
}

// children renders every child of n in order.
func children(n *ooxml.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for i := range n.Children {
		b.WriteString(element(&n.Children[i]))
	}
	return b.String()
}

// arg renders the child named local, or "" when it is absent.
func arg(n *ooxml.Node, local string) string {
	return children(n.Child(local))
}

func element(n *ooxml.Node) string {
	switch n.Name() {
	case "r":
		return run(n)
	case "f":
		return fraction(n)
	case "rad":
		return radical(n)
	case "sSub":
		return arg(n, "e") + script("_", arg(n, "sub"))
	case "sSup":
		return arg(n, "e") + script("^", arg(n, "sup"))
	case "sSubSup":
		return arg(n, "e") + script("_", arg(n, "sub")) + script("^", arg(n, "sup"))
	case "sPre":
		return "{}" + script("_", arg(n, "sub")) + script("^", arg(n, "sup")) + arg(n, "e")
	case "d":
		return delimiter(n)
	case "nary":
		return nary(n)
	case "acc":
		return accent(n)
	case "bar":
		if n.Child("barPr").Val("pos") == "bot" {
			return `\underline{` + arg(n, "e") + "}"
		}
		return `\overline{` + arg(n, "e") + "}"
	case "groupChr":
		return groupChar(n)
	case "func":
		return function(n)
	case "limLow":
		return limLow(n)
	case "limUpp":
		return `\overset{` + arg(n, "lim") + "}{" + arg(n, "e") + "}"
	case "eqArr":
		var rows []string
		for _, e := range n.ChildrenNamed("e") {
			rows = append(rows, children(e))
		}
		return `\begin{array}{c}` + strings.Join(rows, `\\`) + `\end{array}`
	case "m":
		return matrix(n)
	case "box", "borderBox", "phant", "e", "num", "den", "deg", "sub", "sup", "lim", "fName", "oMath":
		return children(n)
	}
	// Property elements and anything unknown render as nothing.
	return ""
}

func script(op, s string) string {
	if s == "" {
		return ""
	}
	return op + "{" + s + "}"
}

func run(n *ooxml.Node) string {
	var b strings.Builder
	for _, t := range n.ChildrenNamed("t") {
		for _, r := range t.Text {
			if sym, ok := symbol(r); ok {
				b.WriteString(sym)
				continue
			}
			b.WriteString(escapeRune(r))
		}
	}
	return b.String()
}

func fraction(n *ooxml.Node) string {
	num, den := arg(n, "num"), arg(n, "den")
	switch n.Child("fPr").Val("type") {
	case "skw":
		return fmt.Sprintf("^{%s}/_{%s}", num, den)
	case "lin":
		return fmt.Sprintf("{%s}/{%s}", num, den)
	case "noBar":
		return fmt.Sprintf(`\genfrac{}{}{0pt}{}{%s}{%s}`, num, den)
	}
	return fmt.Sprintf(`\frac{%s}{%s}`, num, den)
}

func radical(n *ooxml.Node) string {
	deg := arg(n, "deg")
	if deg == "" || n.Child("radPr").Val("degHide") == "1" {
		return `\sqrt{` + arg(n, "e") + "}"
	}
	return `\sqrt[` + deg + "]{" + arg(n, "e") + "}"
}

func delimiter(n *ooxml.Node) string {
	pr := n.Child("dPr")
	left, right := "(", ")"
	if v, ok := pr.Child("begChr").LookupAttr("val"); ok {
		left = v
	}
	if v, ok := pr.Child("endChr").LookupAttr("val"); ok {
		right = v
	}
	sep := "|"
	if v, ok := pr.Child("sepChr").LookupAttr("val"); ok {
		sep = v
	}

	var parts []string
	for _, e := range n.ChildrenNamed("e") {
		parts = append(parts, children(e))
	}
	return `\left` + fence(left) + strings.Join(parts, sep) + `\right` + fence(right)
}

func fence(s string) string {
	switch s {
	case "":
		return "."
	case "{", "}":
		return `\` + s
	case "‖":
		return `\|`
	case "⟨":
		return `\langle `
	case "⟩":
		return `\rangle `
	case "⌊":
		return `\lfloor `
	case "⌋":
		return `\rfloor `
	case "⌈":
		return `\lceil `
	case "⌉":
		return `\rceil `
	}
	return s
}

func nary(n *ooxml.Node) string {
	pr := n.Child("naryPr")
	op := `\int`
	if v, ok := pr.Child("chr").LookupAttr("val"); ok {
		if cmd, known := bigOperators[v]; known {
			op = cmd
		} else {
			op = v
		}
	}
	var b strings.Builder
	b.WriteString(op)
	if pr.Val("subHide") != "1" {
		b.WriteString(script("_", arg(n, "sub")))
	}
	if pr.Val("supHide") != "1" {
		b.WriteString(script("^", arg(n, "sup")))
	}
	b.WriteString("{" + arg(n, "e") + "}")
	return b.String()
}

func accent(n *ooxml.Node) string {
	cmd := `\hat`
	if v, ok := n.Child("accPr").Child("chr").LookupAttr("val"); ok {
		if known, found := accents[v]; found {
			cmd = known
		}
	}
	return cmd + "{" + arg(n, "e") + "}"
}

func groupChar(n *ooxml.Node) string {
	pr := n.Child("groupChrPr")
	chr := "⏟"
	if v, ok := pr.Child("chr").LookupAttr("val"); ok {
		chr = v
	}
	if cmd, ok := accents[chr]; ok {
		return cmd + "{" + arg(n, "e") + "}"
	}
	if pr.Val("pos") == "top" {
		return `\overbrace{` + arg(n, "e") + "}"
	}
	return `\underbrace{` + arg(n, "e") + "}"
}

func function(n *ooxml.Node) string {
	name := strings.TrimSpace(arg(n, "fName"))
	body := arg(n, "e")
	if _, ok := knownFunctions[name]; ok {
		return `\` + name + "{" + body + "}"
	}
	return name + "{" + body + "}"
}

func limLow(n *ooxml.Node) string {
	base := strings.TrimSpace(arg(n, "e"))
	lim := strings.ReplaceAll(arg(n, "lim"), `\rightarrow `, `\to `)
	switch base {
	case "lim", "max", "min", "sup", "inf":
		return `\` + base + "_{" + lim + "}"
	}
	return `\underset{` + lim + "}{" + base + "}"
}

func matrix(n *ooxml.Node) string {
	var rows []string
	for _, mr := range n.ChildrenNamed("mr") {
		var cells []string
		for _, e := range mr.ChildrenNamed("e") {
			cells = append(cells, children(e))
		}
		rows = append(rows, strings.Join(cells, "&"))
	}
	return `\begin{matrix}` + strings.Join(rows, `\\`) + `\end{matrix}`
}

func escapeRune(r rune) string {
	switch r {
	case '{', '}', '_', '#', '&', '$', '%':
		return `\` + string(r)
	case '~':
		return `\sim `
	case '^':
		return `\hat{}`
	case '\\':
		return `\backslash `
	}
	return string(r)
}
