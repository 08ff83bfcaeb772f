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

package tomd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/conductor-oss/tomd/internal/docxmath"
	"github.com/conductor-oss/tomd/internal/ooxml"
)

const docxMainPart = "word/document.xml"

// DocxConverter handles Word documents. The body is rebuilt as HTML and handed
// to the HTML converter.
type DocxConverter struct {
	html *HTMLConverter
}

// NewDocxConverter creates a new DocxConverter.
func NewDocxConverter(e *Engine) *DocxConverter {
	return &DocxConverter{html: NewHTMLConverter(e)}
}

func (c *DocxConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".docx"
}

func (c *DocxConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	pkg, err := ooxml.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}
	defer pkg.Close()

	doc, err := pkg.ReadXML(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("read DOCX body: %w", err)
	}
	body := doc.Child("body")
	if body == nil {
		return nil, errors.New("read DOCX body: document has no body")
	}
	rels, err := pkg.Relationships(docxMainPart)
	if err != nil {
		return nil, fmt.Errorf("read DOCX relationships: %w", err)
	}

	props := pkg.CoreProperties()
	w := &docxWriter{
		pkg:       pkg,
		rels:      rels,
		styles:    loadDocxStyles(pkg),
		numbering: loadDocxNumbering(pkg),
		comments:  loadDocxComments(pkg),
		mathToken: "docxmath" + strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
	w.out.WriteString("<html><head><title>" + html.EscapeString(props.Title) + "</title></head><body>")
	w.blocks(body)
	w.closeLists()
	w.out.WriteString("</body></html>")

	result, err := c.html.ConvertString(w.out.String())
	if err != nil {
		return nil, fmt.Errorf("convert DOCX: %w", err)
	}
	result.Markdown = w.restoreMath(result.Markdown)
	result.Metadata.Author = props.Creator
	return result, nil
}

// loadDocxStyles maps style IDs to their display names.
func loadDocxStyles(pkg *ooxml.Package) map[string]string {
	styles := map[string]string{}
	root, err := pkg.ReadXML("word/styles.xml")
	if err != nil {
		return styles
	}
	for _, s := range root.ChildrenNamed("style") {
		styles[s.Attr("styleId")] = s.Val("name")
	}
	return styles
}

// loadDocxNumbering reports, per numbering ID and level, whether the list is
// ordered.
func loadDocxNumbering(pkg *ooxml.Package) map[string]map[string]bool {
	numbering := map[string]map[string]bool{}
	root, err := pkg.ReadXML("word/numbering.xml")
	if err != nil {
		return numbering
	}

	abstract := map[string]map[string]bool{}
	for _, a := range root.ChildrenNamed("abstractNum") {
		levels := map[string]bool{}
		for _, lvl := range a.ChildrenNamed("lvl") {
			format := lvl.Val("numFmt")
			levels[lvl.Attr("ilvl")] = format != "" && format != "bullet" && format != "none"
		}
		abstract[a.Attr("abstractNumId")] = levels
	}
	for _, n := range root.ChildrenNamed("num") {
		if levels, ok := abstract[n.Val("abstractNumId")]; ok {
			numbering[n.Attr("numId")] = levels
		}
	}
	return numbering
}

type docxComment struct {
	author string
	text   string
}

func loadDocxComments(pkg *ooxml.Package) map[string]docxComment {
	comments := map[string]docxComment{}
	root, err := pkg.ReadXML("word/comments.xml")
	if err != nil {
		return comments
	}
	for _, c := range root.ChildrenNamed("comment") {
		var paras []string
		for _, p := range c.FindAll("p") {
			if t := strings.TrimSpace(p.AllText()); t != "" {
				paras = append(paras, t)
			}
		}
		comments[c.Attr("id")] = docxComment{author: c.Attr("author"), text: strings.Join(paras, " ")}
	}
	return comments
}

type docxMath struct {
	latex string
	block bool
}

// docxWriter accumulates the HTML rendition of one document.
type docxWriter struct {
	pkg       *ooxml.Package
	rels      map[string]ooxml.Relationship
	styles    map[string]string
	numbering map[string]map[string]bool
	comments  map[string]docxComment

	out   strings.Builder
	lists []string

	// Equations are swapped for opaque tokens while HTML is converted and put
	// back afterwards, so Markdown escaping never touches LaTeX.
	mathToken string
	math      []docxMath
}

func (w *docxWriter) blocks(n *ooxml.Node) {
	for i := range n.Children {
		child := &n.Children[i]
		switch child.Name() {
		case "p":
			w.paragraph(child)
		case "tbl":
			w.closeLists()
			w.out.WriteString(w.table(child))
		case "sdt":
			w.blocks(child.Child("sdtContent"))
		case "customXml", "ins":
			w.blocks(child)
		}
	}
}

func (w *docxWriter) paragraph(p *ooxml.Node) {
	content, comments := w.inline(p)
	for _, id := range comments {
		if c, ok := w.comments[id]; ok && c.text != "" {
			content += html.EscapeString(fmt.Sprintf(" [comment by %s: %s]", c.author, c.text))
		}
	}

	pr := p.Child("pPr")
	if level := w.headingLevel(pr.Val("pStyle")); level > 0 {
		w.closeLists()
		if strings.TrimSpace(content) != "" {
			fmt.Fprintf(&w.out, "<h%d>%s</h%d>\n", level, content, level)
		}
		return
	}

	if num := pr.Child("numPr"); num != nil && num.Val("numId") != "0" && num.Val("numId") != "" {
		level, _ := strconv.Atoi(num.Val("ilvl"))
		tag := "ul"
		if w.numbering[num.Val("numId")][num.Val("ilvl")] {
			tag = "ol"
		}
		w.listItem(level, tag, content)
		return
	}

	w.closeLists()
	if strings.TrimSpace(content) != "" {
		w.out.WriteString("<p>" + content + "</p>\n")
	}
}

// headingLevel derives 1-6 from the style name ("heading 2", "Title"), or 0.
func (w *docxWriter) headingLevel(styleID string) int {
	if styleID == "" {
		return 0
	}
	name := strings.ToLower(w.styles[styleID])
	if name == "" {
		name = strings.ToLower(styleID)
	}
	if name == "title" {
		return 1
	}
	rest, ok := strings.CutPrefix(name, "heading")
	if !ok {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || level < 1 {
		return 0
	}
	return min(level, 6)
}

// listItem opens, closes or continues nested lists so the item lands at
// level. The item's <li> stays open so deeper items nest inside it.
func (w *docxWriter) listItem(level int, tag, content string) {
	depth := min(level, 8) + 1
	for len(w.lists) > depth {
		w.closeList()
	}
	if len(w.lists) == depth && w.lists[depth-1] != tag {
		w.closeList()
	}
	if len(w.lists) == depth {
		w.out.WriteString("</li>")
	}
	for len(w.lists) < depth {
		w.out.WriteString("<" + tag + ">")
		w.lists = append(w.lists, tag)
	}
	w.out.WriteString("<li>" + content)
}

func (w *docxWriter) closeList() {
	tag := w.lists[len(w.lists)-1]
	w.lists = w.lists[:len(w.lists)-1]
	w.out.WriteString("</li></" + tag + ">")
}

func (w *docxWriter) closeLists() {
	for len(w.lists) > 0 {
		w.closeList()
	}
	w.out.WriteString("\n")
}

func (w *docxWriter) table(tbl *ooxml.Node) string {
	var b strings.Builder
	b.WriteString("<table>")
	for i, tr := range tbl.ChildrenNamed("tr") {
		cellTag := "td"
		if i == 0 {
			cellTag = "th"
		}
		b.WriteString("<tr>")
		for _, tc := range tr.ChildrenNamed("tc") {
			var parts []string
			for _, p := range tc.FindAll("p") {
				content, _ := w.inline(p)
				if strings.TrimSpace(content) != "" {
					parts = append(parts, content)
				}
			}
			cell := "<" + cellTag + ">" + strings.Join(parts, " ") + "</" + cellTag + ">"
			b.WriteString(cell)
			// Markdown tables cannot span, so merged columns become empty cells.
			span, _ := strconv.Atoi(tc.Child("tcPr").Val("gridSpan"))
			for range span - 1 {
				b.WriteString("<" + cellTag + "></" + cellTag + ">")
			}
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>\n")
	return b.String()
}

// runStyle is the character formatting carried into HTML.
type runStyle struct {
	bold, italic, strike bool
}

// inlineHTML merges adjacent runs with equal formatting before escaping them.
type inlineHTML struct {
	out   strings.Builder
	text  strings.Builder
	style runStyle
}

func (b *inlineHTML) writeText(s string, st runStyle) {
	if st != b.style {
		b.flush()
		b.style = st
	}
	b.text.WriteString(s)
}

func (b *inlineHTML) writeHTML(s string) {
	b.flush()
	b.out.WriteString(s)
}

func (b *inlineHTML) flush() {
	if b.text.Len() == 0 {
		return
	}
	s := html.EscapeString(b.text.String())
	b.text.Reset()
	if strings.TrimSpace(s) != "" {
		if b.style.strike {
			s = "<s>" + s + "</s>"
		}
		if b.style.italic {
			s = "<em>" + s + "</em>"
		}
		if b.style.bold {
			s = "<strong>" + s + "</strong>"
		}
	}
	b.out.WriteString(s)
}

func (b *inlineHTML) String() string {
	b.flush()
	return b.out.String()
}

// inline renders the runs of a paragraph and returns the comment IDs it
// references.
func (w *docxWriter) inline(p *ooxml.Node) (string, []string) {
	var b inlineHTML
	var comments []string
	w.inlineChildren(p, &b, &comments)
	return b.String(), comments
}

func (w *docxWriter) inlineChildren(n *ooxml.Node, b *inlineHTML, comments *[]string) {
	for i := range n.Children {
		child := &n.Children[i]
		switch child.Name() {
		case "r":
			w.run(child, b, comments)
		case "hyperlink":
			var inner inlineHTML
			w.inlineChildren(child, &inner, comments)
			text := inner.String()
			if href := w.hyperlinkTarget(child); href != "" {
				b.writeHTML(`<a href="` + html.EscapeString(href) + `">` + text + "</a>")
			} else {
				b.writeHTML(text)
			}
		case "ins", "smartTag", "fldSimple", "customXml":
			w.inlineChildren(child, b, comments)
		case "sdt":
			w.inlineChildren(child.Child("sdtContent"), b, comments)
		case "oMath":
			b.writeHTML(w.mathPlaceholder(child, false))
		case "oMathPara":
			b.writeHTML(w.mathPlaceholder(child, true))
		}
	}
}

func (w *docxWriter) hyperlinkTarget(n *ooxml.Node) string {
	if id := n.AttrNS(ooxml.NSRelDoc, "id"); id != "" {
		if rel, ok := w.rels[id]; ok {
			return rel.Target
		}
	}
	if anchor := n.Attr("anchor"); anchor != "" {
		return "#" + anchor
	}
	return ""
}

func (w *docxWriter) run(r *ooxml.Node, b *inlineHTML, comments *[]string) {
	pr := r.Child("rPr")
	st := runStyle{
		bold:   toggleOn(pr.Child("b")),
		italic: toggleOn(pr.Child("i")),
		strike: toggleOn(pr.Child("strike")) || toggleOn(pr.Child("dstrike")),
	}
	for i := range r.Children {
		child := &r.Children[i]
		switch child.Name() {
		case "t":
			b.writeText(child.Text, st)
		case "tab":
			b.writeText("\t", st)
		case "br", "cr":
			b.writeHTML("<br/>")
		case "drawing", "pict":
			b.writeHTML(w.image(child))
		case "commentReference":
			*comments = append(*comments, child.Attr("id"))
		}
	}
}

// toggleOn reads an OOXML on/off property such as <w:b/> or <w:b w:val="0"/>.
func toggleOn(n *ooxml.Node) bool {
	if n == nil {
		return false
	}
	switch n.Attr("val") {
	case "0", "false", "off":
		return false
	}
	return true
}

// image renders an embedded picture as an <img> with a data URI. The HTML
// converter decides whether the URI survives.
func (w *docxWriter) image(n *ooxml.Node) string {
	var id, alt string
	if blip := n.Find("blip"); blip != nil {
		id = blip.AttrNS(ooxml.NSRelDoc, "embed")
		if docPr := n.Find("docPr"); docPr != nil {
			alt = docPr.Attr("descr")
			if alt == "" {
				alt = docPr.Attr("title")
			}
		}
	} else if data := n.Find("imagedata"); data != nil {
		id = data.AttrNS(ooxml.NSRelDoc, "id")
		alt = data.Attr("title")
	}

	rel, ok := w.rels[id]
	if id == "" || !ok {
		return ""
	}
	src := rel.Target
	if !rel.External() {
		target := ooxml.ResolveTarget(docxMainPart, rel.Target)
		data, err := w.pkg.ReadFile(target)
		if err != nil {
			return ""
		}
		src = "data:" + mimetype.Detect(data).String() + ";base64," + base64.StdEncoding.EncodeToString(data)
		if alt == "" {
			alt = target[strings.LastIndex(target, "/")+1:]
		}
	}
	return `<img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `"/>`
}

func (w *docxWriter) mathPlaceholder(n *ooxml.Node, block bool) string {
	latex := docxmath.ToLaTeX(n)
	if latex == "" {
		return ""
	}
	w.math = append(w.math, docxMath{latex: latex, block: block})
	return w.mathToken + strconv.Itoa(len(w.math)-1) + "z"
}

func (w *docxWriter) restoreMath(md string) string {
	for i, m := range w.math {
		repl := "$" + m.latex + "$"
		if m.block {
			repl = "$$" + m.latex + "$$"
		}
		md = strings.ReplaceAll(md, w.mathToken+strconv.Itoa(i)+"z", repl)
	}
	return md
}
