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
	"cmp"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/conductor-oss/tomd/internal/ooxml"
)

const pptxMainPart = "ppt/presentation.xml"

// PptxConverter handles PowerPoint presentations. Each slide is introduced by
// an HTML comment carrying its number, and shapes are emitted top to bottom.
type PptxConverter struct{}

// NewPptxConverter creates a new PptxConverter.
func NewPptxConverter() *PptxConverter {
	return &PptxConverter{}
}

func (c *PptxConverter) Accepts(_ string, hints ConvertHints) bool {
	return hints.FileExtension == ".pptx"
}

func (c *PptxConverter) Convert(localPath string, _ ConvertHints) (*ConversionResult, error) {
	pkg, err := ooxml.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open PPTX: %w", err)
	}
	defer pkg.Close()

	slides, err := pptxSlideOrder(pkg)
	if err != nil {
		return nil, fmt.Errorf("read PPTX slide list: %w", err)
	}

	props := pkg.CoreProperties()
	title := props.Title

	var md strings.Builder
	for i, part := range slides {
		slide, err := pkg.ReadXML(part)
		if err != nil {
			return nil, fmt.Errorf("read slide %d: %w", i+1, err)
		}
		rels, err := pkg.Relationships(part)
		if err != nil {
			return nil, fmt.Errorf("read slide %d relationships: %w", i+1, err)
		}

		shapes := pptxShapes(slide.Find("spTree"), part, rels)
		slices.SortStableFunc(shapes, func(a, b pptxShape) int {
			if n := cmp.Compare(a.top, b.top); n != 0 {
				return n
			}
			return cmp.Compare(a.left, b.left)
		})

		fmt.Fprintf(&md, "<!-- Slide number: %d -->\n", i+1)
		for _, s := range shapes {
			if s.title && title == "" {
				title = s.text
			}
			md.WriteString(s.markdown())
		}
		if notes := pptxNotes(pkg, part, rels); notes != "" {
			md.WriteString("\n### Notes:\n" + notes + "\n")
		}
		md.WriteString("\n")
	}

	return &ConversionResult{
		Title:    title,
		Markdown: md.String(),
		Metadata: Metadata{Author: props.Creator},
	}, nil
}

// pptxSlideOrder lists slide parts in presentation order. Packages without a
// usable slide list fall back to numeric part-name order.
func pptxSlideOrder(pkg *ooxml.Package) ([]string, error) {
	pres, err := pkg.ReadXML(pptxMainPart)
	if err != nil {
		return nil, err
	}
	rels, err := pkg.Relationships(pptxMainPart)
	if err != nil {
		return nil, err
	}

	var slides []string
	for _, id := range pres.Child("sldIdLst").ChildrenNamed("sldId") {
		rel, ok := rels[id.AttrNS(ooxml.NSRelDoc, "id")]
		if !ok {
			continue
		}
		if part := ooxml.ResolveTarget(pptxMainPart, rel.Target); pkg.Has(part) {
			slides = append(slides, part)
		}
	}
	if len(slides) > 0 {
		return slides, nil
	}

	for _, name := range pkg.Names() {
		if slideNumber(name) > 0 {
			slides = append(slides, name)
		}
	}
	slices.SortFunc(slides, func(a, b string) int {
		return cmp.Compare(slideNumber(a), slideNumber(b))
	})
	return slides, nil
}

// slideNumber returns N for "ppt/slides/slideN.xml", or 0.
func slideNumber(name string) int {
	rest, ok := strings.CutPrefix(name, "ppt/slides/slide")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(rest, ".xml"))
	if err != nil || !strings.HasSuffix(rest, ".xml") {
		return 0
	}
	return n
}

type pptxShape struct {
	top, left int64
	title     bool
	text      string
	table     [][]string
	image     string
	alt       string
}

func (s pptxShape) markdown() string {
	switch {
	case s.table != nil:
		return "\n" + renderMarkdownTable(s.table) + "\n"
	case s.image != "":
		return fmt.Sprintf("\n![%s](%s)\n", s.alt, s.image)
	case s.title:
		return "# " + s.text + "\n"
	case s.text != "":
		return s.text + "\n"
	}
	return ""
}

// pptxShapes flattens a shape tree. Group members keep their own offsets.
func pptxShapes(tree *ooxml.Node, part string, rels map[string]ooxml.Relationship) []pptxShape {
	if tree == nil {
		return nil
	}
	var shapes []pptxShape
	for i := range tree.Children {
		n := &tree.Children[i]
		switch n.Name() {
		case "sp":
			text := pptxText(n.Child("txBody"), "\n")
			if text == "" {
				continue
			}
			phType := n.Child("nvSpPr").Child("nvPr").Child("ph").Attr("type")
			top, left := pptxOffset(n.Child("spPr").Child("xfrm"))
			shapes = append(shapes, pptxShape{
				top: top, left: left, text: text,
				title: phType == "title" || phType == "ctrTitle",
			})
		case "pic":
			top, left := pptxOffset(n.Child("spPr").Child("xfrm"))
			shapes = append(shapes, pptxPicture(n, part, rels, top, left))
		case "graphicFrame":
			tbl := n.Find("tbl")
			if tbl == nil {
				continue
			}
			top, left := pptxOffset(n.Child("xfrm"))
			var rows [][]string
			for _, tr := range tbl.ChildrenNamed("tr") {
				var row []string
				for _, tc := range tr.ChildrenNamed("tc") {
					row = append(row, strings.ReplaceAll(pptxText(tc.Child("txBody"), " "), "|", `\|`))
				}
				rows = append(rows, row)
			}
			if len(rows) > 0 {
				shapes = append(shapes, pptxShape{top: top, left: left, table: rows})
			}
		case "grpSp":
			shapes = append(shapes, pptxShapes(n, part, rels)...)
		}
	}
	return shapes
}

func pptxPicture(n *ooxml.Node, part string, rels map[string]ooxml.Relationship, top, left int64) pptxShape {
	props := n.Child("nvPicPr").Child("cNvPr")
	alt := props.Attr("descr")
	if alt == "" {
		alt = props.Attr("name")
	}
	alt = strings.Join(strings.FieldsFunc(alt, func(r rune) bool {
		return r == '[' || r == ']' || r == '\n' || r == '\r' || r == ' '
	}), " ")

	image := "image"
	if rel, ok := rels[n.Find("blip").AttrNS(ooxml.NSRelDoc, "embed")]; ok {
		if rel.External() {
			image = rel.Target
		} else {
			image = path.Base(ooxml.ResolveTarget(part, rel.Target))
		}
	}
	return pptxShape{top: top, left: left, image: image, alt: alt}
}

func pptxOffset(xfrm *ooxml.Node) (top, left int64) {
	off := xfrm.Child("off")
	top, _ = strconv.ParseInt(off.Attr("y"), 10, 64)
	left, _ = strconv.ParseInt(off.Attr("x"), 10, 64)
	return top, left
}

// pptxText joins the paragraphs of a text body with sep. Line breaks inside a
// paragraph become spaces.
func pptxText(body *ooxml.Node, sep string) string {
	var paras []string
	for _, p := range body.ChildrenNamed("p") {
		var b strings.Builder
		for i := range p.Children {
			switch c := &p.Children[i]; c.Name() {
			case "r", "fld":
				b.WriteString(c.Child("t").Text)
			case "br":
				b.WriteString(" ")
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			paras = append(paras, s)
		}
	}
	return strings.Join(paras, sep)
}

// pptxNotes returns the speaker notes of a slide, or "".
func pptxNotes(pkg *ooxml.Package, part string, rels map[string]ooxml.Relationship) string {
	for _, rel := range rels {
		if !strings.HasSuffix(rel.Type, "/notesSlide") {
			continue
		}
		notes, err := pkg.ReadXML(ooxml.ResolveTarget(part, rel.Target))
		if err != nil {
			return ""
		}
		var texts []string
		for _, sp := range notes.FindAll("sp") {
			if sp.Child("nvSpPr").Child("nvPr").Child("ph").Attr("type") != "body" {
				continue
			}
			if t := pptxText(sp.Child("txBody"), "\n"); t != "" {
				texts = append(texts, t)
			}
		}
		return strings.Join(texts, "\n")
	}
	return ""
}
