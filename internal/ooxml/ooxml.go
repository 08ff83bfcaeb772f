// Package ooxml reads ZIP based document containers: Office Open XML packages
// (.docx, .pptx) and EPUB books share the same layout of XML parts and
// relationship files.
package ooxml

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// Namespaces matched by attribute lookups.
const (
	NSRelDoc = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NSOMML   = "http://schemas.openxmlformats.org/officeDocument/2006/math"
)

// maxPartSize caps how much of a single part is read into memory.
const maxPartSize = 64 << 20

// Relationship is one entry of a .rels part.
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr"`
}

// External reports whether the target points outside the package.
func (r Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, "External")
}

// Package is an open container.
type Package struct {
	zr    *zip.ReadCloser
	files map[string]*zip.File
}

// Open opens the container at localPath.
func Open(localPath string) (*Package, error) {
	zr, err := zip.OpenReader(localPath)
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimPrefix(f.Name, "/")] = f
	}
	return &Package{zr: zr, files: files}, nil
}

// Close releases the underlying archive.
func (p *Package) Close() error {
	return p.zr.Close()
}

// Has reports whether the part exists.
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// Names returns every part name in lexical order.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.files))
	for name := range p.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ReadFile returns the content of a part.
func (p *Package) ReadFile(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %q exceeds %d bytes", name, maxPartSize)
	}
	return data, nil
}

// ReadXML reads a part and parses it into a Node tree.
func (p *Package) ReadXML(name string) (*Node, error) {
	data, err := p.ReadFile(name)
	if err != nil {
		return nil, err
	}
	n, err := ParseNode(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return n, nil
}

// Relationships returns the relationships of part keyed by ID. A part without a
// .rels file has none.
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	relsPath := RelsPathFor(part)
	if !p.Has(relsPath) {
		return map[string]Relationship{}, nil
	}
	data, err := p.ReadFile(relsPath)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Relationships []Relationship `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", relsPath, err)
	}
	rels := make(map[string]Relationship, len(doc.Relationships))
	for _, rel := range doc.Relationships {
		rels[rel.ID] = rel
	}
	return rels, nil
}

// CoreProperties holds the Dublin Core fields of docProps/core.xml.
type CoreProperties struct {
	Title   string
	Creator string
}

// CoreProperties reads docProps/core.xml. Missing or broken parts yield zero
// values.
func (p *Package) CoreProperties() CoreProperties {
	root, err := p.ReadXML("docProps/core.xml")
	if err != nil {
		return CoreProperties{}
	}
	return CoreProperties{
		Title:   strings.TrimSpace(root.Child("title").AllText()),
		Creator: strings.TrimSpace(root.Child("creator").AllText()),
	}
}

// RelsPathFor returns the .rels part that belongs to part.
func RelsPathFor(part string) string {
	dir, base := path.Split(part)
	return dir + "_rels/" + base + ".rels"
}

// ResolveTarget resolves a relationship target relative to the part that owns it.
func ResolveTarget(part, target string) string {
	if rest, ok := strings.CutPrefix(target, "/"); ok {
		return rest
	}
	return path.Join(path.Dir(part), target)
}
