package ooxml

import (
	"encoding/xml"
	"strings"
)

// Node is a generic XML element. Children keep document order; Text holds the
// element's own character data.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Children []Node     `xml:",any"`
	Text     string     `xml:",chardata"`
}

// ParseNode parses data into a Node tree rooted at the document element.
func ParseNode(data []byte) (*Node, error) {
	var n Node
	if err := xml.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Name returns the local element name.
func (n *Node) Name() string {
	if n == nil {
		return ""
	}
	return n.XMLName.Local
}

// Attr returns the first attribute with the given local name in any namespace.
func (n *Node) Attr(local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// LookupAttr is Attr that also reports presence.
func (n *Node) LookupAttr(local string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// AttrNS returns the attribute with the given namespace and local name.
func (n *Node) AttrNS(space, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Child returns the first direct child named local, or nil. It is safe to
// chain on a nil receiver.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			return &n.Children[i]
		}
	}
	return nil
}

// ChildrenNamed returns every direct child named local.
func (n *Node) ChildrenNamed(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		if n.Children[i].XMLName.Local == local {
			out = append(out, &n.Children[i])
		}
	}
	return out
}

// Find returns the first descendant named local in document order, or nil.
func (n *Node) Find(local string) *Node {
	if n == nil {
		return nil
	}
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			return c
		}
		if found := c.Find(local); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant named local in document order. Matches are
// not searched for nested matches.
func (n *Node) FindAll(local string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			out = append(out, c)
			continue
		}
		out = append(out, c.FindAll(local)...)
	}
	return out
}

// Val returns the "val" attribute of the child named local.
func (n *Node) Val(local string) string {
	return n.Child(local).Attr("val")
}

// AllText concatenates the character data of n and its descendants.
func (n *Node) AllText() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	n.appendText(&b)
	return b.String()
}

func (n *Node) appendText(b *strings.Builder) {
	if len(n.Children) == 0 {
		b.WriteString(n.Text)
		return
	}
	for i := range n.Children {
		n.Children[i].appendText(b)
	}
}
