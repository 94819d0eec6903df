package cda

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Namespace is the single XML namespace used by every element of an HL7 CDA
// document. All path lookups on a Document are qualified against it so call
// sites never repeat the literal.
const Namespace = "urn:hl7-org:v3"

// Element is one node of the parsed document tree. The tree is generic rather
// than a fixed struct mapping because national CDA variants nest the same
// concepts differently and carry codes on elements a fixed schema would miss.
type Element struct {
	// Local is the element's local name without namespace prefix.
	Local string
	// Space is the resolved namespace URI of the element.
	Space string
	// Attrs maps attribute local names to values. CDA attributes are
	// unqualified, so local names are unambiguous in practice.
	Attrs map[string]string
	// Children holds child elements in document order.
	Children []*Element
	// Text is the concatenated character data directly inside this element,
	// excluding nested elements' text.
	Text string
}

// Document wraps a parsed CDA tree and centralizes namespace handling.
type Document struct {
	Root *Element
}

// ParseDocument parses raw CDA XML into a Document. It fails with an error
// wrapping ErrMalformedDocument when the text is not well-formed markup; it
// does not validate the document against any schema.
func ParseDocument(text string) (*Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedDocument)
	}

	dec := xml.NewDecoder(strings.NewReader(text))
	// Some national documents declare ISO-8859 charsets; pass the bytes
	// through rather than rejecting the declaration.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	root, err := decodeTree(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no root element", ErrMalformedDocument)
	}
	return &Document{Root: root}, nil
}

// decodeTree reads tokens until the first complete element has been built.
func decodeTree(dec *xml.Decoder) (*Element, error) {
	var stack []*Element
	var root *Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) != 0 {
				return nil, fmt.Errorf("unexpected end of document")
			}
			return root, nil
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Local: t.Name.Local,
				Space: t.Name.Space,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				el.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
}

// matches reports whether the element carries the given local name in the CDA
// namespace. Elements with an empty namespace are accepted as well: several
// member states emit fragments without a default namespace declaration and the
// engine must tolerate them.
func (e *Element) matches(local string) bool {
	return e.Local == local && (e.Space == Namespace || e.Space == "")
}

// Attr returns the value of the named attribute, or "" when absent.
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	return e.Attrs[name]
}

// Child returns the first direct child with the given local name.
func (e *Element) Child(local string) *Element {
	if e == nil {
		return nil
	}
	for _, c := range e.Children {
		if c.matches(local) {
			return c
		}
	}
	return nil
}

// ChildAll returns all direct children with the given local name, in document
// order.
func (e *Element) ChildAll(local string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, c := range e.Children {
		if c.matches(local) {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a slash-separated path of local names from this element and
// returns the first match, qualifying every segment with the CDA namespace.
func (e *Element) Find(path string) *Element {
	cur := e
	for _, seg := range strings.Split(path, "/") {
		cur = cur.Child(seg)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// FindAll returns every element reachable by the slash-separated path, in
// document order. Intermediate segments may match multiple elements.
func (e *Element) FindAll(path string) []*Element {
	if e == nil {
		return nil
	}
	frontier := []*Element{e}
	for _, seg := range strings.Split(path, "/") {
		var next []*Element
		for _, el := range frontier {
			next = append(next, el.ChildAll(seg)...)
		}
		if len(next) == 0 {
			return nil
		}
		frontier = next
	}
	return frontier
}

// Descendants returns every descendant element (self excluded) with the given
// local name, in document order.
func (e *Element) Descendants(local string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	var walk func(el *Element)
	walk = func(el *Element) {
		for _, c := range el.Children {
			if c.matches(local) {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

// Walk visits this element and every descendant in document order.
func (e *Element) Walk(fn func(*Element)) {
	if e == nil {
		return
	}
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// OwnText returns the element's direct character data with surrounding
// whitespace trimmed.
func (e *Element) OwnText() string {
	if e == nil {
		return ""
	}
	return strings.TrimSpace(e.Text)
}

// FlatText returns all character data under the element, nested elements
// included, with runs of whitespace collapsed to single spaces. This is the
// form used for section narratives, which arrive as HTML-ish markup.
func (e *Element) FlatText() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	e.Walk(func(el *Element) {
		if t := strings.TrimSpace(el.Text); t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// Find walks a path from the document root. The root element itself is not
// part of the path.
func (d *Document) Find(path string) *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Find(path)
}

// FindAll walks a path from the document root and returns every match.
func (d *Document) FindAll(path string) []*Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.FindAll(path)
}
