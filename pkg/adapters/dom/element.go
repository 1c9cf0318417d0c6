package dom

import (
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"golang.org/x/net/html"
)

const (
	classActive = "active"
	classHidden = "hidden"
)

// Element is a bound node of a Document.
type Element struct {
	doc *Document
	n   *html.Node
}

var _ ports.Element = (*Element)(nil)

func (d *Document) wrap(nodes []*html.Node) []ports.Element {
	out := make([]ports.Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{doc: d, n: n}
	}
	return out
}

// Attr implements ports.Element.
func (e *Element) Attr(name string) (v string, ok bool) {
	e.doc.read(func() { v, ok = getAttr(e.n, name) })
	return v, ok
}

// SetActive toggles the "active" class.
func (e *Element) SetActive(active bool) {
	e.doc.write(func() { setClass(e.n, classActive, active) })
}

// SetText replaces the element's children with text.
func (e *Element) SetText(text string) {
	e.doc.write(func() { setText(e.n, text) })
}

// SetSource sets the src attribute.
func (e *Element) SetSource(src string) {
	e.doc.write(func() { setAttr(e.n, "src", src) })
}

// SetOptions replaces the element's children with <option> nodes.
func (e *Element) SetOptions(opts []domain.SelectOption) {
	e.doc.write(func() {
		removeChildren(e.n)
		for _, o := range opts {
			opt := newElement("option", html.Attribute{Key: "value", Val: o.Value})
			if o.Disabled {
				opt.Attr = append(opt.Attr, html.Attribute{Key: "disabled"})
			}
			if o.Selected {
				opt.Attr = append(opt.Attr, html.Attribute{Key: "selected"})
			}
			setText(opt, o.Label)
			e.n.AppendChild(opt)
		}
	})
}

// Show removes the "hidden" class.
func (e *Element) Show() {
	e.doc.write(func() { setClass(e.n, classHidden, false) })
}

// Text returns the element's text content.
func (e *Element) Text() (s string) {
	e.doc.read(func() { s = textContent(e.n) })
	return s
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) (ok bool) {
	e.doc.read(func() { ok = hasClass(e.n, class) })
	return ok
}
