package dom

import (
	"github.com/aretw0/handheld/pkg/ports"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ClassVideoInput marks the element showing the media source.
const ClassVideoInput = "video-input"

// Chrome implements ports.ChromeView over a Document.
type Chrome struct {
	doc *Document
}

var _ ports.ChromeView = (*Chrome)(nil)

// NewChrome creates a chrome view of doc.
func NewChrome(doc *Document) *Chrome {
	return &Chrome{doc: doc}
}

// Elements implements ports.ChromeView.
func (c *Chrome) Elements(attr string) (out []ports.Element) {
	c.doc.read(func() { out = c.doc.wrap(findAll(c.doc.root, hasAttr(attr))) })
	return out
}

// Form returns the first form inside the region whose data-state is exactly
// state.
func (c *Chrome) Form(state string) (ports.FormView, bool) {
	var form *html.Node
	c.doc.read(func() {
		region := findFirst(c.doc.root, func(n *html.Node) bool {
			v, ok := getAttr(n, ports.AttrState)
			return ok && v == state
		})
		if region == nil {
			return
		}
		form = findFirst(region, func(n *html.Node) bool { return n.DataAtom == atom.Form })
	})
	if form == nil {
		return nil, false
	}
	return &Form{doc: c.doc, n: form}, true
}

// Form implements ports.FormView over a <form> node.
type Form struct {
	doc *Document
	n   *html.Node
}

// Reset clears the values of the form controls.
func (f *Form) Reset() {
	f.doc.write(func() {
		walk(f.n, func(n *html.Node) bool {
			if n.Type != html.ElementNode {
				return true
			}
			switch n.DataAtom {
			case atom.Input:
				t, _ := getAttr(n, "type")
				switch t {
				case "checkbox", "radio":
					removeAttr(n, "checked")
				case "button", "submit", "reset", "hidden":
				default:
					removeAttr(n, "value")
				}
			case atom.Textarea:
				removeChildren(n)
			}
			return true
		})
	})
}

// Elements implements ports.FormView.
func (f *Form) Elements(attr string) (out []ports.Element) {
	f.doc.read(func() { out = f.doc.wrap(findAll(f.n, hasAttr(attr))) })
	return out
}

// Screen implements ports.ScreenView by setting the src of every
// .video-input element.
type Screen struct {
	doc *Document
}

// NewScreen creates a screen view of doc.
func NewScreen(doc *Document) *Screen {
	return &Screen{doc: doc}
}

// SetSource implements ports.ScreenView.
func (s *Screen) SetSource(src string) {
	s.doc.write(func() {
		for _, n := range findAll(s.doc.root, withClass(ClassVideoInput)) {
			setAttr(n, "src", src)
		}
	})
}
