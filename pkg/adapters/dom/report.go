package dom

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/handheld/pkg/ports"
	"golang.org/x/net/html"
)

// Markup hooks of the report.
const (
	ClassDocument       = "a4-document"
	ClassPage           = "a4-page"
	ClassDelete         = "btn-a4-delete"
	DeleteTemplateID    = "delete-btn-template"
	PageIDPrefix        = "a4-page-"
	fillClassPrefix     = "fill-"
	defaultDeleteMarkup = "button"
)

// ErrContainerNotFound is returned when a document has no report container.
var ErrContainerNotFound = errors.New("report container not found")

// Report implements ports.ReportView over the .a4-document container.
type Report struct {
	doc       *Document
	container *html.Node
	deleteBtn *html.Node

	// guarded by doc.mu
	template *html.Node
	handlers map[*html.Node]func(ctx context.Context) error
}

var (
	_ ports.ReportView = (*Report)(nil)
	_ ports.Renderable = (*Report)(nil)
)

// NewReport binds the report container of doc. The delete control is cloned
// from the document's delete-btn-template, or is a bare button when the
// document has none.
func NewReport(doc *Document) (*Report, error) {
	r := &Report{doc: doc, handlers: make(map[*html.Node]func(context.Context) error)}
	doc.read(func() {
		r.container = findFirst(doc.root, withClass(ClassDocument))
		if tmpl := findFirst(doc.root, withID(DeleteTemplateID)); tmpl != nil {
			if btn := firstElementChild(tmpl); btn != nil {
				r.deleteBtn = clone(btn)
			}
		}
	})
	if r.container == nil {
		return nil, fmt.Errorf("%w: no .%s element", ErrContainerNotFound, ClassDocument)
	}
	if r.deleteBtn == nil {
		r.deleteBtn = newElement(defaultDeleteMarkup, html.Attribute{Key: "type", Val: "button"})
	}
	setClass(r.deleteBtn, ClassDelete, true)
	return r, nil
}

// SetTemplate installs the page template. Pages inserted before a template
// is set are empty .a4-page sections.
func (r *Report) SetTemplate(page *html.Node) {
	r.doc.write(func() { r.template = clone(page) })
}

// HasTemplate reports whether a page template is installed.
func (r *Report) HasTemplate() (ok bool) {
	r.doc.read(func() { ok = r.template != nil })
	return ok
}

// Render writes the report container.
func (r *Report) Render(w io.Writer) error {
	return r.doc.renderNode(w, r.container)
}

func (r *Report) pages() []*html.Node {
	var out []*html.Node
	for c := r.container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && hasClass(c, ClassPage) {
			out = append(out, c)
		}
	}
	return out
}

// Pages implements ports.ReportView.
func (r *Report) Pages() []ports.PageView {
	var out []ports.PageView
	r.doc.read(func() {
		for _, n := range r.pages() {
			out = append(out, &Page{r: r, n: n})
		}
	})
	return out
}

// InsertPage implements ports.ReportView.
func (r *Report) InsertPage(number int, deleteActive bool) ports.PageView {
	var page *html.Node
	r.doc.write(func() {
		if r.template != nil {
			page = clone(r.template)
		} else {
			page = newElement("section", html.Attribute{Key: "class", Val: ClassPage})
		}
		setAttr(page, "id", PageIDPrefix+strconv.Itoa(number))

		btn := clone(r.deleteBtn)
		setClass(btn, classActive, deleteActive)
		page.AppendChild(btn)

		r.container.InsertBefore(page, r.container.FirstChild)
	})
	return &Page{r: r, n: page}
}

// RemovePage implements ports.ReportView.
func (r *Report) RemovePage(index int) (ok bool) {
	r.doc.write(func() {
		pages := r.pages()
		if index < 0 || index >= len(pages) {
			return
		}
		r.container.RemoveChild(pages[index])
		delete(r.handlers, pages[index])
		ok = true
	})
	return ok
}

// Clear implements ports.ReportView.
func (r *Report) Clear() {
	r.doc.write(func() {
		for _, p := range r.pages() {
			r.container.RemoveChild(p)
		}
		clear(r.handlers)
	})
}

// Page implements ports.PageView over an .a4-page node.
type Page struct {
	r *Report
	n *html.Node
}

// Number returns the number encoded in the page id, or 0.
func (p *Page) Number() (n int) {
	p.r.doc.read(func() {
		id, _ := getAttr(p.n, "id")
		n, _ = strconv.Atoi(strings.TrimPrefix(id, PageIDPrefix))
	})
	return n
}

// SetNumber rewrites the page id.
func (p *Page) SetNumber(n int) {
	p.r.doc.write(func() { setAttr(p.n, "id", PageIDPrefix+strconv.Itoa(n)) })
}

// Slots implements ports.PageView.
func (p *Page) Slots(key string) (out []ports.Element) {
	p.r.doc.read(func() { out = p.r.doc.wrap(findAll(p.n, withClass(fillClassPrefix+key))) })
	return out
}

// SetDeleteActive implements ports.PageView.
func (p *Page) SetDeleteActive(active bool) {
	p.r.doc.write(func() {
		for _, btn := range findAll(p.n, withClass(ClassDelete)) {
			setClass(btn, classActive, active)
		}
	})
}

// OnDelete implements ports.PageView.
func (p *Page) OnDelete(fn func(ctx context.Context) error) {
	p.r.doc.write(func() { p.r.handlers[p.n] = fn })
}

// Delete runs the bound delete handler. A detached page has none.
func (p *Page) Delete(ctx context.Context) error {
	var fn func(context.Context) error
	p.r.doc.read(func() { fn = p.r.handlers[p.n] })
	if fn == nil {
		return nil
	}
	return fn(ctx)
}
