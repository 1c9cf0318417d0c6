package memory

import (
	"context"
	"sync"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Element records every mutation a renderer applies to a bound node.
type Element struct {
	attrs map[string]string

	Active  bool
	Hidden  bool
	Text    string
	Source  string
	Value   string
	Options []domain.SelectOption
}

// NewElement creates an element from attribute name/value pairs.
func NewElement(attrs ...string) *Element {
	e := &Element{attrs: make(map[string]string, len(attrs)/2)}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.attrs[attrs[i]] = attrs[i+1]
	}
	return e
}

// Attr implements ports.Element.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *Element) SetActive(active bool)                 { e.Active = active }
func (e *Element) SetText(text string)                   { e.Text = text }
func (e *Element) SetSource(src string)                  { e.Source = src }
func (e *Element) SetOptions(opts []domain.SelectOption) { e.Options = opts }
func (e *Element) Show()                                 { e.Hidden = false }

// Chrome is a recorder implementation of ports.ChromeView.
type Chrome struct {
	mu       sync.Mutex
	elements []*Element
	forms    map[string]*Form
}

var _ ports.ChromeView = (*Chrome)(nil)

// NewChrome creates an empty recorder chrome.
func NewChrome() *Chrome {
	return &Chrome{forms: make(map[string]*Form)}
}

// Add appends elements in document order.
func (c *Chrome) Add(elems ...*Element) *Chrome {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elements = append(c.elements, elems...)
	return c
}

// AddForm registers the form of the region bound to state.
// Its elements are also part of the document.
func (c *Chrome) AddForm(state string, elems ...*Element) *Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := &Form{elements: elems}
	c.forms[state] = f
	c.elements = append(c.elements, elems...)
	return f
}

// Elements implements ports.ChromeView.
func (c *Chrome) Elements(attr string) []ports.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return filter(c.elements, attr)
}

// Form implements ports.ChromeView.
func (c *Chrome) Form(state string) (ports.FormView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.forms[state]
	if !ok {
		return nil, false
	}
	return f, true
}

// Active returns the elements currently marked active.
func (c *Chrome) Active() []*Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*Element
	for _, e := range c.elements {
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}

// Form is a recorder implementation of ports.FormView.
type Form struct {
	elements []*Element
	Resets   int
}

// Reset clears the value of every field.
func (f *Form) Reset() {
	f.Resets++
	for _, e := range f.elements {
		e.Value = ""
	}
}

// Elements implements ports.FormView.
func (f *Form) Elements(attr string) []ports.Element {
	return filter(f.elements, attr)
}

func filter(elems []*Element, attr string) []ports.Element {
	var out []ports.Element
	for _, e := range elems {
		if _, ok := e.attrs[attr]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Screen is a recorder implementation of ports.ScreenView.
type Screen struct {
	mu      sync.Mutex
	sources []string
}

// SetSource implements ports.ScreenView.
func (s *Screen) SetSource(src string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, src)
}

// Source returns the last source set, or "".
func (s *Screen) Source() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sources) == 0 {
		return ""
	}
	return s.sources[len(s.sources)-1]
}

// Sets returns how many times a source was assigned.
func (s *Screen) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sources)
}

// Report is a recorder implementation of ports.ReportView.
// Pages are stored newest-first.
type Report struct {
	mu    sync.Mutex
	slots []string
	pages []*Page
}

var _ ports.ReportView = (*Report)(nil)

// NewReport creates an empty report whose page template carries one element
// per slot key plus the page-number slot. Without keys, slots are created on
// first lookup.
func NewReport(slots ...string) *Report {
	return &Report{slots: slots}
}

// Pages implements ports.ReportView.
func (r *Report) Pages() []ports.PageView {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ports.PageView, len(r.pages))
	for i, p := range r.pages {
		out[i] = p
	}
	return out
}

// InsertPage implements ports.ReportView.
func (r *Report) InsertPage(number int, deleteActive bool) ports.PageView {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Page{
		number:       number,
		slots:        make(map[string][]*Element),
		lazy:         len(r.slots) == 0,
		DeleteActive: deleteActive,
	}
	for _, key := range append([]string{ports.PageNumberSlot}, r.slots...) {
		p.slots[key] = []*Element{NewElement("class", "fill-"+key)}
	}
	r.pages = append([]*Page{p}, r.pages...)
	return p
}

// RemovePage implements ports.ReportView.
func (r *Report) RemovePage(index int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.pages) {
		return false
	}
	r.pages = append(r.pages[:index:index], r.pages[index+1:]...)
	return true
}

// Clear implements ports.ReportView.
func (r *Report) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = nil
}

// Numbers returns the identity of every page in storage order.
func (r *Report) Numbers() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.pages))
	for i, p := range r.pages {
		out[i] = p.number
	}
	return out
}

// Page returns the page at storage index i.
func (r *Report) Page(i int) *Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.pages) {
		return nil
	}
	return r.pages[i]
}

// Page is a recorder implementation of ports.PageView.
type Page struct {
	number       int
	slots        map[string][]*Element
	lazy         bool
	onDelete     func(ctx context.Context) error
	DeleteActive bool
}

func (p *Page) Number() int     { return p.number }
func (p *Page) SetNumber(n int) { p.number = n }

// Slots implements ports.PageView.
func (p *Page) Slots(key string) []ports.Element {
	elems, ok := p.slots[key]
	if !ok && p.lazy {
		elems = []*Element{NewElement("class", "fill-"+key)}
		p.slots[key] = elems
	}
	out := make([]ports.Element, len(elems))
	for i, e := range elems {
		out[i] = e
	}
	return out
}

// Slot returns the first element of a slot, or nil.
func (p *Page) Slot(key string) *Element {
	if elems := p.slots[key]; len(elems) > 0 {
		return elems[0]
	}
	return nil
}

// Content returns the text of every filled slot except the page number.
func (p *Page) Content() map[string]string {
	out := make(map[string]string)
	for key, elems := range p.slots {
		if key == ports.PageNumberSlot {
			continue
		}
		for _, e := range elems {
			if e.Text != "" {
				out[key] = e.Text
			}
			if e.Source != "" {
				out[key] = e.Source
			}
		}
	}
	return out
}

func (p *Page) SetDeleteActive(active bool) { p.DeleteActive = active }

func (p *Page) OnDelete(fn func(ctx context.Context) error) { p.onDelete = fn }

// Delete implements ports.PageView.
func (p *Page) Delete(ctx context.Context) error {
	if p.onDelete == nil {
		return nil
	}
	return p.onDelete(ctx)
}
