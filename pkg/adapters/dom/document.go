package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/aretw0/handheld/pkg/ports"
	"golang.org/x/net/html"
)

// Document is a live HTML tree shared by the views built on it.
// Safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

var _ ports.Renderable = (*Document)(nil)

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{root: root}, nil
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Render writes the whole document.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String renders the document, returning "" on failure.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// renderNode serializes a subtree under the read lock.
func (d *Document) renderNode(w io.Writer, n *html.Node) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, n)
}

func (d *Document) read(fn func()) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	fn()
}

func (d *Document) write(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}
