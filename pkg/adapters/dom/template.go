package dom

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/spf13/afero"
	"golang.org/x/net/html"
)

// FSSource implements ports.TemplateSource over an afero filesystem.
type FSSource struct {
	fs   afero.Fs
	root string
}

var _ ports.TemplateSource = (*FSSource)(nil)

// NewFSSource opens templates relative to root.
func NewFSSource(fs afero.Fs, root string) *FSSource {
	return &FSSource{fs: fs, root: root}
}

// Open implements ports.TemplateSource.
func (s *FSSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	// Cleaning against "/" keeps the path inside root.
	name := filepath.Join(s.root, strings.TrimPrefix(filepath.Clean("/"+path), "/"))
	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open template %s: %w", path, err)
	}
	return f, nil
}

// LoadPageTemplate fetches the template document once and extracts its first
// .a4-page element.
func LoadPageTemplate(ctx context.Context, src ports.TemplateSource, path string) (*html.Node, error) {
	rc, err := src.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	root, err := html.Parse(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", path, err)
	}
	page := findFirst(root, withClass(ClassPage))
	if page == nil {
		return nil, fmt.Errorf("%w: no .%s in %s", domain.ErrTemplateNotFound, ClassPage, path)
	}
	return clone(page), nil
}

// LoadTemplate installs the page template read from src.
func (r *Report) LoadTemplate(ctx context.Context, src ports.TemplateSource, path string) error {
	page, err := LoadPageTemplate(ctx, src, path)
	if err != nil {
		return err
	}
	r.SetTemplate(page)
	return nil
}
