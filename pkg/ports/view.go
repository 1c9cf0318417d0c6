package ports

import (
	"context"
	"io"

	"github.com/aretw0/handheld/pkg/domain"
)

// Declarative bindings read from markup.
const (
	AttrState   = "data-state"
	AttrSide    = "data-side"
	AttrContent = "data-state-content"
	AttrSelect  = "data-select"
	AttrReset   = "data-reset"
)

// PageNumberSlot is the fill-slot key that displays a page's number.
const PageNumberSlot = "page-number"

// Element is a single bound node of a view.
type Element interface {
	Attr(name string) (string, bool)
	SetActive(active bool)
	SetText(text string)
	SetSource(src string)
	SetOptions(opts []domain.SelectOption)
	Show()
}

// ScreenView displays the single external media source.
type ScreenView interface {
	SetSource(src string)
}

// ChromeView exposes the operator UI regions.
type ChromeView interface {
	// Elements returns every element declaring attr, in document order.
	Elements(attr string) []Element
	// Form returns the form scoped to the region bound exactly to state.
	Form(state string) (FormView, bool)
}

// FormView is a resettable form inside a chrome region.
type FormView interface {
	Reset()
	Elements(attr string) []Element
}

// ReportView is the paginated report container.
// Pages are kept newest-first.
type ReportView interface {
	Pages() []PageView
	// InsertPage clones the page template with identity number at the front.
	// The page's delete control starts active when deleteActive is set.
	InsertPage(number int, deleteActive bool) PageView
	// RemovePage destroys the page at storage index; false if there is none.
	RemovePage(index int) bool
	Clear()
}

// PageView is one live report page.
type PageView interface {
	Number() int
	SetNumber(n int)
	// Slots returns every element tagged with the fill-slot key.
	Slots(key string) []Element
	SetDeleteActive(active bool)
	// OnDelete binds the page's delete control.
	OnDelete(fn func(ctx context.Context) error)
	// Delete activates the delete control.
	Delete(ctx context.Context) error
}

// Renderable is implemented by views that can serialize their document.
type Renderable interface {
	Render(w io.Writer) error
}
