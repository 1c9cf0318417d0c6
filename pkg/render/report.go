package render

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Report applies the one-shot report commands of each snapshot to the
// paginated report view.
type Report struct {
	view         ports.ReportView
	transitioner ports.Transitioner

	deleteEndpoint string
	pageObserver   func(int)
	logger         *slog.Logger

	mu       sync.Mutex // serializes page mutations and edit mode
	editMode bool
}

var _ ports.Observer = (*Report)(nil)

// NewReport creates a report renderer. Delete controls emit their actions
// through t.
func NewReport(view ports.ReportView, t ports.Transitioner, opts ...Option) *Report {
	cfg := newConfig(opts)
	return &Report{
		view:           view,
		transitioner:   t,
		deleteEndpoint: cfg.deleteEndpoint,
		pageObserver:   cfg.pageObserver,
		logger:         cfg.logger,
	}
}

// Initialize optionally creates the first page.
func (r *Report) Initialize(initialPage bool) {
	if !initialPage {
		return
	}
	r.mu.Lock()
	r.addPage(1)
	r.mu.Unlock()
	r.reportPages()
}

// Notify implements ports.Observer.
func (r *Report) Notify(state domain.WorkflowState) { r.Update(state) }

// Update executes the snapshot's commands in their fixed order.
func (r *Report) Update(state domain.WorkflowState) {
	if len(state.Commands) == 0 {
		return
	}

	r.mu.Lock()
	for _, cmd := range domain.SortCommands(state.Commands) {
		switch cmd.Kind {
		case domain.CommandRemoveAll:
			r.view.Clear()
		case domain.CommandRemovePage:
			r.removePage(cmd.PageNumber)
		case domain.CommandAddPage:
			n := cmd.PageNumber
			if n == 0 {
				n = len(r.view.Pages()) + 1
			}
			r.addPage(n)
		case domain.CommandRenumberPages:
			r.renumber(cmd.PageNumber)
		case domain.CommandUpdatePage:
			r.updatePage(cmd.PageNumber, state.Report())
		}
	}
	r.mu.Unlock()
	r.reportPages()
}

// removePage removes the page with logical number n, or the newest page
// when n is 0. A missing page is ignored.
func (r *Report) removePage(n int) {
	length := len(r.view.Pages())
	index := 0
	if n != 0 {
		var ok bool
		if index, ok = domain.StorageIndex(n, length); !ok {
			r.logger.Debug("Page to remove does not exist", "page_number", n, "pages", length)
			return
		}
	}
	if !r.view.RemovePage(index) {
		r.logger.Debug("Page to remove does not exist", "page_number", n, "pages", length)
	}
}

func (r *Report) addPage(n int) {
	page := r.view.InsertPage(n, r.editMode)
	page.OnDelete(func(ctx context.Context) error {
		return r.transitioner.Transition(ctx, domain.ActionPayload{
			Action: domain.DeletePageAction,
			Data:   map[string]any{"n_page": page.Number()},
		}, r.deleteEndpoint)
	})
}

// renumber re-derives the numbers of the front pages whose position from the
// oldest page could have shifted at or after target.
func (r *Report) renumber(target int) {
	pages := r.view.Pages()
	length := len(pages)
	for i := 0; i < domain.RenumberSpan(target, length); i++ {
		n, _ := domain.LogicalNumber(i, length)
		pages[i].SetNumber(n)
		for _, el := range pages[i].Slots(ports.PageNumberSlot) {
			el.SetText(strconv.Itoa(n))
		}
	}
}

// updatePage fills page n with the report. An empty report never overwrites
// existing content.
func (r *Report) updatePage(n int, report *domain.Report) {
	if report.IsEmpty() {
		return
	}
	page, ok := r.find(n)
	if !ok {
		r.logger.Debug("Page to update does not exist", "page_number", n)
		return
	}
	for _, key := range sortedKeys(report.Text) {
		for _, el := range page.Slots(key) {
			el.SetText(report.Text[key])
		}
	}
	for _, key := range sortedKeys(report.Images) {
		for _, el := range page.Slots(key) {
			el.SetSource(report.Images[key])
		}
	}
}

func (r *Report) find(n int) (ports.PageView, bool) {
	for _, p := range r.view.Pages() {
		if p.Number() == n {
			return p, true
		}
	}
	return nil, false
}

// EditMode reports whether delete controls are active.
func (r *Report) EditMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.editMode
}

// ToggleEditMode flips edit mode and returns the new value.
func (r *Report) ToggleEditMode() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setEditMode(!r.editMode)
	return r.editMode
}

// SetEditMode activates or deactivates every delete control at once.
func (r *Report) SetEditMode(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setEditMode(on)
}

func (r *Report) setEditMode(on bool) {
	r.editMode = on
	for _, p := range r.view.Pages() {
		p.SetDeleteActive(on)
	}
	r.logger.Debug("Report edit mode changed", "edit_mode", on)
}

// DeletePage activates the delete control of page n. The resulting
// transition runs outside the renderer lock so its snapshot can be applied.
func (r *Report) DeletePage(ctx context.Context, n int) error {
	r.mu.Lock()
	page, ok := r.find(n)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("delete page %d: %w", n, domain.ErrPageNotFound)
	}
	return page.Delete(ctx)
}

// Pages returns the logical numbers of the live pages, newest first.
func (r *Report) Pages() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	pages := r.view.Pages()
	out := make([]int, len(pages))
	for i, p := range pages {
		out[i] = p.Number()
	}
	return out
}

func (r *Report) reportPages() {
	if r.pageObserver == nil {
		return
	}
	r.pageObserver(len(r.view.Pages()))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
