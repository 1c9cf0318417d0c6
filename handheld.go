package handheld

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/adapters/dom"
	"github.com/aretw0/handheld/pkg/dispatch"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/aretw0/handheld/pkg/render"
	"github.com/aretw0/handheld/pkg/statesync"
)

// Views groups the view adapters the runtime projects onto.
// Document and ReportDocument are optional serializable forms of the views.
type Views struct {
	Screen         ports.ScreenView
	Chrome         ports.ChromeView
	Report         ports.ReportView
	Document       ports.Renderable
	ReportDocument ports.Renderable
}

// DocumentViews binds every view to one parsed HTML document.
func DocumentViews(doc *dom.Document) (Views, error) {
	report, err := dom.NewReport(doc)
	if err != nil {
		return Views{}, fmt.Errorf("failed to bind report view: %w", err)
	}
	return Views{
		Screen:         dom.NewScreen(doc),
		Chrome:         dom.NewChrome(doc),
		Report:         report,
		Document:       doc,
		ReportDocument: report,
	}, nil
}

type templateLoader interface {
	LoadTemplate(ctx context.Context, src ports.TemplateSource, path string) error
}

// Runtime wires the synchronizer, the renderers and the dispatcher.
type Runtime struct {
	views      Views
	sync       *statesync.Synchronizer
	screen     *render.Screen
	chrome     *render.Chrome
	report     *render.Report
	dispatcher *dispatch.Dispatcher
	subs       []*statesync.Subscription

	logger         *slog.Logger
	hooks          domain.SyncHooks
	initialState   *domain.WorkflowState
	restored       *domain.WorkflowState
	timeout        time.Duration
	uiState        string
	screenSource   string
	initialPage    bool
	resetTexts     map[string]string
	deleteEndpoint string
	controls       []dispatch.Control
	observers      []ports.Observer
	pageObserver   func(int)
	editObservers  []func(bool)
	templateSource ports.TemplateSource
	templatePath   string
}

// New builds a runtime over backend and views. Renderers are subscribed in
// the order screen, chrome, report, then any extra observers.
func New(backend ports.Backend, views Views, opts ...Option) *Runtime {
	r := &Runtime{
		views:        views,
		logger:       logging.NewNop(),
		uiState:      render.DefaultUIState,
		screenSource: render.DefaultScreenSource,
	}
	for _, opt := range opts {
		opt(r)
	}

	syncOpts := []statesync.Option{
		statesync.WithLogger(r.logger),
		statesync.WithHooks(r.hooks),
		statesync.WithTimeout(r.timeout),
	}
	switch {
	case r.restored != nil:
		syncOpts = append(syncOpts, statesync.WithInitialState(*r.restored))
	case r.initialState != nil:
		syncOpts = append(syncOpts, statesync.WithInitialState(*r.initialState))
	}
	r.sync = statesync.New(backend, syncOpts...)

	renderOpts := []render.Option{
		render.WithLogger(r.logger),
		render.WithDeleteEndpoint(r.deleteEndpoint),
		render.WithPageObserver(r.pageObserver),
	}
	if r.resetTexts != nil {
		renderOpts = append(renderOpts, render.WithResetTexts(r.resetTexts))
	}
	r.screen = render.NewScreen(views.Screen, renderOpts...)
	r.chrome = render.NewChrome(views.Chrome, renderOpts...)
	r.report = render.NewReport(views.Report, r.sync, renderOpts...)

	r.dispatcher = dispatch.New(r.sync,
		dispatch.WithLogger(r.logger),
		dispatch.WithFormResetter(r.chrome),
		dispatch.WithControls(r.controls...),
	)

	for _, obs := range []ports.Observer{r.screen, r.chrome, r.report} {
		r.subs = append(r.subs, r.sync.Subscribe(obs))
	}
	for _, obs := range r.observers {
		r.subs = append(r.subs, r.sync.Subscribe(obs))
	}
	return r
}

// Start loads the report template and renders the initial views.
// A template that cannot be loaded is logged and the report starts empty.
func (r *Runtime) Start(ctx context.Context) error {
	initialPage := r.initialPage
	if r.templateSource != nil {
		loader, ok := r.views.Report.(templateLoader)
		if !ok {
			return fmt.Errorf("report view %T cannot load templates", r.views.Report)
		}
		if err := loader.LoadTemplate(ctx, r.templateSource, r.templatePath); err != nil {
			r.logger.Error("Report template load failed, starting with an empty report",
				"path", r.templatePath,
				"err", err,
			)
			initialPage = false
		}
	}

	r.screen.Initialize(r.screenSource)
	r.chrome.Initialize(r.uiState)
	r.report.Initialize(initialPage)

	if r.restored != nil {
		r.screen.Update(*r.restored)
		r.chrome.Update(*r.restored)
		r.logger.Info("Resumed from journaled snapshot", "current_state", r.restored.CurrentState)
	}
	return nil
}

// Close unsubscribes every observer the runtime registered.
func (r *Runtime) Close() error {
	for _, sub := range r.subs {
		sub.Unsubscribe()
	}
	r.subs = nil
	return nil
}

// State returns the current snapshot.
func (r *Runtime) State() domain.WorkflowState {
	return r.sync.State()
}

// Transition submits an action directly, bypassing control bindings.
func (r *Runtime) Transition(ctx context.Context, payload domain.ActionPayload, endpoint string) error {
	return r.sync.Transition(ctx, payload, endpoint)
}

// Dispatch triggers an operator control.
func (r *Runtime) Dispatch(ctx context.Context, controlID string, input map[string]string) error {
	return r.dispatcher.Dispatch(ctx, controlID, input)
}

// Controls lists the bound operator controls.
func (r *Runtime) Controls() []dispatch.Control {
	return r.dispatcher.Controls()
}

// Busy reports whether a control is disabled by an in-flight transition.
func (r *Runtime) Busy(controlID string) bool {
	return r.dispatcher.Busy(controlID)
}

// DeletePage presses the delete control of report page n.
func (r *Runtime) DeletePage(ctx context.Context, n int) error {
	return r.report.DeletePage(ctx, n)
}

// ToggleEditMode flips report edit mode and returns the new value.
func (r *Runtime) ToggleEditMode() bool {
	on := r.report.ToggleEditMode()
	r.notifyEditMode(on)
	return on
}

// SetEditMode sets report edit mode.
func (r *Runtime) SetEditMode(on bool) {
	r.report.SetEditMode(on)
	r.notifyEditMode(on)
}

func (r *Runtime) notifyEditMode(on bool) {
	for _, fn := range r.editObservers {
		fn(on)
	}
}

// EditMode reports whether delete controls are active.
func (r *Runtime) EditMode() bool {
	return r.report.EditMode()
}

// Pages returns the report page numbers, newest first.
func (r *Runtime) Pages() []int {
	return r.report.Pages()
}

// ScreenSource returns the media source currently shown.
func (r *Runtime) ScreenSource() string {
	return r.screen.Source()
}

// Subscribe registers an observer after the renderers.
func (r *Runtime) Subscribe(observer ports.Observer) *statesync.Subscription {
	sub := r.sync.Subscribe(observer)
	r.subs = append(r.subs, sub)
	return sub
}

// Document returns the serializable operator document.
func (r *Runtime) Document() ports.Renderable {
	return renderable(r.views.Document)
}

// Report returns the serializable report container.
func (r *Runtime) Report() ports.Renderable {
	return renderable(r.views.ReportDocument)
}

type emptyDocument struct{}

func (emptyDocument) Render(io.Writer) error { return nil }

func renderable(doc ports.Renderable) ports.Renderable {
	if doc == nil {
		return emptyDocument{}
	}
	return doc
}
