package handheld_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/aretw0/handheld"
	"github.com/aretw0/handheld/pkg/adapters/dom"
	"github.com/aretw0/handheld/pkg/adapters/memory"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryViews struct {
	screen  *memory.Screen
	chrome  *memory.Chrome
	report  *memory.Report
	standby *memory.Element
	inspect *memory.Element
}

func newMemoryViews() (*memoryViews, handheld.Views) {
	v := &memoryViews{
		screen:  &memory.Screen{},
		chrome:  memory.NewChrome(),
		report:  memory.NewReport(),
		standby: memory.NewElement(ports.AttrState, "standby_state"),
		inspect: memory.NewElement(ports.AttrState, "inspecting"),
	}
	v.chrome.Add(v.standby, v.inspect)
	return v, handheld.Views{Screen: v.screen, Chrome: v.chrome, Report: v.report}
}

func TestRuntime_StartRendersInitialViews(t *testing.T) {
	mv, views := newMemoryViews()
	rt := handheld.New(memory.NewBackend(), views, handheld.WithInitialPage(true))
	require.NoError(t, rt.Start(context.Background()))
	defer rt.Close()

	assert.Equal(t, "/video_feed", mv.screen.Source())
	assert.Equal(t, "/video_feed", rt.ScreenSource())
	assert.True(t, mv.standby.Active)
	assert.False(t, mv.inspect.Active)
	assert.Equal(t, []int{1}, rt.Pages())
	assert.Equal(t, domain.DefaultInitialState, rt.State().CurrentState)
}

func TestRuntime_DispatchDrivesEveryView(t *testing.T) {
	mv, views := newMemoryViews()
	backend := memory.NewBackend().Handle("/states/inspector_state", memory.Respond(memory.Response(
		"inspecting",
		map[string]any{"add_page": true, "page_number": 1},
		map[string]any{"screen": "/frames/1.jpg"},
	)))

	var seen []string
	rt := handheld.New(backend, views, handheld.WithObservers(ports.ObserverFunc(func(s domain.WorkflowState) {
		seen = append(seen, s.CurrentState)
	})))
	require.NoError(t, rt.Start(context.Background()))

	require.NoError(t, rt.Dispatch(context.Background(), "btn-capture-frame", nil))

	assert.Equal(t, "inspecting", rt.State().CurrentState)
	assert.Equal(t, "/frames/1.jpg", mv.screen.Source())
	assert.True(t, mv.inspect.Active)
	assert.False(t, mv.standby.Active)
	assert.Equal(t, []int{1}, rt.Pages())
	assert.Equal(t, []string{"inspecting"}, seen)

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "capture", calls[0].Payload.Action)

	require.NoError(t, rt.Close())
	backend.Fallback(memory.Respond(memory.Response("label_state", nil, nil)))
	require.NoError(t, rt.Transition(context.Background(), domain.ActionPayload{Action: "yes"}, ""))
	assert.Equal(t, []string{"inspecting"}, seen, "closed runtime must not notify its observers")
	assert.True(t, mv.inspect.Active, "closed runtime must not re-render")
}

func TestRuntime_RestoredState(t *testing.T) {
	mv, views := newMemoryViews()
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response("", nil, nil)))
	restored := domain.WorkflowState{
		CurrentState: "inspecting",
		Data:         &domain.Data{Screen: "/frames/7.jpg"},
		Commands:     []domain.Command{domain.AddPage(1)},
	}
	rt := handheld.New(backend, views, handheld.WithRestoredState(restored))
	require.NoError(t, rt.Start(context.Background()))

	assert.Equal(t, "inspecting", rt.State().CurrentState)
	assert.True(t, mv.inspect.Active)
	assert.Equal(t, "/frames/7.jpg", mv.screen.Source())
	assert.Empty(t, rt.Pages(), "report commands are not replayed")

	require.NoError(t, rt.Dispatch(context.Background(), "btn-yes", nil))
	assert.Equal(t, "/states/inspecting", backend.Calls()[0].Endpoint)
}

func TestRuntime_EditModeAndDeletePage(t *testing.T) {
	_, views := newMemoryViews()
	backend := memory.NewBackend().Handle("/actions/delete_page", memory.Respond(memory.Response(
		"", map[string]any{"remove_page": true, "page_number": 1}, nil,
	)))
	rt := handheld.New(backend, views, handheld.WithInitialPage(true))
	require.NoError(t, rt.Start(context.Background()))

	assert.False(t, rt.EditMode())
	assert.True(t, rt.ToggleEditMode())
	rt.SetEditMode(false)
	assert.False(t, rt.EditMode())

	require.NoError(t, rt.DeletePage(context.Background(), 1))
	assert.Empty(t, rt.Pages())
	assert.ErrorIs(t, rt.DeletePage(context.Background(), 1), domain.ErrPageNotFound)
}

func TestRuntime_EditModeObservers(t *testing.T) {
	_, views := newMemoryViews()
	var seen []bool
	rt := handheld.New(memory.NewBackend(), views,
		handheld.WithEditModeObserver(func(on bool) { seen = append(seen, on) }))
	require.NoError(t, rt.Start(context.Background()))

	rt.ToggleEditMode()
	rt.ToggleEditMode()
	rt.SetEditMode(true)

	assert.Equal(t, []bool{true, false, true}, seen)
}

func TestRuntime_TemplateRequiresLoader(t *testing.T) {
	_, views := newMemoryViews()
	rt := handheld.New(memory.NewBackend(), views, handheld.WithTemplate(dom.NewFSSource(afero.NewMemMapFs(), ""), "report.html"))
	assert.Error(t, rt.Start(context.Background()))
}

func TestRuntime_EmptyDocuments(t *testing.T) {
	_, views := newMemoryViews()
	rt := handheld.New(memory.NewBackend(), views)

	var buf bytes.Buffer
	require.NoError(t, rt.Document().Render(&buf))
	require.NoError(t, rt.Report().Render(&buf))
	assert.Zero(t, buf.Len())
}

const page = `<html><body>
<div id="standby" data-state="standby_state">Ready</div>
<img class="video-input" src="">
<div class="a4-document"></div>
</body></html>`

const reportTemplate = `<html><body><section class="a4-page"><span class="fill-page-number"></span></section></body></html>`

func TestRuntime_DocumentViews(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	views, err := handheld.DocumentViews(doc)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "static/report.html", []byte(reportTemplate), 0o644))

	rt := handheld.New(memory.NewBackend(), views,
		handheld.WithTemplate(dom.NewFSSource(fs, "static"), "report.html"),
		handheld.WithInitialPage(true),
	)
	require.NoError(t, rt.Start(context.Background()))

	var report bytes.Buffer
	require.NoError(t, rt.Report().Render(&report))
	assert.Contains(t, report.String(), `id="a4-page-1"`)

	var chrome bytes.Buffer
	require.NoError(t, rt.Document().Render(&chrome))
	assert.Contains(t, chrome.String(), `src="/video_feed"`)
	assert.Contains(t, chrome.String(), `class="active"`)
}

func TestRuntime_MissingTemplateStartsEmpty(t *testing.T) {
	doc, err := dom.ParseString(page)
	require.NoError(t, err)
	views, err := handheld.DocumentViews(doc)
	require.NoError(t, err)

	rt := handheld.New(memory.NewBackend(), views,
		handheld.WithTemplate(dom.NewFSSource(afero.NewMemMapFs(), "static"), "report.html"),
		handheld.WithInitialPage(true),
	)
	require.NoError(t, rt.Start(context.Background()))
	assert.Empty(t, rt.Pages())
}

func TestDocumentViews_RequiresReportContainer(t *testing.T) {
	doc, err := dom.ParseString(`<html><body></body></html>`)
	require.NoError(t, err)
	_, err = handheld.DocumentViews(doc)
	assert.ErrorIs(t, err, dom.ErrContainerNotFound)
}
