package render_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/aretw0/handheld/pkg/adapters/memory"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/aretw0/handheld/pkg/render"
	"github.com/aretw0/handheld/pkg/statesync"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReport(t *testing.T, backend *memory.Backend, opts ...render.Option) (*render.Report, *memory.Report, *statesync.Synchronizer) {
	t.Helper()
	if backend == nil {
		backend = memory.NewBackend()
	}
	sync := statesync.New(backend)
	view := memory.NewReport()
	report := render.NewReport(view, sync, opts...)
	sync.Subscribe(report)
	return report, view, sync
}

func apply(r *render.Report, cmds ...domain.Command) {
	r.Update(domain.WorkflowState{CurrentState: "inspecting", Commands: cmds})
}

func TestReport_FirstTransitionAddsEmptyPage(t *testing.T) {
	backend := memory.NewBackend().Handle("/states/standby_state", memory.Respond(memory.Response(
		"inspecting",
		map[string]any{"add_page": true, "page_number": 1},
		map[string]any{"report": map[string]any{}},
	)))
	s := statesync.New(backend, statesync.WithInitialState(domain.NewState("standby_state")))
	view := memory.NewReport()
	s.Subscribe(render.NewReport(view, s))

	require.NoError(t, s.Transition(context.Background(), domain.ActionPayload{Action: "capture"}, ""))

	assert.Equal(t, []int{1}, view.Numbers())
	assert.Empty(t, view.Page(0).Content())
	assert.Equal(t, "inspecting", s.State().CurrentState)
}

func TestReport_RemoveWithoutPagesIsNoop(t *testing.T) {
	report, view, _ := newReport(t, nil)

	assert.NotPanics(t, func() {
		apply(report, domain.RemovePage(0))
		apply(report, domain.RemovePage(3))
	})
	assert.Empty(t, view.Numbers())
}

func TestReport_RemovePageByLogicalNumber(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1))
	apply(report, domain.AddPage(2))
	apply(report, domain.AddPage(3))
	require.Equal(t, []int{3, 2, 1}, view.Numbers())

	apply(report, domain.RemovePage(1))
	assert.Equal(t, []int{3, 2}, view.Numbers())

	apply(report, domain.RemovePage(0))
	assert.Equal(t, []int{2}, view.Numbers(), "no number removes the newest page")
}

func TestReport_AddRemoveRoundTrip(t *testing.T) {
	report, view, _ := newReport(t, nil)
	for n := 1; n <= 3; n++ {
		apply(report, domain.AddPage(n))
	}
	before := view.Numbers()

	n := len(before) + 1
	apply(report, domain.AddPage(n))
	require.Len(t, view.Numbers(), n)
	apply(report, domain.RemovePage(n))

	assert.Equal(t, before, view.Numbers())
}

func TestReport_AddWithoutNumberAppendsLogically(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(0))
	apply(report, domain.AddPage(0))
	assert.Equal(t, []int{2, 1}, view.Numbers())
}

func TestReport_RenumberingLaw(t *testing.T) {
	report, view, _ := newReport(t, nil)
	for n := 1; n <= 5; n++ {
		apply(report, domain.AddPage(n))
	}
	// Drop logical pages 2 and 4, then insert a fresh page.
	apply(report, domain.RemovePage(4))
	apply(report, domain.RemovePage(2))
	apply(report, domain.AddPage(7))
	apply(report, domain.RenumberPages(1))

	numbers := view.Numbers()
	length := len(numbers)
	seen := map[int]bool{}
	for i, n := range numbers {
		want, ok := domain.LogicalNumber(i, length)
		require.True(t, ok)
		assert.Equal(t, want, n, "page at storage index %d", i)
		assert.Equal(t, strconv.Itoa(want), view.Page(i).Slot(ports.PageNumberSlot).Text)
		assert.False(t, seen[n], "duplicate page number %d", n)
		seen[n] = true
	}
}

func TestReport_RenumberOnlyTouchesShiftedPrefix(t *testing.T) {
	report, view, _ := newReport(t, nil)
	for n := 1; n <= 4; n++ {
		apply(report, domain.AddPage(n))
	}
	apply(report, domain.RemovePage(2), domain.RenumberPages(2))

	assert.Equal(t, []int{3, 2, 1}, view.Numbers())
	assert.Equal(t, "3", view.Page(0).Slot(ports.PageNumberSlot).Text)
	assert.Equal(t, "2", view.Page(1).Slot(ports.PageNumberSlot).Text)
	assert.Empty(t, view.Page(2).Slot(ports.PageNumberSlot).Text, "page 1 never shifted")
}

func TestReport_CommandsRunInFixedOrder(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1), domain.AddPage(2))

	// Listed out of order: remove_all must still run before add_page.
	report.Update(domain.WorkflowState{
		Data: &domain.Data{
			NInspection: 1,
			Report:      &domain.Report{Text: map[string]string{"inspector": "Ada"}},
		},
		Commands: []domain.Command{domain.UpdatePage(1), domain.AddPage(1), domain.RemoveAll()},
	})

	require.Equal(t, []int{1}, view.Numbers())
	assert.Equal(t, map[string]string{"inspector": "Ada"}, view.Page(0).Content())
}

func TestReport_UpdatePage(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1))
	apply(report, domain.AddPage(2))

	report.Update(domain.WorkflowState{
		Data: &domain.Data{
			NInspection: 1,
			Report: &domain.Report{
				Text:   map[string]string{"defect-name": "SCRATCH - A - B", "serial": "77"},
				Images: map[string]string{"frame": "/frames/1.jpg"},
			},
		},
		Commands: []domain.Command{domain.UpdatePage(1)},
	})

	assert.Empty(t, view.Page(0).Content(), "page 2 is untouched")
	oldest := view.Page(1)
	assert.Equal(t, "SCRATCH - A - B", oldest.Slot("defect-name").Text)
	assert.Equal(t, "77", oldest.Slot("serial").Text)
	assert.Equal(t, "/frames/1.jpg", oldest.Slot("frame").Source)
}

func TestReport_EmptyReportIsIdempotent(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1))
	report.Update(domain.WorkflowState{
		Data:     &domain.Data{NInspection: 1, Report: &domain.Report{Text: map[string]string{"serial": "42"}}},
		Commands: []domain.Command{domain.UpdatePage(1)},
	})
	before := view.Page(0).Content()

	for _, r := range []*domain.Report{nil, {}, {Text: map[string]string{}, Images: map[string]string{}}} {
		report.Update(domain.WorkflowState{
			Data:     &domain.Data{NInspection: 1, Report: r},
			Commands: []domain.Command{domain.UpdatePage(1)},
		})
	}
	assert.Equal(t, before, view.Page(0).Content())
}

func TestReport_UpdateMissingPageIsNoop(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1))

	assert.NotPanics(t, func() {
		report.Update(domain.WorkflowState{
			Data:     &domain.Data{NInspection: 9, Report: &domain.Report{Text: map[string]string{"serial": "1"}}},
			Commands: []domain.Command{domain.UpdatePage(9)},
		})
	})
	assert.Empty(t, view.Page(0).Content())
}

func TestReport_EditMode(t *testing.T) {
	report, view, _ := newReport(t, nil)
	apply(report, domain.AddPage(1))
	assert.False(t, report.EditMode())
	assert.False(t, view.Page(0).DeleteActive)

	assert.True(t, report.ToggleEditMode())
	assert.True(t, view.Page(0).DeleteActive)

	apply(report, domain.AddPage(2))
	assert.True(t, view.Page(0).DeleteActive, "new pages reflect edit mode at creation")

	report.SetEditMode(false)
	for i := range view.Numbers() {
		assert.False(t, view.Page(i).DeleteActive)
	}
}

func TestReport_DeletePageEmitsAction(t *testing.T) {
	backend := memory.NewBackend().Handle("/custom/delete", memory.Respond(memory.Response(
		"", map[string]any{"remove_page": true, "page_number": 1, "renumber_pages": true}, nil,
	)))
	report, view, sync := newReport(t, backend, render.WithDeleteEndpoint("/custom/delete"))
	apply(report, domain.AddPage(1))
	apply(report, domain.AddPage(2))

	require.NoError(t, report.DeletePage(context.Background(), 1))

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/custom/delete", calls[0].Endpoint)
	assert.Equal(t, domain.DeletePageAction, calls[0].Payload.Action)
	assert.Equal(t, map[string]any{"n_page": 1}, calls[0].Payload.Data)

	assert.Equal(t, []int{1}, view.Numbers(), "the backend's answer renumbers the survivor")
	assert.Equal(t, domain.DefaultInitialState, sync.State().CurrentState)

	err := report.DeletePage(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrPageNotFound)
}

func TestReport_DeleteFailureLeavesPages(t *testing.T) {
	backend := memory.NewBackend().Handle(domain.DefaultDeleteEndpoint, memory.Fail(domain.ErrTransport))
	report, view, _ := newReport(t, backend)
	apply(report, domain.AddPage(1))

	err := report.DeletePage(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrTransport)
	assert.Equal(t, []int{1}, view.Numbers())
}

func TestReport_InitializeAndPageObserver(t *testing.T) {
	var counts []int
	report, view, _ := newReport(t, nil, render.WithPageObserver(func(n int) { counts = append(counts, n) }))

	report.Initialize(true)
	assert.Equal(t, []int{1}, view.Numbers())
	assert.Equal(t, []int{1}, report.Pages())

	apply(report, domain.AddPage(2))
	apply(report, domain.RemoveAll())
	assert.Equal(t, []int{1, 2, 0}, counts)

	other, otherView, _ := newReport(t, nil)
	other.Initialize(false)
	assert.Empty(t, otherView.Numbers())
}

func TestReport_LegacyNestedActions(t *testing.T) {
	backend := memory.NewBackend().Fallback(memory.Respond(memory.Response(
		"",
		map[string]any{"report": map[string]any{"add_page": true, "page_number": 1}},
		nil,
	)))
	_, view, sync := newReport(t, backend)

	require.NoError(t, sync.Transition(context.Background(), domain.ActionPayload{}, ""))
	assert.Equal(t, []int{1}, view.Numbers())
}
