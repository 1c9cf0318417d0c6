package render_test

import (
	"testing"

	"github.com/aretw0/handheld/pkg/adapters/memory"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
	"github.com/aretw0/handheld/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChrome_InitialStateVisibility(t *testing.T) {
	standby := memory.NewElement(ports.AttrState, "standby_state")
	shared := memory.NewElement(ports.AttrState, "standby_state inspecting")
	inspecting := memory.NewElement(ports.AttrState, "inspecting")
	view := memory.NewChrome().Add(standby, shared, inspecting)
	screen := &memory.Screen{}

	render.NewChrome(view).Initialize("")
	render.NewScreen(screen).Update(domain.WorkflowState{CurrentState: "standby_state"})

	assert.Equal(t, []*memory.Element{standby, shared}, view.Active())
	assert.Zero(t, screen.Sets(), "screen must not change without a source")
}

func TestChrome_SideConditional(t *testing.T) {
	left := memory.NewElement(ports.AttrState, "guide", ports.AttrSide, "left")
	right := memory.NewElement(ports.AttrState, "guide", ports.AttrSide, "right")
	unsided := memory.NewElement(ports.AttrState, "guide")
	otherState := memory.NewElement(ports.AttrState, "other", ports.AttrSide, "left")
	view := memory.NewChrome().Add(left, right, unsided, otherState)
	chrome := render.NewChrome(view)

	chrome.Update(domain.WorkflowState{CurrentState: "guide", Data: &domain.Data{GuidelineSide: "left"}})
	assert.True(t, left.Active)
	assert.False(t, right.Active)
	assert.True(t, unsided.Active)
	assert.False(t, otherState.Active)

	chrome.Update(domain.WorkflowState{CurrentState: "guide", Data: &domain.Data{GuidelineSide: "right"}})
	assert.False(t, left.Active)
	assert.True(t, right.Active)

	chrome.Update(domain.WorkflowState{CurrentState: "guide"})
	assert.False(t, left.Active)
	assert.False(t, right.Active)
	assert.True(t, unsided.Active)
}

func TestChrome_ContentIsClearable(t *testing.T) {
	msg := memory.NewElement(ports.AttrContent, "message")
	view := memory.NewChrome().Add(msg)
	chrome := render.NewChrome(view)

	chrome.Update(domain.WorkflowState{Data: &domain.Data{UIContent: map[string]string{"message": "Capture the left side"}}})
	assert.Equal(t, "Capture the left side", msg.Text)

	chrome.Update(domain.WorkflowState{Data: &domain.Data{}})
	assert.Empty(t, msg.Text)
}

func TestChrome_DynamicSelect(t *testing.T) {
	sel := memory.NewElement(ports.AttrSelect, "defect-type")
	view := memory.NewChrome().Add(sel)
	chrome := render.NewChrome(view)

	data, err := domain.DecodeData(map[string]any{
		"select": map[string]any{"defect-type": []any{"Scratch", "Dent"}},
	})
	require.NoError(t, err)
	chrome.Update(domain.WorkflowState{Data: data})

	assert.Equal(t, []domain.SelectOption{
		{Label: "SELECT DEFECT TYPE", Disabled: true, Selected: true},
		{Value: "scratch", Label: "Scratch"},
		{Value: "dent", Label: "Dent"},
	}, sel.Options)

	before := sel.Options
	chrome.Update(domain.WorkflowState{Data: &domain.Data{Select: map[string]any{"defect-type": "not a list"}}})
	chrome.Update(domain.WorkflowState{Data: &domain.Data{Select: map[string]any{"defect-type": []any{}}}})
	chrome.Update(domain.WorkflowState{})
	assert.Equal(t, before, sel.Options, "non-sequence values leave options untouched")
}

func TestChrome_SelectFallsBackToProjectCatalog(t *testing.T) {
	finish := memory.NewElement(ports.AttrSelect, "finish")
	view := memory.NewChrome().Add(finish)

	render.NewChrome(view).Update(domain.WorkflowState{Data: &domain.Data{
		ProjectData: &domain.ProjectData{Finish: []string{"Matte"}},
	}})

	require.Len(t, finish.Options, 2)
	assert.Equal(t, "SELECT FINISH", finish.Options[0].Label)
	assert.Equal(t, domain.SelectOption{Value: "matte", Label: "Matte"}, finish.Options[1])
}

func TestChrome_ResetForms(t *testing.T) {
	part := memory.NewElement("name", "partnumber")
	part.Value = "PN-1"
	hidden := memory.NewElement(ports.AttrReset, "show")
	hidden.Hidden = true
	criteria := memory.NewElement(ports.AttrReset, "text:default-criteria")
	criteria.Text = "Scratch on left edge?"
	unknown := memory.NewElement(ports.AttrReset, "text:nope")
	unknown.Text = "stale"

	view := memory.NewChrome()
	form := view.AddForm("standby_state", part, hidden, criteria, unknown)
	chrome := render.NewChrome(view)

	chrome.ResetForms("standby_state")
	assert.Equal(t, 1, form.Resets)
	assert.Empty(t, part.Value)
	assert.False(t, hidden.Hidden)
	assert.Equal(t, render.DefaultResetTexts["default-criteria"], criteria.Text)
	assert.Empty(t, unknown.Text)

	assert.NotPanics(t, func() { chrome.ResetForms("no_form_state") })
	assert.Equal(t, 1, form.Resets)
}

func TestChrome_CustomResetTexts(t *testing.T) {
	label := memory.NewElement(ports.AttrReset, "text:default-criteria")
	view := memory.NewChrome()
	view.AddForm("label_state", label)

	render.NewChrome(view, render.WithResetTexts(map[string]string{"default-criteria": "Defeito?"})).
		ResetForms("label_state")
	assert.Equal(t, "Defeito?", label.Text)
}
