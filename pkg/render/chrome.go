package render

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// Chrome projects snapshots onto the operator UI regions.
type Chrome struct {
	view       ports.ChromeView
	resetTexts map[string]string
	logger     *slog.Logger
}

var _ ports.Observer = (*Chrome)(nil)

// NewChrome creates a chrome renderer over view.
func NewChrome(view ports.ChromeView, opts ...Option) *Chrome {
	cfg := newConfig(opts)
	return &Chrome{view: view, resetTexts: cfg.resetTexts, logger: cfg.logger}
}

// Initialize renders the chrome for stateName with no data.
func (c *Chrome) Initialize(stateName string) {
	if stateName == "" {
		stateName = DefaultUIState
	}
	c.Update(domain.NewState(stateName))
}

// Notify implements ports.Observer.
func (c *Chrome) Notify(state domain.WorkflowState) { c.Update(state) }

// Update runs the visibility, content and select passes. The passes touch
// disjoint properties, so their order does not matter.
func (c *Chrome) Update(state domain.WorkflowState) {
	c.updateVisibility(state)
	c.updateContent(state)
	c.updateSelects(state)
}

// A region is active when the current state is in its state set and, if it
// declares a side, the side matches the snapshot's guideline side.
func (c *Chrome) updateVisibility(state domain.WorkflowState) {
	side := state.GuidelineSide()
	for _, el := range c.view.Elements(ports.AttrState) {
		states, _ := el.Attr(ports.AttrState)
		wantSide, hasSide := el.Attr(ports.AttrSide)
		el.SetActive(slices.Contains(strings.Fields(states), state.CurrentState) &&
			(!hasSide || wantSide == side))
	}
}

func (c *Chrome) updateContent(state domain.WorkflowState) {
	for _, el := range c.view.Elements(ports.AttrContent) {
		key, _ := el.Attr(ports.AttrContent)
		el.SetText(state.Content(key))
	}
}

func (c *Chrome) updateSelects(state domain.WorkflowState) {
	if state.Data == nil {
		return
	}
	for _, el := range c.view.Elements(ports.AttrSelect) {
		key, _ := el.Attr(ports.AttrSelect)
		labels, ok := domain.Labels(state.Data.Select[key])
		if !ok {
			labels, ok = domain.Labels(state.Data.ProjectData.Catalog(key))
		}
		if !ok {
			continue
		}
		el.SetOptions(domain.SelectOptions(key, labels))
	}
}

// ResetForms clears the form scoped to stateName and restores its reset
// hints: "show" makes the element visible again, "text:<key>" restores the
// default text for key. A state without a form is a no-op.
func (c *Chrome) ResetForms(stateName string) {
	form, ok := c.view.Form(stateName)
	if !ok {
		return
	}
	form.Reset()

	for _, el := range form.Elements(ports.AttrReset) {
		hint, _ := el.Attr(ports.AttrReset)
		switch {
		case hint == "show":
			el.Show()
		case strings.HasPrefix(hint, "text:"):
			el.SetText(c.resetTexts[strings.TrimPrefix(hint, "text:")])
		default:
			c.logger.Debug("Ignoring unknown reset hint", "state", stateName, "hint", hint)
		}
	}
}
