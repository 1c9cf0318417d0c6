package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/aretw0/handheld/pkg/ports"
)

// FormResetter resets the form scoped to a workflow state.
type FormResetter interface {
	ResetForms(stateName string)
}

// Dispatcher maps operator events to transitions.
type Dispatcher struct {
	transitioner ports.Transitioner
	resetter     FormResetter
	controls     map[string]Control
	logger       *slog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
	selected *string
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithFormResetter sets the renderer used for post-submission resets.
func WithFormResetter(r FormResetter) Option {
	return func(d *Dispatcher) {
		d.resetter = r
	}
}

// WithControls adds or replaces controls by id.
func WithControls(controls ...Control) Option {
	return func(d *Dispatcher) {
		for _, c := range controls {
			d.controls[c.ID] = c
		}
	}
}

// New creates a Dispatcher bound to the default controls.
func New(t ports.Transitioner, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transitioner: t,
		controls:     index(DefaultControls()),
		logger:       logging.NewNop(),
		inFlight:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Controls returns the bound controls sorted by id.
func (d *Dispatcher) Controls() []Control {
	return sortedControls(d.controls)
}

// Busy reports whether a control is disabled by an in-flight transition.
func (d *Dispatcher) Busy(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inFlight[id]
}

// SelectedDefect returns the defect chosen by the last defect control.
func (d *Dispatcher) SelectedDefect() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.selected == nil {
		return "", false
	}
	return *d.selected, true
}

// Dispatch performs the transition bound to control id with the given input
// values. The control stays disabled until the transition returns.
func (d *Dispatcher) Dispatch(ctx context.Context, id string, input map[string]string) error {
	control, ok := d.controls[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownControl, id)
	}

	d.mu.Lock()
	if d.inFlight[id] {
		d.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrControlBusy, id)
	}
	payload, complete, err := d.buildPayload(control, input)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.inFlight[id] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.inFlight, id)
		d.mu.Unlock()
	}()

	stateAtDispatch := d.transitioner.State().CurrentState
	d.logger.Debug("Dispatching control", "control", id, "action", payload.Action, "current_state", stateAtDispatch)

	if err := d.transitioner.Transition(ctx, payload, control.Endpoint); err != nil {
		return fmt.Errorf("dispatch %s: %w", id, err)
	}

	if control.ResetOnSuccess && complete && d.resetter != nil {
		d.resetter.ResetForms(stateAtDispatch)
	}
	return nil
}

// buildPayload must be called with d.mu held. It reports whether every
// declared field carried a value.
func (d *Dispatcher) buildPayload(control Control, input map[string]string) (domain.ActionPayload, bool, error) {
	data := make(map[string]any, len(control.Fields)+1)
	values := make([]string, 0, len(control.Fields))
	complete := true
	var missing []string

	for _, f := range control.Fields {
		v := input[f.Name]
		if f.Trim {
			v = strings.TrimSpace(v)
		}
		if v == "" {
			complete = false
			if f.Required {
				missing = append(missing, f.Name)
			}
		}
		data[f.key()] = v
		values = append(values, v)
	}
	if len(missing) > 0 {
		return domain.ActionPayload{}, false, fmt.Errorf("%w: %s", domain.ErrMissingFields, strings.Join(missing, ", "))
	}

	if control.ComposeDefectName {
		data[DefectNameKey] = composeDefectName(values)
	}

	switch {
	case control.Kind == KindDefect:
		defect := input[DefectInput]
		if defect == "" {
			defect = control.ID
		}
		d.selected = &defect
	case control.DefectField != "":
		defect := input[control.DefectField]
		d.selected = &defect
	}

	payload := domain.ActionPayload{Action: control.Action, Data: data}
	if d.selected != nil {
		defect := *d.selected
		payload.SelectedDefect = &defect
	}
	return payload, complete, nil
}
