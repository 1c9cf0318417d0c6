package dispatch

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies how a control builds its payload.
type Kind string

const (
	// KindButton sends a fixed action with an empty payload.
	KindButton Kind = "button"
	// KindDefect selects a defect and sends an empty action.
	KindDefect Kind = "defect"
	// KindForm sends the values of its fields.
	KindForm Kind = "form"
)

// Field binds one form input to a payload key.
type Field struct {
	Name     string `yaml:"name" json:"name"`
	Key      string `yaml:"key,omitempty" json:"key,omitempty"`
	Required bool   `yaml:"required,omitempty" json:"required,omitempty"`
	Trim     bool   `yaml:"trim,omitempty" json:"trim,omitempty"`
}

func (f Field) key() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// Control is an operator control bound to an action.
type Control struct {
	ID     string  `yaml:"id" json:"id"`
	Kind   Kind    `yaml:"kind" json:"kind"`
	Action string  `yaml:"action" json:"action"`
	Fields []Field `yaml:"fields,omitempty" json:"fields,omitempty"`

	// DefectField names the field whose value becomes the selected defect.
	DefectField string `yaml:"defect_field,omitempty" json:"defect_field,omitempty"`

	// ComposeDefectName adds "defect-name": the field values joined with
	// " - " and upper-cased.
	ComposeDefectName bool `yaml:"compose_defect_name,omitempty" json:"compose_defect_name,omitempty"`

	// ResetOnSuccess resets the form of the state the control was used in,
	// once the transition succeeds with every field filled.
	ResetOnSuccess bool `yaml:"reset_on_success,omitempty" json:"reset_on_success,omitempty"`

	// Endpoint overrides the state-derived endpoint.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}

// DefectNameKey is the payload key of the composed defect name.
const DefectNameKey = "defect-name"

// DefectInput is the input field carrying the id of a pressed defect button.
const DefectInput = "id"

var upper = cases.Upper(language.Und)

func composeDefectName(values []string) string {
	return upper.String(strings.Join(values, " - "))
}

// DefaultControls returns the controls of the standard operator screen.
func DefaultControls() []Control {
	buttons := []struct{ id, action string }{
		{"btn-capture-frame", "capture"},
		{"btn-yes", "yes"},
		{"btn-no", "no"},
		{"btn-repeat", "repeat"},
		{"btn-keep", "keep"},
		{"btn-drop", "drop"},
		{"btn-more", "more"},
		{"btn-new-part", "new-part"},
		{"btn-new-project", "new-project"},
		{"btn-print", "print"},
	}

	controls := make([]Control, 0, len(buttons)+4)
	for _, b := range buttons {
		controls = append(controls, Control{ID: b.id, Kind: KindButton, Action: b.action})
	}

	return append(controls,
		Control{ID: "btn-defect", Kind: KindDefect},
		Control{
			ID:   "project-inspector-form",
			Kind: KindForm,
			Fields: []Field{
				{Name: "project", Required: true},
				{Name: "inspector", Required: true},
			},
			ResetOnSuccess: true,
		},
		Control{
			ID:   "standby-form",
			Kind: KindForm,
			Fields: []Field{
				{Name: "partnumber", Key: "inspected-part", Trim: true},
				{Name: "serialnumber", Key: "serial-number", Trim: true},
			},
			ResetOnSuccess: true,
		},
		Control{
			ID:   "defect-selection-form",
			Kind: KindForm,
			Fields: []Field{
				{Name: "defect-type"},
				{Name: "surface-quality"},
				{Name: "finish"},
			},
			DefectField:       "defect-type",
			ComposeDefectName: true,
		},
	)
}

func index(controls []Control) map[string]Control {
	m := make(map[string]Control, len(controls))
	for _, c := range controls {
		m[c.ID] = c
	}
	return m
}

func sortedControls(m map[string]Control) []Control {
	out := make([]Control, 0, len(m))
	for _, c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
