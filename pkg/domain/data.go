package domain

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// Data is the structured payload delivered with a snapshot.
// Field tags match the keys emitted by the backend.
type Data struct {
	Screen        string            `json:"screen,omitempty" mapstructure:"screen"`
	GuidelineSide string            `json:"guideline_side,omitempty" mapstructure:"guideline_side"`
	UIContent     map[string]string `json:"ui-content,omitempty" mapstructure:"ui-content"`

	// Select maps a select-list key to an ordered sequence of labels.
	// Values are kept loosely typed: anything but a non-empty sequence is ignored.
	Select map[string]any `json:"select,omitempty" mapstructure:"select"`

	Report      *Report      `json:"report,omitempty" mapstructure:"report"`
	NInspection int          `json:"n_inspection,omitempty" mapstructure:"n_inspection"`
	ProjectData *ProjectData `json:"project_data,omitempty" mapstructure:"project_data"`

	// Extra keeps keys the runtime does not interpret.
	Extra map[string]any `json:"extra,omitempty" mapstructure:",remain"`
}

// Report carries fill-slot content for a single report page.
type Report struct {
	Text   map[string]string `json:"text,omitempty" mapstructure:"text"`
	Images map[string]string `json:"images,omitempty" mapstructure:"images"`

	// PageNumber is the renumbering target some backends send with the report.
	PageNumber int `json:"page_number,omitempty" mapstructure:"page_number"`
}

// IsEmpty reports whether the report has neither text nor image entries.
// An empty report must never overwrite existing page content.
func (r *Report) IsEmpty() bool {
	return r == nil || (len(r.Text) == 0 && len(r.Images) == 0)
}

// ProjectData holds the legacy defect/quality/finish catalogs.
type ProjectData struct {
	Defects []string `json:"defects,omitempty" mapstructure:"defects"`
	Quality []string `json:"quality,omitempty" mapstructure:"quality"`
	Finish  []string `json:"finish,omitempty" mapstructure:"finish"`
}

// Catalog returns the legacy catalog bound to a select key.
func (p *ProjectData) Catalog(key string) []string {
	if p == nil {
		return nil
	}
	switch key {
	case "defect-type":
		return p.Defects
	case "surface-quality":
		return p.Quality
	case "finish":
		return p.Finish
	}
	return nil
}

// DecodeData converts the raw JSON payload of a transition response into Data.
// Scalars are weakly typed so numeric fill values become text; maps or slices
// landing in a string slot are JSON encoded. A nil payload decodes to nil.
func DecodeData(raw map[string]any) (*Data, error) {
	if raw == nil {
		return nil, nil
	}

	var data Data
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &data,
		WeaklyTypedInput: true,
		DecodeHook:       stringifyHook,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build data decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &data, nil
}

func stringifyHook(from reflect.Type, to reflect.Type, v any) (any, error) {
	if to.Kind() != reflect.String || v == nil {
		return v, nil
	}
	switch from.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case reflect.Bool:
		return fmt.Sprint(v), nil
	}
	return v, nil
}
