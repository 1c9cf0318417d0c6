package domain

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SelectOption is one entry of a dynamically populated select list.
type SelectOption struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Placeholder derives the disabled prompt of a select list from its key:
// "defect-type" becomes "SELECT DEFECT TYPE".
func Placeholder(key string) string {
	return "SELECT " + upper.String(strings.ReplaceAll(key, "-", " "))
}

// SelectOptions builds the full option list for key: the placeholder first,
// then one option per label valued with the lower-cased label.
func SelectOptions(key string, labels []string) []SelectOption {
	opts := make([]SelectOption, 0, len(labels)+1)
	opts = append(opts, SelectOption{
		Label:    Placeholder(key),
		Disabled: true,
		Selected: true,
	})
	for _, label := range labels {
		opts = append(opts, SelectOption{
			Value: lower.String(label),
			Label: label,
		})
	}
	return opts
}

// Labels extracts an ordered label sequence from a loosely typed select value.
// It reports false unless v is a non-empty sequence.
func Labels(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, false
		}
		out := make([]string, len(t))
		copy(out, t)
		return out, true
	case []any:
		if len(t) == 0 {
			return nil, false
		}
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out, true
	}
	return nil, false
}
