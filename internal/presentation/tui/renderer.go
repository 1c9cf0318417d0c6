package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/handheld/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StatusMarkdown describes a snapshot as markdown for terminal display.
func StatusMarkdown(station string, state domain.WorkflowState, history []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Station %s\n\n", station)
	fmt.Fprintf(&sb, "**State:** `%s`\n\n", state.CurrentState)

	if src := state.Screen(); src != "" {
		fmt.Fprintf(&sb, "**Screen:** `%s`\n\n", src)
	}
	if side := state.GuidelineSide(); side != "" {
		fmt.Fprintf(&sb, "**Guideline side:** %s\n\n", side)
	}
	if n := state.Inspection(); n > 0 {
		fmt.Fprintf(&sb, "**Inspection:** %d\n\n", n)
	}

	if state.Data != nil && len(state.Data.UIContent) > 0 {
		sb.WriteString("## UI content\n\n| Key | Text |\n|---|---|\n")
		for _, k := range sortedKeys(state.Data.UIContent) {
			fmt.Fprintf(&sb, "| %s | %s |\n", k, escapeCell(state.Data.UIContent[k]))
		}
		sb.WriteString("\n")
	}

	if report := state.Report(); !report.IsEmpty() {
		sb.WriteString("## Report\n\n| Slot | Value |\n|---|---|\n")
		for _, k := range sortedKeys(report.Text) {
			fmt.Fprintf(&sb, "| %s | %s |\n", k, escapeCell(report.Text[k]))
		}
		for _, k := range sortedKeys(report.Images) {
			fmt.Fprintf(&sb, "| %s | `%s` |\n", k, report.Images[k])
		}
		sb.WriteString("\n")
	}

	if len(state.Commands) > 0 {
		sb.WriteString("## Pending report commands\n\n")
		for _, c := range state.Commands {
			if c.PageNumber > 0 {
				fmt.Fprintf(&sb, "- %s %d\n", c.Kind, c.PageNumber)
			} else {
				fmt.Fprintf(&sb, "- %s\n", c.Kind)
			}
		}
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		fmt.Fprintf(&sb, "## History\n\n%s\n", strings.Join(history, " → "))
	}
	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
