package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/handheld/pkg/domain"
)

// Overlay marks the states to highlight on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the transitions observed in
// a journal history. Each distinct state is one node and each consecutive
// pair one edge, labelled with how many times it was taken.
func GenerateMermaid(history []string, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[string]bool)
	for _, state := range history {
		if seen[state] {
			continue
		}
		seen[state] = true
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", sanitizeMermaidID(state), state)
	}

	type edge struct{ from, to string }
	counts := make(map[edge]int)
	var order []edge
	for i := 1; i < len(history); i++ {
		e := edge{history[i-1], history[i]}
		if counts[e] == 0 {
			order = append(order, e)
		}
		counts[e]++
	}
	for _, e := range order {
		arrow := "-->"
		if n := counts[e]; n > 1 {
			arrow = fmt.Sprintf("-- \"x%d\" -->", n)
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.from), arrow, sanitizeMermaidID(e.to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		styled := make(map[string]bool)
		for _, state := range overlay.Visited {
			safeID := sanitizeMermaidID(state)
			if safeID != "" && !styled[safeID] {
				styled[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}
	return sb.String()
}

// RecordMermaid renders a journal record with its history styled as visited
// and its current state highlighted.
func RecordMermaid(record *domain.Record) string {
	return GenerateMermaid(record.History, &Overlay{
		Visited: record.History,
		Current: record.State.CurrentState,
	})
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
