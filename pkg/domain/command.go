package domain

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// CommandKind identifies a one-shot report instruction.
type CommandKind string

// Report command kinds, listed in execution order.
const (
	CommandRemoveAll     CommandKind = "remove_all"
	CommandRemovePage    CommandKind = "remove_page"
	CommandAddPage       CommandKind = "add_page"
	CommandRenumberPages CommandKind = "renumber_pages"
	CommandUpdatePage    CommandKind = "update_page"
)

// commandOrder is the fixed execution order: later commands operate on the
// page set produced by earlier ones within the same snapshot.
var commandOrder = []CommandKind{
	CommandRemoveAll,
	CommandRemovePage,
	CommandAddPage,
	CommandRenumberPages,
	CommandUpdatePage,
}

// Order returns the execution rank of the kind (unknown kinds sort last).
func (k CommandKind) Order() int {
	for i, kind := range commandOrder {
		if kind == k {
			return i
		}
	}
	return len(commandOrder)
}

// Command is a one-shot instruction delivered with a snapshot.
type Command struct {
	Kind CommandKind `json:"kind"`

	// PageNumber is the logical page the command targets; 0 means unspecified.
	PageNumber int `json:"page_number,omitempty"`
}

// RemoveAll destroys every live page.
func RemoveAll() Command { return Command{Kind: CommandRemoveAll} }

// RemovePage removes the page with logical number n (0 = most recent).
func RemovePage(n int) Command { return Command{Kind: CommandRemovePage, PageNumber: n} }

// AddPage inserts a new page with logical number n.
func AddPage(n int) Command { return Command{Kind: CommandAddPage, PageNumber: n} }

// RenumberPages re-derives page numbers from target n onwards.
func RenumberPages(n int) Command { return Command{Kind: CommandRenumberPages, PageNumber: n} }

// UpdatePage fills page n with the snapshot's report content.
func UpdatePage(n int) Command { return Command{Kind: CommandUpdatePage, PageNumber: n} }

// SortCommands orders commands by their fixed execution rank (stable).
func SortCommands(cmds []Command) []Command {
	out := make([]Command, len(cmds))
	copy(out, cmds)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Order() < out[j].Kind.Order()
	})
	return out
}

// ParseCommands converts the raw actions mapping of a transition response
// into the ordered command list.
//
// Flags are read from the top level; the legacy layout nesting them under
// "report" is accepted too, with top-level keys taking precedence.
// The renumber target falls back to data.report.page_number, then to 1.
// The update target is data.n_inspection.
func ParseCommands(actions map[string]any, data *Data) []Command {
	if len(actions) == 0 {
		return nil
	}

	flags := make(map[string]any, len(actions))
	if nested, ok := actions["report"].(map[string]any); ok {
		for k, v := range nested {
			flags[k] = v
		}
	}
	for k, v := range actions {
		if k == "report" {
			continue
		}
		flags[k] = v
	}

	pageNumber, _ := toInt(flags["page_number"])

	var cmds []Command
	for _, kind := range commandOrder {
		if !truthy(flags[string(kind)]) {
			continue
		}
		cmd := Command{Kind: kind}
		switch kind {
		case CommandRemovePage, CommandAddPage:
			cmd.PageNumber = pageNumber
		case CommandRenumberPages:
			cmd.PageNumber = pageNumber
			if cmd.PageNumber == 0 && data != nil && data.Report != nil {
				cmd.PageNumber = data.Report.PageNumber
			}
			if cmd.PageNumber == 0 {
				cmd.PageNumber = 1
			}
		case CommandUpdatePage:
			if data != nil {
				cmd.PageNumber = data.NInspection
			}
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	case nil:
		return false
	}
	n, ok := toInt(v)
	return ok && n != 0
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		return n, err == nil
	}
	return 0, false
}
