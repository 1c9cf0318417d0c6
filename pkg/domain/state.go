package domain

// DefaultInitialState is the workflow state the runtime assumes before the
// first transition resolves.
const DefaultInitialState = "inspector_state"

// WorkflowState represents the current snapshot of the workflow.
// It is replaced wholesale on every successful transition and must be
// treated as read-only by observers.
type WorkflowState struct {
	// CurrentState is the opaque identifier of the active backend state.
	CurrentState string `json:"currentState"`

	// Data holds the payload delivered with the snapshot. May be nil.
	Data *Data `json:"data,omitempty"`

	// Commands are the one-shot instructions delivered with this snapshot.
	// They are executed once per delivery and never inferred from a diff.
	Commands []Command `json:"commands,omitempty"`
}

// NewState creates an empty snapshot positioned at the given state.
func NewState(currentState string) WorkflowState {
	return WorkflowState{CurrentState: currentState}
}

// Screen returns the media source locator carried by the snapshot, if any.
func (s WorkflowState) Screen() string {
	if s.Data == nil {
		return ""
	}
	return s.Data.Screen
}

// GuidelineSide returns the side tag used by side-conditional regions.
func (s WorkflowState) GuidelineSide() string {
	if s.Data == nil {
		return ""
	}
	return s.Data.GuidelineSide
}

// Content returns the ui-content value for key, or "" when absent.
func (s WorkflowState) Content(key string) string {
	if s.Data == nil || s.Data.UIContent == nil {
		return ""
	}
	return s.Data.UIContent[key]
}

// Report returns the report payload, or nil.
func (s WorkflowState) Report() *Report {
	if s.Data == nil {
		return nil
	}
	return s.Data.Report
}

// Inspection returns the target page number for content updates (0 if unset).
func (s WorkflowState) Inspection() int {
	if s.Data == nil {
		return 0
	}
	return s.Data.NInspection
}

// Has reports whether the snapshot carries a command of the given kind.
func (s WorkflowState) Has(kind CommandKind) bool {
	for _, c := range s.Commands {
		if c.Kind == kind {
			return true
		}
	}
	return false
}
