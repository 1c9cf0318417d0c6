package domain

// ActionPayload is the request body of a transition.
// It is chosen by the operator surface and opaque to the synchronizer.
type ActionPayload struct {
	Action         string         `json:"action"`
	SelectedDefect *string        `json:"selectedDefect"`
	Data           map[string]any `json:"data"`
}

// TransitionResponse is the response body of a transition.
type TransitionResponse struct {
	// NextState is nil when the backend signals "stay" by omission.
	NextState *string        `json:"nextState,omitempty"`
	Actions   map[string]any `json:"actions,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// DeletePageAction is the action emitted by a page's delete control.
const DeletePageAction = "delete_page"

// DefaultDeleteEndpoint receives delete_page actions, bypassing the
// state-derived endpoint.
const DefaultDeleteEndpoint = "/actions/delete_page"
