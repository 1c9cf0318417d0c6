// Package dispatch turns operator events into transitions.
//
// A Dispatcher resolves a control id to its action and payload, disables the
// control for the duration of its in-flight transition and resets the
// control's form after a successful submission.
package dispatch
