// Package render projects workflow snapshots onto the view ports.
//
// Each renderer is a ports.Observer that recomputes its projection from the
// delivered snapshot alone: Screen drives the single media source, Chrome the
// operator UI regions and Report the paginated report.
package render
