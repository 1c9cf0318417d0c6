package domain

import "errors"

// ErrTransport is returned when the backend could not be reached.
var ErrTransport = errors.New("transport failure")

// ErrUnexpectedStatus is returned when the backend answers with a non-success status.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// ErrMalformedResponse is returned when a response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// ErrRecordNotFound is returned when a station has no journaled snapshot.
var ErrRecordNotFound = errors.New("record not found")

// ErrUnknownControl is returned when an operator event names no bound control.
var ErrUnknownControl = errors.New("unknown control")

// ErrControlBusy is returned when a control is disabled by an in-flight transition.
var ErrControlBusy = errors.New("control busy")

// ErrMissingFields is returned when a form submission lacks required fields.
var ErrMissingFields = errors.New("missing required fields")

// ErrPageNotFound is returned when a report page does not exist.
var ErrPageNotFound = errors.New("page not found")

// ErrTemplateNotFound is returned when a template document lacks the page template.
var ErrTemplateNotFound = errors.New("template not found")
