/*
Package domain contains the core domain models of the handheld kiosk runtime.

It defines the snapshot that flows from the backend to every view renderer and
the one-shot commands delivered alongside it. This package is kept pure and
free of I/O; transports, views and stores live behind the interfaces of the
ports package.

# Key Entities

  - WorkflowState: The current snapshot (state name, data payload, commands).
  - Data: The recognized payload keys (screen, ui-content, select, report, ...).
  - Command: A one-shot instruction for the report (add, remove, renumber, update).
  - ActionPayload / TransitionResponse: The wire contract with the backend.
  - Record: The journaled last snapshot of a station.
*/
package domain
