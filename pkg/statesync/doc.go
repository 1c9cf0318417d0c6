/*
Package statesync owns the single workflow snapshot of the runtime.

A Synchronizer submits actions to the backend, replaces its snapshot wholesale
with the server's answer and delivers the new snapshot to every subscribed
observer, synchronously and in subscription order:

	sync := statesync.New(backend, statesync.WithLogger(logger))
	sub := sync.Subscribe(screenRenderer)
	defer sub.Unsubscribe()

	if err := sync.Transition(ctx, domain.ActionPayload{Action: "capture"}, ""); err != nil {
		// state and views are unchanged
	}

A failed transition never mutates the snapshot and never notifies.
*/
package statesync
