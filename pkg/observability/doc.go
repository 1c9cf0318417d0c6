/*
Package observability exposes the runtime's prometheus collectors.

Metrics are fed by the synchronizer hooks and the report page observer:

	metrics := observability.NewMetrics()
	sync := statesync.New(backend, statesync.WithHooks(metrics.Hooks()))
	report := render.NewReport(view, sync, render.WithPageObserver(metrics.ObservePages))

	mux.Handle("/metrics", metrics.Handler())
*/
package observability
