/*
Package handheld is the client-side runtime of a kiosk-style quality
inspection workstation.

The runtime holds one authoritative workflow snapshot received from a backend
service and projects it onto three views: the live media screen, the operator
UI chrome and a paginated inspection report. Operator controls become actions;
each action is a single round trip after which the whole snapshot is replaced
and every view recomputes its projection from the snapshot alone.

# Architecture

  - pkg/statesync: owns the snapshot and notifies observers in order.
  - pkg/render: screen, chrome and report renderers.
  - pkg/dispatch: maps operator controls to actions.
  - pkg/adapters/dom: views over an HTML document tree.
  - pkg/adapters/memory: recorder views and a scripted backend for tests.
  - pkg/session: per-station journal of snapshots.

# Usage

	doc, _ := dom.ParseString(page)
	views, _ := handheld.DocumentViews(doc)

	rt := handheld.New(httpadapter.NewClient("http://backend:5000"), views,
		handheld.WithTemplate(dom.NewFSSource(afero.NewOsFs(), "static"), "report.html"),
		handheld.WithInitialPage(true),
	)
	if err := rt.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer rt.Close()

	// Operator pressed "yes".
	if err := rt.Dispatch(ctx, "btn-yes", nil); err != nil {
		log.Printf("transition failed: %v", err)
	}
*/
package handheld
