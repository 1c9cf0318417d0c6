/*
Package ports defines the interfaces that decouple the handheld core from its
transports, views and stores.

# Key Interfaces

  - Observer: Receives every completed state snapshot, in subscription order.
  - Backend: Performs the single network round trip of a transition.
  - TemplateSource: Supplies the report template document at startup.
  - ScreenView, ChromeView, ReportView: View adapters the renderers project onto.
  - SnapshotStore: Persists the journaled snapshot of a station.
  - DistributedLocker: Coordinates journal writes across runtime replicas.
*/
package ports
