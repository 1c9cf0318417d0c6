/*
Package session implements the snapshot journal of a station.

A Manager serializes journal access per station, optionally coordinating
replicas through a distributed locker, on top of any ports.SnapshotStore.
A Recorder subscribes to the synchronizer and appends every snapshot to the
journal so a restarted runtime can resume from its last known state.
*/
package session
