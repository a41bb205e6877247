package handlers

import (
	"switchboard-ai/hermes/pkg/audit"
	"switchboard-ai/hermes/pkg/registry"
)

// SnapshotSource provides the active routing table snapshot.
type SnapshotSource interface {
	Snapshot() *registry.Snapshot
}

// Reloader reloads the routing tables and exposes the resulting snapshot.
type Reloader interface {
	SnapshotSource
	Load() error
}

// Recorder accepts audit records. A nil Recorder disables auditing.
type Recorder interface {
	Record(record *audit.Record) error
}
