// Package backend selects and assembles a data backend from
// configuration.
package backend

import (
	"registro/internal/amqp"
	"registro/internal/store"
)

// Backend is the full set of ports a data backend provides.
type Backend interface {
	store.SnapshotReader
	store.RecordWriter
	store.RecordLister
	store.MemberDirectory
	store.ReasonDirectory
	store.BulkReplacer
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result is an assembled backend. AMQP is non-nil only when the
// backend publishes sync messages (the SQLite backend with a reachable
// broker).
type Result struct {
	Backend Backend
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Type names a backend implementation.
type Type string

const (
	SQLite Type = "sqlite"
	Sheets Type = "sheets"
	Memory Type = "memory"
)

func (t Type) String() string {
	return string(t)
}

// IsValid reports whether the type names a known backend.
func (t Type) IsValid() bool {
	switch t {
	case SQLite, Sheets, Memory:
		return true
	}
	return false
}

// Config holds what the factory needs to build any backend.
type Config struct {
	Type Type

	// SQLite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}
