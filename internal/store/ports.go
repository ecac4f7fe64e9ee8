// Package store declares the ports the HTTP layer and the services
// speak to a data backend through. The aggregation engine depends only
// on SnapshotReader; mutation ports are for the CRUD surface.
package store

import (
	"context"
	"errors"

	"registro/internal/core"
)

var (
	// ErrNotFound is returned when an entity id does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateName is returned when a member or reason name is
	// already taken.
	ErrDuplicateName = errors.New("name already exists")
	// ErrUnsupported is returned by backends that cannot perform an
	// operation (the sheet ledger cannot update rows in place).
	ErrUnsupported = errors.New("operation not supported by this backend")
)

// Ports for outbound adapters.
type (
	// SnapshotReader supplies a stable snapshot of all records. The
	// returned slice is owned by the caller.
	SnapshotReader interface {
		Snapshot(ctx context.Context) ([]core.Record, error)
	}

	RecordWriter interface {
		AppendRecord(ctx context.Context, r core.Record) (core.Record, error)
		UpdateRecord(ctx context.Context, r core.Record) error
		DeleteRecord(ctx context.Context, id string) error
	}

	// RecordLister serves the dashboard's "latest movements" panel.
	RecordLister interface {
		RecentRecords(ctx context.Context, n int) ([]core.Record, error)
	}

	MemberDirectory interface {
		ListMembers(ctx context.Context) ([]core.Member, error)
		CreateMember(ctx context.Context, m core.Member) (core.Member, error)
		UpdateMember(ctx context.Context, m core.Member) error
		DeleteMember(ctx context.Context, id string) error
	}

	ReasonDirectory interface {
		ListReasons(ctx context.Context) ([]core.Reason, error)
		CreateReason(ctx context.Context, r core.Reason) (core.Reason, error)
		UpdateReason(ctx context.Context, r core.Reason) error
		DeleteReason(ctx context.Context, id string) error
	}

	// BulkReplacer swaps the whole data set in one call. Used by the
	// replace import mode; implementations keep protected members.
	BulkReplacer interface {
		ReplaceAll(ctx context.Context, records []core.Record, members []core.Member, reasons []core.Reason) error
	}
)
