// Package worker syncs records from the SQLite backend to the remote
// sheet ledger. Messages arrive over AMQP; a periodic backlog scan
// catches anything a lost message left behind.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"registro/internal/amqp"
	"registro/internal/core"
	"registro/internal/log"
	"registro/internal/storage"
	"registro/internal/store"
)

// RecordSource is what the worker needs from the local repository.
// *storage.SQLiteRepository implements it.
type RecordSource interface {
	GetRecord(ctx context.Context, id string) (core.Record, error)
	ListMembers(ctx context.Context) ([]core.Member, error)
	ListReasons(ctx context.Context) ([]core.Reason, error)
	PendingSyncRecords(ctx context.Context, limit int) ([]storage.PendingSyncRecord, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// LedgerWriter is the remote side of the sync. *sheet.Ledger
// implements it.
type LedgerWriter interface {
	Upsert(ctx context.Context, rec core.Record, memberName, reasonName string) error
	Delete(ctx context.Context, id string) error
}

type SyncWorker struct {
	source    RecordSource
	ledger    LedgerWriter
	batchSize int
	logger    *log.Logger
}

func NewSyncWorker(source RecordSource, ledger LedgerWriter, batchSize int, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New("sync-worker", 0)
	}
	return &SyncWorker{source: source, ledger: ledger, batchSize: batchSize, logger: logger}
}

// HandleMessage processes one queue message. A record that no longer
// exists locally is acked away: the delete already won.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	switch msg.Op {
	case amqp.OpDelete:
		if err := w.ledger.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("delete record from ledger: %w", err)
		}
		return nil
	case amqp.OpUpsert:
		return w.syncRecord(ctx, msg.ID)
	default:
		w.logger.WarnContext(ctx, "Dropping message with unknown op", "op", msg.Op, "id", msg.ID)
		return nil
	}
}

// ProcessPending pushes records still marked 'pending' to the ledger.
// This is the backup path for lost queue messages.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.source.PendingSyncRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing pending records", "count", len(pending))
	for _, p := range pending {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := w.syncRecord(ctx, p.ID); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync pending record", "id", p.ID, "error", err)
		}
	}
	return nil
}

// Run consumes the queue and scans the backlog concurrently until the
// context ends.
func (w *SyncWorker) Run(ctx context.Context, client *amqp.Client, scanInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := client.ConsumeRecordSync(ctx, func(msg *amqp.RecordSyncMessage) error {
			return w.HandleMessage(ctx, msg)
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		ticker := time.NewTicker(scanInterval)
		defer ticker.Stop()

		// One pass right away so a backlog does not wait a full interval
		if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "Backlog scan failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil && !errors.Is(err, context.Canceled) {
					w.logger.ErrorContext(ctx, "Backlog scan failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}

func (w *SyncWorker) syncRecord(ctx context.Context, id string) error {
	rec, err := w.source.GetRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Record vanished before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	memberName, reasonName, err := w.resolveNames(ctx, rec)
	if err != nil {
		return err
	}

	if err := w.ledger.Upsert(ctx, rec, memberName, reasonName); err != nil {
		if markErr := w.source.MarkSyncError(ctx, id); markErr != nil {
			w.logger.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("upsert record to ledger: %w", err)
	}

	if err := w.source.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	return nil
}

// resolveNames maps the record's references to names for the sheet. A
// dangling reference falls back to the raw id so the row still lands.
func (w *SyncWorker) resolveNames(ctx context.Context, rec core.Record) (string, string, error) {
	memberName := rec.MemberID
	members, err := w.source.ListMembers(ctx)
	if err != nil {
		return "", "", fmt.Errorf("list members: %w", err)
	}
	for _, m := range members {
		if m.ID == rec.MemberID {
			memberName = m.Name
			break
		}
	}

	reasonName := rec.ReasonID
	reasons, err := w.source.ListReasons(ctx)
	if err != nil {
		return "", "", fmt.Errorf("list reasons: %w", err)
	}
	for _, r := range reasons {
		if r.ID == rec.ReasonID {
			reasonName = r.Description
			break
		}
	}
	return memberName, reasonName, nil
}
