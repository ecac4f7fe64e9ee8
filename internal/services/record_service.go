// Package services holds the business orchestration between the data
// backend and the sync queue: sign normalization, id assignment, name
// policies, and publish-after-write.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"registro/internal/amqp"
	"registro/internal/core"
	"registro/internal/store"
)

// RecordStore is the slice of backend ports the record service needs.
type RecordStore interface {
	store.SnapshotReader
	store.RecordWriter
	store.RecordLister
}

// SyncPublisher pushes record sync messages to the worker queue.
// *amqp.Client implements it; a nil publisher disables sync.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, msg *amqp.RecordSyncMessage) error
}

// RecordService applies the write-boundary rules for records: the
// amount sign is fixed from the movement kind here, exactly once, and
// every accepted mutation publishes a sync message. The aggregation
// path downstream trusts the stored sign.
type RecordService struct {
	store     RecordStore
	publisher SyncPublisher
}

func NewRecordService(st RecordStore, publisher SyncPublisher) *RecordService {
	return &RecordService{store: st, publisher: publisher}
}

// Create normalizes, validates and stores a new record, then queues an
// upsert for the remote ledger. A publish failure is logged, never
// returned: the record is already safe locally.
func (s *RecordService) Create(ctx context.Context, r core.Record) (core.Record, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Amount.Cents = core.NormalizeAmount(r.Movement, r.Amount.Cents)
	if err := r.Validate(); err != nil {
		return core.Record{}, fmt.Errorf("validate record: %w", err)
	}

	created, err := s.store.AppendRecord(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}

	s.publish(ctx, amqp.NewRecordSyncMessage(created.ID))
	return created, nil
}

// Update normalizes, validates and stores an amended record, then
// queues an upsert.
func (s *RecordService) Update(ctx context.Context, r core.Record) error {
	r.Amount.Cents = core.NormalizeAmount(r.Movement, r.Amount.Cents)
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate record: %w", err)
	}
	if err := s.store.UpdateRecord(ctx, r); err != nil {
		return fmt.Errorf("update record: %w", err)
	}

	s.publish(ctx, amqp.NewRecordSyncMessage(r.ID))
	return nil
}

// Delete removes a record and queues a delete for the remote ledger.
func (s *RecordService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	s.publish(ctx, amqp.NewRecordDeleteMessage(id))
	return nil
}

// Snapshot exposes the backend snapshot for the reporting layer.
func (s *RecordService) Snapshot(ctx context.Context) ([]core.Record, error) {
	return s.store.Snapshot(ctx)
}

// Recent returns the latest n records, newest first.
func (s *RecordService) Recent(ctx context.Context, n int) ([]core.Record, error) {
	return s.store.RecentRecords(ctx, n)
}

func (s *RecordService) publish(ctx context.Context, msg *amqp.RecordSyncMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", msg.ID, "op", msg.Op, "error", err)
	}
}
