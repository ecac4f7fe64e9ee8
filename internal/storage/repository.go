// Package storage is the SQLite repository. Records carry a
// sync_status column so the worker can push them to the remote sheet
// ledger asynchronously.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"registro/internal/core"
	"registro/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// isoDateExpr reorders the stored dd/mm/yyyy text so SQLite sorts it
// chronologically.
const isoDateExpr = "substr(date, 7, 4) || substr(date, 4, 2) || substr(date, 1, 2)"

const recordColumns = "id, date, member_id, reason_id, movement, amount_cents, description"

func scanRecord(row interface{ Scan(...any) error }) (core.Record, error) {
	var rec core.Record
	err := row.Scan(&rec.ID, &rec.Date, &rec.MemberID, &rec.ReasonID,
		&rec.Movement, &rec.Amount.Cents, &rec.Description)
	return rec, err
}

// Snapshot implements store.SnapshotReader.
func (r *SQLiteRepository) Snapshot(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+recordColumns+" FROM records")
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// AppendRecord implements store.RecordWriter. The row starts in
// sync_status 'pending' until the worker confirms the remote append.
func (r *SQLiteRepository) AppendRecord(ctx context.Context, rec core.Record) (core.Record, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO records (id, date, member_id, reason_id, movement, amount_cents, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date, rec.MemberID, rec.ReasonID, string(rec.Movement), rec.Amount.Cents, rec.Description)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"date", rec.Date,
		"movement", rec.Movement,
		"amount_cents", rec.Amount.Cents)
	return rec, nil
}

// UpdateRecord implements store.RecordWriter. An update resets the row
// to 'pending' so the worker re-syncs it.
func (r *SQLiteRepository) UpdateRecord(ctx context.Context, rec core.Record) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE records
		 SET date = ?, member_id = ?, reason_id = ?, movement = ?, amount_cents = ?, description = ?,
		     sync_status = 'pending', updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		rec.Date, rec.MemberID, rec.ReasonID, string(rec.Movement), rec.Amount.Cents, rec.Description, rec.ID)
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	return requireRow(res)
}

// DeleteRecord implements store.RecordWriter.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return requireRow(res)
}

// GetRecord retrieves a single record by id.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.Record, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+recordColumns+" FROM records WHERE id = ?", id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, store.ErrNotFound
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// RecentRecords implements store.RecordLister, newest first.
func (r *SQLiteRepository) RecentRecords(ctx context.Context, n int) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records ORDER BY "+isoDateExpr+" DESC, created_at DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("query recent records: %w", err)
	}
	defer rows.Close()

	var records []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListMembers implements store.MemberDirectory.
func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, protected FROM members ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []core.Member
	for rows.Next() {
		var m core.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Protected); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *SQLiteRepository) CreateMember(ctx context.Context, m core.Member) (core.Member, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO members (id, name, protected) VALUES (?, ?, ?)", m.ID, m.Name, m.Protected)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Member{}, store.ErrDuplicateName
		}
		return core.Member{}, fmt.Errorf("insert member: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) UpdateMember(ctx context.Context, m core.Member) error {
	if err := r.rejectProtectedMember(ctx, m.ID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "UPDATE members SET name = ? WHERE id = ?", m.Name, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("update member: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteMember(ctx context.Context, id string) error {
	if err := r.rejectProtectedMember(ctx, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return requireRow(res)
}

// ListReasons implements store.ReasonDirectory. Quick reasons first so
// quick-entry clients can show them without re-sorting.
func (r *SQLiteRepository) ListReasons(ctx context.Context) ([]core.Reason, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, description, quick FROM reasons ORDER BY quick DESC, description")
	if err != nil {
		return nil, fmt.Errorf("query reasons: %w", err)
	}
	defer rows.Close()

	var reasons []core.Reason
	for rows.Next() {
		var re core.Reason
		if err := rows.Scan(&re.ID, &re.Description, &re.Quick); err != nil {
			return nil, fmt.Errorf("scan reason: %w", err)
		}
		reasons = append(reasons, re)
	}
	return reasons, rows.Err()
}

func (r *SQLiteRepository) CreateReason(ctx context.Context, re core.Reason) (core.Reason, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reasons (id, description, quick) VALUES (?, ?, ?)", re.ID, re.Description, re.Quick)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Reason{}, store.ErrDuplicateName
		}
		return core.Reason{}, fmt.Errorf("insert reason: %w", err)
	}
	return re, nil
}

func (r *SQLiteRepository) UpdateReason(ctx context.Context, re core.Reason) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reasons SET description = ?, quick = ? WHERE id = ?", re.Description, re.Quick, re.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrDuplicateName
		}
		return fmt.Errorf("update reason: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteReason(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reasons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete reason: %w", err)
	}
	return requireRow(res)
}

// ReplaceAll implements store.BulkReplacer in one transaction: all
// records and reasons go, members go except the protected ones, then
// the imported data is inserted.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, records []core.Record, members []core.Member, reasons []core.Reason) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM records",
		"DELETE FROM reasons",
		"DELETE FROM members WHERE protected = 0",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
	}

	for _, m := range members {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO members (id, name, protected) VALUES (?, ?, ?)",
			m.ID, m.Name, m.Protected); err != nil {
			return fmt.Errorf("insert member %s: %w", m.Name, err)
		}
	}
	for _, re := range reasons {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO reasons (id, description, quick) VALUES (?, ?, ?)",
			re.ID, re.Description, re.Quick); err != nil {
			return fmt.Errorf("insert reason %s: %w", re.Description, err)
		}
	}
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (id, date, member_id, reason_id, movement, amount_cents, description)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.Date, rec.MemberID, rec.ReasonID, string(rec.Movement), rec.Amount.Cents, rec.Description); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace transaction: %w", err)
	}

	slog.InfoContext(ctx, "Data set replaced",
		"records", len(records), "members", len(members), "reasons", len(reasons))
	return nil
}

// PendingSyncRecord is the minimal row the sync queue needs.
type PendingSyncRecord struct {
	ID        string
	CreatedAt time.Time
}

// PendingSyncRecords returns records still waiting for the remote
// ledger, oldest first.
func (r *SQLiteRepository) PendingSyncRecords(ctx context.Context, limit int) ([]PendingSyncRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, created_at FROM records WHERE sync_status = 'pending' ORDER BY created_at LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query pending records: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncRecord
	for rows.Next() {
		var p PendingSyncRecord
		if err := rows.Scan(&p.ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced marks a record as accepted by the remote ledger.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE records SET sync_status = 'synced', updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Record marked as synced", "id", id)
	return nil
}

// MarkSyncError marks a record whose remote append failed.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE records SET sync_status = 'error', updated_at = CURRENT_TIMESTAMP WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Record marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) rejectProtectedMember(ctx context.Context, id string) error {
	var protected bool
	err := r.db.QueryRowContext(ctx, "SELECT protected FROM members WHERE id = ?", id).Scan(&protected)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("check protected member: %w", err)
	}
	if protected {
		return core.ErrProtectedMember
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
