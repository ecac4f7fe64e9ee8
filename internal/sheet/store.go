package sheet

import (
	"context"
	"sort"

	"registro/internal/core"
	"registro/internal/store"
)

// Store adapts the ledger to the backend ports. The sheet is its own
// directory: members and reasons are the distinct names found in the
// rows, keyed by name. Directory mutations and bulk replace are not
// supported; edit the spreadsheet instead.
type Store struct {
	ledger *Ledger
}

func NewStore(ledger *Ledger) *Store {
	return &Store{ledger: ledger}
}

// Snapshot implements store.SnapshotReader.
func (s *Store) Snapshot(ctx context.Context) ([]core.Record, error) {
	return s.ledger.ReadAll(ctx)
}

// AppendRecord implements store.RecordWriter. The names travel in the
// id fields on this backend.
func (s *Store) AppendRecord(ctx context.Context, r core.Record) (core.Record, error) {
	if err := s.ledger.Upsert(ctx, r, r.MemberID, r.ReasonID); err != nil {
		return core.Record{}, err
	}
	return r, nil
}

// UpdateRecord implements store.RecordWriter.
func (s *Store) UpdateRecord(ctx context.Context, r core.Record) error {
	return s.ledger.Upsert(ctx, r, r.MemberID, r.ReasonID)
}

// DeleteRecord implements store.RecordWriter.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	return s.ledger.Delete(ctx, id)
}

// RecentRecords implements store.RecordLister.
func (s *Store) RecentRecords(ctx context.Context, n int) ([]core.Record, error) {
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		di, erri := core.ParseDate(records[i].Date)
		dj, errj := core.ParseDate(records[j].Date)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return di.After(dj)
	})
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

// ListMembers implements store.MemberDirectory from the distinct
// member names in the ledger.
func (s *Store) ListMembers(ctx context.Context) ([]core.Member, error) {
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := distinct(records, func(r core.Record) string { return r.MemberID })
	members := make([]core.Member, 0, len(names))
	for _, name := range names {
		members = append(members, core.Member{ID: name, Name: name})
	}
	return members, nil
}

func (s *Store) CreateMember(context.Context, core.Member) (core.Member, error) {
	return core.Member{}, store.ErrUnsupported
}

func (s *Store) UpdateMember(context.Context, core.Member) error {
	return store.ErrUnsupported
}

func (s *Store) DeleteMember(context.Context, string) error {
	return store.ErrUnsupported
}

// ListReasons implements store.ReasonDirectory from the distinct
// reason names in the ledger.
func (s *Store) ListReasons(ctx context.Context) ([]core.Reason, error) {
	records, err := s.ledger.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := distinct(records, func(r core.Record) string { return r.ReasonID })
	reasons := make([]core.Reason, 0, len(names))
	for _, name := range names {
		reasons = append(reasons, core.Reason{ID: name, Description: name})
	}
	return reasons, nil
}

func (s *Store) CreateReason(context.Context, core.Reason) (core.Reason, error) {
	return core.Reason{}, store.ErrUnsupported
}

func (s *Store) UpdateReason(context.Context, core.Reason) error {
	return store.ErrUnsupported
}

func (s *Store) DeleteReason(context.Context, string) error {
	return store.ErrUnsupported
}

func (s *Store) ReplaceAll(context.Context, []core.Record, []core.Member, []core.Reason) error {
	return store.ErrUnsupported
}

func distinct(records []core.Record, key func(core.Record) string) []string {
	seen := map[string]struct{}{}
	var names []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
