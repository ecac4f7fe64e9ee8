// Package memory is the in-memory backend: the development and test
// stand-in for SQLite with the same seeded protected members.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"registro/internal/core"
	"registro/internal/store"
)

type Store struct {
	mu      sync.Mutex
	records []core.Record
	members []core.Member
	reasons []core.Reason
}

// New returns a store seeded with the default protected members and
// quick reasons, mirroring the SQLite seed migration.
func New() *Store {
	return &Store{
		members: []core.Member{
			{ID: uuid.NewString(), Name: "CAJA COMUN", Protected: true},
			{ID: uuid.NewString(), Name: "EXTERNO", Protected: true},
		},
		reasons: []core.Reason{
			{ID: uuid.NewString(), Description: "MENSUALIDAD", Quick: true},
			{ID: uuid.NewString(), Description: "COMPRA", Quick: true},
			{ID: uuid.NewString(), Description: "OTROS"},
		},
	}
}

// Empty returns a store with no seed data. Tests use it when they want
// full control of the directory.
func Empty() *Store {
	return &Store{}
}

// Snapshot implements store.SnapshotReader.
func (s *Store) Snapshot(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...), nil
}

// AppendRecord implements store.RecordWriter.
func (s *Store) AppendRecord(_ context.Context, r core.Record) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return r, nil
}

// UpdateRecord implements store.RecordWriter.
func (s *Store) UpdateRecord(_ context.Context, r core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == r.ID {
			s.records[i] = r
			return nil
		}
	}
	return store.ErrNotFound
}

// DeleteRecord implements store.RecordWriter.
func (s *Store) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// RecentRecords implements store.RecordLister, newest date first.
// Records with unparseable dates sort last.
func (s *Store) RecentRecords(_ context.Context, n int) ([]core.Record, error) {
	s.mu.Lock()
	records := append([]core.Record(nil), s.records...)
	s.mu.Unlock()

	sort.SliceStable(records, func(i, j int) bool {
		return sortKey(records[i].Date) > sortKey(records[j].Date)
	})
	if len(records) > n {
		records = records[:n]
	}
	return records, nil
}

func sortKey(date string) string {
	d, err := core.ParseDate(date)
	if err != nil {
		return ""
	}
	return d.Format("20060102")
}

// ListMembers implements store.MemberDirectory.
func (s *Store) ListMembers(_ context.Context) ([]core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := append([]core.Member(nil), s.members...)
	sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
	return members, nil
}

func (s *Store) CreateMember(_ context.Context, m core.Member) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if strings.EqualFold(existing.Name, m.Name) {
			return core.Member{}, store.ErrDuplicateName
		}
	}
	s.members = append(s.members, m)
	return m, nil
}

func (s *Store) UpdateMember(_ context.Context, m core.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID != m.ID {
			continue
		}
		if s.members[i].Protected {
			return core.ErrProtectedMember
		}
		for j := range s.members {
			if j != i && strings.EqualFold(s.members[j].Name, m.Name) {
				return store.ErrDuplicateName
			}
		}
		s.members[i].Name = m.Name
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.members {
		if s.members[i].ID != id {
			continue
		}
		if s.members[i].Protected {
			return core.ErrProtectedMember
		}
		s.members = append(s.members[:i], s.members[i+1:]...)
		return nil
	}
	return store.ErrNotFound
}

// ListReasons implements store.ReasonDirectory, quick reasons first.
func (s *Store) ListReasons(_ context.Context) ([]core.Reason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reasons := append([]core.Reason(nil), s.reasons...)
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Quick != reasons[j].Quick {
			return reasons[i].Quick
		}
		return reasons[i].Description < reasons[j].Description
	})
	return reasons, nil
}

func (s *Store) CreateReason(_ context.Context, r core.Reason) (core.Reason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.reasons {
		if strings.EqualFold(existing.Description, r.Description) {
			return core.Reason{}, store.ErrDuplicateName
		}
	}
	s.reasons = append(s.reasons, r)
	return r, nil
}

func (s *Store) UpdateReason(_ context.Context, r core.Reason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reasons {
		if s.reasons[i].ID != r.ID {
			continue
		}
		for j := range s.reasons {
			if j != i && strings.EqualFold(s.reasons[j].Description, r.Description) {
				return store.ErrDuplicateName
			}
		}
		s.reasons[i] = r
		return nil
	}
	return store.ErrNotFound
}

func (s *Store) DeleteReason(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reasons {
		if s.reasons[i].ID == id {
			s.reasons = append(s.reasons[:i], s.reasons[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

// ReplaceAll implements store.BulkReplacer: everything is swapped out
// except protected members, which always survive a replace import.
func (s *Store) ReplaceAll(_ context.Context, records []core.Record, members []core.Member, reasons []core.Reason) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []core.Member
	for _, m := range s.members {
		if m.Protected {
			kept = append(kept, m)
		}
	}
	for _, m := range members {
		duplicate := false
		for _, existing := range kept {
			if strings.EqualFold(existing.Name, m.Name) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, m)
		}
	}

	s.members = kept
	s.reasons = append([]core.Reason(nil), reasons...)
	s.records = append([]core.Record(nil), records...)
	return nil
}
