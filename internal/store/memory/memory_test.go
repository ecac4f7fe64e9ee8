package memory

import (
	"context"
	"errors"
	"testing"

	"registro/internal/core"
	"registro/internal/store"
)

func TestRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := Empty()

	rec := core.Record{ID: "r1", Date: "20/07/2024", MemberID: "m1", ReasonID: "z1",
		Movement: core.Expense, Amount: core.Money{Cents: -2550}}
	if _, err := s.AppendRecord(ctx, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil || len(snap) != 1 {
		t.Fatalf("snapshot = %v, %v", snap, err)
	}

	rec.Amount.Cents = -3000
	if err := s.UpdateRecord(ctx, rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap, _ = s.Snapshot(ctx)
	if snap[0].Amount.Cents != -3000 {
		t.Errorf("amount after update = %d", snap[0].Amount.Cents)
	}

	if err := s.DeleteRecord(ctx, "r1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteRecord(ctx, "r1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := Empty()
	s.AppendRecord(ctx, core.Record{ID: "r1", Date: "20/07/2024", Movement: core.Income, Amount: core.Money{Cents: 10}})

	snap, _ := s.Snapshot(ctx)
	snap[0].Amount.Cents = 999

	again, _ := s.Snapshot(ctx)
	if again[0].Amount.Cents != 10 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestRecentRecordsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := Empty()
	for _, r := range []core.Record{
		{ID: "old", Date: "01/01/2023", Movement: core.Income},
		{ID: "new", Date: "15/06/2024", Movement: core.Income},
		{ID: "mid", Date: "10/03/2024", Movement: core.Income},
	} {
		s.AppendRecord(ctx, r)
	}

	recent, err := s.RecentRecords(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "new" || recent[1].ID != "mid" {
		t.Errorf("recent = %v", recent)
	}
}

func TestProtectedMembers(t *testing.T) {
	ctx := context.Background()
	s := New()

	members, _ := s.ListMembers(ctx)
	var protected core.Member
	for _, m := range members {
		if m.Protected {
			protected = m
			break
		}
	}
	if protected.ID == "" {
		t.Fatal("seeded store has no protected member")
	}

	if err := s.DeleteMember(ctx, protected.ID); !errors.Is(err, core.ErrProtectedMember) {
		t.Errorf("delete protected = %v, want ErrProtectedMember", err)
	}
	protected.Name = "RENOMBRADO"
	if err := s.UpdateMember(ctx, protected); !errors.Is(err, core.ErrProtectedMember) {
		t.Errorf("update protected = %v, want ErrProtectedMember", err)
	}
}

func TestDuplicateMemberName(t *testing.T) {
	ctx := context.Background()
	s := Empty()
	if _, err := s.CreateMember(ctx, core.Member{ID: "m1", Name: "ANA"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateMember(ctx, core.Member{ID: "m2", Name: "ana"}); !errors.Is(err, store.ErrDuplicateName) {
		t.Errorf("duplicate create = %v, want ErrDuplicateName", err)
	}
}

func TestReplaceAllKeepsProtectedMembers(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.CreateMember(ctx, core.Member{ID: "m1", Name: "ANA"})
	s.AppendRecord(ctx, core.Record{ID: "r1", Date: "20/07/2024", Movement: core.Income, Amount: core.Money{Cents: 1}})

	err := s.ReplaceAll(ctx,
		[]core.Record{{ID: "r2", Date: "01/01/2024", Movement: core.Income, Amount: core.Money{Cents: 2}}},
		[]core.Member{{ID: "m2", Name: "LUIS"}},
		[]core.Reason{{ID: "z1", Description: "COMPRA"}})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	snap, _ := s.Snapshot(ctx)
	if len(snap) != 1 || snap[0].ID != "r2" {
		t.Errorf("records after replace = %v", snap)
	}

	members, _ := s.ListMembers(ctx)
	names := map[string]bool{}
	protectedCount := 0
	for _, m := range members {
		names[m.Name] = true
		if m.Protected {
			protectedCount++
		}
	}
	if protectedCount != 2 {
		t.Errorf("protected members after replace = %d, want 2", protectedCount)
	}
	if names["ANA"] {
		t.Error("unprotected member survived replace")
	}
	if !names["LUIS"] {
		t.Error("imported member missing after replace")
	}
}

func TestListReasonsQuickFirst(t *testing.T) {
	ctx := context.Background()
	s := Empty()
	s.CreateReason(ctx, core.Reason{ID: "z1", Description: "OTROS"})
	s.CreateReason(ctx, core.Reason{ID: "z2", Description: "COMPRA", Quick: true})

	reasons, _ := s.ListReasons(ctx)
	if len(reasons) != 2 || !reasons[0].Quick {
		t.Errorf("reasons = %v, want quick first", reasons)
	}
}
