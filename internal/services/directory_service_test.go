package services

import (
	"context"
	"errors"
	"testing"

	"registro/internal/core"
	"registro/internal/store"
	"registro/internal/store/memory"
)

func TestCreateMemberUppercasesName(t *testing.T) {
	svc := NewDirectoryService(memory.Empty())

	m, err := svc.CreateMember(context.Background(), "  juan perez ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if m.Name != "JUAN PEREZ" {
		t.Errorf("name = %q, want canonical uppercase", m.Name)
	}
	if m.ID == "" {
		t.Error("member id not assigned")
	}
}

func TestCreateMemberRejectsBlankAndDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewDirectoryService(memory.Empty())

	if _, err := svc.CreateMember(ctx, "   "); !errors.Is(err, core.ErrEmptyName) {
		t.Errorf("blank name = %v, want ErrEmptyName", err)
	}

	if _, err := svc.CreateMember(ctx, "Ana"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateMember(ctx, "ANA"); !errors.Is(err, store.ErrDuplicateName) {
		t.Errorf("duplicate = %v, want ErrDuplicateName", err)
	}
}

func TestRenameProtectedMemberFails(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := NewDirectoryService(st)

	members, _ := svc.ListMembers(ctx)
	for _, m := range members {
		if m.Protected {
			if err := svc.RenameMember(ctx, m.ID, "Nuevo"); !errors.Is(err, core.ErrProtectedMember) {
				t.Errorf("rename protected = %v, want ErrProtectedMember", err)
			}
			return
		}
	}
	t.Fatal("no protected member seeded")
}

func TestReasonLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewDirectoryService(memory.Empty())

	r, err := svc.CreateReason(ctx, "compra mensual", true)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if r.Description != "COMPRA MENSUAL" || !r.Quick {
		t.Errorf("reason = %+v", r)
	}

	if err := svc.UpdateReason(ctx, r.ID, "compra semanal", false); err != nil {
		t.Fatalf("update: %v", err)
	}
	reasons, _ := svc.ListReasons(ctx)
	if len(reasons) != 1 || reasons[0].Description != "COMPRA SEMANAL" || reasons[0].Quick {
		t.Errorf("reasons after update = %+v", reasons)
	}

	if err := svc.DeleteReason(ctx, r.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteReason(ctx, r.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}
