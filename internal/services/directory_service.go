package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"registro/internal/core"
	"registro/internal/store"
)

// DirectoryStore is the slice of backend ports the directory service
// needs.
type DirectoryStore interface {
	store.MemberDirectory
	store.ReasonDirectory
}

// DirectoryService manages members and reasons. Names are uppercased
// and trimmed at this boundary so every backend stores the same
// canonical form; the protected-member rules live in the backends.
type DirectoryService struct {
	store DirectoryStore
}

func NewDirectoryService(st DirectoryStore) *DirectoryService {
	return &DirectoryService{store: st}
}

// CanonicalName trims and uppercases a member or reason name.
func CanonicalName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func (s *DirectoryService) ListMembers(ctx context.Context) ([]core.Member, error) {
	return s.store.ListMembers(ctx)
}

func (s *DirectoryService) CreateMember(ctx context.Context, name string) (core.Member, error) {
	m := core.Member{ID: uuid.NewString(), Name: CanonicalName(name)}
	if err := m.Validate(); err != nil {
		return core.Member{}, fmt.Errorf("validate member: %w", err)
	}
	created, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return core.Member{}, fmt.Errorf("create member: %w", err)
	}
	return created, nil
}

func (s *DirectoryService) RenameMember(ctx context.Context, id, name string) error {
	m := core.Member{ID: id, Name: CanonicalName(name)}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validate member: %w", err)
	}
	if err := s.store.UpdateMember(ctx, m); err != nil {
		return fmt.Errorf("rename member: %w", err)
	}
	return nil
}

func (s *DirectoryService) DeleteMember(ctx context.Context, id string) error {
	if err := s.store.DeleteMember(ctx, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

func (s *DirectoryService) ListReasons(ctx context.Context) ([]core.Reason, error) {
	return s.store.ListReasons(ctx)
}

func (s *DirectoryService) CreateReason(ctx context.Context, description string, quick bool) (core.Reason, error) {
	r := core.Reason{ID: uuid.NewString(), Description: CanonicalName(description), Quick: quick}
	if err := r.Validate(); err != nil {
		return core.Reason{}, fmt.Errorf("validate reason: %w", err)
	}
	created, err := s.store.CreateReason(ctx, r)
	if err != nil {
		return core.Reason{}, fmt.Errorf("create reason: %w", err)
	}
	return created, nil
}

func (s *DirectoryService) UpdateReason(ctx context.Context, id, description string, quick bool) error {
	r := core.Reason{ID: id, Description: CanonicalName(description), Quick: quick}
	if err := r.Validate(); err != nil {
		return fmt.Errorf("validate reason: %w", err)
	}
	if err := s.store.UpdateReason(ctx, r); err != nil {
		return fmt.Errorf("update reason: %w", err)
	}
	return nil
}

func (s *DirectoryService) DeleteReason(ctx context.Context, id string) error {
	if err := s.store.DeleteReason(ctx, id); err != nil {
		return fmt.Errorf("delete reason: %w", err)
	}
	return nil
}
