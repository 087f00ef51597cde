// internal/reference/implementation.go
package reference

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	repo Repository
	kind Kind
}

// NewService creates a reference-entity service for one kind.
func NewService(repo Repository, kind Kind) Service {
	return &service{repo: repo, kind: kind}
}

func (s *service) Create(ctx context.Context, in Input) (*Entity, error) {
	name := strings.TrimSpace(in.Name)
	if err := s.validate(name, in.Description); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check %s name: %w", s.kind, err)
	}
	if exists {
		return nil, &DuplicateNameError{Name: name}
	}

	now := time.Now().UTC()
	entity := &Entity{
		ID:          uuid.New(),
		Name:        name,
		Description: in.Description,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Active != nil {
		entity.Active = *in.Active
	}

	if err := s.repo.Insert(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to insert %s: %w", s.kind, err)
	}
	return entity, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (*Entity, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// System-defined entities are immutable; the update is silently ignored.
	if entity.SystemDefined {
		return entity, nil
	}

	name := strings.TrimSpace(in.Name)
	if err := s.validate(name, in.Description); err != nil {
		return nil, err
	}

	if name != entity.Name {
		exists, err := s.repo.ExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to check %s name: %w", s.kind, err)
		}
		if exists {
			return nil, &DuplicateNameError{Name: name}
		}
	}

	entity.Name = name
	entity.Description = in.Description
	if in.Active != nil {
		entity.Active = *in.Active
	}
	entity.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.kind, err)
	}
	return entity, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*Entity, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByName(ctx context.Context, name string) (*Entity, error) {
	return s.repo.FindByName(ctx, name)
}

func (s *service) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.repo.ExistsByName(ctx, name)
}

func (s *service) ListAll(ctx context.Context) ([]*Entity, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]*Entity, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListCustom(ctx context.Context) ([]*Entity, error) {
	return s.repo.ListCustom(ctx)
}

func (s *service) ListSystem(ctx context.Context) ([]*Entity, error) {
	return s.repo.ListSystem(ctx)
}

// SoftDelete flips active off. Unknown ids and system-defined entities are
// silently ignored.
func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	entity, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if entity.SystemDefined {
		return nil
	}

	entity.Active = false
	entity.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, entity); err != nil {
		return fmt.Errorf("failed to soft-delete %s: %w", s.kind, err)
	}
	return nil
}

// HardDelete removes the row. System-defined entities are never removed.
func (s *service) HardDelete(ctx context.Context, id uuid.UUID) error {
	entity, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if entity.SystemDefined {
		return nil
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.kind, err)
	}
	return nil
}

func (s *service) Reactivate(ctx context.Context, id uuid.UUID) (*Entity, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	entity.Active = true
	entity.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("failed to reactivate %s: %w", s.kind, err)
	}
	return entity, nil
}

// Seed creates the given names as system-defined entities, skipping any name
// that already exists. Safe to re-run at every process start.
func (s *service) Seed(ctx context.Context, names []string) error {
	for _, name := range names {
		exists, err := s.repo.ExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check %s name: %w", s.kind, err)
		}
		if exists {
			continue
		}

		now := time.Now().UTC()
		entity := &Entity{
			ID:            uuid.New(),
			Name:          name,
			Description:   fmt.Sprintf("System %s - %s", s.kind, name),
			SystemDefined: true,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.repo.Insert(ctx, entity); err != nil {
			return fmt.Errorf("failed to seed %s %q: %w", s.kind, name, err)
		}
		log.Printf("seeded system %s: %s", s.kind, name)
	}
	return nil
}

func (s *service) validate(name, description string) error {
	if name == "" {
		return &ValidationError{Reason: fmt.Sprintf("%s name is required", s.kind)}
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 50 {
		return &ValidationError{Reason: fmt.Sprintf("%s name must be between 2 and 50 characters", s.kind)}
	}
	if utf8.RuneCountInString(description) > 200 {
		return &ValidationError{Reason: "description must be at most 200 characters"}
	}
	return nil
}
