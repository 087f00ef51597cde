// internal/reference/service.go
package reference

import (
	"context"

	"github.com/google/uuid"
)

// Input carries the caller-editable fields of an entity. Active is a pointer
// so an update can leave the flag untouched.
type Input struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active,omitempty"`
}

// Service defines the interface for one reference-entity lifecycle.
type Service interface {
	Create(ctx context.Context, in Input) (*Entity, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Entity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	FindByName(ctx context.Context, name string) (*Entity, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListAll(ctx context.Context) ([]*Entity, error)
	ListActive(ctx context.Context) ([]*Entity, error)
	ListCustom(ctx context.Context) ([]*Entity, error)
	ListSystem(ctx context.Context) ([]*Entity, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	HardDelete(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) (*Entity, error)
	Seed(ctx context.Context, names []string) error
}
