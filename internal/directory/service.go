// internal/directory/service.go
package directory

import (
	"context"

	"github.com/google/uuid"
)

// Input carries the caller-editable fields of a user.
type Input struct {
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	RegistrationID *string `json:"registration_id,omitempty"`
	Department     string  `json:"department"`
	Role           string  `json:"role"`
	Phone          string  `json:"phone"`
}

// Service defines the interface for the user directory.
type Service interface {
	Create(ctx context.Context, in Input) (*User, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRegistrationID(ctx context.Context, registrationID string) (*User, error)
	ListAll(ctx context.Context) ([]*User, error)
	ListActive(ctx context.Context) ([]*User, error)
	ListByDepartment(ctx context.Context, department string) ([]*User, error)
	ListByRole(ctx context.Context, role string) ([]*User, error)
	Search(ctx context.Context, term string) ([]*User, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error)
	CountByDepartment(ctx context.Context) (map[string]int64, error)
	CountUsers(ctx context.Context) (map[string]int, error)
}
