// internal/directory/domain.go
package directory

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a person who may hold equipment loans. Users are deactivated, never
// hard-deleted.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"`
	RegistrationID *string   `db:"registration_id" json:"registration_id,omitempty"`
	Department     string    `db:"department" json:"department,omitempty"`
	Role           string    `db:"role" json:"role,omitempty"`
	Phone          string    `db:"phone" json:"phone,omitempty"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// UnassignedDepartment is the reporting bucket for users without a department.
const UnassignedDepartment = "Unassigned"

var (
	// ErrNotFound is returned when a user id does not resolve.
	ErrNotFound = errors.New("user not found")

	// ErrRateLimited is returned when user creation exceeds the rate limit.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateEmailError reports an email collision with an existing user.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return fmt.Sprintf("email already exists: %s", e.Email)
}

// DuplicateRegistrationError reports a registration-id collision.
type DuplicateRegistrationError struct {
	RegistrationID string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("registration id already exists: %s", e.RegistrationID)
}
