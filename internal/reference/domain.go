// internal/reference/domain.go
package reference

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind names the reference-entity flavor an Entity belongs to. Categories,
// brands and locations share one shape and one lifecycle.
type Kind string

const (
	KindCategory Kind = "category"
	KindBrand    Kind = "brand"
	KindLocation Kind = "location"
)

// Entity is a named, soft-deletable catalog reference record. System-defined
// entities are seeded at startup and cannot be edited or deleted.
type Entity struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description,omitempty"`
	SystemDefined bool      `db:"system_defined" json:"system_defined"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// SystemCategories is the fixed list seeded once at process start.
var SystemCategories = []string{
	"Notebook", "Desktop", "Monitor", "Keyboard", "Mouse",
	"Printer", "Scanner", "Server", "Router", "Switch",
	"Software", "License", "Component", "Peripheral", "Other",
}

// ErrNotFound is returned when an entity id or name does not resolve.
var ErrNotFound = errors.New("reference entity not found")

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateNameError reports a name collision with an existing entity.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("name already exists: %s", e.Name)
}
