// internal/catalog/domain.go
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Product is an equipment record with an availability ledger. The invariant
// 0 <= QuantityAvailable <= QuantityTotal holds at all times; loans and
// returns are the only operations that move QuantityAvailable, and shrinking
// QuantityTotal clamps QuantityAvailable down to it.
type Product struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Description       string     `db:"description" json:"description,omitempty"`
	Code              string     `db:"code" json:"code"`
	SerialNumber      *string    `db:"serial_number" json:"serial_number,omitempty"`
	CategoryID        uuid.UUID  `db:"category_id" json:"category_id"`
	CategoryName      string     `db:"category_name" json:"category_name"`
	BrandID           *uuid.UUID `db:"brand_id" json:"brand_id,omitempty"`
	BrandName         *string    `db:"brand_name" json:"brand_name,omitempty"`
	Model             string     `db:"model" json:"model,omitempty"`
	QuantityTotal     int        `db:"quantity_total" json:"quantity_total"`
	QuantityAvailable int        `db:"quantity_available" json:"quantity_available"`
	LocationID        *uuid.UUID `db:"location_id" json:"location_id,omitempty"`
	LocationName      *string    `db:"location_name" json:"location_name,omitempty"`
	Condition         string     `db:"condition" json:"condition,omitempty"`
	AcquiredAt        *time.Time `db:"acquired_at" json:"acquired_at,omitempty"`
	WarrantyUntil     *time.Time `db:"warranty_until" json:"warranty_until,omitempty"`
	Notes             string     `db:"notes" json:"notes,omitempty"`
	Active            bool       `db:"active" json:"active"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// Condition states. Stored as free text; these are the values the reference
// frontend offers.
const (
	ConditionNew          = "NEW"
	ConditionExcellent    = "EXCELLENT"
	ConditionGood         = "GOOD"
	ConditionRegular      = "REGULAR"
	ConditionPoor         = "POOR"
	ConditionOutOfService = "OUT_OF_SERVICE"
)

// Totals is the inventory-wide quantity summary over active products.
type Totals struct {
	TotalItems     int `json:"totalItems"`
	TotalAvailable int `json:"totalAvailable"`
	TotalLoaned    int `json:"totalLoaned"`
}

// Filter describes a product query. Zero-valued fields do not constrain.
type Filter struct {
	Category       string
	Brand          string
	Model          string
	Location       string
	Condition      string
	Term           string
	ActiveOnly     bool
	AvailableBelow *int
	// HasAvailability selects products with available > 0 (true) or == 0 (false).
	HasAvailability *bool
}

var (
	// ErrNotFound is returned when a product id, code or serial does not resolve.
	ErrNotFound = errors.New("product not found")

	// ErrQuantityConflict is returned by the repository when a guarded
	// availability adjustment finds the row changed under it.
	ErrQuantityConflict = errors.New("availability changed concurrently")
)

// ValidationError reports a missing or malformed field, or a business-rule
// precondition failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DuplicateCodeError reports an asset-code collision with another product.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("code already exists: %s", e.Code)
}

// DuplicateSerialError reports a serial-number collision with another product.
type DuplicateSerialError struct {
	SerialNumber string
}

func (e *DuplicateSerialError) Error() string {
	return fmt.Sprintf("serial number already exists: %s", e.SerialNumber)
}

// InsufficientAvailabilityError reports a loan request that exceeds the
// available quantity.
type InsufficientAvailabilityError struct {
	Available int
	Requested int
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("insufficient availability: available %d, requested %d", e.Available, e.Requested)
}

// OverReturnError reports a return that would push availability above the
// total quantity.
type OverReturnError struct {
	Total     int
	Resulting int
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("return exceeds total quantity: total %d, would become %d", e.Total, e.Resulting)
}
