// internal/catalog/service.go
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Input carries the caller-editable fields of a product. QuantityAvailable
// is honored on create only; updates always derive availability server-side.
type Input struct {
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	Code              string     `json:"code"`
	SerialNumber      *string    `json:"serial_number,omitempty"`
	CategoryID        uuid.UUID  `json:"category_id"`
	BrandID           *uuid.UUID `json:"brand_id,omitempty"`
	Model             string     `json:"model"`
	QuantityTotal     int        `json:"quantity_total"`
	QuantityAvailable *int       `json:"quantity_available,omitempty"`
	LocationID        *uuid.UUID `json:"location_id,omitempty"`
	Condition         string     `json:"condition"`
	AcquiredAt        *time.Time `json:"acquired_at,omitempty"`
	WarrantyUntil     *time.Time `json:"warranty_until,omitempty"`
	Notes             string     `json:"notes"`
}

// Service defines the interface for the product catalog and its
// availability ledger.
type Service interface {
	Create(ctx context.Context, in Input) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, in Input) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindBySerial(ctx context.Context, serial string) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListActive(ctx context.Context) ([]*Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	RegisterLoan(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	RegisterReturn(ctx context.Context, id uuid.UUID, quantity int) (*Product, error)
	CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) bool
	ListAvailable(ctx context.Context) ([]*Product, error)
	ListUnavailable(ctx context.Context) ([]*Product, error)

	FindByCategory(ctx context.Context, category string) ([]*Product, error)
	FindByBrand(ctx context.Context, brand string) ([]*Product, error)
	FindByModel(ctx context.Context, model string) ([]*Product, error)
	FindByLocation(ctx context.Context, location string) ([]*Product, error)
	FindByCondition(ctx context.Context, condition string) ([]*Product, error)
	SearchByTerm(ctx context.Context, term string) ([]*Product, error)
	FindByFilters(ctx context.Context, category, brand, condition string) ([]*Product, error)

	ListLowAvailability(ctx context.Context, minQuantity int) ([]*Product, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	Totals(ctx context.Context) (*Totals, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsBySerial(ctx context.Context, serial string) (bool, error)
}
