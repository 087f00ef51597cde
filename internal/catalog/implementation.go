// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// service implements the Service interface.
type service struct {
	repo    Repository
	loans   metric.Int64Counter
	returns metric.Int64Counter
}

// NewService creates a new catalog service instance.
func NewService(repo Repository) Service {
	meter := otel.Meter("equiptrack/catalog")

	loans, err := meter.Int64Counter("catalog.loans",
		metric.WithDescription("Units loaned out."),
		metric.WithUnit("{item}"))
	if err != nil {
		log.Printf("failed to create loans counter: %v", err)
	}
	returns, err := meter.Int64Counter("catalog.returns",
		metric.WithDescription("Units returned."),
		metric.WithUnit("{item}"))
	if err != nil {
		log.Printf("failed to create returns counter: %v", err)
	}

	return &service{repo: repo, loans: loans, returns: returns}
}

func (s *service) Create(ctx context.Context, in Input) (*Product, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	if err := s.checkCodeUnique(ctx, strings.TrimSpace(in.Code)); err != nil {
		return nil, err
	}
	if serial := serialOf(in.SerialNumber); serial != "" {
		if err := s.checkSerialUnique(ctx, serial); err != nil {
			return nil, err
		}
	}

	available := in.QuantityTotal
	if in.QuantityAvailable != nil {
		available = *in.QuantityAvailable
		if available < 0 || available > in.QuantityTotal {
			return nil, &ValidationError{Reason: "available quantity must be between zero and the total quantity"}
		}
	}

	now := time.Now().UTC()
	product := &Product{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		Code:              strings.TrimSpace(in.Code),
		SerialNumber:      normalizeSerial(in.SerialNumber),
		CategoryID:        in.CategoryID,
		BrandID:           in.BrandID,
		Model:             in.Model,
		QuantityTotal:     in.QuantityTotal,
		QuantityAvailable: available,
		LocationID:        in.LocationID,
		Condition:         in.Condition,
		AcquiredAt:        in.AcquiredAt,
		WarrantyUntil:     in.WarrantyUntil,
		Notes:             in.Notes,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to insert product: %w", err)
	}

	// Re-read to pick up the joined reference names.
	return s.repo.FindByID(ctx, product.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (*Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validate(in); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.Code)
	if code != product.Code {
		if err := s.checkCodeUnique(ctx, code); err != nil {
			return nil, err
		}
	}
	if serial := serialOf(in.SerialNumber); serial != "" && serial != serialOf(product.SerialNumber) {
		if err := s.checkSerialUnique(ctx, serial); err != nil {
			return nil, err
		}
	}

	product.Name = strings.TrimSpace(in.Name)
	product.Description = in.Description
	product.Code = code
	product.SerialNumber = normalizeSerial(in.SerialNumber)
	product.CategoryID = in.CategoryID
	product.BrandID = in.BrandID
	product.Model = in.Model
	product.QuantityTotal = in.QuantityTotal
	product.LocationID = in.LocationID
	product.Condition = in.Condition
	product.AcquiredAt = in.AcquiredAt
	product.WarrantyUntil = in.WarrantyUntil
	product.Notes = in.Notes
	product.UpdatedAt = time.Now().UTC()

	// A capacity shrink can never leave more available than total. The
	// stored availability is authoritative; client input is ignored here.
	if product.QuantityAvailable > product.QuantityTotal {
		product.QuantityAvailable = product.QuantityTotal
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByCode(ctx context.Context, code string) (*Product, error) {
	return s.repo.FindByCode(ctx, code)
}

func (s *service) FindBySerial(ctx context.Context, serial string) (*Product, error) {
	return s.repo.FindBySerial(ctx, serial)
}

func (s *service) ListAll(ctx context.Context) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{})
}

func (s *service) ListActive(ctx context.Context) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true})
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	// Deactivation hides the product from default listings; quantities are
	// left untouched.
	product.Active = false
	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to deactivate product: %w", err)
	}
	return nil
}

// RegisterLoan removes quantity units from availability. The final bound
// check happens inside a guarded single-statement update, so two concurrent
// loans cannot both pass it.
func (s *service) RegisterLoan(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Reason: "quantity must be greater than zero"}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, &ValidationError{Reason: "product is inactive"}
	}
	if product.QuantityAvailable < quantity {
		return nil, &InsufficientAvailabilityError{
			Available: product.QuantityAvailable,
			Requested: quantity,
		}
	}

	updated, err := s.repo.AdjustAvailability(ctx, id, -quantity)
	if errors.Is(err, ErrQuantityConflict) {
		if current, ferr := s.repo.FindByID(ctx, id); ferr == nil {
			return nil, &InsufficientAvailabilityError{
				Available: current.QuantityAvailable,
				Requested: quantity,
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if s.loans != nil {
		s.loans.Add(ctx, int64(quantity))
	}
	return updated, nil
}

// RegisterReturn puts quantity units back into availability, never above the
// total quantity.
func (s *service) RegisterReturn(ctx context.Context, id uuid.UUID, quantity int) (*Product, error) {
	if quantity <= 0 {
		return nil, &ValidationError{Reason: "quantity must be greater than zero"}
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.QuantityAvailable+quantity > product.QuantityTotal {
		return nil, &OverReturnError{
			Total:     product.QuantityTotal,
			Resulting: product.QuantityAvailable + quantity,
		}
	}

	updated, err := s.repo.AdjustAvailability(ctx, id, quantity)
	if errors.Is(err, ErrQuantityConflict) {
		if current, ferr := s.repo.FindByID(ctx, id); ferr == nil {
			return nil, &OverReturnError{
				Total:     current.QuantityTotal,
				Resulting: current.QuantityAvailable + quantity,
			}
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if s.returns != nil {
		s.returns.Add(ctx, int64(quantity))
	}
	return updated, nil
}

// CheckAvailability reports whether the product exists, is active and has at
// least quantity units available. It never returns an error.
func (s *service) CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) bool {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false
	}
	return product.Active && product.QuantityAvailable >= quantity
}

func (s *service) ListAvailable(ctx context.Context) ([]*Product, error) {
	yes := true
	return s.repo.Search(ctx, Filter{ActiveOnly: true, HasAvailability: &yes})
}

func (s *service) ListUnavailable(ctx context.Context) ([]*Product, error) {
	no := false
	return s.repo.Search(ctx, Filter{ActiveOnly: true, HasAvailability: &no})
}

func (s *service) FindByCategory(ctx context.Context, category string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Category: category})
}

func (s *service) FindByBrand(ctx context.Context, brand string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Brand: brand})
}

func (s *service) FindByModel(ctx context.Context, model string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Model: model})
}

func (s *service) FindByLocation(ctx context.Context, location string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Location: location})
}

func (s *service) FindByCondition(ctx context.Context, condition string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Condition: condition})
}

// SearchByTerm matches the term case-insensitively against name, code and
// serial number of active products. A blank term lists all active products.
func (s *service) SearchByTerm(ctx context.Context, term string) ([]*Product, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListActive(ctx)
	}
	return s.repo.Search(ctx, Filter{ActiveOnly: true, Term: term})
}

// FindByFilters combines the category, brand and condition filters; empty
// values leave the corresponding field unconstrained.
func (s *service) FindByFilters(ctx context.Context, category, brand, condition string) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{
		ActiveOnly: true,
		Category:   category,
		Brand:      brand,
		Condition:  condition,
	})
}

func (s *service) ListLowAvailability(ctx context.Context, minQuantity int) ([]*Product, error) {
	return s.repo.Search(ctx, Filter{ActiveOnly: true, AvailableBelow: &minQuantity})
}

func (s *service) CountByCategory(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountByCategory(ctx)
}

func (s *service) Totals(ctx context.Context) (*Totals, error) {
	return s.repo.Totals(ctx)
}

func (s *service) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return s.repo.ExistsByCode(ctx, code)
}

func (s *service) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	return s.repo.ExistsBySerial(ctx, serial)
}

func (s *service) checkCodeUnique(ctx context.Context, code string) error {
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to check code: %w", err)
	}
	if exists {
		return &DuplicateCodeError{Code: code}
	}
	return nil
}

func (s *service) checkSerialUnique(ctx context.Context, serial string) error {
	exists, err := s.repo.ExistsBySerial(ctx, serial)
	if err != nil {
		return fmt.Errorf("failed to check serial number: %w", err)
	}
	if exists {
		return &DuplicateSerialError{SerialNumber: serial}
	}
	return nil
}

func validate(in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &ValidationError{Reason: "product name is required"}
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return &ValidationError{Reason: "product name must be between 3 and 100 characters"}
	}
	if utf8.RuneCountInString(in.Description) > 500 {
		return &ValidationError{Reason: "description must be at most 500 characters"}
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		return &ValidationError{Reason: "product code is required"}
	}
	if n := utf8.RuneCountInString(code); n < 3 || n > 50 {
		return &ValidationError{Reason: "product code must be between 3 and 50 characters"}
	}

	if in.CategoryID == uuid.Nil {
		return &ValidationError{Reason: "category is required"}
	}
	if in.QuantityTotal < 0 {
		return &ValidationError{Reason: "total quantity must be zero or greater"}
	}

	return nil
}

func serialOf(serial *string) string {
	if serial == nil {
		return ""
	}
	return strings.TrimSpace(*serial)
}

func normalizeSerial(serial *string) *string {
	v := serialOf(serial)
	if v == "" {
		return nil
	}
	return &v
}
