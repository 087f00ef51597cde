// internal/catalog/memory_test.go
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// memoryRepository is an in-memory Repository for tests. AdjustAvailability
// applies the same bounds the guarded SQL statement enforces.
type memoryRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]*Product
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{products: make(map[uuid.UUID]*Product)}
}

func (r *memoryRepository) Insert(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memoryRepository) Update(_ context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) FindByCode(_ context.Context, code string) (*Product, error) {
	return r.findWhere(func(p *Product) bool { return p.Code == code })
}

func (r *memoryRepository) FindBySerial(_ context.Context, serial string) (*Product, error) {
	return r.findWhere(func(p *Product) bool {
		return p.SerialNumber != nil && *p.SerialNumber == serial
	})
}

func (r *memoryRepository) findWhere(match func(*Product) bool) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r *memoryRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	_, err := r.FindBySerial(ctx, serial)
	return err == nil, nil
}

func (r *memoryRepository) AdjustAvailability(_ context.Context, id uuid.UUID, delta int) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := p.QuantityAvailable + delta
	if next < 0 || next > p.QuantityTotal {
		return nil, ErrQuantityConflict
	}
	p.QuantityAvailable = next
	cp := *p
	return &cp, nil
}

func (r *memoryRepository) Search(_ context.Context, f Filter) ([]*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Product
	for _, p := range r.products {
		if matches(p, f) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func matches(p *Product, f Filter) bool {
	if f.ActiveOnly && !p.Active {
		return false
	}
	if f.Category != "" && !strings.EqualFold(p.CategoryName, f.Category) {
		return false
	}
	if f.Brand != "" && (p.BrandName == nil || !strings.EqualFold(*p.BrandName, f.Brand)) {
		return false
	}
	if f.Model != "" && !strings.EqualFold(p.Model, f.Model) {
		return false
	}
	if f.Location != "" && (p.LocationName == nil || !strings.EqualFold(*p.LocationName, f.Location)) {
		return false
	}
	if f.Condition != "" && !strings.EqualFold(p.Condition, f.Condition) {
		return false
	}
	if f.Term != "" {
		term := strings.ToLower(f.Term)
		hit := strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Code), term) ||
			(p.SerialNumber != nil && strings.Contains(strings.ToLower(*p.SerialNumber), term))
		if !hit {
			return false
		}
	}
	if f.AvailableBelow != nil && p.QuantityAvailable >= *f.AvailableBelow {
		return false
	}
	if f.HasAvailability != nil {
		if *f.HasAvailability && p.QuantityAvailable == 0 {
			return false
		}
		if !*f.HasAvailability && p.QuantityAvailable > 0 {
			return false
		}
	}
	return true
}

func (r *memoryRepository) CountByCategory(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, p := range r.products {
		if p.Active {
			counts[p.CategoryName]++
		}
	}
	return counts, nil
}

func (r *memoryRepository) Totals(_ context.Context) (*Totals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var t Totals
	for _, p := range r.products {
		if !p.Active {
			continue
		}
		t.TotalItems += p.QuantityTotal
		t.TotalAvailable += p.QuantityAvailable
	}
	t.TotalLoaned = t.TotalItems - t.TotalAvailable
	return &t, nil
}
