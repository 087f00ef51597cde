// internal/reference/memory_test.go
package reference

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memoryRepository is an in-memory Repository for tests.
type memoryRepository struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*Entity
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{entities: make(map[uuid.UUID]*Entity)}
}

func (r *memoryRepository) Insert(_ context.Context, e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.entities[e.ID] = &cp
	return nil
}

func (r *memoryRepository) Update(_ context.Context, e *Entity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	r.entities[e.ID] = &cp
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[id]; !ok {
		return ErrNotFound
	}
	delete(r.entities, id)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *memoryRepository) FindByName(_ context.Context, name string) (*Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e.Name == name {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entities {
		if e.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]*Entity, error) {
	return r.listWhere(func(*Entity) bool { return true }), nil
}

func (r *memoryRepository) ListActive(_ context.Context) ([]*Entity, error) {
	return r.listWhere(func(e *Entity) bool { return e.Active }), nil
}

func (r *memoryRepository) ListCustom(_ context.Context) ([]*Entity, error) {
	return r.listWhere(func(e *Entity) bool { return !e.SystemDefined && e.Active }), nil
}

func (r *memoryRepository) ListSystem(_ context.Context) ([]*Entity, error) {
	return r.listWhere(func(e *Entity) bool { return e.SystemDefined }), nil
}

func (r *memoryRepository) listWhere(keep func(*Entity) bool) []*Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Entity
	for _, e := range r.entities {
		if keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
