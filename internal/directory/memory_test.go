// internal/directory/memory_test.go
package directory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// memoryRepository is an in-memory Repository for tests.
type memoryRepository struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: make(map[uuid.UUID]*User)}
}

func (r *memoryRepository) Insert(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memoryRepository) Update(_ context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	return r.findWhere(func(u *User) bool { return u.Email == email })
}

func (r *memoryRepository) FindByRegistrationID(_ context.Context, registrationID string) (*User, error) {
	return r.findWhere(func(u *User) bool {
		return u.RegistrationID != nil && *u.RegistrationID == registrationID
	})
}

func (r *memoryRepository) findWhere(match func(*User) bool) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *memoryRepository) ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error) {
	_, err := r.FindByRegistrationID(ctx, registrationID)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]*User, error) {
	return r.listWhere(func(*User) bool { return true }), nil
}

func (r *memoryRepository) ListActive(_ context.Context) ([]*User, error) {
	return r.listWhere(func(u *User) bool { return u.Active }), nil
}

func (r *memoryRepository) ListByDepartment(_ context.Context, department string) ([]*User, error) {
	return r.listWhere(func(u *User) bool {
		return u.Active && strings.EqualFold(u.Department, department)
	}), nil
}

func (r *memoryRepository) ListByRole(_ context.Context, role string) ([]*User, error) {
	return r.listWhere(func(u *User) bool {
		return u.Active && strings.EqualFold(u.Role, role)
	}), nil
}

func (r *memoryRepository) Search(_ context.Context, term string) ([]*User, error) {
	term = strings.ToLower(term)
	return r.listWhere(func(u *User) bool {
		if !u.Active {
			return false
		}
		if strings.Contains(strings.ToLower(u.Name), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			return true
		}
		return u.RegistrationID != nil &&
			strings.Contains(strings.ToLower(*u.RegistrationID), term)
	}), nil
}

func (r *memoryRepository) CountActiveByDepartment(_ context.Context) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64)
	for _, u := range r.users {
		if !u.Active {
			continue
		}
		department := u.Department
		if department == "" {
			department = UnassignedDepartment
		}
		counts[department]++
	}
	return counts, nil
}

func (r *memoryRepository) listWhere(keep func(*User) bool) []*User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*User
	for _, u := range r.users {
		if keep(u) {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
