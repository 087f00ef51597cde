// internal/directory/implementation.go
package directory

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// service implements the Service interface.
type service struct {
	repo        Repository
	rateLimiter *rate.Limiter
}

// NewService creates a new user-directory service instance.
func NewService(repo Repository) Service {
	return &service{
		repo:        repo,
		rateLimiter: rate.NewLimiter(rate.Every(12*time.Second), 5),
	}
}

func (s *service) Create(ctx context.Context, in Input) (*User, error) {
	if !s.rateLimiter.Allow() {
		return nil, ErrRateLimited
	}

	if err := validate(in); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, &DuplicateEmailError{Email: in.Email}
	}

	if reg := registrationOf(in.RegistrationID); reg != "" {
		exists, err := s.repo.ExistsByRegistrationID(ctx, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to check registration id: %w", err)
		}
		if exists {
			return nil, &DuplicateRegistrationError{RegistrationID: reg}
		}
	}

	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		RegistrationID: normalizeRegistration(in.RegistrationID),
		Department:     in.Department,
		Role:           in.Role,
		Phone:          in.Phone,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, in Input) (*User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validate(in); err != nil {
		return nil, err
	}

	// Uniqueness is re-checked only when the value actually changes, so a
	// user can always be saved with their own current email.
	email := strings.TrimSpace(in.Email)
	if email != user.Email {
		exists, err := s.repo.ExistsByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if exists {
			return nil, &DuplicateEmailError{Email: email}
		}
	}

	if reg := registrationOf(in.RegistrationID); reg != "" && reg != registrationOf(user.RegistrationID) {
		exists, err := s.repo.ExistsByRegistrationID(ctx, reg)
		if err != nil {
			return nil, fmt.Errorf("failed to check registration id: %w", err)
		}
		if exists {
			return nil, &DuplicateRegistrationError{RegistrationID: reg}
		}
	}

	user.Name = strings.TrimSpace(in.Name)
	user.Email = email
	user.RegistrationID = normalizeRegistration(in.RegistrationID)
	user.Department = in.Department
	user.Role = in.Role
	user.Phone = in.Phone
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *service) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *service) FindByRegistrationID(ctx context.Context, registrationID string) (*User, error) {
	return s.repo.FindByRegistrationID(ctx, registrationID)
}

func (s *service) ListAll(ctx context.Context) ([]*User, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]*User, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListByDepartment(ctx context.Context, department string) ([]*User, error) {
	return s.repo.ListByDepartment(ctx, department)
}

func (s *service) ListByRole(ctx context.Context, role string) ([]*User, error) {
	return s.repo.ListByRole(ctx, role)
}

// Search matches the term case-insensitively against name, email and
// registration id of active users. A blank term lists all active users.
func (s *service) Search(ctx context.Context, term string) ([]*User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.repo.ListActive(ctx)
	}
	return s.repo.Search(ctx, term)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user.Active = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (s *service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.repo.ExistsByEmail(ctx, email)
}

func (s *service) ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error) {
	return s.repo.ExistsByRegistrationID(ctx, registrationID)
}

func (s *service) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	return s.repo.CountActiveByDepartment(ctx)
}

func (s *service) CountUsers(ctx context.Context) (map[string]int, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	active := 0
	for _, u := range users {
		if u.Active {
			active++
		}
	}

	return map[string]int{
		"totalUsers":    len(users),
		"totalActive":   active,
		"totalInactive": len(users) - active,
	}, nil
}

func validate(in Input) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return &ValidationError{Reason: "user name is required"}
	}
	if n := utf8.RuneCountInString(name); n < 3 || n > 100 {
		return &ValidationError{Reason: "user name must be between 3 and 100 characters"}
	}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		return &ValidationError{Reason: "email is required"}
	}
	if !strings.Contains(email, "@") {
		return &ValidationError{Reason: "invalid email"}
	}

	return nil
}

func registrationOf(reg *string) string {
	if reg == nil {
		return ""
	}
	return strings.TrimSpace(*reg)
}

func normalizeRegistration(reg *string) *string {
	v := registrationOf(reg)
	if v == "" {
		return nil
	}
	return &v
}
