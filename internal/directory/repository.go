// internal/directory/repository.go
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository abstracts persistence for the user directory.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByRegistrationID(ctx context.Context, registrationID string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error)
	ListAll(ctx context.Context) ([]*User, error)
	ListActive(ctx context.Context) ([]*User, error)
	ListByDepartment(ctx context.Context, department string) ([]*User, error)
	ListByRole(ctx context.Context, role string) ([]*User, error)
	Search(ctx context.Context, term string) ([]*User, error)
	CountActiveByDepartment(ctx context.Context) (map[string]int64, error)
}

// PostgresRepository persists users in the users table.
type PostgresRepository struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		tracer: otel.Tracer("equiptrack/directory"),
	}
}

func (r *PostgresRepository) Insert(ctx context.Context, u *User) error {
	ctx, span := r.tracer.Start(ctx, "directory.insert",
		trace.WithAttributes(attribute.String("user.id", u.ID.String())))
	defer span.End()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, registration_id, department, role, phone, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.Name, u.Email, u.RegistrationID, u.Department, u.Role, u.Phone, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	ctx, span := r.tracer.Start(ctx, "directory.update",
		trace.WithAttributes(attribute.String("user.id", u.ID.String())))
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $2, email = $3, registration_id = $4, department = $5,
		    role = $6, phone = $7, active = $8, updated_at = $9
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.RegistrationID, u.Department, u.Role, u.Phone, u.Active, u.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.get(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.get(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) FindByRegistrationID(ctx context.Context, registrationID string) (*User, error) {
	return r.get(ctx, `SELECT * FROM users WHERE registration_id = $1`, registrationID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	if err := r.db.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *PostgresRepository) ExistsByRegistrationID(ctx context.Context, registrationID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE registration_id = $1)`, registrationID)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*User, error) {
	return r.list(ctx, `SELECT * FROM users ORDER BY name`)
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*User, error) {
	return r.list(ctx, `SELECT * FROM users WHERE active ORDER BY name`)
}

func (r *PostgresRepository) ListByDepartment(ctx context.Context, department string) ([]*User, error) {
	return r.list(ctx, `SELECT * FROM users WHERE active AND LOWER(department) = LOWER($1) ORDER BY name`, department)
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role string) ([]*User, error) {
	return r.list(ctx, `SELECT * FROM users WHERE active AND LOWER(role) = LOWER($1) ORDER BY name`, role)
}

func (r *PostgresRepository) Search(ctx context.Context, term string) ([]*User, error) {
	pattern := "%" + term + "%"
	return r.list(ctx, `
		SELECT * FROM users
		WHERE active
		  AND (name ILIKE $1 OR email ILIKE $1 OR registration_id ILIKE $1)
		ORDER BY name`, pattern)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...interface{}) ([]*User, error) {
	var users []*User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *PostgresRepository) CountActiveByDepartment(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT department, COUNT(*)
		FROM users
		WHERE active
		GROUP BY department`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by department: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var department string
		var count int64
		if err := rows.Scan(&department, &count); err != nil {
			return nil, fmt.Errorf("failed to scan department count: %w", err)
		}
		if department == "" {
			department = UnassignedDepartment
		}
		counts[department] += count
	}
	return counts, rows.Err()
}
