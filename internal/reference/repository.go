// internal/reference/repository.go
package reference

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

// Repository abstracts persistence for one reference-entity table.
type Repository interface {
	Insert(ctx context.Context, e *Entity) error
	Update(ctx context.Context, e *Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)
	FindByName(ctx context.Context, name string) (*Entity, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	ListAll(ctx context.Context) ([]*Entity, error)
	ListActive(ctx context.Context) ([]*Entity, error)
	ListCustom(ctx context.Context) ([]*Entity, error)
	ListSystem(ctx context.Context) ([]*Entity, error)
}

var kindTables = map[Kind]string{
	KindCategory: "categories",
	KindBrand:    "brands",
	KindLocation: "locations",
}

// PostgresRepository persists reference entities in one postgres table.
type PostgresRepository struct {
	db     *sqlx.DB
	table  string
	tracer trace.Tracer
}

// NewPostgresRepository creates a repository bound to the table for kind.
func NewPostgresRepository(db *sqlx.DB, kind Kind) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		table:  kindTables[kind],
		tracer: otel.Tracer("equiptrack/reference"),
	}
}

func (r *PostgresRepository) Insert(ctx context.Context, e *Entity) error {
	ctx, span := r.tracer.Start(ctx, "reference.insert",
		trace.WithAttributes(attribute.String("table", r.table)))
	defer span.End()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, system_defined, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, r.table)
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.SystemDefined, e.Active, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, e *Entity) error {
	ctx, span := r.tracer.Start(ctx, "reference.update",
		trace.WithAttributes(attribute.String("table", r.table)))
	defer span.End()

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, active = $4, updated_at = $5
		WHERE id = $1`, r.table)
	res, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Description, e.Active, e.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "reference.delete",
		trace.WithAttributes(attribute.String("table", r.table)))
	defer span.End()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Entity, error) {
	var e Entity
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, r.table)
	if err := r.db.GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s by id: %w", r.table, err)
	}
	return &e, nil
}

func (r *PostgresRepository) FindByName(ctx context.Context, name string) (*Entity, error) {
	var e Entity
	query := fmt.Sprintf(`SELECT * FROM %s WHERE name = $1`, r.table)
	if err := r.db.GetContext(ctx, &e, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s by name: %w", r.table, err)
	}
	return &e, nil
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE name = $1)`, r.table)
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("failed to check %s name: %w", r.table, err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*Entity, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT * FROM %s ORDER BY name`, r.table))
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]*Entity, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE active ORDER BY name`, r.table))
}

func (r *PostgresRepository) ListCustom(ctx context.Context) ([]*Entity, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE NOT system_defined AND active ORDER BY name`, r.table))
}

func (r *PostgresRepository) ListSystem(ctx context.Context) ([]*Entity, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT * FROM %s WHERE system_defined ORDER BY name`, r.table))
}

func (r *PostgresRepository) list(ctx context.Context, query string) ([]*Entity, error) {
	var entities []*Entity
	if err := r.db.SelectContext(ctx, &entities, query); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.table, err)
	}
	return entities, nil
}
