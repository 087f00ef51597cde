// internal/catalog/repository.go
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Repository abstracts persistence for the product catalog.
type Repository interface {
	Insert(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindBySerial(ctx context.Context, serial string) (*Product, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsBySerial(ctx context.Context, serial string) (bool, error)
	Search(ctx context.Context, f Filter) ([]*Product, error)
	// AdjustAvailability applies delta to quantity_available in one guarded
	// statement; the result must stay within [0, quantity_total]. Returns
	// ErrQuantityConflict when the guard rejects the change.
	AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*Product, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	Totals(ctx context.Context) (*Totals, error)
}

var dialect = goqu.Dialect("postgres")

const selectProduct = `
	SELECT p.id, p.name, p.description, p.code, p.serial_number,
	       p.category_id, c.name AS category_name,
	       p.brand_id, b.name AS brand_name,
	       p.model, p.quantity_total, p.quantity_available,
	       p.location_id, l.name AS location_name,
	       p.condition, p.acquired_at, p.warranty_until, p.notes,
	       p.active, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN locations l ON l.id = p.location_id`

// PostgresRepository persists products in the products table.
type PostgresRepository struct {
	db     *sqlx.DB
	tracer trace.Tracer
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		tracer: otel.Tracer("equiptrack/catalog"),
	}
}

func (r *PostgresRepository) Insert(ctx context.Context, p *Product) error {
	ctx, span := r.tracer.Start(ctx, "catalog.insert",
		trace.WithAttributes(attribute.String("product.code", p.Code)))
	defer span.End()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, name, description, code, serial_number, category_id,
		                      brand_id, model, quantity_total, quantity_available,
		                      location_id, condition, acquired_at, warranty_until,
		                      notes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.Name, p.Description, p.Code, p.SerialNumber, p.CategoryID,
		p.BrandID, p.Model, p.QuantityTotal, p.QuantityAvailable,
		p.LocationID, p.Condition, p.AcquiredAt, p.WarrantyUntil,
		p.Notes, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (r *PostgresRepository) Update(ctx context.Context, p *Product) error {
	ctx, span := r.tracer.Start(ctx, "catalog.update",
		trace.WithAttributes(attribute.String("product.id", p.ID.String())))
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, description = $3, code = $4, serial_number = $5,
		    category_id = $6, brand_id = $7, model = $8,
		    quantity_total = $9, quantity_available = $10,
		    location_id = $11, condition = $12, acquired_at = $13,
		    warranty_until = $14, notes = $15, active = $16, updated_at = $17
		WHERE id = $1`,
		p.ID, p.Name, p.Description, p.Code, p.SerialNumber,
		p.CategoryID, p.BrandID, p.Model,
		p.QuantityTotal, p.QuantityAvailable,
		p.LocationID, p.Condition, p.AcquiredAt,
		p.WarrantyUntil, p.Notes, p.Active, p.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	return r.get(ctx, selectProduct+` WHERE p.id = $1`, id)
}

func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*Product, error) {
	return r.get(ctx, selectProduct+` WHERE p.code = $1`, code)
}

func (r *PostgresRepository) FindBySerial(ctx context.Context, serial string) (*Product, error) {
	return r.get(ctx, selectProduct+` WHERE p.serial_number = $1`, serial)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg interface{}) (*Product, error) {
	var p Product
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE code = $1)`, code)
}

func (r *PostgresRepository) ExistsBySerial(ctx context.Context, serial string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE serial_number = $1)`, serial)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("failed to check product: %w", err)
	}
	return exists, nil
}

// Search builds the query dynamically from the filter; each set field adds
// one AND condition.
func (r *PostgresRepository) Search(ctx context.Context, f Filter) ([]*Product, error) {
	ctx, span := r.tracer.Start(ctx, "catalog.search")
	defer span.End()

	ds := dialect.From(goqu.T("products").As("p")).
		Select(
			"p.id", "p.name", "p.description", "p.code", "p.serial_number",
			"p.category_id", goqu.I("c.name").As("category_name"),
			"p.brand_id", goqu.I("b.name").As("brand_name"),
			"p.model", "p.quantity_total", "p.quantity_available",
			"p.location_id", goqu.I("l.name").As("location_name"),
			"p.condition", "p.acquired_at", "p.warranty_until", "p.notes",
			"p.active", "p.created_at", "p.updated_at",
		).
		Join(goqu.T("categories").As("c"), goqu.On(goqu.Ex{"c.id": goqu.I("p.category_id")})).
		LeftJoin(goqu.T("brands").As("b"), goqu.On(goqu.Ex{"b.id": goqu.I("p.brand_id")})).
		LeftJoin(goqu.T("locations").As("l"), goqu.On(goqu.Ex{"l.id": goqu.I("p.location_id")}))

	if f.ActiveOnly {
		ds = ds.Where(goqu.I("p.active").IsTrue())
	}
	if f.Category != "" {
		ds = ds.Where(goqu.L("LOWER(c.name) = LOWER(?)", f.Category))
	}
	if f.Brand != "" {
		ds = ds.Where(goqu.L("LOWER(b.name) = LOWER(?)", f.Brand))
	}
	if f.Model != "" {
		ds = ds.Where(goqu.L("LOWER(p.model) = LOWER(?)", f.Model))
	}
	if f.Location != "" {
		ds = ds.Where(goqu.L("LOWER(l.name) = LOWER(?)", f.Location))
	}
	if f.Condition != "" {
		ds = ds.Where(goqu.L("LOWER(p.condition) = LOWER(?)", f.Condition))
	}
	if f.Term != "" {
		pattern := "%" + f.Term + "%"
		ds = ds.Where(goqu.Or(
			goqu.I("p.name").ILike(pattern),
			goqu.I("p.code").ILike(pattern),
			goqu.I("p.serial_number").ILike(pattern),
		))
	}
	if f.AvailableBelow != nil {
		ds = ds.Where(goqu.I("p.quantity_available").Lt(*f.AvailableBelow))
	}
	if f.HasAvailability != nil {
		if *f.HasAvailability {
			ds = ds.Where(goqu.I("p.quantity_available").Gt(0))
		} else {
			ds = ds.Where(goqu.I("p.quantity_available").Eq(0))
		}
	}

	query, args, err := ds.Order(goqu.I("p.name").Asc()).Prepared(true).ToSQL()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	var products []*Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	span.SetAttributes(attribute.Int("result_count", len(products)))
	return products, nil
}

func (r *PostgresRepository) AdjustAvailability(ctx context.Context, id uuid.UUID, delta int) (*Product, error) {
	ctx, span := r.tracer.Start(ctx, "catalog.adjust_availability",
		trace.WithAttributes(
			attribute.String("product.id", id.String()),
			attribute.Int("delta", delta),
		))
	defer span.End()

	var updatedID uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET quantity_available = quantity_available + $2, updated_at = now()
		WHERE id = $1
		  AND quantity_available + $2 >= 0
		  AND quantity_available + $2 <= quantity_total
		RETURNING id`, id, delta).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		exists, eerr := r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id)
		if eerr != nil {
			return nil, eerr
		}
		if !exists {
			return nil, ErrNotFound
		}
		return nil, ErrQuantityConflict
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to adjust availability: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *PostgresRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, COUNT(*)
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.active
		GROUP BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count products by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var name string
		var count int64
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (r *PostgresRepository) Totals(ctx context.Context) (*Totals, error) {
	var t Totals
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity_total), 0), COALESCE(SUM(quantity_available), 0)
		FROM products
		WHERE active`).Scan(&t.TotalItems, &t.TotalAvailable)
	if err != nil {
		return nil, fmt.Errorf("failed to sum product quantities: %w", err)
	}
	t.TotalLoaned = t.TotalItems - t.TotalAvailable
	return &t, nil
}
