// internal/postgres/postgres.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Open connects to the database and verifies the connection.
func Open(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// Migrate creates the schema if it does not exist yet. Safe to re-run.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id             uuid PRIMARY KEY,
		name           text NOT NULL UNIQUE,
		description    text NOT NULL DEFAULT '',
		system_defined boolean NOT NULL DEFAULT false,
		active         boolean NOT NULL DEFAULT true,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id             uuid PRIMARY KEY,
		name           text NOT NULL UNIQUE,
		description    text NOT NULL DEFAULT '',
		system_defined boolean NOT NULL DEFAULT false,
		active         boolean NOT NULL DEFAULT true,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS locations (
		id             uuid PRIMARY KEY,
		name           text NOT NULL UNIQUE,
		description    text NOT NULL DEFAULT '',
		system_defined boolean NOT NULL DEFAULT false,
		active         boolean NOT NULL DEFAULT true,
		created_at     timestamptz NOT NULL DEFAULT now(),
		updated_at     timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id              uuid PRIMARY KEY,
		name            text NOT NULL,
		email           text NOT NULL UNIQUE,
		registration_id text UNIQUE,
		department      text NOT NULL DEFAULT '',
		role            text NOT NULL DEFAULT '',
		phone           text NOT NULL DEFAULT '',
		active          boolean NOT NULL DEFAULT true,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id                 uuid PRIMARY KEY,
		name               text NOT NULL,
		description        text NOT NULL DEFAULT '',
		code               text NOT NULL UNIQUE,
		serial_number      text UNIQUE,
		category_id        uuid NOT NULL REFERENCES categories (id),
		brand_id           uuid REFERENCES brands (id),
		model              text NOT NULL DEFAULT '',
		quantity_total     integer NOT NULL CHECK (quantity_total >= 0),
		quantity_available integer NOT NULL,
		location_id        uuid REFERENCES locations (id),
		condition          text NOT NULL DEFAULT '',
		acquired_at        timestamptz,
		warranty_until     timestamptz,
		notes              text NOT NULL DEFAULT '',
		active             boolean NOT NULL DEFAULT true,
		created_at         timestamptz NOT NULL DEFAULT now(),
		updated_at         timestamptz NOT NULL DEFAULT now(),
		CHECK (quantity_available >= 0 AND quantity_available <= quantity_total)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_products_active ON products (active)`,
	`CREATE INDEX IF NOT EXISTS idx_users_active ON users (active)`,
}
