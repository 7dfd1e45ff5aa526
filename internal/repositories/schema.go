package repositories

import (
	"fmt"

	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

// schemaDDL creates the tables the repositories expect. Statements are
// idempotent so applying on startup is safe.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS tables (
		id INTEGER PRIMARY KEY,
		capacity INTEGER NOT NULL CHECK (capacity >= 1),
		status TEXT NOT NULL DEFAULT 'AVAILABLE'
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		table_id INTEGER NOT NULL REFERENCES tables(id),
		status TEXT NOT NULL,
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_table_status ON orders (table_id, status)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_name TEXT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity >= 1),
		price NUMERIC(10,2) NOT NULL CHECK (price > 0)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id UUID PRIMARY KEY,
		table_id INTEGER NOT NULL REFERENCES tables(id),
		guest_count INTEGER NOT NULL CHECK (guest_count >= 1),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_by TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (start_time < end_time)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_table_status ON bookings (table_id, status)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		name TEXT PRIMARY KEY,
		quantity DOUBLE PRECISION NOT NULL CHECK (quantity >= 0),
		baseline DOUBLE PRECISION NOT NULL DEFAULT 0,
		snapshot_date DATE NOT NULL
	)`,
}

// EnsureSchema applies the schema DDL on startup.
func EnsureSchema(db *database.DB, log *logger.Logger) error {
	log = log.WithComponent("schema")
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			log.Error("Failed to apply schema statement", "error", err)
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Info("Database schema ensured", "statements", len(schemaDDL))
	return nil
}
