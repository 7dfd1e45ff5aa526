package repositories

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

type InventoryRepositoryInterface interface {
	GetAll() ([]*models.InventoryEntry, error)
	GetByName(name string) (*models.InventoryEntry, error)
	DeductAtomic(deltas map[string]float64) error
	Restock(name string, qty float64) error
	SeedBaseline(entries []*models.InventoryEntry, day time.Time) error
	RestoreFromBaseline(day time.Time) error
	SnapshotDate() (time.Time, bool, error)
}

type InventoryRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewInventoryRepository(log *logger.Logger, db *database.DB) *InventoryRepository {
	return &InventoryRepository{
		logger: log.WithComponent("inventory_repository"),
		db:     db,
	}
}

func (r *InventoryRepository) GetAll() ([]*models.InventoryEntry, error) {
	query := `
		SELECT name, quantity, baseline, snapshot_date
		FROM inventory
		ORDER BY name
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query inventory", "error", err)
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var entries []*models.InventoryEntry
	for rows.Next() {
		entry := &models.InventoryEntry{}
		if err := rows.Scan(&entry.Name, &entry.Quantity, &entry.Baseline, &entry.SnapshotDate); err != nil {
			r.logger.Error("Failed to scan inventory entry", "error", err)
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %w", err)
	}

	return entries, nil
}

func (r *InventoryRepository) GetByName(name string) (*models.InventoryEntry, error) {
	query := `
		SELECT name, quantity, baseline, snapshot_date
		FROM inventory
		WHERE name = $1
	`

	entry := &models.InventoryEntry{}
	err := r.db.QueryRow(query, name).Scan(&entry.Name, &entry.Quantity, &entry.Baseline, &entry.SnapshotDate)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("ingredient", name)
		}
		r.logger.Error("Failed to retrieve inventory entry", "error", err, "name", name)
		return nil, fmt.Errorf("failed to retrieve inventory entry: %w", err)
	}

	return entry, nil
}

// DeductAtomic subtracts every delta inside one transaction. Each
// update is conditional on sufficient stock, so two concurrent deducts
// for the same ingredient can never drive the quantity negative. On
// any shortfall the whole transaction rolls back untouched.
func (r *InventoryRepository) DeductAtomic(deltas map[string]float64) error {
	if len(deltas) == 0 {
		return nil
	}

	// Fixed ingredient order keeps concurrent deductions from
	// deadlocking on each other's row locks.
	names := make([]string, 0, len(deltas))
	for name := range deltas {
		names = append(names, name)
	}
	sort.Strings(names)

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		for _, name := range names {
			required := deltas[name]

			result, err := tx.Exec(`
				UPDATE inventory
				SET quantity = quantity - $2
				WHERE name = $1 AND quantity >= $2
			`, name, required)
			if err != nil {
				return fmt.Errorf("failed to deduct ingredient %q: %w", name, err)
			}

			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected for %q: %w", name, err)
			}
			if affected == 0 {
				var available float64
				err := tx.QueryRow(`SELECT quantity FROM inventory WHERE name = $1`, name).Scan(&available)
				if err == sql.ErrNoRows {
					return apperrors.NewNotFound("ingredient", name)
				}
				if err != nil {
					return fmt.Errorf("failed to read quantity for %q: %w", name, err)
				}
				return &apperrors.InsufficientIngredientsError{
					Ingredient: name,
					Required:   required,
					Available:  available,
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Debug("Deducted ingredients", "count", len(deltas))
	return nil
}

func (r *InventoryRepository) Restock(name string, qty float64) error {
	result, err := r.db.Exec(`
		UPDATE inventory
		SET quantity = quantity + $2
		WHERE name = $1
	`, name, qty)
	if err != nil {
		r.logger.Error("Failed to restock ingredient", "error", err, "name", name)
		return fmt.Errorf("failed to restock ingredient: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFound("ingredient", name)
	}

	r.logger.Info("Restocked ingredient", "name", name, "added", qty)
	return nil
}

// SeedBaseline upserts baseline rows and resets the live quantity to
// the baseline value, stamping the given business day.
func (r *InventoryRepository) SeedBaseline(entries []*models.InventoryEntry, day time.Time) error {
	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		for _, entry := range entries {
			_, err := tx.Exec(`
				INSERT INTO inventory (name, quantity, baseline, snapshot_date)
				VALUES ($1, $2, $2, $3)
				ON CONFLICT (name) DO UPDATE
				SET quantity = EXCLUDED.quantity,
				    baseline = EXCLUDED.baseline,
				    snapshot_date = EXCLUDED.snapshot_date
			`, entry.Name, entry.Baseline, day)
			if err != nil {
				return fmt.Errorf("failed to seed ingredient %q: %w", entry.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Seeded inventory baseline", "entries", len(entries), "day", day.Format("2006-01-02"))
	return nil
}

// RestoreFromBaseline overwrites every live quantity with the baseline
// value and re-stamps the snapshot date.
func (r *InventoryRepository) RestoreFromBaseline(day time.Time) error {
	result, err := r.db.Exec(`
		UPDATE inventory
		SET quantity = baseline, snapshot_date = $1
	`, day)
	if err != nil {
		r.logger.Error("Failed to restore inventory from baseline", "error", err)
		return fmt.Errorf("failed to restore inventory from baseline: %w", err)
	}

	affected, _ := result.RowsAffected()
	r.logger.Info("Restored inventory from baseline", "entries", affected, "day", day.Format("2006-01-02"))
	return nil
}

// SnapshotDate returns the business day the ledger currently belongs
// to. The second return is false when the inventory table is empty.
func (r *InventoryRepository) SnapshotDate() (time.Time, bool, error) {
	var date sql.NullTime
	err := r.db.QueryRow(`SELECT MIN(snapshot_date) FROM inventory`).Scan(&date)
	if err != nil {
		r.logger.Error("Failed to read snapshot date", "error", err)
		return time.Time{}, false, fmt.Errorf("failed to read snapshot date: %w", err)
	}
	if !date.Valid {
		return time.Time{}, false, nil
	}
	return date.Time, true, nil
}
