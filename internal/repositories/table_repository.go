package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

type TableRepositoryInterface interface {
	Add(table *models.Table) error
	GetByID(id int) (*models.Table, error)
	GetAll() ([]*models.Table, error)
	FindSmallestAvailable(capacity int) (*models.Table, error)
	SetStatusIf(id int, from []models.TableStatus, to models.TableStatus) (bool, error)
	FreeIfNoActiveOrders(id int) (bool, error)
}

type TableRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewTableRepository(log *logger.Logger, db *database.DB) *TableRepository {
	return &TableRepository{
		logger: log.WithComponent("table_repository"),
		db:     db,
	}
}

// selectTable joins the live non-terminal order count onto each row so
// callers always see occupancy as a reference count, not a boolean.
const selectTable = `
	SELECT t.id, t.capacity, t.status,
	       (SELECT COUNT(*) FROM orders o
	        WHERE o.table_id = t.id AND o.status IN ('PLACED', 'IN_KITCHEN')) AS active_orders
	FROM tables t
`

func (r *TableRepository) Add(table *models.Table) error {
	if table.Capacity < 1 {
		return apperrors.NewValidation("table capacity must be at least 1, got %d", table.Capacity)
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}

	_, err := r.db.Exec(`
		INSERT INTO tables (id, capacity, status)
		VALUES ($1, $2, $3)
	`, table.ID, table.Capacity, table.Status)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return apperrors.NewConflict("table", fmt.Sprintf("%d", table.ID), "already exists")
		}
		r.logger.Error("Failed to add table", "error", err, "table_id", table.ID)
		return fmt.Errorf("failed to add table: %w", err)
	}

	r.logger.Info("Added table", "table_id", table.ID, "capacity", table.Capacity)
	return nil
}

func (r *TableRepository) GetByID(id int) (*models.Table, error) {
	table := &models.Table{}
	err := r.db.QueryRow(selectTable+` WHERE t.id = $1`, id).
		Scan(&table.ID, &table.Capacity, &table.Status, &table.ActiveOrders)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("table", fmt.Sprintf("%d", id))
		}
		r.logger.Error("Failed to retrieve table", "error", err, "table_id", id)
		return nil, fmt.Errorf("failed to retrieve table: %w", err)
	}
	return table, nil
}

func (r *TableRepository) GetAll() ([]*models.Table, error) {
	rows, err := r.db.Query(selectTable + ` ORDER BY t.id`)
	if err != nil {
		r.logger.Error("Failed to query tables", "error", err)
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		table := &models.Table{}
		if err := rows.Scan(&table.ID, &table.Capacity, &table.Status, &table.ActiveOrders); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating table rows: %w", err)
	}

	return tables, nil
}

// FindSmallestAvailable returns the AVAILABLE table with the smallest
// capacity meeting the requirement, ties broken by lowest id.
func (r *TableRepository) FindSmallestAvailable(capacity int) (*models.Table, error) {
	table := &models.Table{}
	err := r.db.QueryRow(selectTable+`
		WHERE t.status = 'AVAILABLE' AND t.capacity >= $1
		ORDER BY t.capacity, t.id
		LIMIT 1
	`, capacity).Scan(&table.ID, &table.Capacity, &table.Status, &table.ActiveOrders)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("available table", fmt.Sprintf("capacity>=%d", capacity))
		}
		r.logger.Error("Failed to find available table", "error", err, "capacity", capacity)
		return nil, fmt.Errorf("failed to find available table: %w", err)
	}
	return table, nil
}

// SetStatusIf moves the table to status to, but only while the current
// status is one of from; an empty from list means unconditional. The
// check and the write are a single statement, so concurrent callers
// cannot interleave between them. Returns false when the condition did
// not hold.
func (r *TableRepository) SetStatusIf(id int, from []models.TableStatus, to models.TableStatus) (bool, error) {
	var result sql.Result
	var err error

	if len(from) == 0 {
		result, err = r.db.Exec(`UPDATE tables SET status = $2 WHERE id = $1`, id, to)
	} else {
		states := make([]string, len(from))
		for i, s := range from {
			states[i] = string(s)
		}
		result, err = r.db.Exec(`
			UPDATE tables SET status = $2
			WHERE id = $1 AND status = ANY($3)
		`, id, to, pq.Array(states))
	}
	if err != nil {
		r.logger.Error("Failed to update table status", "error", err, "table_id", id)
		return false, fmt.Errorf("failed to update table status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

// FreeIfNoActiveOrders releases the table only while no non-terminal
// order references it. The NOT EXISTS guard runs in the same statement
// as the update, closing the race with a concurrent order placement.
func (r *TableRepository) FreeIfNoActiveOrders(id int) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE tables SET status = 'AVAILABLE'
		WHERE id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM orders
			WHERE table_id = $1 AND status IN ('PLACED', 'IN_KITCHEN')
		  )
	`, id)
	if err != nil {
		r.logger.Error("Failed to free table", "error", err, "table_id", id)
		return false, fmt.Errorf("failed to free table: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if affected > 0 {
		r.logger.Info("Table released", "table_id", id)
	}
	return affected > 0, nil
}
