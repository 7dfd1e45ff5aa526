package repositories

import (
	"database/sql"
	"fmt"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

type OrderRepositoryInterface interface {
	Add(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetAll() ([]*models.Order, error)
	GetActiveByTable(tableID int) ([]*models.Order, error)
	AppendLineItem(orderID string, item *models.OrderLineItem) error
	UpdateStatusIf(id string, from, to models.OrderStatus) (bool, error)
}

type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(log *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: log.WithComponent("order_repository"),
		db:     db,
	}
}

func (r *OrderRepository) Add(order *models.Order) error {
	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO orders (id, table_id, status, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, NOW(), NOW())
		`, order.ID, order.TableID, order.Status, order.CreatedBy)
		if err != nil {
			return fmt.Errorf("failed to insert order: %w", err)
		}

		for _, item := range order.Items {
			_, err := tx.Exec(`
				INSERT INTO order_items (id, order_id, item_name, quantity, price)
				VALUES ($1, $2, $3, $4, $5)
			`, item.ID, order.ID, item.ItemName, item.Quantity, item.Price)
			if err != nil {
				return fmt.Errorf("failed to insert order item %q: %w", item.ItemName, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to add order", "error", err, "order_id", order.ID)
		return err
	}

	r.logger.Info("Added order", "order_id", order.ID, "table_id", order.TableID)
	return nil
}

func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	order := &models.Order{}
	err := r.db.QueryRow(`
		SELECT id, table_id, status, created_by, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.TableID, &order.Status, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewNotFound("order", id)
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	items, err := r.lineItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) GetAll() ([]*models.Order, error) {
	return r.queryOrders(`
		SELECT id, table_id, status, created_by, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
	`)
}

// GetActiveByTable returns the non-terminal orders bound to a table.
func (r *OrderRepository) GetActiveByTable(tableID int) ([]*models.Order, error) {
	return r.queryOrders(`
		SELECT id, table_id, status, created_by, created_at, updated_at
		FROM orders
		WHERE table_id = $1 AND status IN ('PLACED', 'IN_KITCHEN')
		ORDER BY created_at
	`, tableID)
}

func (r *OrderRepository) AppendLineItem(orderID string, item *models.OrderLineItem) error {
	result, err := r.db.Exec(`
		INSERT INTO order_items (id, order_id, item_name, quantity, price)
		SELECT $1, $2, $3, $4, $5
		WHERE EXISTS (SELECT 1 FROM orders WHERE id = $2)
	`, item.ID, orderID, item.ItemName, item.Quantity, item.Price)
	if err != nil {
		r.logger.Error("Failed to append line item", "error", err, "order_id", orderID)
		return fmt.Errorf("failed to append line item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return apperrors.NewNotFound("order", orderID)
	}

	r.logger.Debug("Appended line item", "order_id", orderID, "item", item.ItemName, "quantity", item.Quantity)
	return nil
}

// UpdateStatusIf moves the order from one exact status to another in a
// single conditional statement. Returns false when the order was not
// in the expected status, which callers translate into either a
// lifecycle violation or a lost race.
func (r *OrderRepository) UpdateStatusIf(id string, from, to models.OrderStatus) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *OrderRepository) queryOrders(query string, args ...interface{}) ([]*models.Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.TableID, &order.Status, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for _, order := range orders {
		items, err := r.lineItems(order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *OrderRepository) lineItems(orderID string) ([]models.OrderLineItem, error) {
	rows, err := r.db.Query(`
		SELECT id, order_id, item_name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY item_name
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderLineItem
	for rows.Next() {
		var item models.OrderLineItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ItemName, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %w", err)
	}
	return items, nil
}
