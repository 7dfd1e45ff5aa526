package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tandoor/internal/apperrors"
	"tandoor/internal/repositories"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// CatalogInterface is the read-only menu/recipe lookup the order flow
// depends on.
type CatalogInterface interface {
	PriceOf(name string) (models.MenuItem, error)
	ResolveDeltas(dish string, qty int) (map[string]float64, error)
}

// LedgerInterface is the slice of the inventory ledger the order flow
// needs: atomic deduction.
type LedgerInterface interface {
	Deduct(deltas map[string]float64) error
}

// EventSinkInterface receives order lifecycle notifications. Failures
// are logged, never propagated.
type EventSinkInterface interface {
	PublishOrderStatus(orderID string, tableID int, status models.OrderStatus) error
}

// OrderServiceInterface drives the order lifecycle state machine.
type OrderServiceInterface interface {
	CreateOrder(tableID int, actorID string) (*models.Order, error)
	AddLineItem(orderID, itemName string, qty int) (*models.Order, error)
	TransitionStatus(orderID string, next models.OrderStatus) (*models.Order, error)
	CancelOrder(orderID string) (*models.Order, error)
	GetOrderByID(orderID string) (*models.Order, error)
	GetAllOrders() ([]*models.Order, error)
	GetActiveByTable(tableID int) ([]*models.Order, error)
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	tableRepo repositories.TableRepositoryInterface
	catalog   CatalogInterface
	ledger    LedgerInterface
	events    EventSinkInterface
	logger    *logger.Logger
}

func NewOrderService(orderRepo repositories.OrderRepositoryInterface,
	tableRepo repositories.TableRepositoryInterface, catalog CatalogInterface,
	ledger LedgerInterface, events EventSinkInterface, log *logger.Logger,
) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		tableRepo: tableRepo,
		catalog:   catalog,
		ledger:    ledger,
		events:    events,
		logger:    log.WithComponent("order_service"),
	}
}

// CreateOrder opens a new PLACED order bound to the table. A table may
// host several concurrent orders while OCCUPIED; only a RESERVED table
// refuses walk-in orders.
func (s *OrderService) CreateOrder(tableID int, actorID string) (*models.Order, error) {
	// Bind the table in one conditional statement: AVAILABLE tables
	// become OCCUPIED, already-OCCUPIED tables accept another order.
	bound, err := s.tableRepo.SetStatusIf(tableID,
		[]models.TableStatus{models.TableAvailable, models.TableOccupied}, models.TableOccupied)
	if err != nil {
		return nil, err
	}
	if !bound {
		table, err := s.tableRepo.GetByID(tableID)
		if err != nil {
			return nil, err
		}
		s.logger.Warn("Table unavailable for new order", "table_id", tableID, "status", table.Status)
		return nil, apperrors.NewConflict("table", fmt.Sprintf("%d", tableID),
			fmt.Sprintf("unavailable for orders while %s", table.Status))
	}

	order := &models.Order{
		ID:        uuid.NewString(),
		TableID:   tableID,
		Status:    models.OrderPlaced,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.orderRepo.Add(order); err != nil {
		// The occupy above may have been the only claim on the table;
		// release it again if nothing else holds it.
		if _, freeErr := s.tableRepo.FreeIfNoActiveOrders(tableID); freeErr != nil {
			s.logger.Error("Failed to release table after order insert failure",
				"table_id", tableID, "error", freeErr)
		}
		return nil, err
	}

	s.publish(order.ID, tableID, models.OrderPlaced)
	s.logger.Info("Order created", "order_id", order.ID, "table_id", tableID, "actor", actorID)
	return order, nil
}

// AddLineItem prices the item, resolves its recipe and deducts the
// ingredients atomically, then appends the line item. A missing recipe
// aborts before the ledger is touched.
func (s *OrderService) AddLineItem(orderID, itemName string, qty int) (*models.Order, error) {
	if qty < 1 {
		return nil, apperrors.NewValidation("quantity must be at least 1, got %d", qty)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, apperrors.NewBusinessRule("cannot add items to %s order %s", order.Status, orderID)
	}

	menuItem, err := s.catalog.PriceOf(itemName)
	if err != nil {
		return nil, err
	}

	deltas, err := s.catalog.ResolveDeltas(itemName, qty)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.Deduct(deltas); err != nil {
		s.logger.Warn("Line item rejected by inventory",
			"order_id", orderID, "item", itemName, "quantity", qty, "error", err)
		return nil, err
	}

	item := &models.OrderLineItem{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		ItemName: itemName,
		Quantity: qty,
		Price:    menuItem.Price,
	}
	if err := s.orderRepo.AppendLineItem(orderID, item); err != nil {
		// Ingredients were already consumed; consistent with the
		// non-restock cancellation policy, they are not returned.
		s.logger.Error("Failed to append line item after deduction",
			"order_id", orderID, "item", itemName, "error", err)
		return nil, err
	}

	order.Items = append(order.Items, *item)
	s.logger.Info("Line item added",
		"order_id", orderID, "item", itemName, "quantity", qty, "price", menuItem.Price)
	return order, nil
}

// TransitionStatus advances the order through the lifecycle. Reaching
// a terminal status re-evaluates the bound table for release.
func (s *OrderService) TransitionStatus(orderID string, next models.OrderStatus) (*models.Order, error) {
	if !next.IsValid() {
		return nil, apperrors.NewValidation("unknown order status %q", string(next))
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, &apperrors.InvalidTransitionError{
			OrderID: orderID,
			From:    string(order.Status),
			To:      string(next),
		}
	}

	// Conditional on the status we just read; a concurrent transition
	// in between makes this a lost race, reported as an invalid move
	// from the now-current status.
	ok, err := s.orderRepo.UpdateStatusIf(orderID, order.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return nil, err
		}
		return nil, &apperrors.InvalidTransitionError{
			OrderID: orderID,
			From:    string(current.Status),
			To:      string(next),
		}
	}

	order.Status = next
	order.UpdatedAt = time.Now().UTC()

	if next.IsTerminal() {
		released, err := s.tableRepo.FreeIfNoActiveOrders(order.TableID)
		if err != nil {
			s.logger.Error("Failed to re-evaluate table release",
				"table_id", order.TableID, "error", err)
		} else if released {
			s.logger.Info("Table released after terminal order",
				"table_id", order.TableID, "order_id", orderID)
		}
	}

	s.publish(orderID, order.TableID, next)
	s.logger.Info("Order status changed", "order_id", orderID, "status", next)
	return order, nil
}

// CancelOrder is the terminal CANCELLED transition. Ingredients
// already deducted for the order are intentionally not restocked.
func (s *OrderService) CancelOrder(orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderServed {
		return nil, apperrors.NewBusinessRule("cannot cancel order %s: already served", orderID)
	}

	return s.TransitionStatus(orderID, models.OrderCancelled)
}

func (s *OrderService) GetOrderByID(orderID string) (*models.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidation("order ID is required")
	}
	return s.orderRepo.GetByID(orderID)
}

func (s *OrderService) GetAllOrders() ([]*models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetActiveByTable lists the non-terminal orders currently holding the
// table.
func (s *OrderService) GetActiveByTable(tableID int) ([]*models.Order, error) {
	if _, err := s.tableRepo.GetByID(tableID); err != nil {
		return nil, err
	}
	return s.orderRepo.GetActiveByTable(tableID)
}

func (s *OrderService) publish(orderID string, tableID int, status models.OrderStatus) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishOrderStatus(orderID, tableID, status); err != nil {
		s.logger.Warn("Failed to publish order event", "order_id", orderID, "error", err)
	}
}
