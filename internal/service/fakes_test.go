package service

import (
	"fmt"
	"sync"
	"time"

	"tandoor/internal/apperrors"
	"tandoor/models"
	"tandoor/pkg/logger"
)

// In-memory repository fakes. Each one guards its state with a mutex
// and mirrors the conditional-update semantics of the SQL layer, so
// service behaviour under concurrency is exercised for real.

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Format: "text"})
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *fakeOrderRepo) Add(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return apperrors.NewConflict("order", order.ID, "already exists")
	}
	clone := *order
	clone.Items = append([]models.OrderLineItem(nil), order.Items...)
	r.orders[order.ID] = &clone
	return nil
}

func (r *fakeOrderRepo) GetByID(id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NewNotFound("order", id)
	}
	clone := *order
	clone.Items = append([]models.OrderLineItem(nil), order.Items...)
	return &clone, nil
}

func (r *fakeOrderRepo) GetAll() ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, order := range r.orders {
		clone := *order
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeOrderRepo) GetActiveByTable(tableID int) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for _, order := range r.orders {
		if order.TableID == tableID && !order.Status.IsTerminal() {
			clone := *order
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) AppendLineItem(orderID string, item *models.OrderLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[orderID]
	if !ok {
		return apperrors.NewNotFound("order", orderID)
	}
	order.Items = append(order.Items, *item)
	return nil
}

func (r *fakeOrderRepo) UpdateStatusIf(id string, from, to models.OrderStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.Status != from {
		return false, nil
	}
	order.Status = to
	return true, nil
}

// activeCount reports non-terminal orders bound to a table. Used by
// the table fake to mirror the SQL NOT EXISTS guard.
func (r *fakeOrderRepo) activeCount(tableID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, order := range r.orders {
		if order.TableID == tableID && !order.Status.IsTerminal() {
			count++
		}
	}
	return count
}

type fakeTableRepo struct {
	mu     sync.Mutex
	tables map[int]*models.Table
	orders *fakeOrderRepo
}

func newFakeTableRepo(orders *fakeOrderRepo) *fakeTableRepo {
	return &fakeTableRepo{tables: make(map[int]*models.Table), orders: orders}
}

func (r *fakeTableRepo) seed(id, capacity int, status models.TableStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[id] = &models.Table{ID: id, Capacity: capacity, Status: status}
}

func (r *fakeTableRepo) Add(table *models.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[table.ID]; exists {
		return apperrors.NewConflict("table", fmt.Sprintf("%d", table.ID), "already exists")
	}
	clone := *table
	if clone.Status == "" {
		clone.Status = models.TableAvailable
	}
	r.tables[table.ID] = &clone
	return nil
}

func (r *fakeTableRepo) GetByID(id int) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[id]
	if !ok {
		return nil, apperrors.NewNotFound("table", fmt.Sprintf("%d", id))
	}
	clone := *table
	if r.orders != nil {
		clone.ActiveOrders = r.orders.activeCount(id)
	}
	return &clone, nil
}

func (r *fakeTableRepo) GetAll() ([]*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Table
	for _, table := range r.tables {
		clone := *table
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeTableRepo) FindSmallestAvailable(capacity int) (*models.Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Table
	for _, table := range r.tables {
		if table.Status != models.TableAvailable || table.Capacity < capacity {
			continue
		}
		if best == nil || table.Capacity < best.Capacity ||
			(table.Capacity == best.Capacity && table.ID < best.ID) {
			best = table
		}
	}
	if best == nil {
		return nil, apperrors.NewNotFound("available table", fmt.Sprintf("capacity>=%d", capacity))
	}
	clone := *best
	return &clone, nil
}

func (r *fakeTableRepo) SetStatusIf(id int, from []models.TableStatus, to models.TableStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[id]
	if !ok {
		return false, nil
	}
	if len(from) > 0 {
		matched := false
		for _, s := range from {
			if table.Status == s {
				matched = true
				break
			}
		}
		if !matched {
			return false, nil
		}
	}
	table.Status = to
	return true, nil
}

func (r *fakeTableRepo) FreeIfNoActiveOrders(id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[id]
	if !ok {
		return false, nil
	}
	if r.orders != nil && r.orders.activeCount(id) > 0 {
		return false, nil
	}
	table.Status = models.TableAvailable
	return true, nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking
	tables   *fakeTableRepo
}

func newFakeBookingRepo(tables *fakeTableRepo) *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]*models.Booking), tables: tables}
}

func (r *fakeBookingRepo) findConflictLocked(tableID int, start, end time.Time, buffer time.Duration) *models.Booking {
	for _, b := range r.bookings {
		if b.TableID != tableID || b.Status != models.BookingActive {
			continue
		}
		s2, e2 := b.PaddedWindow(buffer)
		if models.WindowsOverlap(start.Add(-buffer), end.Add(buffer), s2, e2) {
			return b
		}
	}
	return nil
}

func (r *fakeBookingRepo) CreateIfNoConflict(booking *models.Booking, buffer time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tables != nil {
		if _, err := r.tables.GetByID(booking.TableID); err != nil {
			return err
		}
	}
	if conflict := r.findConflictLocked(booking.TableID, booking.StartTime, booking.EndTime, buffer); conflict != nil {
		return &apperrors.BookingConflictError{TableID: booking.TableID, BookingID: conflict.ID}
	}
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) GetByID(id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, apperrors.NewNotFound("booking", id)
	}
	clone := *booking
	return &clone, nil
}

func (r *fakeBookingRepo) ListByTable(tableID int) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, booking := range r.bookings {
		if booking.TableID == tableID {
			clone := *booking
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) SetStatusIf(id string, from, to models.BookingStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}
	booking.Status = to
	return true, nil
}

type fakeInventoryRepo struct {
	mu      sync.Mutex
	entries map[string]*models.InventoryEntry
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{entries: make(map[string]*models.InventoryEntry)}
}

func (r *fakeInventoryRepo) seed(name string, qty, baseline float64, day time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = &models.InventoryEntry{Name: name, Quantity: qty, Baseline: baseline, SnapshotDate: day}
}

func (r *fakeInventoryRepo) GetAll() ([]*models.InventoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.InventoryEntry
	for _, entry := range r.entries {
		clone := *entry
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeInventoryRepo) GetByName(name string) (*models.InventoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return nil, apperrors.NewNotFound("ingredient", name)
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeInventoryRepo) DeductAtomic(deltas map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Check everything before touching anything: all or nothing.
	for name, required := range deltas {
		entry, ok := r.entries[name]
		if !ok {
			return apperrors.NewNotFound("ingredient", name)
		}
		if entry.Quantity < required {
			return &apperrors.InsufficientIngredientsError{
				Ingredient: name,
				Required:   required,
				Available:  entry.Quantity,
			}
		}
	}
	for name, required := range deltas {
		r.entries[name].Quantity -= required
	}
	return nil
}

func (r *fakeInventoryRepo) Restock(name string, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[name]
	if !ok {
		return apperrors.NewNotFound("ingredient", name)
	}
	entry.Quantity += qty
	return nil
}

func (r *fakeInventoryRepo) SeedBaseline(entries []*models.InventoryEntry, day time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.entries[entry.Name] = &models.InventoryEntry{
			Name:         entry.Name,
			Quantity:     entry.Baseline,
			Baseline:     entry.Baseline,
			SnapshotDate: day,
		}
	}
	return nil
}

func (r *fakeInventoryRepo) RestoreFromBaseline(day time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		entry.Quantity = entry.Baseline
		entry.SnapshotDate = day
	}
	return nil
}

func (r *fakeInventoryRepo) SnapshotDate() (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var min time.Time
	found := false
	for _, entry := range r.entries {
		if !found || entry.SnapshotDate.Before(min) {
			min = entry.SnapshotDate
			found = true
		}
	}
	return min, found, nil
}

type fakeEventSink struct {
	mu     sync.Mutex
	events []models.OrderStatus
}

func (f *fakeEventSink) PublishOrderStatus(orderID string, tableID int, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, status)
	return nil
}
