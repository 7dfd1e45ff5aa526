package models

import "time"

// OrderStatus represents the kitchen-workflow state of an order.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "PLACED"
	OrderInKitchen OrderStatus = "IN_KITCHEN"
	OrderServed    OrderStatus = "SERVED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// allowedTransitions is the full order lifecycle. SERVED and CANCELLED
// are terminal and have no outgoing edges.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:    {OrderInKitchen, OrderCancelled},
	OrderInKitchen: {OrderServed, OrderCancelled},
	OrderServed:    {},
	OrderCancelled: {},
}

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPlaced, OrderInKitchen, OrderServed, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether an order in this status can never change again.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderServed || s == OrderCancelled
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a single customer order bound to a table.
type Order struct {
	ID        string          `json:"order_id" db:"id"`
	TableID   int             `json:"table_id" db:"table_id"`
	Status    OrderStatus     `json:"status" db:"status"`
	Items     []OrderLineItem `json:"items"`
	CreatedBy string          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalAmount sums price * quantity over all line items.
func (o *Order) TotalAmount() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// OrderLineItem is one menu item entry within an order. Price is the
// catalog price captured at the time the item was added.
type OrderLineItem struct {
	ID       string  `json:"id,omitempty" db:"id"`
	OrderID  string  `json:"order_id,omitempty" db:"order_id"`
	ItemName string  `json:"item_name" db:"item_name"`
	Quantity int     `json:"quantity" db:"quantity"`
	Price    float64 `json:"price" db:"price"`
}
