package models

// TableStatus represents the seating state of a table.
type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableReserved  TableStatus = "RESERVED"
	TableOccupied  TableStatus = "OCCUPIED"
)

// IsValid reports whether s is a known table status.
func (s TableStatus) IsValid() bool {
	switch s {
	case TableAvailable, TableReserved, TableOccupied:
		return true
	}
	return false
}

// Table is one physical table in the dining room. ActiveOrders is the
// number of non-terminal orders currently bound to the table; the table
// is released only once it drops back to zero.
type Table struct {
	ID           int         `json:"table_id" db:"id"`
	Capacity     int         `json:"capacity" db:"capacity"`
	Status       TableStatus `json:"status" db:"status"`
	ActiveOrders int         `json:"active_orders" db:"active_orders"`
}
