// Package router wires the HTTP surface. Routes use the net/http
// method patterns introduced in Go 1.22.
package router

import (
	"net/http"

	"tandoor/internal/handler"
	"tandoor/pkg/database"
	"tandoor/pkg/logger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Orders    *handler.OrderHandler
	Tables    *handler.TableHandler
	Bookings  *handler.BookingHandler
	Inventory *handler.InventoryHandler
	Menu      *handler.MenuHandler
}

// New builds the route table and wraps it in request logging.
func New(h Handlers, db *database.DB, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/orders", h.Orders.CreateOrder)
	mux.HandleFunc("GET /api/v1/orders", h.Orders.GetAllOrders)
	mux.HandleFunc("GET /api/v1/orders/{id}", h.Orders.GetOrderByID)
	mux.HandleFunc("POST /api/v1/orders/{id}/items", h.Orders.AddLineItem)
	mux.HandleFunc("POST /api/v1/orders/{id}/status", h.Orders.TransitionStatus)
	mux.HandleFunc("POST /api/v1/orders/{id}/cancel", h.Orders.CancelOrder)

	mux.HandleFunc("POST /api/v1/tables", h.Tables.AddTable)
	mux.HandleFunc("GET /api/v1/tables", h.Tables.GetAllTables)
	mux.HandleFunc("GET /api/v1/tables/best", h.Tables.FindBestAvailable)
	mux.HandleFunc("GET /api/v1/tables/{id}", h.Tables.GetTableByID)
	mux.HandleFunc("POST /api/v1/tables/{id}/occupy", h.Tables.Occupy)
	mux.HandleFunc("POST /api/v1/tables/{id}/reserve", h.Tables.Reserve)
	mux.HandleFunc("POST /api/v1/tables/{id}/free", h.Tables.Free)
	mux.HandleFunc("GET /api/v1/tables/{id}/bookings", h.Bookings.ListByTable)
	mux.HandleFunc("GET /api/v1/tables/{id}/orders", h.Orders.GetActiveByTable)

	mux.HandleFunc("POST /api/v1/bookings", h.Bookings.CreateBooking)
	mux.HandleFunc("POST /api/v1/bookings/validate", h.Bookings.ValidateBooking)
	mux.HandleFunc("GET /api/v1/bookings/{id}", h.Bookings.GetBookingByID)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", h.Bookings.CancelBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/complete", h.Bookings.CompleteBooking)

	mux.HandleFunc("GET /api/v1/inventory", h.Inventory.GetAll)
	mux.HandleFunc("POST /api/v1/inventory/restock", h.Inventory.Restock)
	mux.HandleFunc("POST /api/v1/inventory/restore", h.Inventory.Restore)
	mux.HandleFunc("GET /api/v1/inventory/snapshot", h.Inventory.Snapshot)
	mux.HandleFunc("POST /api/v1/inventory/snapshot", h.Inventory.ImportSnapshot)

	mux.HandleFunc("GET /api/v1/menu", h.Menu.GetMenu)
	mux.HandleFunc("GET /api/v1/menu/{name}", h.Menu.GetItem)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(); err != nil {
			log.Error("Health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	return log.HTTPMiddleware(mux)
}
