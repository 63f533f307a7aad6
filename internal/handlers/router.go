package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/config"
	"github.com/tezpos/tezpos/internal/database"
	"github.com/tezpos/tezpos/internal/license"
	"github.com/tezpos/tezpos/internal/middleware"
	"github.com/tezpos/tezpos/internal/services"
	"github.com/tezpos/tezpos/internal/sync"
	"github.com/tezpos/tezpos/internal/websocket"
)

// Router wraps the mux router and the service layer
type Router struct {
	*mux.Router
	cfg *config.Config
	db  *database.DB

	orders       *services.OrderService
	stock        *services.StockService
	shifts       *services.ShiftService
	reservations *services.ReservationService
	customers    *services.CustomerService
	catalog      *services.CatalogService
	staff        *services.StaffService

	engine  *sync.Engine
	hub     *websocket.Hub
	started time.Time
}

// RouterDeps collects everything the HTTP layer needs
type RouterDeps struct {
	Cfg          *config.Config
	DB           *database.DB
	Orders       *services.OrderService
	Stock        *services.StockService
	Shifts       *services.ShiftService
	Reservations *services.ReservationService
	Customers    *services.CustomerService
	Catalog      *services.CatalogService
	Staff        *services.StaffService
	Engine       *sync.Engine
	Hub          *websocket.Hub
	License      *license.Validator
}

// NewRouter creates the HTTP router with all routes
func NewRouter(deps RouterDeps) *Router {
	r := &Router{
		Router:       mux.NewRouter(),
		cfg:          deps.Cfg,
		db:           deps.DB,
		orders:       deps.Orders,
		stock:        deps.Stock,
		shifts:       deps.Shifts,
		reservations: deps.Reservations,
		customers:    deps.Customers,
		catalog:      deps.Catalog,
		staff:        deps.Staff,
		engine:       deps.Engine,
		hub:          deps.Hub,
		started:      time.Now(),
	}

	r.Use(middleware.RequestLogger)

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Websocket endpoint for terminal UIs
	r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWs(deps.Hub, w, req)
	})

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// API routes, mutations behind the license gate
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.LicenseGate(deps.License))

	api.HandleFunc("/status", r.getStatus).Methods("GET")

	// Layout
	api.HandleFunc("/halls", r.listHalls).Methods("GET")
	api.HandleFunc("/halls", r.createHall).Methods("POST")
	api.HandleFunc("/tables", r.listTables).Methods("GET")
	api.HandleFunc("/tables", r.createTable).Methods("POST")
	api.HandleFunc("/tables/{id}", r.updateTable).Methods("PUT")
	api.HandleFunc("/tables/{id}", r.deleteTable).Methods("DELETE")

	// Orders
	api.HandleFunc("/tables/{id}/items", r.listOrderItems).Methods("GET")
	api.HandleFunc("/tables/{id}/items", r.addOrderItem).Methods("POST")
	api.HandleFunc("/tables/{id}/items/bulk", r.addOrderItemsBulk).Methods("POST")
	api.HandleFunc("/tables/{id}/move", r.moveTable).Methods("POST")
	api.HandleFunc("/tables/{id}/checkout", r.checkout).Methods("POST")
	api.HandleFunc("/tables/{id}/cancel", r.cancelOrder).Methods("POST")
	api.HandleFunc("/order-items/{id}", r.removeOrderItem).Methods("DELETE")
	api.HandleFunc("/order-items/{id}/return", r.returnOrderItem).Methods("POST")

	// Menu
	api.HandleFunc("/categories", r.listCategories).Methods("GET")
	api.HandleFunc("/categories", r.createCategory).Methods("POST")
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products", r.createProduct).Methods("POST")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}", r.updateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", r.deleteProduct).Methods("DELETE")

	// Stock
	api.HandleFunc("/stock/adjust", r.adjustStock).Methods("POST")
	api.HandleFunc("/stock/movements/{productId}", r.listMovements).Methods("GET")
	api.HandleFunc("/supplies", r.listSupplies).Methods("GET")
	api.HandleFunc("/supplies", r.createSupply).Methods("POST")
	api.HandleFunc("/supplies/{id}", r.getSupply).Methods("GET")
	api.HandleFunc("/supplies/{id}", r.deleteSupply).Methods("DELETE")
	api.HandleFunc("/supplies/{id}/items", r.addSupplyItem).Methods("POST")
	api.HandleFunc("/supplies/{id}/complete", r.completeSupply).Methods("POST")
	api.HandleFunc("/supply-items/{id}", r.removeSupplyItem).Methods("DELETE")

	// Shifts
	api.HandleFunc("/shifts/open", r.openShift).Methods("POST")
	api.HandleFunc("/shifts/close", r.closeShift).Methods("POST")
	api.HandleFunc("/shifts/current", r.currentShift).Methods("GET")
	api.HandleFunc("/shifts/{id}/report", r.shiftReport).Methods("GET")

	// Reservations
	api.HandleFunc("/reservations", r.listReservations).Methods("GET")
	api.HandleFunc("/reservations", r.createReservation).Methods("POST")
	api.HandleFunc("/reservations/{id}", r.updateReservation).Methods("PUT")
	api.HandleFunc("/reservations/{id}", r.deleteReservation).Methods("DELETE")
	api.HandleFunc("/reservations/{id}/status", r.setReservationStatus).Methods("POST")

	// Customers
	api.HandleFunc("/customers", r.listCustomers).Methods("GET")
	api.HandleFunc("/customers", r.createCustomer).Methods("POST")
	api.HandleFunc("/customers/{id}", r.getCustomer).Methods("GET")
	api.HandleFunc("/customers/{id}", r.updateCustomer).Methods("PUT")
	api.HandleFunc("/customers/{id}", r.deleteCustomer).Methods("DELETE")
	api.HandleFunc("/customers/{id}/pay", r.payCustomerDebt).Methods("POST")

	// Staff
	api.HandleFunc("/staff", r.listStaff).Methods("GET")
	api.HandleFunc("/staff", r.createStaff).Methods("POST")
	api.HandleFunc("/staff/{id}", r.updateStaff).Methods("PUT")
	api.HandleFunc("/staff/{id}", r.deleteStaff).Methods("DELETE")

	// Sync
	api.HandleFunc("/sync/status", r.syncStatus).Methods("GET")
	api.HandleFunc("/sync/flush", r.syncFlush).Methods("POST")

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"server": "local",
	})
}

// getStatus returns runtime status: uptime, connected terminals and the
// sync backlog
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	pending, _ := r.engine.Pending()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "running",
		"restaurant_id": r.cfg.RestaurantID,
		"uptime":        time.Since(r.started).Round(time.Second).String(),
		"terminals":     r.hub.Count(),
		"sync_pending":  pending,
	})
}
