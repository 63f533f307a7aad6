package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/services"
)

// listHalls returns all halls
func (r *Router) listHalls(w http.ResponseWriter, req *http.Request) {
	halls, err := r.catalog.Halls()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, halls)
}

// createHall adds a hall
func (r *Router) createHall(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Name string `json:"name" validate:"required"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	hall, err := r.catalog.CreateHall(body.Name)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, hall)
}

// listTables returns the floor plan with live occupancy state
func (r *Router) listTables(w http.ResponseWriter, req *http.Request) {
	tables, err := r.orders.Tables()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tables)
}

// createTable adds a table
func (r *Router) createTable(w http.ResponseWriter, req *http.Request) {
	var body services.TableInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	table, err := r.catalog.CreateTable(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, table)
}

// updateTable edits a table's layout fields
func (r *Router) updateTable(w http.ResponseWriter, req *http.Request) {
	var body services.TableInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	table, err := r.catalog.UpdateTable(mux.Vars(req)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, table)
}

// deleteTable tombstones a free table
func (r *Router) deleteTable(w http.ResponseWriter, req *http.Request) {
	if err := r.catalog.DeleteTable(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// listOrderItems returns the live order on a table
func (r *Router) listOrderItems(w http.ResponseWriter, req *http.Request) {
	items, err := r.orders.Items(mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type addItemRequest struct {
	ProductID  string  `json:"product_id" validate:"required"`
	Quantity   int     `json:"quantity" validate:"gte=1"`
	WaiterID   *string `json:"waiter_id"`
	WaiterName string  `json:"waiter_name"`
	Guests     int     `json:"guests"`
}

// addOrderItem adds one product to a table's order
func (r *Router) addOrderItem(w http.ResponseWriter, req *http.Request) {
	var body addItemRequest
	if !decodeAndValidate(w, req, &body) {
		return
	}
	waiter := services.Waiter{ID: body.WaiterID, Name: body.WaiterName, Guests: body.Guests}
	item, err := r.orders.AddItem(mux.Vars(req)["id"], body.ProductID, body.Quantity, waiter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

type bulkItemsRequest struct {
	Items      []services.BulkItem `json:"items" validate:"required,min=1,dive"`
	WaiterID   *string             `json:"waiter_id"`
	WaiterName string              `json:"waiter_name"`
	Guests     int                 `json:"guests"`
}

// addOrderItemsBulk submits a whole order screen in one atomic call
func (r *Router) addOrderItemsBulk(w http.ResponseWriter, req *http.Request) {
	var body bulkItemsRequest
	if !decodeAndValidate(w, req, &body) {
		return
	}
	waiter := services.Waiter{ID: body.WaiterID, Name: body.WaiterName, Guests: body.Guests}
	items, err := r.orders.AddBulkItems(mux.Vars(req)["id"], body.Items, waiter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, items)
}

// removeOrderItem deletes an order line entirely
func (r *Router) removeOrderItem(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Reason string `json:"reason"`
		Actor  string `json:"actor"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	if err := r.orders.RemoveItem(mux.Vars(req)["id"], body.Reason, body.Actor); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// returnOrderItem returns part of an order line
func (r *Router) returnOrderItem(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Quantity int    `json:"quantity" validate:"gte=1"`
		Reason   string `json:"reason"`
		Actor    string `json:"actor"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	if err := r.orders.ReturnItem(mux.Vars(req)["id"], body.Quantity, body.Reason, body.Actor); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "returned"})
}

// moveTable moves or merges an open order onto another table
func (r *Router) moveTable(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ToTableID string `json:"to_table_id" validate:"required"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	if err := r.orders.MoveTable(mux.Vars(req)["id"], body.ToTableID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// checkout settles the table
func (r *Router) checkout(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Payment    models.PaymentBreakdown `json:"payment"`
		CustomerID *string                 `json:"customer_id"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	sale, err := r.orders.Checkout(services.CheckoutInput{
		TableID:    mux.Vars(req)["id"],
		Payment:    body.Payment,
		CustomerID: body.CustomerID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sale)
}

// cancelOrder voids the whole order, archiving it for audit
func (r *Router) cancelOrder(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	if err := r.orders.CancelOrder(mux.Vars(req)["id"], body.Reason); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
