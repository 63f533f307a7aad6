package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/models"
)

// adjustStock applies a direct stock adjustment with a movement record
func (r *Router) adjustStock(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ProductID string  `json:"product_id" validate:"required"`
		Quantity  float64 `json:"quantity" validate:"gt=0"`
		Type      string  `json:"type" validate:"required,oneof=in out return"`
		Reason    string  `json:"reason"`
		Actor     string  `json:"actor"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	movement, err := r.stock.AddSupply(body.ProductID, body.Quantity,
		models.MovementType(body.Type), body.Reason, body.Actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, movement)
}

// listMovements returns the movement log for a product
func (r *Router) listMovements(w http.ResponseWriter, req *http.Request) {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	movements, err := r.stock.Movements(mux.Vars(req)["productId"], limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, movements)
}

// listSupplies returns all supplies with their lines
func (r *Router) listSupplies(w http.ResponseWriter, req *http.Request) {
	supplies, err := r.stock.Supplies()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supplies)
}

// getSupply returns one supply
func (r *Router) getSupply(w http.ResponseWriter, req *http.Request) {
	supply, err := r.stock.Supply(mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supply)
}

// createSupply opens a draft supply
func (r *Router) createSupply(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Supplier string `json:"supplier"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	supply, err := r.stock.CreateSupply(body.Supplier)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, supply)
}

// addSupplyItem adds a line to a draft supply
func (r *Router) addSupplyItem(w http.ResponseWriter, req *http.Request) {
	var body struct {
		ProductID string  `json:"product_id" validate:"required"`
		Quantity  float64 `json:"quantity" validate:"gt=0"`
		Price     float64 `json:"price" validate:"gte=0"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	item, err := r.stock.AddSupplyItem(mux.Vars(req)["id"], body.ProductID, body.Quantity, body.Price)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, item)
}

// removeSupplyItem removes a line from a draft supply
func (r *Router) removeSupplyItem(w http.ResponseWriter, req *http.Request) {
	if err := r.stock.RemoveSupplyItem(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// completeSupply posts a draft supply into stock
func (r *Router) completeSupply(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Actor string `json:"actor"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	supply, err := r.stock.CompleteSupply(mux.Vars(req)["id"], body.Actor)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, supply)
}

// deleteSupply removes a draft supply
func (r *Router) deleteSupply(w http.ResponseWriter, req *http.Request) {
	if err := r.stock.DeleteSupply(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
