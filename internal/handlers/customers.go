package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/services"
)

// listCustomers returns the customer book
func (r *Router) listCustomers(w http.ResponseWriter, req *http.Request) {
	customers, err := r.customers.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

// getCustomer returns a customer with debt and history
func (r *Router) getCustomer(w http.ResponseWriter, req *http.Request) {
	customer, debts, history, err := r.customers.Get(mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"customer": customer,
		"debts":    debts,
		"history":  history,
	})
}

// createCustomer adds a customer
func (r *Router) createCustomer(w http.ResponseWriter, req *http.Request) {
	var body services.CustomerInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	customer, err := r.customers.Create(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

// updateCustomer edits customer details
func (r *Router) updateCustomer(w http.ResponseWriter, req *http.Request) {
	var body services.CustomerInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	customer, err := r.customers.Update(mux.Vars(req)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

// deleteCustomer tombstones a customer
func (r *Router) deleteCustomer(w http.ResponseWriter, req *http.Request) {
	if err := r.customers.Delete(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// payCustomerDebt records a debt repayment
func (r *Router) payCustomerDebt(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Amount float64 `json:"amount" validate:"gt=0"`
		Note   string  `json:"note"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	customer, err := r.customers.PayDebt(mux.Vars(req)["id"], body.Amount, body.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}
