package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// openShift starts a cash session
func (r *Router) openShift(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Cashier   string  `json:"cashier" validate:"required"`
		StartCash float64 `json:"start_cash" validate:"gte=0"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	shift, err := r.shifts.OpenShift(body.Cashier, body.StartCash)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, shift)
}

// closeShift reconciles and closes the open session
func (r *Router) closeShift(w http.ResponseWriter, req *http.Request) {
	var body struct {
		DeclaredCash float64 `json:"declared_cash" validate:"gte=0"`
		DeclaredCard float64 `json:"declared_card" validate:"gte=0"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	shift, err := r.shifts.CloseShift(body.DeclaredCash, body.DeclaredCard)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

// currentShift returns the open session, if any
func (r *Router) currentShift(w http.ResponseWriter, req *http.Request) {
	shift, err := r.shifts.CurrentShift()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

// shiftReport returns the Z-report for a shift
func (r *Router) shiftReport(w http.ResponseWriter, req *http.Request) {
	report, err := r.shifts.Report(mux.Vars(req)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
