package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/models"
	"github.com/tezpos/tezpos/internal/services"
)

// listReservations returns all reservations ordered by time
func (r *Router) listReservations(w http.ResponseWriter, req *http.Request) {
	reservations, err := r.reservations.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservations)
}

// createReservation books a table
func (r *Router) createReservation(w http.ResponseWriter, req *http.Request) {
	var body services.ReservationInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	reservation, err := r.reservations.Create(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, reservation)
}

// updateReservation reschedules or edits a reservation
func (r *Router) updateReservation(w http.ResponseWriter, req *http.Request) {
	var body services.ReservationInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	reservation, err := r.reservations.Update(mux.Vars(req)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservation)
}

// setReservationStatus marks a reservation completed or cancelled
func (r *Router) setReservationStatus(w http.ResponseWriter, req *http.Request) {
	var body struct {
		Status string `json:"status" validate:"required,oneof=active completed cancelled"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	reservation, err := r.reservations.SetStatus(mux.Vars(req)["id"], models.ReservationStatus(body.Status))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reservation)
}

// deleteReservation tombstones a reservation
func (r *Router) deleteReservation(w http.ResponseWriter, req *http.Request) {
	if err := r.reservations.Delete(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
