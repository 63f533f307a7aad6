package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tezpos/tezpos/internal/services"
)

// login authenticates a staff member by PIN
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var body struct {
		PIN string `json:"pin" validate:"required"`
	}
	if !decodeAndValidate(w, req, &body) {
		return
	}
	staff, err := r.staff.Authenticate(body.PIN)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

// listStaff returns all staff members
func (r *Router) listStaff(w http.ResponseWriter, req *http.Request) {
	staff, err := r.staff.List()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

// createStaff adds a staff member
func (r *Router) createStaff(w http.ResponseWriter, req *http.Request) {
	var body services.StaffInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	staff, err := r.staff.Create(body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, staff)
}

// updateStaff edits a staff member
func (r *Router) updateStaff(w http.ResponseWriter, req *http.Request) {
	var body services.StaffInput
	if !decodeAndValidate(w, req, &body) {
		return
	}
	staff, err := r.staff.Update(mux.Vars(req)["id"], body)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, staff)
}

// deleteStaff tombstones a staff member
func (r *Router) deleteStaff(w http.ResponseWriter, req *http.Request) {
	if err := r.staff.Delete(mux.Vars(req)["id"]); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
