package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tezpos/tezpos/internal/services"
	"github.com/tezpos/tezpos/pkg/validator"
)

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// respondServiceError maps service sentinels onto HTTP codes: missing
// entities are 404, violated preconditions are 409, everything else is a
// 500 with the detail kept out of the response.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case services.NotFound(err):
		respondError(w, http.StatusNotFound, err.Error())
	case services.Precondition(err):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidPIN):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeAndValidate decodes a JSON body and runs struct validation,
// writing the 400 response itself on failure
func decodeAndValidate(w http.ResponseWriter, req *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return false
	}
	if errs := validator.ValidateStruct(dst); len(errs) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": errs,
		})
		return false
	}
	return true
}
