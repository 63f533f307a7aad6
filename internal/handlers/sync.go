package handlers

import (
	"net/http"
)

// syncStatus reports the outbox backlog and engine state
func (r *Router) syncStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, r.engine.Status())
}

// syncFlush triggers an immediate flush and reports how many entries were
// delivered
func (r *Router) syncFlush(w http.ResponseWriter, req *http.Request) {
	sent := r.engine.Flush(req.Context())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sent": sent,
	})
}
