package handler

import "net/http"

// HandleHome answers GET / with a fixed welcome message.
func HandleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome to the Postboard API"})
}

// HandleHealth answers GET /healthz for load balancers and probes.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
