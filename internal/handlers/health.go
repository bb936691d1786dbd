package handlers

import "net/http"

// HealthHandler reports service liveness.
type HealthHandler struct{}

// Handle responds with a static OK envelope.
func (h HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	respondData(r.Context(), w, http.StatusOK, map[string]string{"status": "OK"}, "service is healthy")
}
