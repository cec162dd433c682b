package api

import (
	"encoding/json"
	"net/http"

	"github.com/linesmerrill/vehicle-intake-api/models"
)

// HealthCheckHandler reports that the process is serving
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	w.Write(b)
}
