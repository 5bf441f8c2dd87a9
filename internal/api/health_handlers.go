package api

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Pinger checks connectivity to a backing store. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

const pingTimeout = 2 * time.Second

// Liveness reports that the process is serving.
func Liveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness pings the database. A nil pinger means in-memory stores, which
// are always available.
func Readiness(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().UTC().Format(time.RFC3339)
		if db == nil {
			respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "memory", "timestamp": now})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Printf("[API] Health check failed: %v", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "disconnected"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected", "timestamp": now})
	}
}
