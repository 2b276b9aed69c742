package ops

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videobot/internal/infra"
)

// NewRouter builds the ops surface: liveness plus readiness gated on the
// update loop having started.
func NewRouter(logger *infra.Logger, ready func() bool) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if ready == nil || !ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Str("path", r.URL.Path).Msg("ops: unknown path")
		writeJSON(w, http.StatusNotFound, map[string]string{"status": "not found"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
