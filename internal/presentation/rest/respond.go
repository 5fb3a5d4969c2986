package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bibbank/loan-decision/internal/application/dto"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// writeError renders the common error body. details identifies the request URI.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, dto.ErrorDetails{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Message:   message,
		Details:   "uri=" + r.URL.Path,
	})
}
