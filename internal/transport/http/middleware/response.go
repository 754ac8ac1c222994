package middleware

import (
	"encoding/json"
	"net/http"
)

// errorBody matches the {error} shape written by the handlers.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSONError writes a JSON error. Rejections from this package are never cacheable.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: msg})
}
