package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ziadkadry99/ollamachat/internal/relay"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// statusFor maps relay errors to HTTP status codes: validation problems are
// the client's fault, everything else is a backend failure.
func statusFor(err error) int {
	var invalid *relay.InvalidRequestError
	if errors.As(err, &invalid) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
