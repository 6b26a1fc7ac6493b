package relay

import (
	"fmt"
	"strings"
)

// InvalidRequestError marks a client input problem detected before any
// backend call. The HTTP layer maps it to a 4xx response.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string { return e.Reason }

// annotate appends a human-readable hint to backend errors whose text looks
// like a connection failure or a missing model. The original error remains
// wrapped for inspection.
func (r *Relay) annotate(err error, model string) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connect"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "timeout"):
		return fmt.Errorf("could not connect to Ollama at %s, make sure Ollama is running: %w", r.client.BaseURL(), err)
	case strings.Contains(msg, "model") && (strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist")):
		return fmt.Errorf("model %q not found, make sure it is downloaded in Ollama: %w", model, err)
	}
	return err
}
