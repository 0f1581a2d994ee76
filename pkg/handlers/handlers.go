// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
)

// Fallback is the body returned when a dependency could not serve a request.
type Fallback struct {
	Error    string `json:"error"`
	Fallback bool   `json:"fallback"`
	Stage    string `json:"stage,omitempty"`
	Details  string `json:"details"`
}

// RespondJSON writes data as a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes it as {"error": "..."}.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	logger.Error("handler error", "error", err, "status", status)
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// RespondMessage writes a client-facing error message without logging.
// Used for request validation failures whose wording is part of the API.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondFallback logs err and writes a Fallback body naming the failed
// service and pipeline stage.
func RespondFallback(
	w http.ResponseWriter,
	logger *slog.Logger,
	status int,
	service, stage string,
	err error,
) {
	logger.Error(
		"dependency failure",
		"service", service,
		"stage", stage,
		"status", status,
		"error", err,
	)

	RespondJSON(w, status, Fallback{
		Error:    fmt.Sprintf("%s service unavailable", service),
		Fallback: true,
		Stage:    stage,
		Details:  err.Error(),
	})
}
