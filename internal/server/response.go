package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/me/covweb/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// envelope wraps /api responses.
type envelope struct {
	Status    string          `json:"status"`
	RequestID string          `json:"request_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      any             `json:"data"`
	Error     *model.APIError `json:"error"`
}

// respondOK writes a success response with the standard envelope.
func respondOK(w http.ResponseWriter, reqID string, data any) {
	writeJSON(w, http.StatusOK, envelope{
		Status:    "ok",
		RequestID: reqID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

// statusMessage is the error body of the listing and form endpoints.
type statusMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// respondStatusError writes {"status":"error","message":...} with the given code.
func respondStatusError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, statusMessage{Status: model.EventStatusError, Message: msg})
}

// writeJSON writes v as the bare JSON body of the response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
