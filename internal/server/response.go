package server

import (
	"encoding/json"
	"log"
	"net/http"
)

// envelope is the uniform response body: success plus either data or a
// human-readable message.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// respond writes a success envelope.
func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	s.writeJSON(w, status, envelope{Success: true, Data: data})
}

// respondMessage writes a success envelope with a message and no data.
func (s *Server) respondMessage(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Success: true, Message: message})
}

// respondError writes a failure envelope.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, envelope{Success: false, Message: message})
}

// respondServiceError maps a typed service error to its HTTP status.
// Internal errors are logged and replaced with a generic message so database
// details never reach clients.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("[error] %v", err)
		message = "Internal server error"
	}
	s.respondError(w, status, message)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
