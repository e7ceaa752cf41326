// Package handlers provides HTTP handlers for the preprocessing API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// ContentTypeProblemJSON is the Content-Type for RFC 7807 problem responses.
const ContentTypeProblemJSON = "application/problem+json"

// Problem is an RFC 7807 problem document. Error responses of every route
// use it; Detail carries the message clients display.
type Problem struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// WriteProblem writes a problem document titled with the status text.
func WriteProblem(w http.ResponseWriter, status int, detail string) {
	writeBody(w, status, ContentTypeProblemJSON, Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

// BadRequest writes a 400 problem.
func BadRequest(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusBadRequest, detail)
}

// NotFound writes a 404 problem.
func NotFound(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusNotFound, detail)
}

// MethodNotAllowed writes a 405 problem.
func MethodNotAllowed(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusMethodNotAllowed, detail)
}

// RequestEntityTooLarge writes a 413 problem.
func RequestEntityTooLarge(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusRequestEntityTooLarge, detail)
}

// UnprocessableEntity writes a 422 problem for payloads that parse as JSON
// but are not a building document.
func UnprocessableEntity(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusUnprocessableEntity, detail)
}

// InternalServerError writes a 500 problem. detail must not carry
// internal error text.
func InternalServerError(w http.ResponseWriter, detail string) {
	WriteProblem(w, http.StatusInternalServerError, detail)
}

// WriteJSON writes data as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeBody(w, status, "application/json", data)
}

// WriteJSONOK writes a 200 OK JSON response.
func WriteJSONOK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, data)
}

func writeBody(w http.ResponseWriter, status int, contentType string, data any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
