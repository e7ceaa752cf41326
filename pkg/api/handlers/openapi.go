package handlers

import (
	"net/http"
)

// OpenAPIHandler serves a prebuilt OpenAPI document.
type OpenAPIHandler struct {
	document any
}

// NewOpenAPIHandler creates a handler serving document as JSON.
func NewOpenAPIHandler(document any) *OpenAPIHandler {
	return &OpenAPIHandler{document: document}
}

// Document handles GET /openapi.json.
func (h *OpenAPIHandler) Document(w http.ResponseWriter, r *http.Request) {
	WriteJSONOK(w, h.document)
}
