// Package handlers implements the ean-watch HTTP API.
//
// Watch CRUD and the health probes are plain echo handlers; the read-mostly
// surface (snapshots, lookups, credits, system state, jobs, triggers) is
// built as typed huma operations so it lands in the generated OpenAPI
// document. Echo handlers answer errors as {"error": ...} bodies; huma
// operations use huma.Error*.
package handlers

// ErrorResponse documents the error body shape of the echo handlers.
type ErrorResponse struct {
	Error string `json:"error" example:"watch not found"`
}

// StatusResponse documents the status body shape of the health probes.
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}
