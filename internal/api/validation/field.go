// Package validation contains request-level input validators for the HTTP
// API. Validators return a slice of field errors suitable for the error
// envelope's details.
package validation

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
