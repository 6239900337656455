// Package validation collects per-field form errors. The messages are shown
// next to the offending input, so they stay short.
package validation

import (
	"strings"

	"github.com/asaskevich/govalidator"
)

// FieldErrors maps form field names to their messages.
type FieldErrors map[string][]string

func (f FieldErrors) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Required records "Required" when value is blank.
func (f FieldErrors) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		f.Add(field, "Required")
		return false
	}
	return true
}

// Email records a message unless value is a present, well-formed address.
func (f FieldErrors) Email(field, value string) {
	if f.Required(field, value) && !govalidator.IsEmail(value) {
		f.Add(field, "Invalid email")
	}
}

// Err returns nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &Error{Fields: f}
}

// Error carries field messages back to the form.
type Error struct {
	Fields FieldErrors
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	return "invalid input: " + strings.Join(names, ", ")
}
