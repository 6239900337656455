package httputil

import (
	"errors"
	"net/http"

	dErrors "supaboard/pkg/domain-errors"
	"supaboard/pkg/platform/validation"
)

// FormFailure is the body of a failed form action. Both fields are always
// present so the page can render them without nil checks.
type FormFailure struct {
	FormErrors  []string               `json:"formErrors"`
	FieldErrors validation.FieldErrors `json:"fieldErrors"`
}

// WriteFormFailure reports form-level messages.
func WriteFormFailure(w http.ResponseWriter, status int, messages ...string) {
	if messages == nil {
		messages = []string{}
	}
	WriteJSON(w, status, FormFailure{FormErrors: messages, FieldErrors: validation.FieldErrors{}})
}

// WriteInputError reports a decode or validation failure with status 400.
// Field errors go under fieldErrors, anything else becomes a form message.
func WriteInputError(w http.ResponseWriter, err error) {
	var ve *validation.Error
	if errors.As(err, &ve) {
		WriteJSON(w, http.StatusBadRequest, FormFailure{FormErrors: []string{}, FieldErrors: ve.Fields})
		return
	}
	WriteFormFailure(w, http.StatusBadRequest, dErrors.MessageOf(err))
}
