package validators

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
)

// Validation messages shared with the service layer.
const (
	MsgPasswordsDoNotMatch = "passwords do not match"
	MsgFieldEmpty          = "field cannot be empty"
	MsgUnknownCategory     = "unknown category"
	MsgInvalidEmail        = "please fill in a valid email address"
	MsgPasswordTooLong     = "password is too long"
)

// ValidationError collects human-readable messages per form field.
// A nil or empty ValidationError means the input is valid.
type ValidationError map[string][]string

// Add appends msg to the messages of field.
func (e ValidationError) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Has reports whether field has at least one message.
func (e ValidationError) Has(field string) bool {
	return len(e[field]) > 0
}

// First returns the first message for field or "".
func (e ValidationError) First(field string) string {
	if len(e[field]) == 0 {
		return ""
	}
	return e[field][0]
}

// Merge copies every message of other into e.
func (e ValidationError) Merge(other ValidationError) {
	for field, msgs := range other {
		e[field] = append(e[field], msgs...)
	}
}

// OrNil returns nil when there are no messages, so callers can write
// `return verr.OrNil()` without producing a non-nil empty error.
func (e ValidationError) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError extracts a ValidationError from err's chain.
func AsValidationError(err error) (ValidationError, bool) {
	var verr ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
