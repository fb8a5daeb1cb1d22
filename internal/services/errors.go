package services

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials is returned for an unknown email and for a wrong
	// password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden is returned when the caller does not own the task.
	ErrForbidden = errors.New("forbidden")

	// ErrMissingField is matched by every MissingFieldError.
	ErrMissingField = errors.New("missing required field")
)

// MissingFieldError names the required inputs that were empty.
type MissingFieldError struct {
	Fields []string
}

func (e *MissingFieldError) Error() string {
	return ErrMissingField.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// requireFields returns a MissingFieldError for every blank value, keyed by
// the field names given in alternating name/value pairs.
func requireFields(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return &MissingFieldError{Fields: missing}
	}
	return nil
}
