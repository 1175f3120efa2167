package profilestore

import (
	"fmt"

	"github.com/go-playground/errors/v5"
)

// InvalidValueError reports a stored value outside the closed role, team role
// or access level sets.
type InvalidValueError struct {
	UserID string
	Column string
	Value  string
	Err    error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("user %s: invalid %s %q: %v", e.UserID, e.Column, e.Value, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// IsInvalidValue reports whether err carries an InvalidValueError.
func IsInvalidValue(err error) bool {
	var target *InvalidValueError

	return errors.As(err, &target)
}
