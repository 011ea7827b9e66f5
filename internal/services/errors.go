package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the HTTP layer:
//   - ErrInvalidInput -> 400
//   - ErrNotFound     -> 404 (row absent or not owned; never distinguished)
//   - anything else   -> 500 (persistence/transport failure)
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
