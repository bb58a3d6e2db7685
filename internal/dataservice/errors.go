package dataservice

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/wellkeeper/internal/common"
)

var (
	ErrDuplicateEntry = errors.New("Duplicate entries not allowed. An entry for this date already exists.")
	ErrInvalidUser    = errors.New("Invalid user. Please sign in again.")
)

// DataAccessError wraps any store failure that has no friendlier form.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DataAccessError) Unwrap() error { return e.Err }

// translate maps a store error onto the facade's error surface.
func translate(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorUniqueViolation):
		return ErrDuplicateEntry
	case errors.Is(err, common.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrInvalidUser, common.ErrTokenExpired)
	case errors.Is(err, common.ErrorForeignKeyViolation), errors.Is(err, common.ErrorUnauthorized):
		return ErrInvalidUser
	}
	return &DataAccessError{Op: op, Err: err}
}
