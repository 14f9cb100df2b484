package service

import (
	stderrors "errors"
	"strings"

	"github.com/garrido-mendoza/PartsRepositoryAPI/pkg/errors"

	"github.com/mattn/go-sqlite3"
)

// The integrity guard: input validation before any store access, and
// translation of store-level constraint violations into typed
// outcomes. Raw constraint errors never reach callers.

func requireField(value, field string) *errors.StandardError {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError("required field is empty", field)
	}
	return nil
}

func requireQuantity(quantity int) *errors.StandardError {
	if quantity < 0 {
		return errors.NewValidationError("quantity must not be negative", "quantity")
	}
	return nil
}

// translateDeleteError maps a failed delete to a typed outcome. A
// foreign key violation means the row is still referenced by children,
// which is a client-facing conflict, not a store fault.
func translateDeleteError(err error, operation, conflictMessage, details string) *errors.StandardError {
	var sqliteErr sqlite3.Error
	if stderrors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrConstraint {
			return errors.NewConflict(conflictMessage, details)
		}
	}
	return errors.NewDatabaseError(operation, err)
}
