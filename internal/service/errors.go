// Package service holds the application's business operations. Every
// operation takes the caller's models.RequestContext explicitly.
package service

import (
	"errors"

	"capsort/internal/models"
	"capsort/internal/repository"
)

// storeError passes AppErrors through and wraps anything else as a store failure.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStoreError(err)
}

// requireUser rejects unauthenticated callers.
func requireUser(rc models.RequestContext) error {
	if !rc.Authenticated() {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}

// requireAdmin rejects callers that are not administrators.
func requireAdmin(rc models.RequestContext) error {
	if err := requireUser(rc); err != nil {
		return err
	}
	if !rc.IsAdmin() {
		return models.NewForbiddenError("Admin access required")
	}
	return nil
}

func isConflict(err error) bool {
	return repository.IsUniqueViolation(err)
}
