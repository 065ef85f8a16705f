package service

import (
	"context"
	"errors"
	"time"

	"github.com/bluehaven/rentals/internal/domain"
)

// storeError translates a repository error. Domain errors pass through,
// not found keeps its kind, everything else is a dependency failure.
func storeError(entity string, message string, err error) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}

	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewNotFoundError(entity + " not found")
	}

	return domain.NewDependencyError(message, err)
}

func requireAdmin(session domain.Session) error {
	if !session.IsAdmin() {
		return domain.NewForbiddenError("admin role required")
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
