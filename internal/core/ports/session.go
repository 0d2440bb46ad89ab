package ports

import (
	"context"

	"github.com/providex/supplier-registry/internal/core/domain"
)

// SessionService signs the process in and yields the namespace it owns.
type SessionService interface {
	SignIn(ctx context.Context) (domain.Namespace, error)
}
