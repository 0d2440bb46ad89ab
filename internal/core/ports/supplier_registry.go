package ports

import (
	"context"
	"iter"

	"github.com/providex/supplier-registry/internal/core/domain"
)

// AddSupplierInput is the DTO passed from the presentation layer to the registry.
// Identifier may carry punctuation; it is normalized before use.
type AddSupplierInput struct {
	Identifier string `validate:"required"`
	Name       string `validate:"required"`
	Address    string
	Contact    string
	LogoRef    string
	Notes      string
}

// SupplierRegistry defines the user-facing supplier operations.
type SupplierRegistry interface {
	AddSupplier(ctx context.Context, input AddSupplierInput) (*domain.Supplier, error)
	FindSupplier(ctx context.Context, rawIdentifier string) (*domain.Supplier, bool, error)
	Watch(ctx context.Context, handler SnapshotHandler) (Subscription, error)
	ObserveAll(ctx context.Context) iter.Seq2[[]domain.Supplier, error]
}
