package ports

import (
	"context"

	"github.com/providex/supplier-registry/internal/core/domain"
)

// SnapshotHandler receives the complete supplier set of a namespace. When
// err is non-nil (wrapping domain.ErrSubscription) suppliers is nil and the
// subscription has terminated; the caller must subscribe again.
type SnapshotHandler func(suppliers []domain.Supplier, err error)

// Snapshot is one queued delivery for a SnapshotHandler.
type Snapshot struct {
	Suppliers []domain.Supplier
	Err       error
}

// Subscription is the cancel handle of a live listing.
type Subscription interface {
	// Cancel stops further callbacks and releases the underlying channel.
	// Safe to call more than once and from inside the handler.
	Cancel()
	// Done is closed once the delivery goroutine has exited, i.e. no
	// callback is running and none will run again.
	Done() <-chan struct{}
}

// SupplierStore persists suppliers for the single namespace it was built for.
// Every returned error wraps domain.ErrPersistence.
type SupplierStore interface {
	// Put replaces the whole record stored under identifier, creating it
	// when absent. Readers never observe a partially written record.
	Put(ctx context.Context, identifier string, s *domain.Supplier) error
	// Get returns found=false when no record exists; that is not an error.
	Get(ctx context.Context, identifier string) (s *domain.Supplier, found bool, err error)
	// Subscribe calls handler once with the current set and again after
	// every add or replace. ctx only bounds the setup; the subscription
	// lives until Cancel or a terminal error.
	Subscribe(ctx context.Context, handler SnapshotHandler) (Subscription, error)
}

// ChangeEvent signals that a supplier in a namespace was added or replaced.
// A non-nil Err is the last event on the channel.
type ChangeEvent struct {
	Identifier string
	Err        error
}

// ChangeFeed carries change notifications between writers and live listings.
type ChangeFeed interface {
	// Publish announces a completed write. Feeds that observe writes on
	// their own may treat it as a no-op.
	Publish(ctx context.Context, ns domain.Namespace, identifier string) error
	// Listen is confirmed before it returns, so writes published afterwards
	// are not missed. The channel closes when ctx is cancelled.
	Listen(ctx context.Context, ns domain.Namespace) (<-chan ChangeEvent, error)
}
