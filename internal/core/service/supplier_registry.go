package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
	"github.com/providex/supplier-registry/pkg/cnpj"
)

// SupplierRegistry implements ports.SupplierRegistry over a namespaced store.
// It holds no lock of its own: the store is the single source of truth and
// concurrent writes to one identifier resolve as last-write-wins.
type SupplierRegistry struct {
	store    ports.SupplierStore
	ns       domain.Namespace
	validate *validator.Validate
	now      func() time.Time
	logger   zerolog.Logger
}

func NewSupplierRegistry(store ports.SupplierStore, ns domain.Namespace, logger zerolog.Logger) *SupplierRegistry {
	return &SupplierRegistry{
		store:    store,
		ns:       ns,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func (r *SupplierRegistry) ready() error {
	if r.store == nil || !r.ns.Ready() {
		return domain.ErrNotReady
	}
	return nil
}

// AddSupplier creates or fully replaces the supplier keyed by the normalized
// identifier. CreatedAt is kept from an existing record and set otherwise.
func (r *SupplierRegistry) AddSupplier(ctx context.Context, input ports.AddSupplierInput) (*domain.Supplier, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if err := r.validateInput(input); err != nil {
		return nil, err
	}

	identifier := cnpj.Normalize(input.Identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier must contain digits", domain.ErrValidation)
	}

	createdAt := r.now()
	existing, found, err := r.store.Get(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if found && !existing.CreatedAt.IsZero() {
		createdAt = existing.CreatedAt
	}

	supplier := &domain.Supplier{
		Identifier: identifier,
		Name:       input.Name,
		Address:    input.Address,
		Contact:    input.Contact,
		LogoRef:    input.LogoRef,
		Notes:      input.Notes,
		CreatedAt:  createdAt,
	}
	if err := r.store.Put(ctx, identifier, supplier); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("identifier", identifier).
		Bool("replaced", found).
		Msg("supplier registered")
	return supplier, nil
}

// FindSupplier looks a supplier up by a raw, possibly formatted identifier.
func (r *SupplierRegistry) FindSupplier(ctx context.Context, rawIdentifier string) (*domain.Supplier, bool, error) {
	if err := r.ready(); err != nil {
		return nil, false, err
	}
	identifier := cnpj.Normalize(rawIdentifier)
	if identifier == "" {
		return nil, false, nil
	}
	return r.store.Get(ctx, identifier)
}

// Watch opens a live listing and returns its cancel handle.
func (r *SupplierRegistry) Watch(ctx context.Context, handler ports.SnapshotHandler) (ports.Subscription, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	sub, err := r.store.Subscribe(ctx, handler)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("namespace", r.ns.CollectionPath()).Msg("supplier listing opened")
	return sub, nil
}

// ObserveAll returns the supplier set as a sequence of full snapshots.
// Nothing is opened until the sequence is ranged over, and every range opens
// its own subscription, released when the loop stops or ctx ends. A
// subscription failure is yielded once and ends the sequence.
func (r *SupplierRegistry) ObserveAll(ctx context.Context) iter.Seq2[[]domain.Supplier, error] {
	return func(yield func([]domain.Supplier, error) bool) {
		items := make(chan ports.Snapshot)
		done := make(chan struct{})
		defer close(done)

		sub, err := r.Watch(ctx, func(s []domain.Supplier, err error) {
			select {
			case items <- ports.Snapshot{Suppliers: s, Err: err}:
			case <-done:
			}
		})
		if err != nil {
			yield(nil, err)
			return
		}
		defer sub.Cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-items:
				if !yield(snap.Suppliers, snap.Err) || snap.Err != nil {
					return
				}
			}
		}
	}
}

func (r *SupplierRegistry) validateInput(input ports.AddSupplierInput) error {
	err := r.validate.Struct(input)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]string, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, strings.ToLower(fe.Field())+" is required")
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(fields, "; "))
	}
	return fmt.Errorf("%w: %w", domain.ErrValidation, err)
}
