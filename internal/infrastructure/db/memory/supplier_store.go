// Package memory provides a process-local supplier backend that honours the
// full ports.SupplierStore contract, including live snapshots. It is used
// with STORE_DRIVER=memory and by end-to-end registry tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
	"github.com/providex/supplier-registry/internal/infrastructure/queue"
)

var errNilSupplier = errors.New("nil supplier")

// Database holds every namespace. Stores created on the same Database share
// data and live subscriptions, like clients of one remote backend.
type Database struct {
	mu          sync.Mutex
	collections map[string]map[string]domain.Supplier
	subscribers map[string]map[uint64]*queue.Delivery
	nextID      uint64
}

func NewDatabase() *Database {
	return &Database{
		collections: make(map[string]map[string]domain.Supplier),
		subscribers: make(map[string]map[uint64]*queue.Delivery),
	}
}

// SupplierStore implements ports.SupplierStore for one namespace of a Database.
type SupplierStore struct {
	db  *Database
	key string
}

func NewSupplierStore(db *Database, ns domain.Namespace) *SupplierStore {
	return &SupplierStore{db: db, key: ns.CollectionPath()}
}

// Put replaces the record and pushes the new full set to every subscriber
// while still holding the lock, so all subscribers see writes in one order.
func (s *SupplierStore) Put(ctx context.Context, identifier string, sup *domain.Supplier) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: put supplier: %w", domain.ErrPersistence, err)
	}
	if sup == nil {
		return fmt.Errorf("%w: put supplier: %w", domain.ErrPersistence, errNilSupplier)
	}
	rec := *sup
	rec.Identifier = identifier

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	coll, ok := s.db.collections[s.key]
	if !ok {
		coll = make(map[string]domain.Supplier)
		s.db.collections[s.key] = coll
	}
	coll[identifier] = rec

	snap := s.snapshotLocked()
	for _, d := range s.db.subscribers[s.key] {
		d.Push(ports.Snapshot{Suppliers: slices.Clone(snap)})
	}
	return nil
}

func (s *SupplierStore) Get(ctx context.Context, identifier string) (*domain.Supplier, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: get supplier: %w", domain.ErrPersistence, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.collections[s.key][identifier]
	if !ok {
		return nil, false, nil
	}
	return &rec, true, nil
}

func (s *SupplierStore) Subscribe(ctx context.Context, handler ports.SnapshotHandler) (ports.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: subscribe: %w", domain.ErrPersistence, err)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	d := queue.NewDelivery(handler)
	s.db.nextID++
	id := s.db.nextID
	subs, ok := s.db.subscribers[s.key]
	if !ok {
		subs = make(map[uint64]*queue.Delivery)
		s.db.subscribers[s.key] = subs
	}
	subs[id] = d
	d.Push(ports.Snapshot{Suppliers: s.snapshotLocked()})

	return queue.NewSubscription(d, func() {
		s.db.mu.Lock()
		delete(s.db.subscribers[s.key], id)
		s.db.mu.Unlock()
	}), nil
}

// snapshotLocked returns the namespace's records ordered by identifier.
func (s *SupplierStore) snapshotLocked() []domain.Supplier {
	coll := s.db.collections[s.key]
	out := make([]domain.Supplier, 0, len(coll))
	for _, rec := range coll {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b domain.Supplier) int {
		return strings.Compare(a.Identifier, b.Identifier)
	})
	return out
}
