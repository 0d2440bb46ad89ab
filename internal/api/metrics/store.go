package metrics

import (
	"context"
	"time"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

// InstrumentedStore records Prometheus metrics around any ports.SupplierStore.
type InstrumentedStore struct {
	next ports.SupplierStore
}

func NewInstrumentedStore(next ports.SupplierStore) *InstrumentedStore {
	return &InstrumentedStore{next: next}
}

func (s *InstrumentedStore) Put(ctx context.Context, identifier string, sup *domain.Supplier) error {
	start := time.Now()
	err := s.next.Put(ctx, identifier, sup)
	observe("put", start, result(err))
	return err
}

func (s *InstrumentedStore) Get(ctx context.Context, identifier string) (*domain.Supplier, bool, error) {
	start := time.Now()
	sup, found, err := s.next.Get(ctx, identifier)
	res := result(err)
	if err == nil && !found {
		res = "not_found"
	}
	observe("get", start, res)
	return sup, found, err
}

func (s *InstrumentedStore) Subscribe(ctx context.Context, handler ports.SnapshotHandler) (ports.Subscription, error) {
	start := time.Now()
	sub, err := s.next.Subscribe(ctx, func(suppliers []domain.Supplier, err error) {
		if err != nil {
			SnapshotsDeliveredTotal.WithLabelValues("error").Inc()
		} else {
			SnapshotsDeliveredTotal.WithLabelValues("ok").Inc()
			SnapshotSize.Observe(float64(len(suppliers)))
		}
		handler(suppliers, err)
	})
	observe("subscribe", start, result(err))
	if err != nil {
		return nil, err
	}

	ActiveSubscriptions.Inc()
	go func() {
		<-sub.Done()
		ActiveSubscriptions.Dec()
	}()
	return sub, nil
}

func observe(operation string, start time.Time, res string) {
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	StoreOperationsTotal.WithLabelValues(operation, res).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
