package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
	"github.com/providex/supplier-registry/internal/infrastructure/queue"
)

const collectionSuppliers = "suppliers"

var errNilSupplier = errors.New("nil supplier")

// supplierDocument is the stored shape. _id follows the path convention
// {appId}/users/{userId}/suppliers/{identifier}; namespace holds the
// collection part of that path so one namespace is a single index range.
type supplierDocument struct {
	ID         string `bson:"_id"`
	Namespace  string `bson:"namespace"`
	Identifier string `bson:"identifier"`
	Name       string `bson:"name"`
	Address    string `bson:"address"`
	Contact    string `bson:"contact"`
	LogoRef    string `bson:"logo_ref"`
	Notes      string `bson:"notes"`
	CreatedAt  string `bson:"created_at"` // ISO-8601
}

// SupplierStore implements ports.SupplierStore for one namespace on MongoDB.
// Live listings re-read the namespace whenever the change feed reports a write.
type SupplierStore struct {
	col  *mongo.Collection
	ns   domain.Namespace
	feed ports.ChangeFeed
	log  zerolog.Logger
}

func NewSupplierStore(db *mongo.Database, ns domain.Namespace, feed ports.ChangeFeed, log zerolog.Logger) *SupplierStore {
	return &SupplierStore{
		col:  db.Collection(collectionSuppliers),
		ns:   ns,
		feed: feed,
		log:  log.With().Str("namespace", ns.CollectionPath()).Logger(),
	}
}

// Put upserts the whole document in one ReplaceOne, then announces the change.
// A failed announcement is reported even though the record is stored.
func (r *SupplierStore) Put(ctx context.Context, identifier string, s *domain.Supplier) error {
	if s == nil {
		return persistenceErr("put supplier", errNilSupplier)
	}

	opCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(r.ns, identifier, s)
	_, err := r.col.ReplaceOne(opCtx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return persistenceErr("put supplier", err)
	}

	if err := r.feed.Publish(ctx, r.ns, identifier); err != nil {
		return persistenceErr("publish change", err)
	}
	return nil
}

// Get retrieves a supplier by identifier. A missing document is found=false.
func (r *SupplierStore) Get(ctx context.Context, identifier string) (*domain.Supplier, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc supplierDocument
	err := r.col.FindOne(ctx, bson.M{"_id": r.ns.DocumentPath(identifier)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, persistenceErr("get supplier", err)
	}
	s := doc.toDomain()
	return &s, true, nil
}

// Subscribe starts listening before the initial read so that no write
// between the two is missed; a write seen twice only costs a redundant
// snapshot.
func (r *SupplierStore) Subscribe(ctx context.Context, handler ports.SnapshotHandler) (ports.Subscription, error) {
	listenCtx, stop := context.WithCancel(context.WithoutCancel(ctx))

	events, err := r.feed.Listen(listenCtx, r.ns)
	if err != nil {
		stop()
		return nil, persistenceErr("subscribe", err)
	}

	initial, err := r.list(ctx)
	if err != nil {
		stop()
		return nil, persistenceErr("subscribe", err)
	}

	d := queue.NewDelivery(handler)
	d.Push(ports.Snapshot{Suppliers: initial})
	go r.follow(listenCtx, stop, events, d)

	r.log.Debug().Int("initial", len(initial)).Msg("subscription opened")
	return queue.NewSubscription(d, stop), nil
}

// follow turns change events into full snapshots until the listener ends.
func (r *SupplierStore) follow(ctx context.Context, stop context.CancelFunc, events <-chan ports.ChangeEvent, d *queue.Delivery) {
	defer stop()
	for ev := range events {
		if ev.Err != nil {
			r.log.Debug().Err(ev.Err).Msg("change feed failed")
			d.Push(ports.Snapshot{Err: subscriptionErr(ev.Err)})
			return
		}

		suppliers, err := r.list(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.Push(ports.Snapshot{Err: subscriptionErr(err)})
			return
		}
		if !d.Push(ports.Snapshot{Suppliers: suppliers}) {
			return
		}
	}
}

// list reads the namespace ordered by identifier.
func (r *SupplierStore) list(ctx context.Context) ([]domain.Supplier, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "identifier", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"namespace": r.ns.CollectionPath()}, opts)
	if err != nil {
		return nil, err
	}
	var docs []supplierDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]domain.Supplier, len(docs))
	for i, doc := range docs {
		out[i] = doc.toDomain()
	}
	return out, nil
}

// EnsureIndexes creates the namespace index used by listings.
func (r *SupplierStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "namespace", Value: 1}, {Key: "identifier", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toDocument(ns domain.Namespace, identifier string, s *domain.Supplier) supplierDocument {
	return supplierDocument{
		ID:         ns.DocumentPath(identifier),
		Namespace:  ns.CollectionPath(),
		Identifier: identifier,
		Name:       s.Name,
		Address:    s.Address,
		Contact:    s.Contact,
		LogoRef:    s.LogoRef,
		Notes:      s.Notes,
		CreatedAt:  formatTime(s.CreatedAt),
	}
}

func (d supplierDocument) toDomain() domain.Supplier {
	return domain.Supplier{
		Identifier: d.Identifier,
		Name:       d.Name,
		Address:    d.Address,
		Contact:    d.Contact,
		LogoRef:    d.LogoRef,
		Notes:      d.Notes,
		CreatedAt:  parseTime(d.CreatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func persistenceErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrPersistence, op, err)
}

func subscriptionErr(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrSubscription, err)
}
