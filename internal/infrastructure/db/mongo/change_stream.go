package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

// ChangeStreamFeed implements ports.ChangeFeed with a MongoDB change stream
// on the suppliers collection. Writes are observed by the server itself, so
// Publish does nothing. Requires a replica set or sharded cluster.
type ChangeStreamFeed struct {
	col *mongo.Collection
}

func NewChangeStreamFeed(db *mongo.Database) *ChangeStreamFeed {
	return &ChangeStreamFeed{col: db.Collection(collectionSuppliers)}
}

func (f *ChangeStreamFeed) Publish(context.Context, domain.Namespace, string) error {
	return nil
}

type changeDocument struct {
	FullDocument struct {
		Identifier string `bson:"identifier"`
	} `bson:"fullDocument"`
}

// Listen opens the change stream before returning, so any write committed
// afterwards produces an event.
func (f *ChangeStreamFeed) Listen(ctx context.Context, ns domain.Namespace) (<-chan ports.ChangeEvent, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "operationType", Value: bson.D{{Key: "$in", Value: bson.A{"insert", "replace", "update"}}}},
			{Key: "fullDocument.namespace", Value: ns.CollectionPath()},
		}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	cs, err := f.col.Watch(ctx, pipeline, opts)
	if err != nil {
		return nil, fmt.Errorf("watch suppliers: %w", err)
	}

	out := make(chan ports.ChangeEvent)
	go func() {
		defer close(out)
		defer func() { _ = cs.Close(context.Background()) }()

		send := func(ev ports.ChangeEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for cs.Next(ctx) {
			var doc changeDocument
			if err := cs.Decode(&doc); err != nil {
				send(ports.ChangeEvent{Err: fmt.Errorf("decode change: %w", err)})
				return
			}
			if !send(ports.ChangeEvent{Identifier: doc.FullDocument.Identifier}) {
				return
			}
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			send(ports.ChangeEvent{Err: fmt.Errorf("change stream: %w", err)})
		}
	}()
	return out, nil
}
