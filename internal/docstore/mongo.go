package docstore

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store using MongoDB. Live subscriptions use change
// streams, which require a replica-set deployment.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("[MongoStore] Connected to %s", database)
	return &MongoStore{
		client: client,
		db:     client.Database(database),
	}, nil
}

// QueryByField returns every document whose field equals value.
func (s *MongoStore) QueryByField(ctx context.Context, collection, field string, value any) ([]Document, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s by %s: %w", collection, field, err)
	}
	defer cur.Close(ctx)

	return decodeMongoCursor(ctx, cur)
}

// OrderedQuery returns up to limit documents ordered by orderBy descending,
// continuing after the cursor's last record when one is given.
func (s *MongoStore) OrderedQuery(ctx context.Context, collection, orderBy string, limit int, after *Cursor) ([]Document, error) {
	// The continuation filter mirrors the (orderBy, _id) sort: strictly
	// older records, or same-valued records with a smaller id, so ties on
	// the cursor's orderBy value are not skipped.
	filter := bson.M{}
	if after != nil {
		if last, ok := after.Last.Fields[orderBy]; ok {
			v := toMongoValue(last)
			filter["$or"] = bson.A{
				bson.M{orderBy: bson.M{"$lt": v}},
				bson.M{orderBy: v, "_id": bson.M{"$lt": after.Last.ID}},
			}
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: orderBy, Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to run ordered query on %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	return decodeMongoCursor(ctx, cur)
}

// Watch opens a change stream scoped to a single document. The current state
// is delivered first, then one snapshot per change-stream event.
func (s *MongoStore) Watch(ctx context.Context, collection, id string) (Subscription, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
	}
	csOpts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	streamCtx, cancel := context.WithCancel(context.Background())
	stream, err := s.db.Collection(collection).Watch(streamCtx, pipeline, csOpts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open change stream on %s/%s: %w", collection, id, err)
	}

	sub := &mongoSubscription{
		cancel:  cancel,
		updates: make(chan Snapshot, 16),
	}

	go func() {
		defer close(sub.updates)
		defer stream.Close(streamCtx)

		// Current state before streaming changes.
		var raw bson.M
		err := s.db.Collection(collection).FindOne(streamCtx, bson.M{"_id": id}).Decode(&raw)
		switch {
		case err == mongo.ErrNoDocuments:
			sub.send(Snapshot{Doc: Document{ID: id}, Exists: false})
		case err != nil:
			sub.send(Snapshot{Doc: Document{ID: id}, Err: err})
		default:
			sub.send(Snapshot{Doc: fromMongoDoc(raw), Exists: true})
		}

		for stream.Next(streamCtx) {
			var event struct {
				OperationType string `bson:"operationType"`
				FullDocument  bson.M `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				sub.send(Snapshot{Doc: Document{ID: id}, Err: err})
				continue
			}
			if event.OperationType == "delete" || event.FullDocument == nil {
				sub.send(Snapshot{Doc: Document{ID: id}, Exists: false})
				continue
			}
			sub.send(Snapshot{Doc: fromMongoDoc(event.FullDocument), Exists: true})
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			sub.send(Snapshot{Doc: Document{ID: id}, Err: err})
		}
	}()

	return sub, nil
}

// Insert writes a new document with the document id as _id.
func (s *MongoStore) Insert(ctx context.Context, collection string, doc Document) error {
	fields := bson.M{"_id": doc.ID}
	for k, v := range doc.Fields {
		fields[k] = toMongoValue(v)
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, fields); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	return nil
}

// Close disconnects the MongoDB client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func decodeMongoCursor(ctx context.Context, cur *mongo.Cursor) ([]Document, error) {
	var raws []bson.M
	if err := cur.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromMongoDoc(raw))
	}
	return docs, nil
}

// fromMongoDoc converts a raw BSON document, tagging native timestamps.
func fromMongoDoc(raw bson.M) Document {
	doc := Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			doc.ID = mongoID(v)
			continue
		}
		doc.Fields[k] = fromMongoValue(v)
	}
	return doc
}

func mongoID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprintf("%v", id)
	}
}

func fromMongoValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return TimestampOf(val.Time())
	case primitive.Timestamp:
		return Timestamp{Seconds: int64(val.T)}
	case time.Time:
		return TimestampOf(val)
	case primitive.ObjectID:
		return val.Hex()
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = fromMongoValue(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, el := range val {
			out[el.Key] = fromMongoValue(el.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = fromMongoValue(item)
		}
		return out
	case int32:
		return int64(val)
	default:
		return v
	}
}

func toMongoValue(v any) any {
	switch val := v.(type) {
	case Timestamp:
		return val.Time()
	case map[string]any:
		out := bson.M{}
		for k, item := range val {
			out[k] = toMongoValue(item)
		}
		return out
	case []any:
		out := bson.A{}
		for _, item := range val {
			out = append(out, toMongoValue(item))
		}
		return out
	default:
		return v
	}
}

type mongoSubscription struct {
	cancel  context.CancelFunc
	updates chan Snapshot

	mu      sync.Mutex
	stopped bool
}

func (m *mongoSubscription) Updates() <-chan Snapshot { return m.updates }

func (m *mongoSubscription) send(snap Snapshot) {
	select {
	case m.updates <- snap:
	default:
		// Keep only the freshest state when the consumer lags.
		select {
		case <-m.updates:
		default:
		}
		m.updates <- snap
	}
}

func (m *mongoSubscription) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	m.cancel()
}
