package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/secintel/kevfeed/internal/kev"
)

const (
	DefaultDatabase   = "security_intelligence"
	DefaultCollection = "cisa_vulnerabilities_raw"
)

// ErrEmptyBatch is returned before any connection is made. Loading zero
// records under full-refresh semantics is indistinguishable from data loss.
var ErrEmptyBatch = errors.New("refusing to load an empty batch")

type Loader struct {
	uri        string
	database   string
	collection string
	logger     *zap.Logger
}

type Option func(*Loader)

func WithDatabase(database string) Option {
	return func(l *Loader) {
		l.database = database
	}
}

func WithCollection(collection string) Option {
	return func(l *Loader) {
		l.collection = collection
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

func NewLoader(uri string, opts ...Option) *Loader {
	l := &Loader{
		uri:        uri,
		database:   DefaultDatabase,
		collection: DefaultCollection,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the collection contents with batch. The connection is owned
// by this call and released on every exit path. Delete and insert are two
// separate operations; a crash between them leaves the collection empty.
func (l *Loader) Load(ctx context.Context, batch kev.Batch) error {
	if len(batch) == 0 {
		l.logger.Warn("no records provided for storage")
		return ErrEmptyBatch
	}

	l.logger.Info("storing records",
		zap.Int("records", len(batch)),
		zap.String("database", l.database),
		zap.String("collection", l.collection))

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(l.uri))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			l.logger.Warn("error closing mongodb connection", zap.Error(err))
			return
		}
		l.logger.Info("mongodb connection closed")
	}()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("ping: %w", err)
	}

	coll := client.Database(l.database).Collection(l.collection)

	existing, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("count existing documents: %w", err)
	}
	if existing > 0 {
		res, err := coll.DeleteMany(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("delete existing documents: %w", err)
		}
		l.logger.Info("removed existing records", zap.Int64("count", res.DeletedCount))
	}

	docs := make([]interface{}, len(batch))
	for i, record := range batch {
		docs[i] = record
	}

	res, err := coll.InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	l.ensureIndexes(ctx, coll)

	l.logger.Info("stored vulnerability records",
		zap.Int("inserted", len(res.InsertedIDs)))

	return nil
}

// ensureIndexes is best effort. A failure is logged, never fatal.
func (l *Loader) ensureIndexes(ctx context.Context, coll *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "cveID", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "vendorProject", Value: 1}}},
		{Keys: bson.D{{Key: "record_processed_at", Value: 1}}},
	}

	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		l.logger.Warn("index creation failed", zap.Error(err))
		return
	}

	l.logger.Info("collection indexes ensured")
}
