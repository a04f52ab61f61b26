package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcmongodb "github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/secintel/kevfeed/internal/kev"
)

func TestLoadEmptyBatch(t *testing.T) {
	// The empty-batch guard fires before any connection is attempted, so an
	// unreachable URI must not matter.
	l := NewLoader("mongodb://127.0.0.1:1")

	err := l.Load(context.Background(), kev.Batch{})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	err = l.Load(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestIntegrationLoad(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	mongoContainer, err := tcmongodb.Run(ctx, "mongo:6")
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate mongoContainer: %s", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	coll := client.Database("test_intel").Collection(DefaultCollection)

	t.Run("full refresh replaces existing documents", func(t *testing.T) {
		_, err := coll.InsertMany(ctx, []interface{}{
			bson.M{"cveID": "CVE-2020-OLD-1"},
			bson.M{"cveID": "CVE-2020-OLD-2"},
			bson.M{"cveID": "CVE-2020-OLD-3"},
		})
		require.NoError(t, err)

		batch := kev.Batch{
			{
				"cveID":               "CVE-2021-1",
				"vendorProject":       "Acme",
				"record_position":     0,
				"record_processed_at": time.Now().UTC(),
				"source_system":       kev.SourceSystem,
			},
			{
				"cveID":               "CVE-2021-2",
				"vendorProject":       "Initech",
				"record_position":     1,
				"record_processed_at": time.Now().UTC(),
				"source_system":       kev.SourceSystem,
			},
		}

		l := NewLoader(uri, WithDatabase("test_intel"))
		require.NoError(t, l.Load(ctx, batch))

		count, err := coll.CountDocuments(ctx, bson.D{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		old, err := coll.CountDocuments(ctx, bson.M{"cveID": bson.M{"$regex": "OLD"}})
		require.NoError(t, err)
		assert.Zero(t, old)

		var doc bson.M
		err = coll.FindOne(ctx, bson.M{"cveID": "CVE-2021-1"}).Decode(&doc)
		require.NoError(t, err)
		assert.Equal(t, "Acme", doc["vendorProject"])
		assert.Equal(t, kev.SourceSystem, doc["source_system"])
	})

	t.Run("indexes are created", func(t *testing.T) {
		cursor, err := coll.Indexes().List(ctx)
		require.NoError(t, err)

		var indexes []bson.M
		require.NoError(t, cursor.All(ctx, &indexes))

		names := make(map[string]bool)
		for _, idx := range indexes {
			names[idx["name"].(string)] = true
		}
		assert.True(t, names["cveID_1"])
		assert.True(t, names["vendorProject_1"])
		assert.True(t, names["record_processed_at_1"])
	})

	t.Run("second load replaces the first", func(t *testing.T) {
		batch := kev.Batch{
			{"cveID": "CVE-2021-9", "vendorProject": "Acme", "record_position": 0},
		}

		l := NewLoader(uri, WithDatabase("test_intel"))
		require.NoError(t, l.Load(ctx, batch))

		count, err := coll.CountDocuments(ctx, bson.D{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
