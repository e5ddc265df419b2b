package repository

import (
	"context"
	"errors"

	"github.com/reshetovitsme/keyword-share-bot/internal/modules/state/domain"
	"github.com/samber/oops"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStorage implements Store with one MongoDB document
type MongoStorage struct {
	client     *mongo.Client
	collection *mongo.Collection
	documentID string
}

type mongoRecord struct {
	ID              string `bson:"_id"`
	domain.Document `bson:",inline"`
}

// NewMongoStorage connects to MongoDB and verifies the connection
func NewMongoStorage(ctx context.Context, uri, database, collection, documentID string) (*MongoStorage, error) {
	if uri == "" {
		return nil, oops.With("context", "mongo uri is empty").Errorf("store.mongo_uri is required for the mongo driver")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, oops.With("database", database, "context", "failed to connect to MongoDB").Wrap(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, oops.With("database", database, "context", "failed to ping MongoDB").Wrap(err)
	}

	return &MongoStorage{
		client:     client,
		collection: client.Database(database).Collection(collection),
		documentID: documentID,
	}, nil
}

func (s *MongoStorage) Load(ctx context.Context) (*domain.BotState, error) {
	var record mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"_id": s.documentID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.New(), nil
		}
		return nil, oops.With("document_id", s.documentID, "context", "failed to load state").Wrap(err)
	}

	return domain.FromDocument(&record.Document), nil
}

func (s *MongoStorage) Save(ctx context.Context, state *domain.BotState) error {
	record := mongoRecord{ID: s.documentID, Document: *state.ToDocument()}
	_, err := s.collection.ReplaceOne(ctx,
		bson.M{"_id": s.documentID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return oops.With("document_id", s.documentID, "context", "failed to save state").Wrap(err)
	}
	return nil
}

func (s *MongoStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
