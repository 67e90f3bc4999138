package database

import (
	"context"
	"fmt"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/models"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger zerolog.Logger
	now    func() time.Time
}

func NewMongoStore(ctx context.Context, cfg config.MongoConfig, logger *zerolog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "mongo-store").Logger()
	}
	l.Info().Str("database", cfg.Database).Msg("mongo store initialized")

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		logger: l,
		now:    time.Now,
	}, nil
}

// addUpdate builds the upsert for Add: plain values under $set, sentinel keys under $currentDate.
func addUpdate(fields models.Fields) bson.M {
	plain, stamped := splitServerTimestamps(fields)
	update := bson.M{}
	if len(plain) > 0 {
		update["$set"] = bson.M(plain)
	}
	if len(stamped) > 0 {
		current := bson.M{}
		for _, k := range stamped {
			current[k] = true
		}
		update["$currentDate"] = current
	}
	return update
}

// Add upserts under a fresh ObjectID so that $currentDate can stamp server time.
func (s *MongoStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	id := primitive.NewObjectID()

	_, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, addUpdate(fields), options.Update().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("insert document into %s: %w", collection, err)
	}
	return id.Hex(), nil
}

// replacement builds the document for Set. Replacement documents cannot carry
// update operators, so timestamps use the process clock here.
func replacement(fields models.Fields, now time.Time) bson.M {
	return bson.M(fields.Resolve(now))
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, replacement(fields, s.now()), options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
