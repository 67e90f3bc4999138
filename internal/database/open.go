package database

import (
	"context"
	"fmt"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/domain"
	"ridebooking/internal/metrics"
	"ridebooking/internal/models"

	"github.com/rs/zerolog"
)

// Open builds the DocumentStore selected by cfg.Driver, wrapped with latency metrics.
func Open(ctx context.Context, cfg config.StoreConfig, logger *zerolog.Logger) (domain.DocumentStore, error) {
	var (
		store domain.DocumentStore
		err   error
	)

	switch cfg.Driver {
	case config.DriverMemory, "":
		store = NewMemoryStore()
	case config.DriverSQLite:
		store, err = NewSQLiteStore(cfg.SQLite.Path, logger)
	case config.DriverPostgres:
		store, err = NewPostgresStore(ctx, cfg.Postgres, logger)
	case config.DriverMongo:
		store, err = NewMongoStore(ctx, cfg.Mongo, logger)
	case config.DriverFirestore:
		store, err = NewFirestoreStore(ctx, cfg.Firestore, logger)
	case config.DriverDynamoDB:
		store, err = NewDynamoStore(ctx, cfg.DynamoDB, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverMemory
	}
	return Instrument(store, driver), nil
}

// InstrumentedStore records write latency for every call to the wrapped store.
type InstrumentedStore struct {
	domain.DocumentStore
	driver string
}

func Instrument(store domain.DocumentStore, driver string) *InstrumentedStore {
	return &InstrumentedStore{DocumentStore: store, driver: driver}
}

func (s *InstrumentedStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	start := time.Now()
	id, err := s.DocumentStore.Add(ctx, collection, fields)
	metrics.ObserveStore(s.driver, "add", collection, err, time.Since(start))
	return id, err
}

func (s *InstrumentedStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	start := time.Now()
	err := s.DocumentStore.Set(ctx, collection, id, fields)
	metrics.ObserveStore(s.driver, "set", collection, err, time.Since(start))
	return err
}

// Unwrap exposes the underlying store.
func (s *InstrumentedStore) Unwrap() domain.DocumentStore {
	return s.DocumentStore
}
