package database

import (
	"context"
	"errors"
	"fmt"

	"ridebooking/internal/config"
	"ridebooking/internal/models"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// FirestoreStore writes through the Cloud Firestore client. Server timestamps
// map to firestore.ServerTimestamp and are assigned by Firestore itself.
type FirestoreStore struct {
	client *firestore.Client
	logger zerolog.Logger
}

func NewFirestoreStore(ctx context.Context, cfg config.FirestoreConfig, logger *zerolog.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "firestore-store").Logger()
	}
	l.Info().Str("project_id", cfg.ProjectID).Msg("firestore store initialized")

	return &FirestoreStore{client: client, logger: l}, nil
}

func toFirestore(fields models.Fields) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if models.IsServerTimestamp(v) {
			out[k] = firestore.ServerTimestamp
			continue
		}
		out[k] = v
	}
	return out
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, toFirestore(fields))
	if err != nil {
		return "", fmt.Errorf("add document to %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, toFirestore(fields)); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Ping lists at most one root collection to prove credentials and connectivity.
func (s *FirestoreStore) Ping(ctx context.Context) error {
	_, err := s.client.Collections(ctx).Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
