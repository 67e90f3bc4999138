package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ridebooking/internal/config"
	"ridebooking/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresStore keeps documents in a JSONB table. Server timestamps come from now() in Postgres.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig, logger *zerolog.Logger) (*PostgresStore, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres parse dsn: %w", err)
	}

	pcfg.ConnConfig.ConnectTimeout = 5 * time.Second
	if pcfg.ConnConfig.RuntimeParams == nil {
		pcfg.ConnConfig.RuntimeParams = make(map[string]string, 1)
	}
	pcfg.ConnConfig.RuntimeParams["timezone"] = "UTC"
	pcfg.HealthCheckPeriod = 30 * time.Second
	pcfg.MaxConnIdleTime = 5 * time.Minute
	if cfg.MaxConnections > 0 {
		pcfg.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	if _, err := pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS documents (
            collection TEXT NOT NULL,
            id TEXT NOT NULL,
            body JSONB NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            PRIMARY KEY (collection, id)
        )`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "postgres-store").Logger()
	}
	l.Info().Int32("max_conns", pcfg.MaxConns).Msg("postgres store initialized")

	return &PostgresStore{pool: pool, logger: l}, nil
}

// splitServerTimestamps separates sentinel keys from plain values.
func splitServerTimestamps(fields models.Fields) (models.Fields, []string) {
	plain := make(models.Fields, len(fields))
	var stamped []string
	for k, v := range fields {
		if models.IsServerTimestamp(v) {
			stamped = append(stamped, k)
			continue
		}
		plain[k] = v
	}
	return plain, stamped
}

const stampedBody = `$3::jsonb || (
    SELECT COALESCE(jsonb_object_agg(k, to_jsonb(now())), '{}'::jsonb)
    FROM unnest($4::text[]) AS k
)`

// documentArgs returns the JSON body without sentinels and the keys Postgres stamps with now().
func documentArgs(fields models.Fields) (string, []string, error) {
	plain, stamped := splitServerTimestamps(fields)
	body, err := json.Marshal(plain)
	if err != nil {
		return "", nil, fmt.Errorf("encode document: %w", err)
	}
	return string(body), stamped, nil
}

func (s *PostgresStore) Add(ctx context.Context, collection string, fields models.Fields) (string, error) {
	body, stamped, err := documentArgs(fields)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query := `INSERT INTO documents (collection, id, body) VALUES ($1, $2, ` + stampedBody + `)`
	if _, err := s.pool.Exec(ctx, query, collection, id, body, stamped); err != nil {
		return "", fmt.Errorf("insert document into %s: %w", collection, err)
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, fields models.Fields) error {
	body, stamped, err := documentArgs(fields)
	if err != nil {
		return err
	}

	query := `INSERT INTO documents (collection, id, body) VALUES ($1, $2, ` + stampedBody + `)
        ON CONFLICT (collection, id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, collection, id, body, stamped); err != nil {
		return fmt.Errorf("set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
