package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKeyStore reads the key management database directly. Expected table:
//
//	api_keys(id text primary key, key_hash text unique, container_id text,
//	         active boolean, last_used_at timestamptz null)
type PostgresKeyStore struct {
	pool   *pgxpool.Pool
	logger *logger_i.Logger
}

var _ keyModel.KeyStore = (*PostgresKeyStore)(nil)

func NewPostgresKeyStore(ctx context.Context, dsn string) (*PostgresKeyStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresKeyStore{pool: pool, logger: logger_i.NewLogger("PostgresKeyStore")}, nil
}

func (s *PostgresKeyStore) ResolveKey(ctx context.Context, apiKey string) (keyModel.APIKeyRecord, error) {
	var record keyModel.APIKeyRecord
	var lastUsed *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT id, container_id, active, last_used_at FROM api_keys WHERE key_hash = $1`,
		HashAPIKey(apiKey),
	).Scan(&record.ID, &record.ContainerID, &record.Active, &lastUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	}
	if err != nil {
		s.logger.WithTrace(ctx).Error("Key lookup failed", "error", err)
		return keyModel.APIKeyRecord{}, fmt.Errorf("select api key: %w", err)
	}
	record.LastUsedAt = lastUsed
	return record, nil
}

func (s *PostgresKeyStore) TouchUsage(ctx context.Context, keyID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, keyID, at.UTC())
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return commonModels.ErrKeyNotFound
	}
	return nil
}

func (s *PostgresKeyStore) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}
