package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/data/redisStore"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

// Redis layout:
//
//	apikey:lookup:<sha256(key)> -> record id
//	apikey:<id>                 -> hash {container_id, active, last_used_at}
const (
	keyLookupPrefix = "apikey:lookup:"
	keyRecordPrefix = "apikey:"
)

type RedisKeyStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ keyModel.KeyStore = (*RedisKeyStore)(nil)

// GetRedisKeyStore returns nil when redis is offline.
func GetRedisKeyStore(ctx context.Context, registry *redisStore.Registry) *RedisKeyStore {
	s := registry.GetRedisStore(ctx, config.RedisKeyStore)
	if s == nil {
		return nil
	}
	return NewRedisKeyStore(s)
}

func NewRedisKeyStore(s *redisStore.Store) *RedisKeyStore {
	return &RedisKeyStore{
		store:  s,
		logger: logger_i.NewLogger("KeyStore"),
	}
}

func HashAPIKey(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(sum[:])
}

func (s *RedisKeyStore) ResolveKey(ctx context.Context, apiKey string) (keyModel.APIKeyRecord, error) {
	log := s.logger.WithTrace(ctx)
	id, err := s.store.Get(ctx, keyLookupPrefix+HashAPIKey(apiKey))
	if s.store.IsNil(err) {
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	} else if err != nil {
		log.Error("Key lookup failed", "error", err)
		return keyModel.APIKeyRecord{}, err
	}

	fields, err := s.store.HashGetAll(ctx, keyRecordPrefix+id)
	if err != nil {
		log.Error("Key record read failed", "keyId", id, "error", err)
		return keyModel.APIKeyRecord{}, err
	}
	if len(fields) == 0 {
		// lookup entry outlived its record
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	}

	record := keyModel.APIKeyRecord{
		ID:          id,
		ContainerID: fields["container_id"],
	}
	record.Active, _ = strconv.ParseBool(fields["active"])
	if raw := fields["last_used_at"]; raw != "" {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			record.LastUsedAt = &t
		}
	}
	log.Debug("Key resolved", "keyId", id, "active", record.Active)
	return record, nil
}

func (s *RedisKeyStore) TouchUsage(ctx context.Context, keyID string, at time.Time) error {
	ok, err := s.store.HashSetIfExists(ctx, keyRecordPrefix+keyID, "last_used_at", at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		s.logger.WithTrace(ctx).Error("Usage touch failed", "keyId", keyID, "error", err)
		return err
	}
	if !ok {
		return commonModels.ErrKeyNotFound
	}
	return nil
}

// PutKey registers a key, used for dev seeding and tests. Key management proper lives elsewhere.
func (s *RedisKeyStore) PutKey(ctx context.Context, apiKey string, record keyModel.APIKeyRecord) error {
	err := s.store.HashSet(ctx, keyRecordPrefix+record.ID, map[string]interface{}{
		"container_id": record.ContainerID,
		"active":       strconv.FormatBool(record.Active),
	})
	if err != nil {
		return err
	}
	return s.store.Set(ctx, keyLookupPrefix+HashAPIKey(apiKey), record.ID, 0)
}
