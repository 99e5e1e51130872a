package store

import (
	"context"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/data/redisStore"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/otpModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const (
	otpCodePrefix     = "otp:code:"
	otpAttemptsPrefix = "otp:attempts:"
)

type RedisOTPStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ otpModel.OTPStore = (*RedisOTPStore)(nil)

// GetRedisOTPStore returns nil when redis is offline.
func GetRedisOTPStore(ctx context.Context, registry *redisStore.Registry) *RedisOTPStore {
	s := registry.GetRedisStore(ctx, config.RedisOTPStore)
	if s == nil {
		return nil
	}
	return NewRedisOTPStore(s)
}

func NewRedisOTPStore(s *redisStore.Store) *RedisOTPStore {
	return &RedisOTPStore{store: s, logger: logger_i.NewLogger("OTPStore")}
}

func (s *RedisOTPStore) SaveCode(ctx context.Context, email string, codeHash string, ttl time.Duration) error {
	if err := s.store.Del(ctx, otpAttemptsPrefix+email); err != nil {
		return err
	}
	return s.store.Set(ctx, otpCodePrefix+email, codeHash, ttl)
}

func (s *RedisOTPStore) GetCode(ctx context.Context, email string) (string, error) {
	val, err := s.store.Get(ctx, otpCodePrefix+email)
	if s.store.IsNil(err) {
		return "", commonModels.ErrOTPNotFound
	}
	return val, err
}

func (s *RedisOTPStore) DeleteCode(ctx context.Context, email string) error {
	return s.store.Del(ctx, otpCodePrefix+email, otpAttemptsPrefix+email)
}

func (s *RedisOTPStore) IncrementAttempts(ctx context.Context, email string, ttl time.Duration) (int, error) {
	n, err := s.store.IncrWithTTL(ctx, otpAttemptsPrefix+email, ttl)
	return int(n), err
}
