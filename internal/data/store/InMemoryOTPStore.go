package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/otpModel"
)

type pendingCode struct {
	hash      string
	attempts  int
	expiresAt time.Time
}

type InMemoryOTPStore struct {
	mu    sync.Mutex
	codes map[string]pendingCode
	now   func() time.Time
}

var _ otpModel.OTPStore = (*InMemoryOTPStore)(nil)

func InitInMemoryOTPStore() *InMemoryOTPStore {
	return &InMemoryOTPStore{
		codes: make(map[string]pendingCode),
		now:   time.Now,
	}
}

func (s *InMemoryOTPStore) SaveCode(ctx context.Context, email string, codeHash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = pendingCode{hash: codeHash, expiresAt: s.now().Add(ttl)}
	return nil
}

// live must be called with s.mu held. Expired entries are dropped lazily.
func (s *InMemoryOTPStore) live(email string) (pendingCode, bool) {
	code, ok := s.codes[email]
	if !ok {
		return code, false
	}
	if !s.now().Before(code.expiresAt) {
		delete(s.codes, email)
		return code, false
	}
	return code, true
}

func (s *InMemoryOTPStore) GetCode(ctx context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.live(email)
	if !ok {
		return "", commonModels.ErrOTPNotFound
	}
	return code.hash, nil
}

func (s *InMemoryOTPStore) DeleteCode(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

func (s *InMemoryOTPStore) IncrementAttempts(ctx context.Context, email string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.live(email)
	if !ok {
		return 0, commonModels.ErrOTPNotFound
	}
	code.attempts++
	s.codes[email] = code
	return code.attempts, nil
}
