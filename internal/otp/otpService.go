package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/otpModel"
	"github.com/akolanti/ChatbotAPI/internal/email"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const invalidCodeMessage = "Invalid or expired code"

type Service interface {
	Issue(ctx context.Context, address string) error
	Verify(ctx context.Context, address string, code string) error
}

type ServiceConfig struct {
	Store       otpModel.OTPStore
	Sender      email.Sender
	TTL         time.Duration
	MaxAttempts int
	// Generate is swapped in tests, defaults to a crypto/rand code.
	Generate func() (string, error)
}

type service struct {
	store       otpModel.OTPStore
	sender      email.Sender
	ttl         time.Duration
	maxAttempts int
	generate    func() (string, error)
	logger      *logger_i.Logger
}

func NewService(cfg ServiceConfig) Service {
	s := &service{
		store:       cfg.Store,
		sender:      cfg.Sender,
		ttl:         cfg.TTL,
		maxAttempts: cfg.MaxAttempts,
		generate:    cfg.Generate,
		logger:      logger_i.NewLogger("OTPService"),
	}
	if s.ttl <= 0 {
		s.ttl = config.OTPTTL
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = config.OTPMaxAttempts
	}
	if s.generate == nil {
		s.generate = GenerateCode
	}
	return s
}

// GenerateCode returns a zero padded numeric code of config.OTPLength digits.
func GenerateCode() (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(config.OTPLength), nil)
	n, err := rand.Int(rand.Reader, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", config.OTPLength, n), nil
}

func hashCode(address, code string) string {
	sum := sha256.Sum256([]byte(address + ":" + code))
	return hex.EncodeToString(sum[:])
}

func normalizeAddress(address string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return "", commonModels.ValidationError("a valid email is required")
	}
	return strings.ToLower(parsed.Address), nil
}

func isNumericCode(code string) bool {
	if len(code) != config.OTPLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *service) Issue(ctx context.Context, address string) error {
	addr, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	log := s.logger.WithTrace(ctx)

	code, err := s.generate()
	if err != nil {
		return commonModels.InternalError("could not generate code", err)
	}
	if err := s.store.SaveCode(ctx, addr, hashCode(addr, code), s.ttl); err != nil {
		log.Error("Could not store code", "error", err)
		return commonModels.StorageError("Could not store verification code", err)
	}
	if err := s.sender.SendOTP(ctx, addr, code, s.ttl); err != nil {
		metrics.CountOTP("issue", "send_error")
		// a code nobody received must not stay valid
		if delErr := s.store.DeleteCode(ctx, addr); delErr != nil {
			log.Error("Could not drop undelivered code", "error", delErr)
		}
		return err
	}
	metrics.CountOTP("issue", "sent")
	log.Info("Verification code issued")
	return nil
}

func (s *service) Verify(ctx context.Context, address string, code string) error {
	addr, err := normalizeAddress(address)
	if err != nil {
		return err
	}
	code = strings.TrimSpace(code)
	if !isNumericCode(code) {
		return commonModels.ValidationError(fmt.Sprintf("code must be %d digits", config.OTPLength))
	}
	log := s.logger.WithTrace(ctx)

	stored, err := s.store.GetCode(ctx, addr)
	if errors.Is(err, commonModels.ErrOTPNotFound) {
		metrics.CountOTP("verify", "missing")
		return commonModels.AuthError(invalidCodeMessage)
	}
	if err != nil {
		return commonModels.StorageError("Could not read verification code", err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(addr, code))) != 1 {
		metrics.CountOTP("verify", "mismatch")
		attempts, err := s.store.IncrementAttempts(ctx, addr, s.ttl)
		if err != nil {
			log.Error("Could not count failed attempt", "error", err)
		} else if attempts >= s.maxAttempts {
			log.Warn("Too many failed attempts, dropping code", "attempts", attempts)
			_ = s.store.DeleteCode(ctx, addr)
		}
		return commonModels.AuthError(invalidCodeMessage)
	}

	if err := s.store.DeleteCode(ctx, addr); err != nil {
		return commonModels.StorageError("Could not consume verification code", err)
	}
	metrics.CountOTP("verify", "ok")
	log.Info("Verification code accepted")
	return nil
}
