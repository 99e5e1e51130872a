package otpModel

import (
	"context"
	"time"
)

type IssueRequest struct {
	Email string `json:"email"`
}

type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// OTPStore keeps at most one pending code per email. Only the code hash is stored.
type OTPStore interface {
	SaveCode(ctx context.Context, email string, codeHash string, ttl time.Duration) error
	GetCode(ctx context.Context, email string) (string, error)
	DeleteCode(ctx context.Context, email string) error
	// IncrementAttempts returns the failed attempt count including this one.
	IncrementAttempts(ctx context.Context, email string, ttl time.Duration) (int, error)
}
