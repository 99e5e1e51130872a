package keyModel

import (
	"context"
	"time"
)

// APIKeyRecord is owned by the key management side. The gateway only reads it and
// touches LastUsedAt.
type APIKeyRecord struct {
	ID          string     `json:"id"`
	ContainerID string     `json:"container_id"`
	Active      bool       `json:"active"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty"`
}

type KeyStore interface {
	// ResolveKey returns commonModels.ErrKeyNotFound when the key is unknown.
	ResolveKey(ctx context.Context, apiKey string) (APIKeyRecord, error)
	TouchUsage(ctx context.Context, keyID string, at time.Time) error
}

type contextKey struct{}

// WithRecord attaches the resolved key record to ctx for downstream handlers.
func WithRecord(ctx context.Context, record APIKeyRecord) context.Context {
	return context.WithValue(ctx, contextKey{}, record)
}

func RecordFromContext(ctx context.Context) (APIKeyRecord, bool) {
	record, ok := ctx.Value(contextKey{}).(APIKeyRecord)
	return record, ok
}
