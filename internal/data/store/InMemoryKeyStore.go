package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/google/uuid"
)

type InMemoryKeyStore struct {
	keyMutex *sync.RWMutex
	byHash   map[string]string
	records  map[string]keyModel.APIKeyRecord
}

var _ keyModel.KeyStore = (*InMemoryKeyStore)(nil)

// InitInMemoryKeyStore seeds one active record per apiKey -> containerID pair.
func InitInMemoryKeyStore(seeds map[string]string) *InMemoryKeyStore {
	store := &InMemoryKeyStore{
		keyMutex: new(sync.RWMutex),
		byHash:   make(map[string]string),
		records:  make(map[string]keyModel.APIKeyRecord),
	}
	for apiKey, containerID := range seeds {
		store.PutKey(apiKey, keyModel.APIKeyRecord{
			ID:          uuid.NewString(),
			ContainerID: containerID,
			Active:      true,
		})
	}
	return store
}

func (store *InMemoryKeyStore) PutKey(apiKey string, record keyModel.APIKeyRecord) {
	store.keyMutex.Lock()
	defer store.keyMutex.Unlock()
	store.byHash[HashAPIKey(apiKey)] = record.ID
	store.records[record.ID] = record
}

func (store *InMemoryKeyStore) ResolveKey(ctx context.Context, apiKey string) (keyModel.APIKeyRecord, error) {
	store.keyMutex.RLock()
	defer store.keyMutex.RUnlock()
	id, ok := store.byHash[HashAPIKey(apiKey)]
	if !ok {
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	}
	record, ok := store.records[id]
	if !ok {
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	}
	return record, nil
}

func (store *InMemoryKeyStore) TouchUsage(ctx context.Context, keyID string, at time.Time) error {
	store.keyMutex.Lock()
	defer store.keyMutex.Unlock()
	record, ok := store.records[keyID]
	if !ok {
		return commonModels.ErrKeyNotFound
	}
	t := at.UTC()
	record.LastUsedAt = &t
	store.records[keyID] = record
	return nil
}
