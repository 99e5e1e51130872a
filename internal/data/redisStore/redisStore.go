package redisStore

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	Addr     string
	Password string
}

// Registry hands out one Store per redis DB number and closes them all when its
// context is cancelled.
type Registry struct {
	opts      Options
	mu        sync.Mutex
	instances map[int]*Store
	logger    *logger_i.Logger
	once      sync.Once
}

type Store struct {
	client *redis.Client
	Type   int
}

func NewRegistry(opts Options) *Registry {
	if opts.Addr == "" {
		opts.Addr = config.RedisAddr
	}
	return &Registry{
		opts:      opts,
		instances: make(map[int]*Store),
		logger:    logger_i.NewLogger("RedisStore"),
	}
}

// GetRedisStore returns nil when redis can't be reached, callers fall back to in-memory stores.
func (r *Registry) GetRedisStore(ctx context.Context, dbType int) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if instance, exists := r.instances[dbType]; exists {
		return instance
	}
	return r.createNewStore(ctx, dbType)
}

func (r *Registry) createNewStore(ctx context.Context, dbType int) *Store {
	log := r.logger.With("db", strconv.Itoa(dbType))
	newClient := redis.NewClient(&redis.Options{
		Addr:                  r.opts.Addr,
		Password:              r.opts.Password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		log.Error("Redis is offline", "addr", r.opts.Addr, "error", err)
		_ = newClient.Close()
		return nil
	}

	log.Info("Redis store init successfully")

	newStore := &Store{
		client: newClient,
		Type:   dbType,
	}
	r.instances[dbType] = newStore
	r.once.Do(func() {
		go r.closeOnDone(ctx)
	})
	return newStore
}

func (r *Registry) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	r.Close()
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for dbType, store := range r.instances {
		if err := store.client.Close(); err != nil {
			r.logger.Error("Error closing redis client", "db", dbType, "error", err)
		}
		delete(r.instances, dbType)
	}
	r.logger.Info("Redis stores closed")
}

// NewStoreFromClient wraps an existing client, used by tests running against miniredis.
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client}
}
