package store

import (
	"context"
	"encoding/json"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/data/redisStore"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const jobKeyPrefix = "ingestjob:"

type RedisJobStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

var _ jobModel.JobStore = (*RedisJobStore)(nil)

// GetRedisJobStore returns nil when redis is offline.
func GetRedisJobStore(ctx context.Context, registry *redisStore.Registry) *RedisJobStore {
	s := registry.GetRedisStore(ctx, config.RedisJobStore)
	if s == nil {
		return nil
	}
	return NewRedisJobStore(s)
}

func NewRedisJobStore(s *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  s,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, jobKeyPrefix+job.Id, data, config.RedisJobStoreTTL)
	if err != nil {
		log.Error("Could not save job", "error", err)
		return err
	}
	log.Debug("Saved job to Redis", "step", job.CurrentStep)
	return nil
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	log := s.logger.WithTrace(ctx).With("jobId", jobId)
	val, err := s.store.Get(ctx, jobKeyPrefix+jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		log.Error("Could not read job", "error", err)
		return job, false
	}

	if err := json.Unmarshal([]byte(val), &job); err != nil {
		log.Error("Stored job is not valid json", "error", err)
		return job, false
	}
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	if err := s.store.Del(ctx, jobKeyPrefix+jobID); err != nil {
		s.logger.WithTrace(ctx).Error("Error deleting job from Redis", "jobId", jobID, "error", err)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}
