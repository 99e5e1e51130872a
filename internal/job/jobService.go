package job

import (
	"context"
	"sync/atomic"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type Service struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	DocumentStore     documentModel.DocumentStore
	logger            *logger_i.Logger
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	RequestCount      int64
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
	DocumentStore     documentModel.DocumentStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		RequestCount:      cfg.RequestCount,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
		DocumentStore:     cfg.DocumentStore,
		logger:            logger_i.NewLogger("JobService"),
	}
}

// Enqueue records the job as queued and hands it to the worker pool. The send blocks while
// the buffer is full so uploads apply backpressure, bounded by ctx.
func (s *Service) Enqueue(ctx context.Context, newJob jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", newJob.Id)
	newJob.Status = jobModel.JobStatusQueued
	if err := s.JobStore.SaveJob(ctx, newJob); err != nil {
		log.Error("Could not save queued job", "error", err)
		return commonModels.StorageError("Could not queue document", err)
	}

	select {
	case s.JobChannel <- newJob:
	case <-ctx.Done():
		log.Warn("Request ended before the job could be queued")
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), newJob.Id)
		return commonModels.InternalError("Could not queue document", ctx.Err())
	}
	metrics.IncrementJobsInQueue()
	log.Info("Created new job")

	//a new worker every few requests, ingest jobs do external io so they get a worker each
	//idle workers retire on their own so this keeps one worker running most of the time
	accurateCount := atomic.AddInt64(&s.RequestCount, 1)
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || newJob.JobType == jobModel.JobTypeIngest {
		select {
		case s.DispatcherChannel <- true:
			metrics.StartDispatcherSignalCount() //metrics
		default:
			// a signal is already pending
		}
	}
	return nil
}

func (s *Service) GetJob(ctx context.Context, id string) (jobModel.Job, bool) {
	if id == "" {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
