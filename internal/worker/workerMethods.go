package worker

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	jobmodel "github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

func (p *Pool) executeJob(job jobmodel.Job) {
	start := time.Now()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, p.jobTimeout)
	defer cancel()
	log := p.logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job")

	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()

	job = p.saveJobState(ctx, job, jobmodel.JobStatusRunning, log)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job = p.ingestDocument(ctx, job, log)
	default:
		job = failJob(job, http.StatusBadRequest, "unknown job type")
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
		job.CurrentStep = jobmodel.Complete
	}
	job = p.saveJobState(context.WithoutCancel(ctx), job, job.Status, log)
	log.Info("Job finished", "status", job.Status, "documentId", job.JobPayload.DocumentId)
}

func (p *Pool) ingestDocument(ctx context.Context, job jobmodel.Job, log *logger_i.Logger) jobmodel.Job {
	path := job.JobPayload.FilePath
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Could not remove uploaded file", "path", path, "error", err)
		}
	}()

	job.CurrentStep = jobmodel.IngestExtracting
	job = p.saveJobState(ctx, job, jobmodel.JobStatusRunning, log)
	text, err := ingest.ExtractText(path, log)
	if errors.Is(err, ingest.ErrUnsupportedType) {
		return failJob(job, http.StatusBadRequest, "unsupported document type")
	}
	if err != nil {
		log.Error("Text extraction failed", "error", err)
		return failJob(job, http.StatusUnprocessableEntity, "could not read document")
	}
	if ingest.IsBlank(text) {
		return failJob(job, http.StatusUnprocessableEntity, "no text could be extracted from document")
	}

	job.CurrentStep = jobmodel.IngestStoring
	job = p.saveJobState(ctx, job, jobmodel.JobStatusRunning, log)
	res, err := p.jobService.DocumentStore.AddDocument(ctx, documentModel.NewDocument{
		Title: job.JobPayload.Title,
		Text:  text,
		Tags:  job.JobPayload.Tags,
	})
	if err != nil {
		log.Error("Could not store document", "error", err)
		return failJob(job, commonModels.HTTPStatus(err), commonModels.PublicMessage(err))
	}

	job.JobPayload.DocumentId = res.ID
	job.JobPayload.ChunkCount = res.Doc.ChunkCount
	return job
}

func failJob(job jobmodel.Job, code int, message string) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.Error
	job.Error = jobmodel.JobError{Code: code, Message: message, Retry: code >= http.StatusInternalServerError}
	return job
}

func (p *Pool) saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus, log *logger_i.Logger) jobmodel.Job {
	job.Status = jobStatus
	if err := p.jobService.JobStore.SaveJob(ctx, job); err != nil {
		log.Error("Failed to update job state", "error", err)
	}
	return job
}
