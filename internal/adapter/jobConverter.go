package adapter

import (
	"github.com/akolanti/ChatbotAPI/internal/api"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.UploadAcceptedResponse {
	return api.UploadAcceptedResponse{
		Success:   true,
		JobID:     id,
		StatusURL: "/documents/jobs/" + id,
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	res := api.JobResponse{
		Success:    job.Status != jobModel.JobStatusError,
		ID:         job.Id,
		Status:     string(job.Status),
		Step:       string(job.CurrentStep),
		Title:      job.JobPayload.Title,
		FileName:   job.JobPayload.FileName,
		DocumentID: job.JobPayload.DocumentId,
		ChunkCount: job.JobPayload.ChunkCount,
		Error:      errorPtr,
		StartTime:  job.CreatedTime,
	}
	if !job.EndTime.IsZero() {
		end := job.EndTime
		res.EndTime = &end
	}
	return res
}

func BadRequest(message string) api.ErrorResponse {
	return api.ErrorResponse{Success: false, Message: message}
}
