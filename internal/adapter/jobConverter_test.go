package adapter

import (
	"testing"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
)

func TestToAPIResponse(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := jobModel.Job{
		Id:          "job-1",
		Status:      jobModel.JobStatusComplete,
		CurrentStep: jobModel.Complete,
		CreatedTime: start,
		EndTime:     start.Add(time.Second),
		JobPayload:  jobModel.JobPayload{Title: "Handbook", FileName: "h.pdf", DocumentId: "doc-1", ChunkCount: 3},
	}

	res := ToAPIResponse(job)
	if !res.Success || res.DocumentID != "doc-1" || res.ChunkCount != 3 {
		t.Fatalf("unexpected response %+v", res)
	}
	if res.Error != nil {
		t.Errorf("expected no error, got %+v", res.Error)
	}
	if res.EndTime == nil || !res.EndTime.Equal(start.Add(time.Second)) {
		t.Errorf("end time not carried over: %v", res.EndTime)
	}
}

func TestToAPIResponse_Error(t *testing.T) {
	job := jobModel.Job{
		Id:     "job-2",
		Status: jobModel.JobStatusError,
		Error:  jobModel.JobError{Code: 400, Message: "unsupported document type"},
	}
	res := ToAPIResponse(job)
	if res.Success {
		t.Error("failed job reported as success")
	}
	if res.Error == nil || res.Error.Message != "unsupported document type" {
		t.Errorf("error not carried over: %+v", res.Error)
	}
	if res.EndTime != nil {
		t.Error("zero end time should be omitted")
	}
}

func TestToInitJobResponse(t *testing.T) {
	res := ToInitJobResponse("abc")
	if res.StatusURL != "/documents/jobs/abc" || res.JobID != "abc" || !res.Success {
		t.Errorf("unexpected %+v", res)
	}
}
