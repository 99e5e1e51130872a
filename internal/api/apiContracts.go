package api

import (
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
)

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"message is required"`
}

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Verification code sent"`
}

// public invocation ---------------------

type InvokeRequest struct {
	Message   string `json:"message" validate:"required" example:"What are your opening hours?"`
	SessionID string `json:"sessionId,omitempty" example:"pub_1718000000000"`
}

type InvokeResponse struct {
	Success     bool   `json:"success" example:"true"`
	Response    string `json:"response" example:"We are open 9 to 5."`
	ContainerID string `json:"containerId" example:"bot-1"`
	SessionID   string `json:"sessionId" example:"pub_1718000000000"`
}

// documents ---------------------

type AddDocumentRequest struct {
	Title string   `json:"title" validate:"required" example:"FAQ"`
	Text  string   `json:"text" validate:"required" example:"Opening hours are 9 to 5."`
	Tags  []string `json:"tags,omitempty" example:"faq,hours"`
}

type AddDocumentResponse struct {
	Success  bool                   `json:"success" example:"true"`
	ID       string                 `json:"id" example:"01J0B8Z6Q5M1V6X0W2K9D3R7TN"`
	Chunks   []string               `json:"chunks"`
	Document documentModel.Document `json:"document"`
}

type DocumentListResponse struct {
	Success   bool                     `json:"success" example:"true"`
	Documents []documentModel.Document `json:"documents"`
	Count     int                      `json:"count" example:"2"`
}

type DocumentResponse struct {
	Success  bool                   `json:"success" example:"true"`
	Document documentModel.Document `json:"document"`
}

type DocumentTextResponse struct {
	Success bool   `json:"success" example:"true"`
	ID      string `json:"id"`
	Text    string `json:"text"`
}

type DocumentChunksResponse struct {
	Success bool     `json:"success" example:"true"`
	ID      string   `json:"id"`
	Chunks  []string `json:"chunks"`
	Count   int      `json:"count"`
}

type ClearDocumentsResponse struct {
	Success bool `json:"success" example:"true"`
	Deleted int  `json:"deleted" example:"3"`
}

// upload jobs ---------------------

type UploadAcceptedResponse struct {
	Success   bool   `json:"success" example:"true"`
	JobID     string `json:"jobId" example:"5f0c7d2e-6c55-4a39-9f3b-2d8c1b0a7e11"`
	StatusURL string `json:"statusUrl" example:"/documents/jobs/5f0c7d2e-6c55-4a39-9f3b-2d8c1b0a7e11"`
}

type JobResponse struct {
	Success    bool              `json:"success" example:"true"`
	ID         string            `json:"id"`
	Status     string            `json:"status" example:"COMPLETE"`
	Step       string            `json:"step" example:"Complete"`
	Title      string            `json:"title"`
	FileName   string            `json:"fileName"`
	DocumentID string            `json:"documentId,omitempty"`
	ChunkCount int               `json:"chunkCount,omitempty"`
	Error      *JobOutgoingError `json:"error,omitempty"`
	StartTime  time.Time         `json:"startTime"`
	EndTime    *time.Time        `json:"endTime,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"unsupported document type"`
	Retry   bool   `json:"canRetry" example:"false"`
}

// liveness ---------------------

type PingResponse struct {
	Status    string `json:"status" example:"ok"`
	Timestamp string `json:"timestamp" example:"2026-01-01T00:00:00Z"`
}

type HealthResponse struct {
	Status string  `json:"status" example:"healthy"`
	Uptime float64 `json:"uptime" example:"42.5"`
}

// otp ---------------------

type OTPRequest struct {
	Email string `json:"email" validate:"required" example:"user@example.com"`
}

type OTPVerifyRequest struct {
	Email string `json:"email" validate:"required" example:"user@example.com"`
	Code  string `json:"code" validate:"required" example:"123456"`
}
