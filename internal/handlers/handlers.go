package handlers

import (
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/invocation"
	"github.com/akolanti/ChatbotAPI/internal/job"
	"github.com/akolanti/ChatbotAPI/internal/otp"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type HandlerConfig struct {
	Documents  documentModel.DocumentStore
	Invocation invocation.Service
	Jobs       *job.Service
	OTP        otp.Service
	UploadDir  string
	StartTime  time.Time
}

// Handlers holds every route handler. Dependencies come in through HandlerConfig.
type Handlers struct {
	documents  documentModel.DocumentStore
	invocation invocation.Service
	jobs       *job.Service
	otp        otp.Service
	uploadDir  string
	startTime  time.Time
	logger     *logger_i.Logger
}

func NewHandlers(cfg HandlerConfig) *Handlers {
	start := cfg.StartTime
	if start.IsZero() {
		start = time.Now()
	}
	return &Handlers{
		documents:  cfg.Documents,
		invocation: cfg.Invocation,
		jobs:       cfg.Jobs,
		otp:        cfg.OTP,
		uploadDir:  cfg.UploadDir,
		startTime:  start,
		logger:     logger_i.NewLogger("RequestHandler"),
	}
}
