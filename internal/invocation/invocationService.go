package invocation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/containerModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const (
	containerUnavailable = "Container is unavailable"
	containerFailed      = "Container failed to process the message"
)

type Request struct {
	Message   string
	SessionID string
}

type Result struct {
	Response    string
	ContainerID string
	SessionID   string
}

type Service interface {
	Invoke(ctx context.Context, record keyModel.APIKeyRecord, req Request) (Result, error)
}

type ServiceConfig struct {
	Manager  containerModel.Manager
	KeyStore keyModel.KeyStore
	// StrictUsageTouch fails the invocation when the usage timestamp can't be recorded.
	StrictUsageTouch bool
	Now              func() time.Time
}

type service struct {
	manager     containerModel.Manager
	keyStore    keyModel.KeyStore
	strictTouch bool
	now         func() time.Time
	logger      *logger_i.Logger
}

func NewService(cfg ServiceConfig) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		manager:     cfg.Manager,
		keyStore:    cfg.KeyStore,
		strictTouch: cfg.StrictUsageTouch,
		now:         now,
		logger:      logger_i.NewLogger("InvocationService"),
	}
}

// NewSessionID is timestamp based, unique enough for public chat sessions but not a secret.
func NewSessionID(now time.Time) string {
	return config.PublicSessionPrefix + strconv.FormatInt(now.UnixMilli(), 10)
}

func (s *service) Invoke(ctx context.Context, record keyModel.APIKeyRecord, req Request) (Result, error) {
	log := s.logger.WithTrace(ctx).With("keyId", record.ID, "containerId", record.ContainerID)

	if strings.TrimSpace(req.Message) == "" {
		return Result{}, commonModels.ValidationError("message is required")
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = NewSessionID(s.now())
	}

	reply, err := s.manager.Invoke(ctx, record.ContainerID, containerModel.ChatRequest{
		Message:   req.Message,
		SessionID: sessionID,
	})
	if err != nil {
		metrics.CountInvocation("upstream_error")
		log.Warn("Container invocation failed", "sessionId", sessionID, "error", err)
		var appErr *commonModels.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == commonModels.KindInternal {
				return Result{}, err
			}
			return Result{}, commonModels.UpstreamError(commonModels.PublicMessage(err), err)
		}
		return Result{}, commonModels.UpstreamError(containerUnavailable, err)
	}
	if !reply.Success {
		metrics.CountInvocation("upstream_error")
		message := strings.TrimSpace(reply.Error)
		if message == "" {
			message = containerFailed
		}
		log.Warn("Container reported failure", "sessionId", sessionID, "error", message)
		return Result{}, commonModels.UpstreamError(message, nil)
	}

	if err := s.keyStore.TouchUsage(ctx, record.ID, s.now()); err != nil {
		if s.strictTouch {
			metrics.CountInvocation("touch_error")
			log.Error("Usage touch failed, rejecting response", "error", err)
			return Result{}, commonModels.InternalError("Could not record API key usage", err)
		}
		log.Warn("Usage touch failed", "error", err)
	}

	metrics.CountInvocation("success")
	log.Info("Invocation complete", "sessionId", sessionID)
	return Result{
		Response:    reply.Message,
		ContainerID: record.ContainerID,
		SessionID:   sessionID,
	}, nil
}
