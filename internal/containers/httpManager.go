package containers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/customHttpClient"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/containerModel"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const maxReplyBytes = 1 << 20

type ManagerConfig struct {
	BaseURL string
	// Timeout bounds a single invocation, 0 leaves it to the caller context.
	Timeout time.Duration
	Client  *http.Client
}

// HTTPManager talks to the external container manager:
//
//	POST <BaseURL>/containers/{containerId}/chat  {message, sessionId}
//	-> {success, message, error}
type HTTPManager struct {
	baseURL string
	client  *http.Client
	logger  *logger_i.Logger
}

var _ containerModel.Manager = (*HTTPManager)(nil)

func NewHTTPManager(cfg ManagerConfig) *HTTPManager {
	client := cfg.Client
	if client == nil {
		client = customHttpClient.NewPooledClient(cfg.Timeout)
	}
	return &HTTPManager{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		logger:  logger_i.NewLogger("ContainerManager"),
	}
}

func (m *HTTPManager) Invoke(ctx context.Context, containerID string, req containerModel.ChatRequest) (containerModel.ChatReply, error) {
	log := m.logger.WithTrace(ctx).With("containerId", containerID)
	if containerID == "" {
		return containerModel.ChatReply{}, commonModels.UpstreamError("No container is assigned to this API key", nil)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return containerModel.ChatReply{}, commonModels.InternalError("could not encode chat request", err)
	}
	endpoint := fmt.Sprintf("%s/containers/%s/chat", m.baseURL, url.PathEscape(containerID))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return containerModel.ChatReply{}, commonModels.InternalError("could not build container request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if trace, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		httpReq.Header.Set("X-Trace-Id", trace)
	}

	start := time.Now()
	resp, err := m.client.Do(httpReq)
	metrics.CaptureExecutionMetrics("container_manager", time.Since(start))
	if err != nil {
		log.Error("Container manager unreachable", "error", err)
		return containerModel.ChatReply{}, commonModels.UpstreamError("Container is unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		log.Error("Could not read container reply", "error", err)
		return containerModel.ChatReply{}, commonModels.UpstreamError("Container is unavailable", err)
	}

	var reply containerModel.ChatReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		log.Error("Container reply is not valid json", "status", resp.StatusCode, "error", err)
		return containerModel.ChatReply{}, commonModels.UpstreamError("Container returned an invalid response", err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !reply.Success {
		msg := reply.Error
		if msg == "" {
			msg = "Container failed to process the message"
		}
		log.Warn("Container reported failure", "status", resp.StatusCode, "error", reply.Error)
		return reply, commonModels.UpstreamError(msg, nil)
	}

	log.Debug("Container replied", "status", resp.StatusCode)
	return reply, nil
}
