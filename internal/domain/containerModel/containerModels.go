package containerModel

import "context"

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// ChatReply is what a tenant container answers with: message on success, error otherwise.
type ChatReply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Manager interface {
	Invoke(ctx context.Context, containerID string, req ChatRequest) (ChatReply, error)
}
