package invocation_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/containerModel"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/invocation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeManager struct {
	mu    sync.Mutex
	calls []containerModel.ChatRequest
	ids   []string
	reply containerModel.ChatReply
	err   error
}

func (f *fakeManager) Invoke(ctx context.Context, containerID string, req containerModel.ChatRequest) (containerModel.ChatReply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	f.ids = append(f.ids, containerID)
	return f.reply, f.err
}

type fakeKeys struct {
	touched []string
	err     error
}

func (f *fakeKeys) ResolveKey(ctx context.Context, apiKey string) (keyModel.APIKeyRecord, error) {
	return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
}

func (f *fakeKeys) TouchUsage(ctx context.Context, keyID string, at time.Time) error {
	f.touched = append(f.touched, keyID)
	return f.err
}

var record = keyModel.APIKeyRecord{ID: "key_1", ContainerID: "bot-1", Active: true}

func TestInvoke_GeneratesSessionAndTouches(t *testing.T) {
	manager := &fakeManager{reply: containerModel.ChatReply{Success: true, Message: "hello"}}
	keys := &fakeKeys{}
	fixed := time.UnixMilli(1700000000123)
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: keys, Now: func() time.Time { return fixed }})

	res, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Response)
	assert.Equal(t, "bot-1", res.ContainerID)
	assert.Equal(t, "pub_1700000000123", res.SessionID)

	require.Len(t, manager.calls, 1)
	assert.True(t, strings.HasPrefix(manager.calls[0].SessionID, "pub_"))
	assert.Equal(t, "bot-1", manager.ids[0])
	assert.Equal(t, []string{"key_1"}, keys.touched)
}

func TestInvoke_KeepsCallerSession(t *testing.T) {
	manager := &fakeManager{reply: containerModel.ChatReply{Success: true, Message: "ok"}}
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: &fakeKeys{}})

	res, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi", SessionID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, "abc", res.SessionID)
	assert.Equal(t, "abc", manager.calls[0].SessionID)
}

func TestInvoke_EmptyMessage(t *testing.T) {
	manager := &fakeManager{}
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: &fakeKeys{}})

	for _, msg := range []string{"", "   "} {
		_, err := svc.Invoke(context.Background(), record, invocation.Request{Message: msg})
		require.Error(t, err)
		assert.Equal(t, commonModels.KindValidation, commonModels.KindOf(err))
		assert.Equal(t, "message is required", commonModels.PublicMessage(err))
	}
	assert.Empty(t, manager.calls)
}

func TestInvoke_UpstreamFailureSkipsTouch(t *testing.T) {
	manager := &fakeManager{err: commonModels.UpstreamError("model overloaded", nil)}
	keys := &fakeKeys{}
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: keys})

	_, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, commonModels.KindUpstream, commonModels.KindOf(err))
	assert.Equal(t, "model overloaded", commonModels.PublicMessage(err))
	assert.Empty(t, keys.touched)
}

func TestInvoke_PlainManagerErrorIsUpstream(t *testing.T) {
	manager := &fakeManager{err: errors.New("container exploded")}
	keys := &fakeKeys{}
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: keys})

	_, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, commonModels.KindUpstream, commonModels.KindOf(err))
	assert.Equal(t, http.StatusBadGateway, commonModels.HTTPStatus(err))
	assert.Equal(t, "Container is unavailable", commonModels.PublicMessage(err))
	assert.NotContains(t, commonModels.PublicMessage(err), "exploded")
	assert.Empty(t, keys.touched)
}

func TestInvoke_InternalManagerErrorPassesThrough(t *testing.T) {
	manager := &fakeManager{err: commonModels.InternalError("bad config", nil)}
	svc := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: &fakeKeys{}})

	_, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, commonModels.KindInternal, commonModels.KindOf(err))
}

func TestInvoke_UnsuccessfulReply(t *testing.T) {
	tests := []struct {
		name        string
		reply       containerModel.ChatReply
		wantMessage string
	}{
		{name: "with error text", reply: containerModel.ChatReply{Success: false, Error: "boom"}, wantMessage: "boom"},
		{name: "without error text", reply: containerModel.ChatReply{Success: false}, wantMessage: "Container failed to process the message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := &fakeKeys{}
			svc := invocation.NewService(invocation.ServiceConfig{Manager: &fakeManager{reply: tt.reply}, KeyStore: keys})

			res, err := svc.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
			require.Error(t, err)
			assert.Equal(t, invocation.Result{}, res)
			assert.Equal(t, commonModels.KindUpstream, commonModels.KindOf(err))
			assert.Equal(t, tt.wantMessage, commonModels.PublicMessage(err))
			assert.Empty(t, keys.touched, "usage is only recorded after a successful reply")
		})
	}
}

func TestInvoke_TouchPolicy(t *testing.T) {
	manager := &fakeManager{reply: containerModel.ChatReply{Success: true, Message: "hello"}}
	keys := &fakeKeys{err: errors.New("redis down")}

	lenient := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: keys})
	res, err := lenient.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Response)

	strict := invocation.NewService(invocation.ServiceConfig{Manager: manager, KeyStore: keys, StrictUsageTouch: true})
	_, err = strict.Invoke(context.Background(), record, invocation.Request{Message: "hi"})
	require.Error(t, err)
	assert.Equal(t, commonModels.KindInternal, commonModels.KindOf(err))
}
