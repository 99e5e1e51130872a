package server_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAndServe_AddressInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	srv := server.New(taken.Addr().String(), http.NotFoundHandler())
	assert.Error(t, srv.ListenAndServe())
}

func TestListenAndServe_ShutdownReturnsNil(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := free.Addr().String()
	require.NoError(t, free.Close())

	srv := server.New(addr, http.NotFoundHandler())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe() }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	srv.Shutdown(ctx, server.ShutdownParams{})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListenAndServe did not return after shutdown")
	}
}
