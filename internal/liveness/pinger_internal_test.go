package liveness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_CancelledContextLeavesNewerLoopRunning(t *testing.T) {
	p := NewPinger(PingerConfig{BaseURL: "http://127.0.0.1:1"})

	staleCh := make(chan struct{})
	p.mu.Lock()
	p.running = true
	p.stopCh = make(chan struct{})
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.wg.Add(1)
	p.run(ctx, staleCh)

	assert.True(t, p.IsRunning(), "an exiting loop must not clear state owned by a newer Start")
	close(p.stopCh)
}

func TestRun_CancelledContextClearsOwnLoop(t *testing.T) {
	p := NewPinger(PingerConfig{BaseURL: "http://127.0.0.1:1"})

	p.mu.Lock()
	p.running = true
	p.stopCh = make(chan struct{})
	own := p.stopCh
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.wg.Add(1)
	p.run(ctx, own)

	assert.False(t, p.IsRunning())
}
