package liveness

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/customHttpClient"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type PingerConfig struct {
	Name     string
	BaseURL  string
	Interval time.Duration
	Timeout  time.Duration
	Client   *http.Client
	Logger   *logger_i.Logger
}

// KeepAliveConfig polls every five minutes to keep a hosted instance from idling out.
func KeepAliveConfig(baseURL string) PingerConfig {
	return PingerConfig{Name: "keep-alive", BaseURL: baseURL, Interval: config.KeepAliveInterval, Timeout: config.LivenessCheckTimeout}
}

// PingConfig polls every thirty seconds for closer monitoring.
func PingConfig(baseURL string) PingerConfig {
	return PingerConfig{Name: "ping", BaseURL: baseURL, Interval: config.PingInterval, Timeout: config.LivenessCheckTimeout}
}

type EndpointResult struct {
	Path       string
	OK         bool
	StatusCode int
	Status     string
	Latency    time.Duration
	Err        error
}

type Result struct {
	Ping   EndpointResult
	Health EndpointResult
}

func (r Result) OK() bool {
	return r.Ping.OK && r.Health.OK
}

// Pinger issues periodic GETs against /api/ping and /api/health. Failures are logged and the
// next tick goes ahead, there is no retry.
type Pinger struct {
	name     string
	baseURL  string
	interval time.Duration
	timeout  time.Duration
	client   *http.Client
	logger   *logger_i.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

func NewPinger(cfg PingerConfig) *Pinger {
	p := &Pinger{
		name:     cfg.Name,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		client:   cfg.Client,
		logger:   cfg.Logger,
	}
	if p.name == "" {
		p.name = "ping"
	}
	if p.interval <= 0 {
		p.interval = config.PingInterval
	}
	if p.timeout <= 0 {
		p.timeout = config.LivenessCheckTimeout
	}
	if p.client == nil {
		p.client = customHttpClient.NewPooledClient(0)
	}
	if p.logger == nil {
		p.logger = logger_i.NewLogger("Liveness")
	}
	p.logger = p.logger.With("poller", p.name)
	return p
}

// Start runs the first check immediately and then one per interval. Starting a running
// pinger does nothing.
func (p *Pinger) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		p.logger.Debug("Pinger already running")
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.wg.Add(1)
	go p.run(ctx, p.stopCh)
	p.logger.Info("Pinger started", "url", p.baseURL, "interval", p.interval.String())
}

// Stop waits for an in flight check to finish. Stopping a stopped pinger does nothing.
func (p *Pinger) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Info("Pinger stopped")
}

func (p *Pinger) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pinger) run(ctx context.Context, stopCh chan struct{}) {
	defer p.wg.Done()
	p.CheckOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			if p.stopCh == stopCh {
				p.running = false
			}
			p.mu.Unlock()
			return
		case <-stopCh:
			return
		case <-ticker.C:
			p.CheckOnce(ctx)
		}
	}
}

// CheckOnce hits both endpoints, each under its own timeout.
func (p *Pinger) CheckOnce(ctx context.Context) Result {
	res := Result{
		Ping:   p.check(ctx, config.PingPath),
		Health: p.check(ctx, config.HealthPath),
	}
	if res.OK() {
		p.logger.Info("Liveness check ok", "ping", res.Ping.Latency.String(), "health", res.Health.Latency.String())
	} else {
		p.logger.Warn("Liveness check failed", "pingError", errString(res.Ping), "healthError", errString(res.Health))
	}
	return res
}

func (p *Pinger) check(ctx context.Context, path string) EndpointResult {
	result := EndpointResult{Path: path}
	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		result.Latency = time.Since(start)
		outcome := "ok"
		if !result.OK {
			outcome = "error"
		}
		metrics.CountLivenessCheck(p.name, path, outcome)
	}()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		result.Err = err
		return result
	}
	resp, err := p.client.Do(req)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()
	result.StatusCode = resp.StatusCode

	var body struct {
		Status string `json:"status"`
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		_ = json.Unmarshal(raw, &body)
	}
	result.Status = body.Status

	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		return result
	}
	result.OK = true
	return result
}

func errString(r EndpointResult) string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
