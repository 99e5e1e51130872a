package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type step func(re requestResponseStruct) requestResponseStruct

type Config struct {
	KeyStore     keyModel.KeyStore
	AdminToken   string
	NoAuthBypass bool
}

// Middleware owns the per-route chains. Build one in main and wrap handlers with it.
type Middleware struct {
	keyStore     keyModel.KeyStore
	adminToken   string
	noAuthBypass bool
	keyLimiter   *RateLimiter
	otpLimiter   *RateLimiter
}

func New(cfg Config) *Middleware {
	return &Middleware{
		keyStore:     cfg.KeyStore,
		adminToken:   cfg.AdminToken,
		noAuthBypass: cfg.NoAuthBypass,
		keyLimiter:   NewRateLimiter(rate.Limit(config.RATE_LIMIT_PER_SECOND), config.BURST_RATE_LIMIT_PER_SECOND),
		otpLimiter:   NewRateLimiter(rate.Limit(config.OTP_RATE_LIMIT_PER_SECOND), config.OTP_BURST_RATE_LIMIT),
	}
}

// Public gates a handler behind an API key and rate limits per key.
func (m *Middleware) Public(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next, m.apiKeyGateway, m.keyRateLimiter)
}

// Admin gates a handler behind the admin bearer token.
func (m *Middleware) Admin(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next, m.authenticate)
}

// OTP rate limits per client IP.
func (m *Middleware) OTP(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next, m.ipRateLimiter)
}

// Open only injects the trace id.
func (m *Middleware) Open(next http.HandlerFunc) http.HandlerFunc {
	return m.Wrap(next)
}

// AdminHandler is Admin for plain http.Handlers such as the MCP endpoint.
func (m *Middleware) AdminHandler(next http.Handler) http.Handler {
	return m.Admin(next.ServeHTTP)
}

func (m *Middleware) Wrap(next http.HandlerFunc, steps ...step) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := metrics.NewHttpStatusRecorder(w) //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(routeLabel(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec}, steps)
		if !handleBadRequest(re) {
			return
		}
		next(rec, re.req)
	}
}

func processRequest(re requestResponseStruct, steps []step) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	for _, s := range steps {
		re = s(re)
		if re.badRequest.isBadRequest {
			return re //stop at the first failing step
		}
	}
	return re
}

// routeLabel keeps metric cardinality down by using the chi pattern instead of the raw path.
func routeLabel(r *http.Request) string {
	if r == nil {
		return ""
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
