package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

type stubKeyStore struct {
	records map[string]keyModel.APIKeyRecord
	err     error
}

func (s *stubKeyStore) ResolveKey(ctx context.Context, apiKey string) (keyModel.APIKeyRecord, error) {
	if s.err != nil {
		return keyModel.APIKeyRecord{}, s.err
	}
	r, ok := s.records[apiKey]
	if !ok {
		return keyModel.APIKeyRecord{}, commonModels.ErrKeyNotFound
	}
	return r, nil
}

func (s *stubKeyStore) TouchUsage(ctx context.Context, keyID string, at time.Time) error {
	return nil
}

func newStub() *stubKeyStore {
	return &stubKeyStore{records: map[string]keyModel.APIKeyRecord{
		"good": {ID: "k1", ContainerID: "bot-1", Active: true},
		"off":  {ID: "k2", ContainerID: "bot-2", Active: false},
	}}
}

// echoRecord writes the container id of the record attached by the gateway.
func echoRecord(w http.ResponseWriter, r *http.Request) {
	record, ok := keyModel.RecordFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_, _ = w.Write([]byte(record.ContainerID))
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not json: %q", rec.Body.String())
	}
	if body.Success {
		t.Errorf("failure envelope should have success false")
	}
	return body.Message
}

func TestAPIKeyGateway(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		query      string
		store      *stubKeyStore
		wantStatus int
		wantBody   string
	}{
		{name: "missing key", store: newStub(), wantStatus: http.StatusUnauthorized, wantBody: "X-AI-API-Key header required"},
		{name: "unknown key", header: "bad", store: newStub(), wantStatus: http.StatusUnauthorized, wantBody: "Invalid or inactive API key"},
		{name: "inactive key", header: "off", store: newStub(), wantStatus: http.StatusUnauthorized, wantBody: "Invalid or inactive API key"},
		{name: "store failure", header: "good", store: &stubKeyStore{err: errors.New("redis down")}, wantStatus: http.StatusInternalServerError, wantBody: "Failed to validate API key"},
		{name: "header key", header: "good", store: newStub(), wantStatus: http.StatusOK, wantBody: "bot-1"},
		{name: "query key", query: "good", store: newStub(), wantStatus: http.StatusOK, wantBody: "bot-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := New(Config{KeyStore: tt.store})
			target := "/public/invoke"
			if tt.query != "" {
				target += "?" + config.API_KEY_QUERY_PARAM + "=" + tt.query
			}
			req := httptest.NewRequest(http.MethodPost, target, nil)
			if tt.header != "" {
				req.Header.Set(config.API_KEY_HEADER, tt.header)
			}
			rec := httptest.NewRecorder()
			mw.Public(echoRecord)(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if rec.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
				}
				return
			}
			if got := errorMessage(t, rec); got != tt.wantBody {
				t.Errorf("message = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestIsValidBearerToken(t *testing.T) {
	re := requestResponseStruct{logger: logger_i.NewLogger("test")}
	tests := []struct {
		name   string
		mw     *Middleware
		header string
		want   bool
	}{
		{name: "valid", mw: &Middleware{adminToken: "secret"}, header: "Bearer secret", want: true},
		{name: "wrong token", mw: &Middleware{adminToken: "secret"}, header: "Bearer nope", want: false},
		{name: "no bearer prefix", mw: &Middleware{adminToken: "secret"}, header: "secret", want: false},
		{name: "empty header", mw: &Middleware{adminToken: "secret"}, header: "", want: false},
		{name: "no token configured", mw: &Middleware{}, header: "Bearer ", want: false},
		{name: "bypass", mw: &Middleware{noAuthBypass: true}, header: "", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.mw.IsValidBearerToken(tt.header, re); got != tt.want {
				t.Errorf("IsValidBearerToken(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestKeyRateLimiter(t *testing.T) {
	mw := New(Config{KeyStore: newStub()})
	handler := mw.Public(echoRecord)

	limited := 0
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/public/invoke", nil)
		req.Header.Set(config.API_KEY_HEADER, "good")
		rec := httptest.NewRecorder()
		handler(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	if limited == 0 {
		t.Error("expected requests beyond the burst to be limited")
	}
}

func TestKeyRateLimiter_LogsKeyOnce(t *testing.T) {
	var buf bytes.Buffer
	logger_i.InitWithWriter(&buf, false)
	t.Cleanup(func() { logger_i.InitWithWriter(io.Discard, false) })

	mw := New(Config{KeyStore: newStub()})
	handler := mw.Public(echoRecord)
	for i := 0; i < config.BURST_RATE_LIMIT_PER_SECOND+2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/public/invoke", nil)
		req.Header.Set(config.API_KEY_HEADER, "good")
		handler(httptest.NewRecorder(), req)
	}

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, "Rate limit exceeded") {
			line = l
			break
		}
	}
	if line == "" {
		t.Fatalf("no rate limit log line in %q", buf.String())
	}
	if got := strings.Count(line, "keyId="); got != 1 {
		t.Errorf("keyId appears %d times in %q, want 1", got, line)
	}
}

func TestIPRateLimiter(t *testing.T) {
	mw := New(Config{})
	handler := mw.OTP(func(w http.ResponseWriter, r *http.Request) {})

	codes := map[int]int{}
	for i := 0; i < config.OTP_BURST_RATE_LIMIT+1; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/otp", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		rec := httptest.NewRecorder()
		handler(rec, req)
		codes[rec.Code]++
	}
	if codes[http.StatusOK] != config.OTP_BURST_RATE_LIMIT || codes[http.StatusTooManyRequests] != 1 {
		t.Errorf("unexpected status spread %v", codes)
	}

	//another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/otp", nil)
	req.RemoteAddr = "198.51.100.1:5000"
	rec := httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestInjectTrace(t *testing.T) {
	mw := New(Config{})
	var seen string
	handler := mw.Open(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(config.TRACE_ID_KEY).(string)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("X-Trace-Id", "trace-123")
	rec := httptest.NewRecorder()
	handler(rec, req)
	if seen != "trace-123" || rec.Header().Get("X-Trace-Id") != "trace-123" {
		t.Errorf("trace not propagated: ctx=%q header=%q", seen, rec.Header().Get("X-Trace-Id"))
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if seen == "" || seen == "trace-123" {
		t.Errorf("expected a generated trace id, got %q", seen)
	}
}
