package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/akolanti/ChatbotAPI/internal/adapter/utils"
	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/handlers"
)

const (
	missingKeyMessage = config.API_KEY_HEADER + " header required"
	invalidKeyMessage = "Invalid or inactive API key"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		//this is a bad request
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusBadRequest, errorMessage: "request is empty"}
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set("X-Trace-Id", trace)
	re.writer.Header().Set("X-Trace-Id", trace)
	re.req = req.WithContext(ctx)
	return re
}

func apiKeyFromRequest(req *http.Request) string {
	if key := strings.TrimSpace(req.Header.Get(config.API_KEY_HEADER)); key != "" {
		return key
	}
	return strings.TrimSpace(req.URL.Query().Get(config.API_KEY_QUERY_PARAM))
}

func (m *Middleware) apiKeyGateway(re requestResponseStruct) requestResponseStruct {
	apiKey := apiKeyFromRequest(re.req)
	if apiKey == "" {
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusUnauthorized, errorMessage: missingKeyMessage}
		return re
	}

	record, err := m.keyStore.ResolveKey(re.req.Context(), apiKey)
	if errors.Is(err, commonModels.ErrKeyNotFound) {
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusUnauthorized, errorMessage: invalidKeyMessage}
		return re
	}
	if err != nil {
		re.logger.Error("API key resolution failed", "error", err)
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusInternalServerError, errorMessage: "Failed to validate API key"}
		return re
	}
	if !record.Active {
		re.logger.Warn("Inactive API key used", "keyId", record.ID)
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusUnauthorized, errorMessage: invalidKeyMessage}
		return re
	}

	re.logger = re.logger.With("keyId", record.ID)
	re.req = re.req.WithContext(keyModel.WithRecord(re.req.Context(), record))
	re.logger.Debug("API key accepted", "containerId", record.ContainerID)
	return re
}

func (m *Middleware) authenticate(re requestResponseStruct) requestResponseStruct {
	if !m.IsValidBearerToken(re.req.Header.Get("Authorization"), re) {
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusUnauthorized, errorMessage: "Unauthorized"}
		return re
	}
	re.logger.Debug("Authorized")
	return re
}

func (m *Middleware) IsValidBearerToken(authHeader string, re requestResponseStruct) bool {
	log := re.logger
	if m.noAuthBypass {
		log.Warn("admin auth bypass is enabled")
		return true
	}
	if m.adminToken == "" {
		log.Error("No admin token configured, rejecting admin request")
		return false
	}
	if authHeader == "" {
		log.Warn("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Warn("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(m.adminToken)) != 1 {
		log.Warn("Invalid authorization header")
		return false
	}
	return true
}

func (m *Middleware) keyRateLimiter(re requestResponseStruct) requestResponseStruct {
	record, ok := keyModel.RecordFromContext(re.req.Context())
	if !ok {
		return re
	}
	if !m.keyLimiter.Allow(record.ID) {
		re.logger.Warn("Rate limit exceeded")
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusTooManyRequests, errorMessage: "Rate limit exceeded"}
	}
	return re
}

func (m *Middleware) ipRateLimiter(re requestResponseStruct) requestResponseStruct {
	ip := clientIP(re.req)
	if !m.otpLimiter.Allow(ip) {
		re.logger.Warn("Rate limit exceeded", "ip", ip)
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusTooManyRequests, errorMessage: "Rate limit exceeded"}
	}
	return re
}

func clientIP(req *http.Request) string {
	ip, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return ip
}

// handleBadRequest writes the failure envelope and reports whether the request may continue.
func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		remote := ""
		if re.req != nil {
			remote = re.req.RemoteAddr
		}
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", remote)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage)
		return false
	}
	return true
}
