package handlers

import (
	"net/http"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/api"
	"github.com/akolanti/ChatbotAPI/internal/domain/keyModel"
	"github.com/akolanti/ChatbotAPI/internal/invocation"
)

// PublicInvokeHandler godoc
// @Summary      Send a message to the caller's chatbot container
// @Description  Authenticates by API key, forwards the message to the container bound to the key and returns its reply.
// @Tags         Public
// @Accept       json
// @Produce      json
// @Param        X-AI-API-Key  header    string               false  "API key (or apiKey query param)"
// @Param        apiKey        query     string               false  "API key (or X-AI-API-Key header)"
// @Param        request       body      api.InvokeRequest    true   "Message and optional session id"
// @Success      200           {object}  api.InvokeResponse
// @Failure      400           {object}  api.ErrorResponse    "message is required"
// @Failure      401           {object}  api.ErrorResponse    "Missing or invalid API key"
// @Failure      502           {object}  api.ErrorResponse    "Container failure"
// @Router       /public/invoke [post]
func (h *Handlers) PublicInvokeHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	if !validateContext(r.Context(), log) {
		return
	}

	record, ok := keyModel.RecordFromContext(r.Context())
	if !ok {
		log.Error("Invoke reached without a key record")
		WriteErrorResponse(w, http.StatusUnauthorized, "Invalid or inactive API key")
		return
	}

	var requestData api.InvokeRequest
	if err := decodeJSON(r, &requestData); err != nil {
		writeAppError(w, log, err)
		return
	}

	res, err := h.invocation.Invoke(r.Context(), record, invocation.Request{
		Message:   requestData.Message,
		SessionID: requestData.SessionID,
	})
	if err != nil {
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.InvokeResponse{
		Success:     true,
		Response:    res.Response,
		ContainerID: res.ContainerID,
		SessionID:   res.SessionID,
	})
}

// PingHandler godoc
// @Summary      Liveness ping
// @Tags         Liveness
// @Produce      json
// @Success      200  {object}  api.PingResponse
// @Router       /api/ping [get]
func (h *Handlers) PingHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.PingResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthHandler godoc
// @Summary      Health with process uptime in seconds
// @Tags         Liveness
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /api/health [get]
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}
