package handlers

import (
	"net/http"

	"github.com/akolanti/ChatbotAPI/internal/api"
)

// IssueOTPHandler godoc
// @Summary      Email a one time code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.OTPRequest  true  "Recipient"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      429      {object}  api.ErrorResponse
// @Failure      502      {object}  api.ErrorResponse "Email provider failure"
// @Router       /auth/otp [post]
func (h *Handlers) IssueOTPHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	var requestData api.OTPRequest
	if err := decodeJSON(r, &requestData); err != nil {
		writeAppError(w, log, err)
		return
	}
	if err := h.otp.Issue(r.Context(), requestData.Email); err != nil {
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Verification code sent"})
}

// VerifyOTPHandler godoc
// @Summary      Check a one time code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request  body      api.OTPVerifyRequest  true  "Recipient and code"
// @Success      200      {object}  api.MessageResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse "Invalid or expired code"
// @Router       /auth/otp/verify [post]
func (h *Handlers) VerifyOTPHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	var requestData api.OTPVerifyRequest
	if err := decodeJSON(r, &requestData); err != nil {
		writeAppError(w, log, err)
		return
	}
	if err := h.otp.Verify(r.Context(), requestData.Email, requestData.Code); err != nil {
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.MessageResponse{Success: true, Message: "Email verified"})
}
