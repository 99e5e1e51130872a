package server

import (
	"net/http"

	"github.com/akolanti/ChatbotAPI/internal/adapter/utils"
	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/handlers"
	"github.com/akolanti/ChatbotAPI/internal/middleware"
)

type RouteDeps struct {
	Handlers   *handlers.Handlers
	Middleware *middleware.Middleware
	// MCP is optional, /mcp is only mounted when set.
	MCP http.Handler
}

func NewRouter(deps RouteDeps) http.Handler {
	r := utils.NewRouter()
	h, mw := deps.Handlers, deps.Middleware

	//public, api key
	r.Router.Post("/public/invoke", mw.Public(h.PublicInvokeHandler))

	//liveness
	r.Router.Get(config.PingPath, mw.Open(h.PingHandler))
	r.Router.Get(config.HealthPath, mw.Open(h.HealthHandler))

	//email otp
	r.Router.Post("/auth/otp", mw.OTP(h.IssueOTPHandler))
	r.Router.Post("/auth/otp/verify", mw.OTP(h.VerifyOTPHandler))

	//knowledge documents, admin
	r.Router.Post("/documents", mw.Admin(h.AddDocumentHandler))
	r.Router.Get("/documents", mw.Admin(h.ListDocumentsHandler))
	r.Router.Delete("/documents", mw.Admin(h.ClearDocumentsHandler))
	r.Router.Post("/documents/upload", mw.Admin(h.UploadDocumentHandler))
	r.Router.Get("/documents/jobs/{id}", mw.Admin(h.GetUploadStatusHandler))
	r.Router.Get("/documents/{id}", mw.Admin(h.GetDocumentHandler))
	r.Router.Get("/documents/{id}/text", mw.Admin(h.GetDocumentTextHandler))
	r.Router.Get("/documents/{id}/chunks", mw.Admin(h.GetDocumentChunksHandler))
	r.Router.Delete("/documents/{id}", mw.Admin(h.DeleteDocumentHandler))

	if deps.MCP != nil {
		r.Router.Handle("/mcp", mw.AdminHandler(deps.MCP))
	}
	return r.Router
}
