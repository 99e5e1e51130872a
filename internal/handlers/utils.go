package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/ChatbotAPI/internal/adapter"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

const maxJSONBody = 1 << 20

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logger_i.NewLogger("Handlers").Error("Error encoding response", "error", err)
	}
}

// WriteErrorResponse writes the {success:false, message} envelope.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(message))
}

// writeAppError maps an error to its status and public message.
func writeAppError(w http.ResponseWriter, log *logger_i.Logger, err error) {
	status := commonModels.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "error", err)
	} else {
		log.Debug("Request rejected", "status", status, "error", err)
	}
	WriteErrorResponse(w, status, commonModels.PublicMessage(err))
}

// decodeJSON treats an empty body as an empty object so required field checks produce the
// field specific message.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return commonModels.ValidationError("request body must be valid JSON")
}

func validateContext(ctx context.Context, log *logger_i.Logger) bool {
	if ctx.Err() != nil {
		log.Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func getTargetDirectory(dir string) (string, error) {
	if dir == "" {
		root, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, "temporary_data")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
