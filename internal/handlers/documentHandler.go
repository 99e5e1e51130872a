package handlers

import (
	"net/http"
	"strings"

	"github.com/akolanti/ChatbotAPI/internal/adapter/utils"
	"github.com/akolanti/ChatbotAPI/internal/api"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/documentModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
)

const documentNotFound = "Document not found"

// AddDocumentHandler godoc
// @Summary      Store a text document
// @Description  Stores the document and returns its id and retrieval chunks.
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      api.AddDocumentRequest  true  "Document"
// @Success      201      {object}  api.AddDocumentResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /documents [post]
func (h *Handlers) AddDocumentHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	var requestData api.AddDocumentRequest
	if err := decodeJSON(r, &requestData); err != nil {
		writeAppError(w, log, err)
		return
	}
	if strings.TrimSpace(requestData.Title) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}
	if ingest.IsBlank(requestData.Text) {
		WriteErrorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	res, err := h.documents.AddDocument(r.Context(), documentModel.NewDocument{
		Title: requestData.Title,
		Text:  requestData.Text,
		Tags:  requestData.Tags,
	})
	if err != nil {
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusCreated, api.AddDocumentResponse{
		Success:  true,
		ID:       res.ID,
		Chunks:   res.Chunks,
		Document: res.Doc,
	})
}

// ListDocumentsHandler godoc
// @Summary      List every stored document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [get]
func (h *Handlers) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListDocuments(r.Context())
	if err != nil {
		writeAppError(w, h.logger.WithTrace(r.Context()), err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentListResponse{Success: true, Documents: docs, Count: len(docs)})
}

// GetDocumentHandler godoc
// @Summary      Get one document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [get]
func (h *Handlers) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, found, err := h.documents.GetDocumentByID(r.Context(), utils.GetChiURLParam(r, "id"))
	if err != nil {
		writeAppError(w, h.logger.WithTrace(r.Context()), err)
		return
	}
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentNotFound)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentResponse{Success: true, Document: doc})
}

// GetDocumentTextHandler godoc
// @Summary      Get the text of one document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentTextResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id}/text [get]
func (h *Handlers) GetDocumentTextHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	text, found, err := h.documents.GetDocumentText(r.Context(), id)
	if err != nil {
		writeAppError(w, h.logger.WithTrace(r.Context()), err)
		return
	}
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentNotFound)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentTextResponse{Success: true, ID: id, Text: text})
}

// GetDocumentChunksHandler godoc
// @Summary      Get the retrieval chunks of one document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentChunksResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id}/chunks [get]
func (h *Handlers) GetDocumentChunksHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.GetChiURLParam(r, "id")
	chunks, found, err := h.documents.GetDocumentChunks(r.Context(), id)
	if err != nil {
		writeAppError(w, h.logger.WithTrace(r.Context()), err)
		return
	}
	if !found {
		WriteErrorResponse(w, http.StatusNotFound, documentNotFound)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentChunksResponse{Success: true, ID: id, Chunks: chunks, Count: len(chunks)})
}

// DeleteDocumentHandler godoc
// @Summary      Delete one document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  api.DocumentResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /documents/{id} [delete]
func (h *Handlers) DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	doc, err := h.documents.DeleteDocument(r.Context(), utils.GetChiURLParam(r, "id"))
	if err != nil {
		if commonModels.KindOf(err) == commonModels.KindNotFound {
			WriteErrorResponse(w, http.StatusNotFound, documentNotFound)
			return
		}
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.DocumentResponse{Success: true, Document: doc})
}

// ClearDocumentsHandler godoc
// @Summary      Delete every document
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  api.ClearDocumentsResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents [delete]
func (h *Handlers) ClearDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.documents.ClearAllDocuments(r.Context())
	if err != nil {
		writeAppError(w, h.logger.WithTrace(r.Context()), err)
		return
	}
	writeJsonResponse(w, http.StatusOK, api.ClearDocumentsResponse{Success: true, Deleted: n})
}
