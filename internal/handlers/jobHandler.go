package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/adapter"
	"github.com/akolanti/ChatbotAPI/internal/adapter/utils"
	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/domain/commonModels"
	"github.com/akolanti/ChatbotAPI/internal/domain/jobModel"
	"github.com/akolanti/ChatbotAPI/internal/ingest"
	"github.com/dustin/go-humanize"
)

// UploadDocumentHandler handles the uploading of PDF, DOCX or text documents.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title     formData  string  true   "The display name of the document"
// @Param        tags      formData  string  false  "Comma separated tags"
// @Param        document  formData  file    true   "The PDF, DOCX or TXT file to upload"
// @Success      202  {object}  api.UploadAcceptedResponse "Accepted - returns jobId"
// @Failure      400  {object}  api.ErrorResponse "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.ErrorResponse "Internal Server Error - Storage or Write Error"
// @Router       /documents/upload [post]
func (h *Handlers) UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	log := h.logger.WithTrace(r.Context())
	if !validateContext(r.Context(), log) {
		return
	}

	targetDir, err := getTargetDirectory(h.uploadDir)
	if err != nil {
		log.Error("Couldn't get target directory", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("File too large (max %s) or bad request", humanize.IBytes(config.MaxUploadSize)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "title is required")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	originalName := filepath.Base(fileMetadata.Filename)
	if ingest.GetDocType(originalName) == commonModels.ERR {
		WriteErrorResponse(w, http.StatusBadRequest, "unsupported document type")
		return
	}

	jobID := utils.GetNewUUID()
	tempFilePath := filepath.Join(targetDir, jobID+strings.ToLower(filepath.Ext(originalName)))
	if err := saveUpload(tempFilePath, fileReader); err != nil {
		log.Error("Could not save upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}
	log.Info("Upload saved", "file", originalName, "size", humanize.IBytes(uint64(fileMetadata.Size)))

	traceID, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	newJob := jobModel.Job{
		Id:          jobID,
		TraceId:     traceID,
		JobType:     jobModel.JobTypeIngest,
		CreatedTime: time.Now(),
		CurrentStep: jobModel.IngestInit,
		JobPayload: jobModel.JobPayload{
			Title:    title,
			Tags:     splitTags(r.FormValue("tags")),
			FileName: originalName,
			FilePath: tempFilePath,
		},
	}
	if err := h.jobs.Enqueue(r.Context(), newJob); err != nil {
		_ = os.Remove(tempFilePath)
		writeAppError(w, log, err)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(jobID))
}

// GetUploadStatusHandler godoc
// @Summary      Get upload job status
// @Description  Retrieves the current state of an ingestion job.
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse "The current status of the job"
// @Failure      404  {object}  api.ErrorResponse "Job not found"
// @Router       /documents/jobs/{id} [get]
func (h *Handlers) GetUploadStatusHandler(w http.ResponseWriter, r *http.Request) {
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := h.jobs.GetJob(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

func saveUpload(path string, src io.Reader) error {
	destinationFileWriter, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(destinationFileWriter, src); err != nil {
		destinationFileWriter.Close()
		_ = os.Remove(path)
		return err
	}
	return destinationFileWriter.Close()
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
