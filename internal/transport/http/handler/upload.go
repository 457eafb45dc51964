package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"docuchat/internal/ingest"
	"docuchat/internal/transport/http/response"
)

type UploadHandler struct {
	pipeline    *ingest.Pipeline
	maxFileSize int64
	tmpDir      string
}

func NewUploadHandler(pipeline *ingest.Pipeline, maxFileSizeMB int) *UploadHandler {
	return &UploadHandler{
		pipeline:    pipeline,
		maxFileSize: int64(maxFileSizeMB) << 20,
		tmpDir:      os.TempDir(),
	}
}

// Upload accepts a single PDF in the multipart field "document", writes it
// to a temp file and hands it to the ingestion pipeline. The pipeline owns
// the temp file from then on and removes it on both paths.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("document")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No document uploaded")
		return
	}
	if file.Size > h.maxFileSize {
		response.Error(c, http.StatusBadRequest,
			fmt.Sprintf("File too large (max %dMB)", h.maxFileSize>>20))
		return
	}
	if strings.ToLower(filepath.Ext(file.Filename)) != ".pdf" {
		response.Error(c, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	tmpPath := filepath.Join(h.tmpDir, "upload-"+uuid.NewString()+".pdf")
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		// A failed save can leave a partial file; the pipeline never runs
		// here, so remove it ourselves.
		_ = os.Remove(tmpPath)
		response.Error(c, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	summary, err := h.pipeline.Process(c.Request.Context(), tmpPath, file.Filename)
	if err != nil {
		if errors.Is(err, ingest.ErrLoad) {
			response.Error(c, http.StatusBadRequest, "No content found in the document")
			return
		}
		response.Failure(c, http.StatusInternalServerError, "Failed to process document")
		return
	}

	response.Success(c, summary)
}
