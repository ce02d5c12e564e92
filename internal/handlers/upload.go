package handlers

import (
	"encoding/base64"
	"io"
	"net/http"

	"go.uber.org/zap"

	"gptx-relay/internal/models"
)

type UploadHandler struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadHandler(maxBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{maxBytes: maxBytes, logger: logger}
}

// Upload accepts a single multipart file part and echoes it back as a base64
// data URI. Size is enforced before any encoding work happens.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "File exceeds size limit or form is malformed", r))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "file field is required", r))
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "File exceeds size limit", r))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("upload read failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to read upload", r))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Success: true,
		Data:    "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data),
		Size:    int64(len(data)),
	})
}
