package handler

import (
	"io"
	"net/http"

	ingest "demand-forecasting-backend/internal/services/ingest"
	"demand-forecasting-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SalesHistoryHandler struct {
	service *ingest.Service
	store   storage.Store
	log     *zap.Logger
}

func NewSalesHistoryHandler(service *ingest.Service, store storage.Store, log *zap.Logger) *SalesHistoryHandler {
	return &SalesHistoryHandler{service: service, store: store, log: log}
}

func (h *SalesHistoryHandler) ListSessions(c *gin.Context) {
	sessions, err := h.service.ListSessions(c.Request.Context())
	if err != nil {
		h.log.Error("listing sessions failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch sessions")
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (h *SalesHistoryHandler) GetSession(c *gin.Context) {
	session, err := h.service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondIngestError(c, err)
		return
	}
	respondData(c, http.StatusOK, session)
}

// CreateSession opens an upload session. S3 mode returns a presigned PUT
// URL for browser-direct upload; local mode returns the target path and
// the client follows up with the multipart upload endpoint.
func (h *SalesHistoryHandler) CreateSession(c *gin.Context) {
	var payload struct {
		Filename        string   `json:"filename"`
		FileSizeBytes   int64    `json:"file_size_bytes"`
		DetectedColumns []string `json:"detected_columns"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.Filename == "" {
		respondFieldError(c, map[string]string{"filename": "required"})
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), payload.Filename, payload.DetectedColumns)
	if err != nil {
		h.log.Error("creating session failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create upload session")
		return
	}

	data := gin.H{
		"session_id": session.SessionID,
		"is_s3":      false,
	}
	if presigner, ok := h.store.(storage.Presigner); ok {
		url, err := presigner.PresignPut(c.Request.Context(), session.SessionID, payload.Filename)
		if err != nil {
			h.log.Error("presigning upload failed", zap.Error(err))
			respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create upload session")
			return
		}
		data["is_s3"] = true
		data["presigned_url"] = url
	} else if local, ok := h.store.(*storage.LocalStore); ok {
		data["upload_path"] = local.Path(session.SessionID, payload.Filename)
	}
	respondData(c, http.StatusCreated, data)
}

// Upload accepts the raw file as multipart form data in local storage mode.
func (h *SalesHistoryHandler) Upload(c *gin.Context) {
	if _, ok := h.store.(storage.Presigner); ok {
		respondError(c, http.StatusBadRequest, "S3_MODE", "Please upload to S3 using presigned URL")
		return
	}

	sessionID := c.PostForm("session_id")
	file, header, err := c.Request.FormFile("file")
	if sessionID == "" || err != nil {
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "session_id and file are required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to upload file")
		return
	}

	if err := h.service.SaveUpload(c.Request.Context(), sessionID, header.Filename, content); err != nil {
		respondIngestError(c, err)
		return
	}

	respondData(c, http.StatusOK, gin.H{
		"session_id": sessionID,
		"filename":   header.Filename,
		"size":       header.Size,
	})
}

func (h *SalesHistoryHandler) MapColumns(c *gin.Context) {
	var payload struct {
		SessionID string                `json:"session_id"`
		Mapping   *ingest.ColumnMapping `json:"mapping"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.SessionID == "" {
		respondFieldError(c, map[string]string{"session_id": "required"})
		return
	}
	if payload.Mapping == nil {
		respondFieldError(c, map[string]string{"mapping": "required"})
		return
	}

	session, err := h.service.SaveMapping(c.Request.Context(), payload.SessionID, *payload.Mapping)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{
		"session_id": session.SessionID,
		"status":     session.Status,
	})
}

func (h *SalesHistoryHandler) Validate(c *gin.Context) {
	sessionID, ok := bindSessionID(c)
	if !ok {
		return
	}
	report, err := h.service.Validate(c.Request.Context(), sessionID)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

func (h *SalesHistoryHandler) Import(c *gin.Context) {
	sessionID, ok := bindSessionID(c)
	if !ok {
		return
	}
	report, err := h.service.Import(c.Request.Context(), sessionID)
	if err != nil {
		respondIngestError(c, err)
		return
	}
	respondData(c, http.StatusOK, report)
}

func (h *SalesHistoryHandler) GenerateSynthetic(c *gin.Context) {
	report, err := h.service.GenerateSynthetic(c.Request.Context())
	if err != nil {
		respondIngestError(c, err)
		return
	}
	respondData(c, http.StatusCreated, report)
}

func bindSessionID(c *gin.Context) (string, bool) {
	var payload struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil || payload.SessionID == "" {
		respondFieldError(c, map[string]string{"session_id": "required"})
		return "", false
	}
	return payload.SessionID, true
}
