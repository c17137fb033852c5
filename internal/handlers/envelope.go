package handler

import (
	"errors"
	"net/http"

	ingest "demand-forecasting-backend/internal/services/ingest"

	"github.com/gin-gonic/gin"
)

// Every response carries the same envelope: {"success": true, "data": ...}
// or {"success": false, "error": {"code": ..., "message"|"fields": ...}}.

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}

// respondFieldError reports per-field validation problems under the
// VALIDATION_ERROR code.
func respondFieldError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"success": false,
		"error":   gin.H{"code": "VALIDATION_ERROR", "fields": fields},
	})
}

// respondIngestError translates pipeline sentinels into their HTTP shape.
func respondIngestError(c *gin.Context, err error) {
	var incomplete *ingest.IncompleteMappingError
	switch {
	case errors.Is(err, ingest.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Session not found")
	case errors.Is(err, ingest.ErrNotMapped):
		respondError(c, http.StatusBadRequest, "NOT_MAPPED", "Column mapping not found. Please map columns first.")
	case errors.Is(err, ingest.ErrEmptyFile):
		respondError(c, http.StatusBadRequest, "EMPTY_FILE", "CSV file is empty or has no data rows")
	case errors.Is(err, ingest.ErrAlreadyImported):
		respondError(c, http.StatusConflict, "ALREADY_IMPORTED", "Session has already been imported")
	case errors.Is(err, ingest.ErrInsufficientData):
		respondError(c, http.StatusBadRequest, "INSUFFICIENT_DATA",
			"Need at least 1 SKU and 1 PIN code to generate synthetic data. Please set up SKUs and PIN codes first.")
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   gin.H{"code": "INCOMPLETE_MAPPING", "fields": incomplete.Missing},
		})
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
