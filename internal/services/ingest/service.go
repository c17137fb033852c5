package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"demand-forecasting-backend/internal/models"
	"demand-forecasting-backend/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SKUSource reads the SKU catalog.
type SKUSource interface {
	ListIDs(ctx context.Context) (map[string]struct{}, error)
	List(ctx context.Context) ([]models.SKU, error)
}

// PinSource reads and extends the PIN code catalog. InsertIfAbsent must be
// idempotent on primary key conflict.
type PinSource interface {
	ListCodes(ctx context.Context) (map[string]struct{}, error)
	ListActive(ctx context.Context) ([]models.PinCode, error)
	InsertIfAbsent(ctx context.Context, pin *models.PinCode) error
}

// SalesWriter appends sales rows and reports what a session has persisted.
type SalesWriter interface {
	InsertBatch(ctx context.Context, records []models.SalesRecord) error
	CountBySession(ctx context.Context, sessionID string) (int64, error)
}

// SessionStore persists upload sessions. Get returns (nil, nil) for an
// unknown id.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.UploadSession, error)
	Create(ctx context.Context, session *models.UploadSession) error
	Update(ctx context.Context, sessionID string, fields map[string]interface{}) error
	List(ctx context.Context) ([]models.UploadSession, error)
}

// Service drives the sales history pipeline: session creation, file
// upload, column mapping, validation, import, and synthetic generation.
type Service struct {
	sessions SessionStore
	skus     SKUSource
	pins     PinSource
	sales    SalesWriter
	store    storage.Store
	log      *zap.Logger
}

func NewService(sessions SessionStore, skus SKUSource, pins PinSource,
	sales SalesWriter, store storage.Store, log *zap.Logger) *Service {
	return &Service{
		sessions: sessions,
		skus:     skus,
		pins:     pins,
		sales:    sales,
		store:    store,
		log:      log,
	}
}

// CreateSession registers a new upload attempt and reserves its storage key.
func (s *Service) CreateSession(ctx context.Context, filename string, detectedColumns []string) (*models.UploadSession, error) {
	sessionID := uuid.New().String()
	key := storage.ObjectKey(sessionID, filename)

	if detectedColumns == nil {
		detectedColumns = []string{}
	}
	columnsJSON, err := json.Marshal(detectedColumns)
	if err != nil {
		return nil, err
	}

	session := &models.UploadSession{
		SessionID:        sessionID,
		StorageKey:       &key,
		OriginalFilename: filename,
		RowCount:         0,
		DetectedColumns:  datatypes.JSON(columnsJSON),
		Status:           models.SessionStatusUploaded,
		IsSynthetic:      false,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating upload session: %w", err)
	}

	s.log.Info("upload session created",
		zap.String("session_id", sessionID),
		zap.String("filename", filename))
	return session, nil
}

func (s *Service) GetSession(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) ListSessions(ctx context.Context) ([]models.UploadSession, error) {
	return s.sessions.List(ctx)
}

// SaveUpload writes the raw file into the blob store for an existing
// session. Used in local storage mode; S3 clients upload via presigned URL.
func (s *Service) SaveUpload(ctx context.Context, sessionID, filename string, content []byte) error {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}

	key, err := s.store.Put(ctx, sessionID, filename, content)
	if err != nil {
		return fmt.Errorf("storing upload: %w", err)
	}

	return s.sessions.Update(ctx, session.SessionID, map[string]interface{}{
		"storage_key": key,
		"status":      models.SessionStatusUploaded,
	})
}

// SaveMapping persists the column mapping and advances the session to
// mapped. Sessions that already imported are frozen.
func (s *Service) SaveMapping(ctx context.Context, sessionID string, mapping ColumnMapping) (*models.UploadSession, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusImported {
		return nil, ErrAlreadyImported
	}
	if missing := mapping.MissingFields(); len(missing) > 0 {
		return nil, &IncompleteMappingError{Missing: missing}
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return nil, err
	}
	err = s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"column_mapping": datatypes.JSON(mappingJSON),
		"status":         models.SessionStatusMapped,
	})
	if err != nil {
		return nil, err
	}

	session.ColumnMapping = datatypes.JSON(mappingJSON)
	session.Status = models.SessionStatusMapped
	return session, nil
}

// Validate dry-runs the mapped file against the catalogs. Re-runnable; the
// only session mutations are row_count and the validated status.
func (s *Service) Validate(ctx context.Context, sessionID string) (*ValidationReport, error) {
	session, file, mapping, err := s.loadMappedFile(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	skuIDs, err := s.skus.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading SKU catalog: %w", err)
	}
	pinCodes, err := s.pins.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading PIN catalog: %w", err)
	}

	report := validateFile(file, mapping, skuIDs, pinCodes)
	report.SessionID = sessionID

	// Post-import re-validation is informational only; the session keeps
	// its final status and imported row count.
	if session.Status != models.SessionStatusImported {
		status := models.SessionStatusValidated
		if report.InvalidRows == 0 {
			status = models.SessionStatusValidatedClean
		}
		err = s.sessions.Update(ctx, sessionID, map[string]interface{}{
			"row_count": report.TotalRows,
			"status":    status,
		})
		if err != nil {
			return nil, err
		}
	}

	s.log.Info("validation completed",
		zap.String("session_id", sessionID),
		zap.Int("total_rows", report.TotalRows),
		zap.Int("invalid_rows", report.InvalidRows),
		zap.Bool("can_proceed", report.CanProceed))
	return report, nil
}

// Import writes the mapped file into sales records. Sessions import once;
// a second call is rejected without touching the database.
func (s *Service) Import(ctx context.Context, sessionID string) (*ImportReport, error) {
	session, file, mapping, err := s.loadMappedFile(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusImported {
		return nil, ErrAlreadyImported
	}

	skuIDs, err := s.skus.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading SKU catalog: %w", err)
	}
	pinCodes, err := s.pins.ListCodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading PIN catalog: %w", err)
	}

	report, err := runImport(ctx, file, mapping, sessionID, skuIDs, pinCodes, s.pins, s.sales)
	if err != nil {
		return nil, err
	}

	err = s.sessions.Update(ctx, sessionID, map[string]interface{}{
		"row_count": report.ImportedCount,
		"status":    models.SessionStatusImported,
	})
	if err != nil {
		return nil, err
	}

	persisted, err := s.sales.CountBySession(ctx, sessionID)
	if err != nil {
		persisted = -1
	}
	s.log.Info("import completed",
		zap.String("session_id", sessionID),
		zap.Int("imported", report.ImportedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("pins_auto_created", report.PinsAutoCreated),
		zap.Int64("rows_persisted", persisted))
	return report, nil
}

// loadMappedFile fetches a session, its stored file, and its parsed
// mapping, enforcing the not-found / not-mapped / empty-file preconditions
// shared by validate and import.
func (s *Service) loadMappedFile(ctx context.Context, sessionID string) (*models.UploadSession, *File, ColumnMapping, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, ColumnMapping{}, err
	}

	mapping, err := parseMapping(session.ColumnMapping)
	if err != nil {
		return nil, nil, ColumnMapping{}, err
	}

	content, err := s.store.Get(ctx, sessionID, session.OriginalFilename)
	if err != nil {
		return nil, nil, ColumnMapping{}, fmt.Errorf("fetching uploaded file: %w", err)
	}

	file, err := ParseCSV(content)
	if err != nil {
		return nil, nil, ColumnMapping{}, err
	}
	return session, file, mapping, nil
}
