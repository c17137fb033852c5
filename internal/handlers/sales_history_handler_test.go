package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	handler "demand-forecasting-backend/internal/handlers"
	"demand-forecasting-backend/internal/models"
	ingest "demand-forecasting-backend/internal/services/ingest"
	"demand-forecasting-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ---- in-memory pipeline collaborators ----

type memSessions struct {
	byID map[string]*models.UploadSession
}

func (m *memSessions) Get(_ context.Context, id string) (*models.UploadSession, error) {
	return m.byID[id], nil
}
func (m *memSessions) Create(_ context.Context, s *models.UploadSession) error {
	m.byID[s.SessionID] = s
	return nil
}
func (m *memSessions) Update(_ context.Context, id string, fields map[string]interface{}) error {
	s, ok := m.byID[id]
	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	for k, v := range fields {
		switch k {
		case "status":
			s.Status = v.(string)
		case "row_count":
			s.RowCount = v.(int)
		case "column_mapping":
			s.ColumnMapping = v.(datatypes.JSON)
		case "storage_key":
			key := v.(string)
			s.StorageKey = &key
		}
	}
	return nil
}
func (m *memSessions) List(_ context.Context) ([]models.UploadSession, error) {
	out := make([]models.UploadSession, 0, len(m.byID))
	for _, s := range m.byID {
		out = append(out, *s)
	}
	return out, nil
}

type memSKUs struct{ ids []string }

func (m *memSKUs) ListIDs(_ context.Context) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	for _, id := range m.ids {
		set[id] = struct{}{}
	}
	return set, nil
}
func (m *memSKUs) List(_ context.Context) ([]models.SKU, error) {
	var out []models.SKU
	for _, id := range m.ids {
		out = append(out, models.SKU{ID: id, UnitCostPaise: 1000})
	}
	return out, nil
}

type memPins struct{ codes []string }

func (m *memPins) ListCodes(_ context.Context) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	for _, c := range m.codes {
		set[c] = struct{}{}
	}
	return set, nil
}
func (m *memPins) ListActive(_ context.Context) ([]models.PinCode, error) {
	var out []models.PinCode
	for _, c := range m.codes {
		out = append(out, models.PinCode{PinCode: c, Status: models.PinCodeStatusActive})
	}
	return out, nil
}
func (m *memPins) InsertIfAbsent(_ context.Context, pin *models.PinCode) error {
	m.codes = append(m.codes, pin.PinCode)
	return nil
}

type memSales struct{ records []models.SalesRecord }

func (m *memSales) InsertBatch(_ context.Context, records []models.SalesRecord) error {
	m.records = append(m.records, records...)
	return nil
}
func (m *memSales) CountBySession(_ context.Context, sessionID string) (int64, error) {
	var n int64
	for _, r := range m.records {
		if r.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

func newPipelineRouter(t *testing.T, skuIDs, pinCodes []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewLocalStore(t.TempDir())
	svc := ingest.NewService(
		&memSessions{byID: map[string]*models.UploadSession{}},
		&memSKUs{ids: skuIDs},
		&memPins{codes: pinCodes},
		&memSales{},
		store,
		zap.NewNop(),
	)
	h := handler.NewSalesHistoryHandler(svc, store, zap.NewNop())

	r := gin.New()
	sales := r.Group("/api/sales-history")
	sales.GET("", h.ListSessions)
	sales.POST("", h.CreateSession)
	sales.POST("/upload", h.Upload)
	sales.POST("/map-columns", h.MapColumns)
	sales.POST("/validate", h.Validate)
	sales.POST("/import", h.Import)
	sales.POST("/generate-synthetic", h.GenerateSynthetic)
	sales.GET("/:id", h.GetSession)
	return r
}

func uploadFile(t *testing.T, r *gin.Engine, sessionID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("session_id", sessionID))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/sales-history/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	return parsed["error"].(map[string]interface{})["code"].(string)
}

func TestPipeline_EndToEnd(t *testing.T) {
	r := newPipelineRouter(t, []string{"SKU-001"}, []string{"560001"})

	// Create session.
	w, resp := doJSON(t, r, http.MethodPost, "/api/sales-history",
		`{"filename":"jan.csv","detected_columns":["date","sku_id","pin_code","units_sold"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	data := resp["data"].(map[string]interface{})
	sessionID := data["session_id"].(string)
	assert.Equal(t, false, data["is_s3"])
	assert.Contains(t, data, "upload_path")

	// Upload the file.
	w = uploadFile(t, r, sessionID, "jan.csv",
		"date,sku_id,pin_code,units_sold\n2024-01-01,SKU-001,560001,5\n2024-01-02,SKU-001,110001,3\n")
	require.Equal(t, http.StatusOK, w.Code)

	// Map columns.
	w, _ = doJSON(t, r, http.MethodPost, "/api/sales-history/map-columns",
		fmt.Sprintf(`{"session_id":%q,"mapping":{"date_col":"date","sku_id_col":"sku_id","pin_code_col":"pin_code","units_sold_col":"units_sold"}}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)

	// Validate.
	w, resp = doJSON(t, r, http.MethodPost, "/api/sales-history/validate",
		fmt.Sprintf(`{"session_id":%q}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)
	report := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), report["total_rows"])
	assert.Equal(t, true, report["can_proceed"])
	assert.Equal(t, true, report["has_missing_pins"])

	// Import.
	w, resp = doJSON(t, r, http.MethodPost, "/api/sales-history/import",
		fmt.Sprintf(`{"session_id":%q}`, sessionID))
	require.Equal(t, http.StatusOK, w.Code)
	imported := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), imported["imported_count"])
	assert.Equal(t, float64(1), imported["pins_auto_created"])

	// Second import is rejected.
	w, _ = doJSON(t, r, http.MethodPost, "/api/sales-history/import",
		fmt.Sprintf(`{"session_id":%q}`, sessionID))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_IMPORTED", errCode(t, w))

	// Session detail reflects completion.
	w, resp = doJSON(t, r, http.MethodGet, "/api/sales-history/"+sessionID, "")
	require.Equal(t, http.StatusOK, w.Code)
	session := resp["data"].(map[string]interface{})
	assert.Equal(t, models.SessionStatusImported, session["status"])
}

func TestCreateSession_MissingFilename(t *testing.T) {
	r := newPipelineRouter(t, nil, nil)
	w, _ := doJSON(t, r, http.MethodPost, "/api/sales-history", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errCode(t, w))
}

func TestGetSession_NotFound(t *testing.T) {
	r := newPipelineRouter(t, nil, nil)
	w, _ := doJSON(t, r, http.MethodGet, "/api/sales-history/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errCode(t, w))
}

func TestValidate_BeforeMapping(t *testing.T) {
	r := newPipelineRouter(t, nil, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/sales-history", `{"filename":"jan.csv"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := resp["data"].(map[string]interface{})["session_id"].(string)
	uploadFile(t, r, sessionID, "jan.csv", "date\n2024-01-01\n")

	w, _ = doJSON(t, r, http.MethodPost, "/api/sales-history/validate",
		fmt.Sprintf(`{"session_id":%q}`, sessionID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NOT_MAPPED", errCode(t, w))
}

func TestMapColumns_Incomplete(t *testing.T) {
	r := newPipelineRouter(t, nil, nil)

	w, resp := doJSON(t, r, http.MethodPost, "/api/sales-history", `{"filename":"jan.csv"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	sessionID := resp["data"].(map[string]interface{})["session_id"].(string)

	w, _ = doJSON(t, r, http.MethodPost, "/api/sales-history/map-columns",
		fmt.Sprintf(`{"session_id":%q,"mapping":{"date_col":"date"}}`, sessionID))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INCOMPLETE_MAPPING", errCode(t, w))
}

func TestGenerateSynthetic_InsufficientData(t *testing.T) {
	r := newPipelineRouter(t, nil, nil)
	w, _ := doJSON(t, r, http.MethodPost, "/api/sales-history/generate-synthetic", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INSUFFICIENT_DATA", errCode(t, w))
}
