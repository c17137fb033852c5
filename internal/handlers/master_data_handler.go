package handler

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"demand-forecasting-backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var skuIDPattern = regexp.MustCompile(`SKU-(\d+)`)
var pinPattern = regexp.MustCompile(`^\d{6}$`)

// SKUStore is the catalog surface the handler needs.
type SKUStore interface {
	List(ctx context.Context) ([]models.SKU, error)
	Create(ctx context.Context, sku *models.SKU) error
	LastID(ctx context.Context) (string, error)
}

// PinStore is the PIN catalog surface the handler needs.
type PinStore interface {
	List(ctx context.Context) ([]models.PinCode, error)
	Create(ctx context.Context, pin *models.PinCode) error
}

// MasterDataHandler serves the SKU and PIN code catalogs that the sales
// history pipeline validates against.
type MasterDataHandler struct {
	skus SKUStore
	pins PinStore
	log  *zap.Logger
}

func NewMasterDataHandler(skus SKUStore, pins PinStore, log *zap.Logger) *MasterDataHandler {
	return &MasterDataHandler{skus: skus, pins: pins, log: log}
}

func (h *MasterDataHandler) ListSKUs(c *gin.Context) {
	skus, err := h.skus.List(c.Request.Context())
	if err != nil {
		h.log.Error("listing SKUs failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch SKUs")
		return
	}
	respondData(c, http.StatusOK, gin.H{"skus": skus, "total": len(skus)})
}

// CreateSKU validates the payload and assigns the next sequential SKU id.
func (h *MasterDataHandler) CreateSKU(c *gin.Context) {
	var payload struct {
		Name          string `json:"name"`
		Category      string `json:"category"`
		UnitCostPaise int    `json:"unit_cost_paise"`
		LeadTimeDays  int    `json:"lead_time_days"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFieldError(c, map[string]string{"body": "invalid JSON"})
		return
	}

	fields := map[string]string{}
	if strings.TrimSpace(payload.Name) == "" {
		fields["name"] = "required"
	}
	if payload.Category == "" {
		fields["category"] = "required"
	} else if !validCategory(payload.Category) {
		fields["category"] = "unknown category"
	}
	if payload.UnitCostPaise < 100 {
		fields["unit_cost_paise"] = "must be at least ₹1"
	}
	if payload.LeadTimeDays < 1 || payload.LeadTimeDays > 90 {
		fields["lead_time_days"] = "must be 1-90 days"
	}
	if len(fields) > 0 {
		respondFieldError(c, fields)
		return
	}

	id, err := h.nextSKUID(c.Request.Context())
	if err != nil {
		h.log.Error("generating SKU id failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create SKU")
		return
	}

	sku := &models.SKU{
		ID:            id,
		Name:          strings.TrimSpace(payload.Name),
		Category:      payload.Category,
		UnitCostPaise: payload.UnitCostPaise,
		LeadTimeDays:  payload.LeadTimeDays,
		Status:        models.SKUStatusNoHistory,
	}
	if err := h.skus.Create(c.Request.Context(), sku); err != nil {
		h.log.Error("creating SKU failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create SKU")
		return
	}
	respondData(c, http.StatusCreated, sku)
}

func (h *MasterDataHandler) ListPinCodes(c *gin.Context) {
	pins, err := h.pins.List(c.Request.Context())
	if err != nil {
		h.log.Error("listing PIN codes failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch PIN codes")
		return
	}
	respondData(c, http.StatusOK, gin.H{"pin_codes": pins, "total": len(pins)})
}

func (h *MasterDataHandler) CreatePinCode(c *gin.Context) {
	var payload struct {
		PinCode    string `json:"pin_code"`
		AreaName   string `json:"area_name"`
		Region     string `json:"region"`
		StoreCount *int   `json:"store_count"`
		Status     string `json:"status"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFieldError(c, map[string]string{"body": "invalid JSON"})
		return
	}

	fields := map[string]string{}
	pin := strings.TrimSpace(payload.PinCode)
	if pin == "" {
		fields["pin_code"] = "required"
	} else if !pinPattern.MatchString(pin) {
		fields["pin_code"] = "must be 6 digits"
	}
	if strings.TrimSpace(payload.AreaName) == "" {
		fields["area_name"] = "required"
	}
	if strings.TrimSpace(payload.Region) == "" {
		fields["region"] = "required"
	}
	if payload.StoreCount != nil && *payload.StoreCount < 0 {
		fields["store_count"] = "must be a non-negative number"
	}
	if payload.Status != "" &&
		payload.Status != models.PinCodeStatusActive &&
		payload.Status != models.PinCodeStatusInactive {
		fields["status"] = "must be 'active' or 'inactive'"
	}
	if len(fields) > 0 {
		respondFieldError(c, fields)
		return
	}

	record := &models.PinCode{
		PinCode:  pin,
		AreaName: strings.TrimSpace(payload.AreaName),
		Region:   strings.TrimSpace(payload.Region),
		Status:   models.PinCodeStatusActive,
	}
	if payload.StoreCount != nil {
		record.StoreCount = *payload.StoreCount
	}
	if payload.Status != "" {
		record.Status = payload.Status
	}

	if err := h.pins.Create(c.Request.Context(), record); err != nil {
		if strings.Contains(err.Error(), "duplicate") {
			respondError(c, http.StatusConflict, "DUPLICATE_ERROR", "PIN code already exists")
			return
		}
		h.log.Error("creating PIN code failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create PIN code")
		return
	}
	respondData(c, http.StatusCreated, record)
}

// nextSKUID continues the SKU-NNN sequence from the highest existing id.
func (h *MasterDataHandler) nextSKUID(ctx context.Context) (string, error) {
	lastID, err := h.skus.LastID(ctx)
	if err != nil {
		return "", err
	}
	next := 1
	if m := skuIDPattern.FindStringSubmatch(lastID); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("SKU-%03d", next), nil
}

func validCategory(category string) bool {
	for _, c := range models.SKUCategories {
		if c == category {
			return true
		}
	}
	return false
}
