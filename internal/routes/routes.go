package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "demand-forecasting-backend/internal/handlers"
	"demand-forecasting-backend/internal/logger"
	"demand-forecasting-backend/internal/repository"
	ingest "demand-forecasting-backend/internal/services/ingest"
	"demand-forecasting-backend/internal/storage"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, store storage.Store) {
	skuRepo := repository.NewSKURepository(db)
	pinRepo := repository.NewPinCodeRepository(db)
	salesRepo := repository.NewSalesRecordRepository(db)
	sessionRepo := repository.NewUploadSessionRepository(db)

	ingestService := ingest.NewService(sessionRepo, skuRepo, pinRepo, salesRepo, store, logger.Log)

	salesHandler := handler.NewSalesHistoryHandler(ingestService, store, logger.Log)
	masterHandler := handler.NewMasterDataHandler(skuRepo, pinRepo, logger.Log)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Sales history pipeline
	sales := api.Group("/sales-history")
	sales.GET("", salesHandler.ListSessions)
	sales.POST("", salesHandler.CreateSession)
	sales.POST("/upload", salesHandler.Upload)
	sales.POST("/map-columns", salesHandler.MapColumns)
	sales.POST("/validate", salesHandler.Validate)
	sales.POST("/import", salesHandler.Import)
	sales.POST("/generate-synthetic", salesHandler.GenerateSynthetic)
	sales.GET("/:id", salesHandler.GetSession)

	// Master data
	skus := api.Group("/skus")
	skus.GET("", masterHandler.ListSKUs)
	skus.POST("", masterHandler.CreateSKU)

	pins := api.Group("/pin-codes")
	pins.GET("", masterHandler.ListPinCodes)
	pins.POST("", masterHandler.CreatePinCode)
}
