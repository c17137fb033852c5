package main

import (
	"context"
	"os"
	"time"

	"demand-forecasting-backend/internal/config"
	"demand-forecasting-backend/internal/logger"
	"demand-forecasting-backend/internal/models"
	"demand-forecasting-backend/internal/routes"
	"demand-forecasting-backend/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env
	envErr := godotenv.Load()

	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()
	if envErr != nil {
		logger.Log.Info("no .env file found, relying on system env")
	}

	db, err := config.InitDB()
	if err != nil {
		logger.Log.Fatal("database connection failed", zap.Error(err))
	}

	err = db.AutoMigrate(
		&models.SKU{},
		&models.PinCode{},
		&models.SalesRecord{},
		&models.UploadSession{},
	)
	if err != nil {
		logger.Log.Fatal("auto-migration failed", zap.Error(err))
	}

	store, err := storage.FromEnv(context.Background())
	if err != nil {
		logger.Log.Fatal("storage setup failed", zap.Error(err))
	}

	r := gin.New()
	r.Use(logger.RequestLogger(), gin.Recovery())
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Log.Info("server starting", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Log.Fatal("server exited", zap.Error(err))
	}
}
