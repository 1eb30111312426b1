// Package routesはroutingを行います。
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-tasks-api/backend/internal/config"
	"go-tasks-api/backend/internal/handlers"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/services"
	"go-tasks-api/backend/internal/storage"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(cfg *config.Config, taskRepo repositories.TaskRepository, uploads *storage.UploadDir) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))
	r.Use(RequestIDMiddleware())
	r.Use(BodyLimitMiddleware(cfg.MaxUploadBytes))

	// サービス
	hasher := services.NewBcryptHasher(cfg.BcryptCost)
	taskService := services.NewTaskService(taskRepo, uploads, hasher)
	photoService := services.NewPhotoService(taskRepo, uploads, hasher)

	// ハンドラー
	taskHandler := handlers.NewTaskHandler(taskService)
	photoHandler := handlers.NewPhotoHandler(photoService)

	// ルーティング
	api := r.Group("/api")
	{
		api.GET("/health", HealthHandler(taskRepo))

		api.GET("/tasks", taskHandler.GetTasksHandler)
		api.GET("/tasks/:id", taskHandler.GetTaskByIDHandler)
		api.POST("/tasks", taskHandler.CreateTaskHandler)
		api.PUT("/tasks/:id", taskHandler.UpdateTaskHandler)
		api.DELETE("/tasks/:id", taskHandler.DeleteTaskHandler)
		api.GET("/tasks/uploads/:filename", photoHandler.GetPhotoHandler)
	}

	return r
}

// HealthHandler はレコードストアへの疎通を確認します。
func HealthHandler(taskRepo repositories.TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := taskRepo.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	}
}
