package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/services"
)

// PhotoHandler は写真ファイルの配信を管理します。
type PhotoHandler struct {
	photoService *services.PhotoService
}

// NewPhotoHandler は新しいPhotoHandlerを作成します。
func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

// GetPhotoHandler は写真を返します。保護された写真には ?photoPassword= が必要です。
func (h *PhotoHandler) GetPhotoHandler(c *gin.Context) {
	filename := c.Param("filename")

	password := models.None[string]()
	if v, ok := c.GetQuery("photoPassword"); ok {
		password = models.Some(v)
	}

	photo, err := h.photoService.Fetch(filename, password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPhotoNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found"})
		case errors.Is(err, services.ErrPhotoUnauthorized):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Photo password required or incorrect"})
		default:
			log.Printf("[%s] Failed to read photo %q: %v", c.GetString(ContextKeyRequestID), filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
		}
		return
	}

	c.Data(http.StatusOK, photo.ContentType, photo.Data)
}
