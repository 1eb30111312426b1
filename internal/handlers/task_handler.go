package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/services"
	"go-tasks-api/backend/internal/storage"
)

// ContextKeyRequestID はリクエストIDを保存するgin.Contextのキーです。
const ContextKeyRequestID = "request_id"

// TaskHandler はTask関連のハンドラーを管理します。
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler は新しいTaskHandlerを作成します。
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetTasksHandler はすべてのTaskを取得します。
func (h *TaskHandler) GetTasksHandler(c *gin.Context) {
	tasks, err := h.taskService.ListAll()
	if err != nil {
		log.Printf("[%s] Failed to list tasks: %v", c.GetString(ContextKeyRequestID), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskByIDHandler は指定されたIDのTaskを取得します。
func (h *TaskHandler) GetTaskByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetByID(id)
	if err != nil {
		h.respondError(c, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, task)
}

// CreateTaskHandler はmultipartフォームから新しいTaskを作成します。
func (h *TaskHandler) CreateTaskHandler(c *gin.Context) {
	in, ok := bindTaskInput(c)
	if !ok {
		return
	}
	defer closeUpload(in.Photo)

	created, err := h.taskService.Create(in)
	if err != nil {
		h.respondError(c, err, "Failed to create task")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateTaskHandler はTaskを更新します。送られなかった項目は変更しません。
func (h *TaskHandler) UpdateTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, ok := bindTaskInput(c)
	if !ok {
		return
	}
	defer closeUpload(in.Photo)

	updated, err := h.taskService.Update(id, in)
	if err != nil {
		h.respondError(c, err, "Failed to update task")
		return
	}
	c.JSON(http.StatusCreated, updated)
}

// DeleteTaskHandler はTaskを削除します。写真ファイルは残ります。
func (h *TaskHandler) DeleteTaskHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.taskService.Delete(id); err != nil {
		h.respondError(c, err, "Failed to delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError はサービスのエラーをHTTPステータスに変換して返します。
func (h *TaskHandler) respondError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repositories.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, storage.ErrInvalidFilename):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo filename"})
	case errors.Is(err, services.ErrPhotoStorage):
		log.Printf("[%s] %s: %v", c.GetString(ContextKeyRequestID), message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store photo"})
	default:
		log.Printf("[%s] %s: %v", c.GetString(ContextKeyRequestID), message, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}

func closeUpload(u *models.Upload) {
	if u == nil {
		return
	}
	if closer, ok := u.Content.(io.Closer); ok {
		closer.Close()
	}
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

// bindTaskInput はフォームとファイルを読み取りTaskInputに変換します。
// 失敗した場合は400を書き込みfalseを返します。
func bindTaskInput(c *gin.Context) (models.TaskInput, bool) {
	var form models.TaskForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return models.TaskInput{}, false
	}

	in := models.TaskInput{
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
	}
	if in.Title == "" || in.Description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and description must not be blank"})
		return models.TaskInput{}, false
	}
	// 空のcompletedは送られなかったものとして扱う
	if form.Completed != nil {
		if raw := strings.TrimSpace(*form.Completed); raw != "" {
			completed, err := strconv.ParseBool(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completed value", "details": err.Error()})
				return models.TaskInput{}, false
			}
			in.Completed = models.Some(completed)
		}
	}
	if form.PhotoPassword != nil {
		in.PhotoPassword = models.Some(*form.PhotoPassword)
	}

	fileHeader, err := c.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo upload", "details": err.Error()})
		return models.TaskInput{}, false
	default:
		file, err := fileHeader.Open()
		if err != nil {
			log.Printf("[%s] Failed to open uploaded photo: %v", c.GetString(ContextKeyRequestID), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
			return models.TaskInput{}, false
		}
		in.Photo = &models.Upload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			Content:  file,
		}
	}
	return in, true
}
