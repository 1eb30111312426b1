package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-tasks-api/backend/internal/config"
	"go-tasks-api/backend/internal/database"
	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/routes"
	"go-tasks-api/backend/internal/storage"
)

// TestEnv はテスト用のルーターと依存関係です。
type TestEnv struct {
	Router  *gin.Engine
	DB      *gorm.DB
	Repo    repositories.TaskRepository
	Uploads *storage.UploadDir
	Config  *config.Config
}

// TestConfig はテスト用の設定を返します。bcryptは最小コストにしています。
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "0",
		DBDriver:       config.DriverSQLite,
		DBPath:         ":memory:",
		AllowOrigins:   []string{"http://localhost:3000"},
		BcryptCost:     bcrypt.MinCost,
		MaxUploadBytes: 1 << 20,
	}
}

// SetupTestEnv はインメモリSQLiteと一時ディレクトリでルーターをセットアップします。
func SetupTestEnv(t *testing.T) *TestEnv {
	return SetupTestEnvWithConfig(t, TestConfig())
}

// SetupTestEnvWithConfig は設定を指定してテスト環境をセットアップします。
func SetupTestEnvWithConfig(t *testing.T, cfg *config.Config) *TestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.InitSQLite(cfg.DBPath)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	if cfg.UploadDir == "" {
		cfg.UploadDir = filepath.Join(t.TempDir(), "uploads")
	}
	uploads, err := storage.NewUploadDir(cfg.UploadDir)
	require.NoError(t, err)

	repo := repositories.NewGormTaskRepo(db)
	return &TestEnv{
		Router:  routes.SetupRouter(cfg, repo, uploads),
		DB:      db,
		Repo:    repo,
		Uploads: uploads,
		Config:  cfg,
	}
}

// Photo はmultipartリクエストに添付するファイルです。
type Photo struct {
	Filename string
	Content  []byte
}

// NewMultipartRequest はフォーム項目と写真を含むmultipartリクエストを作成します。
func NewMultipartRequest(t *testing.T, method, url string, fields map[string]string, photo *Photo) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if photo != nil {
		part, err := writer.CreateFormFile("photo", photo.Filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(photo.Content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// Do はルーターにリクエストを送りレスポンスを返します。
func Do(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// CreateTestTask はAPI経由でTaskを作成し、レスポンスのTaskを返します。
func CreateTestTask(t *testing.T, router *gin.Engine, fields map[string]string, photo *Photo) *models.Task {
	t.Helper()

	resp := Do(router, NewMultipartRequest(t, http.MethodPost, "/api/tasks", fields, photo))
	require.Equal(t, http.StatusCreated, resp.Code, "Task作成に失敗しました: %s", resp.Body.String())

	var created models.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	return &created
}
