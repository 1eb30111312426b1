package services

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"mime"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/storage"
)

var (
	// ErrPhotoNotFound は写真を所有するTaskが登録されていない場合のエラーです。
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrPhotoUnauthorized は写真パスワードがない、または一致しない場合のエラーです。
	ErrPhotoUnauthorized = errors.New("photo password missing or incorrect")
)

const defaultContentType = "application/octet-stream"

// Photo は取得した写真ファイルです。
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PhotoService はパスワード付き写真の取得を扱います。
type PhotoService struct {
	taskRepo repositories.TaskRepository
	uploads  *storage.UploadDir
	hasher   SecretHasher
}

// NewPhotoService は新しいPhotoServiceを作成します。
func NewPhotoService(taskRepo repositories.TaskRepository, uploads *storage.UploadDir, hasher SecretHasher) *PhotoService {
	return &PhotoService{taskRepo: taskRepo, uploads: uploads, hasher: hasher}
}

// Fetch はファイル名に対応する写真を返します。
// 参照するTaskがなければErrPhotoNotFound、パスワードが必要で一致しなければErrPhotoUnauthorizedを返します。
func (s *PhotoService) Fetch(filename string, password models.Optional[string]) (*Photo, error) {
	// ディレクトリ外を指す名前はここで拒否する
	if _, err := s.uploads.Resolve(filename); err != nil {
		if errors.Is(err, storage.ErrInvalidFilename) {
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}

	owners, err := s.taskRepo.FindAllByPhotoURL(PhotoURLPrefix + filename)
	if err != nil {
		return nil, fmt.Errorf("could not look up photo owner: %w", err)
	}
	if len(owners) == 0 {
		return nil, ErrPhotoNotFound
	}
	if !s.authorized(owners, password) {
		return nil, ErrPhotoUnauthorized
	}
	task := owners[0]

	data, err := s.uploads.Read(filename)
	if err != nil {
		// 登録済みだがファイルが消えている場合もNotFoundとして扱う
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("Photo %s is registered to task %d but missing on disk", filename, task.ID)
			return nil, ErrPhotoNotFound
		}
		return nil, err
	}

	return &Photo{
		Filename:    filename,
		ContentType: DetectContentType(filename, data),
		Data:        data,
	}, nil
}

// authorized は写真を参照するいずれかのTaskにパスワードがある場合、
// そのどれかに一致するパスワードを要求します。
func (s *PhotoService) authorized(owners []*models.Task, password models.Optional[string]) bool {
	protected := false
	for _, t := range owners {
		if !t.HasPhotoPassword() {
			continue
		}
		protected = true
		if password.Set && password.Value != "" && s.hasher.Verify(password.Value, *t.PhotoPasswordHash) {
			return true
		}
	}
	return !protected
}

// DetectContentType はファイルの先頭バイトからMIMEタイプを判定します。
// 判定できない場合は拡張子から推測します。
func DetectContentType(filename string, data []byte) string {
	mt := mimetype.Detect(data)
	if !mt.Is(defaultContentType) {
		return mt.String()
	}
	if byExt := mime.TypeByExtension(filepath.Ext(filename)); byExt != "" {
		return byExt
	}
	return defaultContentType
}
