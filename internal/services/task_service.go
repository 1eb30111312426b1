package services

import (
	"errors"
	"fmt"
	"log"

	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
	"go-tasks-api/backend/internal/storage"
)

// PhotoURLPrefix はTask.PhotoURLに保存される公開パスの接頭辞です。
const PhotoURLPrefix = "/uploads/"

// ErrPhotoStorage は写真ファイルの書き込みに失敗した場合のエラーです。
var ErrPhotoStorage = errors.New("failed to store photo")

// TaskService はTask関連のビジネスロジックを扱います。
type TaskService struct {
	taskRepo repositories.TaskRepository
	uploads  *storage.UploadDir
	hasher   SecretHasher
}

// NewTaskService は新しいTaskServiceを作成します。
func NewTaskService(taskRepo repositories.TaskRepository, uploads *storage.UploadDir, hasher SecretHasher) *TaskService {
	return &TaskService{taskRepo: taskRepo, uploads: uploads, hasher: hasher}
}

// ListAll はすべてのTaskを取得します。
func (s *TaskService) ListAll() ([]*models.Task, error) {
	tasks, err := s.taskRepo.FindAll()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		t.PhotoProtected = t.HasPhotoPassword()
	}
	return tasks, nil
}

// GetByID は指定IDのTaskを取得します。
func (s *TaskService) GetByID(id int) (*models.Task, error) {
	t, err := s.taskRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	t.PhotoProtected = t.HasPhotoPassword()
	return t, nil
}

// Create は新しいTaskを作成します。completedが送られなければfalseになります。
func (s *TaskService) Create(in models.TaskInput) (*models.Task, error) {
	t := &models.Task{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed.Set && in.Completed.Value,
	}
	return s.save(t, in)
}

// Update は既存のTaskを更新します。
// title/descriptionは常に上書きし、completed・写真・パスワードは送られた場合のみ上書きします。
func (s *TaskService) Update(id int, in models.TaskInput) (*models.Task, error) {
	existing, err := s.taskRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	existing.Title = in.Title
	existing.Description = in.Description
	if in.Completed.Set {
		existing.Completed = in.Completed.Value
	}
	return s.save(existing, in)
}

// Delete はTaskを削除します。アップロード済みの写真ファイルは削除しません。
func (s *TaskService) Delete(id int) error {
	exists, err := s.taskRepo.ExistsByID(id)
	if err != nil {
		return err
	}
	if !exists {
		return repositories.ErrTaskNotFound
	}
	return s.taskRepo.Delete(id)
}

// save は写真とパスワードを反映してからTaskを保存します。
// ファイル書き込みと保存はトランザクションではありません。
func (s *TaskService) save(t *models.Task, in models.TaskInput) (*models.Task, error) {
	if !in.Photo.IsEmpty() {
		name, err := s.uploads.Store(in.Photo.Filename, in.Photo.Content)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidFilename) {
				return nil, err
			}
			log.Printf("Failed to store photo %q: %v", in.Photo.Filename, err)
			return nil, fmt.Errorf("%w: %w", ErrPhotoStorage, err)
		}
		photoURL := PhotoURLPrefix + name
		t.PhotoURL = &photoURL
	}

	if in.PhotoPassword.Set && in.PhotoPassword.Value != "" {
		hash, err := s.hasher.Hash(in.PhotoPassword.Value)
		if err != nil {
			return nil, err
		}
		t.PhotoPasswordHash = &hash
	}

	saved, err := s.taskRepo.Save(t)
	if err != nil {
		return nil, err
	}
	saved.PhotoProtected = saved.HasPhotoPassword()
	return saved, nil
}
