package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-tasks-api/backend/internal/models"
)

// GormTaskRepo はGORMを使ったTaskRepositoryの実装です (SQLite用)。
type GormTaskRepo struct {
	db *gorm.DB
}

// NewGormTaskRepo は新しいGormTaskRepoを作成します。
func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

// FindAll はすべてのタスクをID順に取得します。
func (r *GormTaskRepo) FindAll() ([]*models.Task, error) {
	tasks := []*models.Task{}
	if err := r.db.Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	return tasks, nil
}

// FindByID は指定されたIDのタスクを取得します。
func (r *GormTaskRepo) FindByID(id int) (*models.Task, error) {
	var t models.Task
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// FindAllByPhotoURL は写真URLを参照するタスクを更新の新しい順に取得します。
func (r *GormTaskRepo) FindAllByPhotoURL(photoURL string) ([]*models.Task, error) {
	tasks := []*models.Task{}
	err := r.db.Where("photo_url = ?", photoURL).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks by photo url: %w", err)
	}
	return tasks, nil
}

// ExistsByID はタスクが存在するかを返します。
func (r *GormTaskRepo) ExistsByID(id int) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Task{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count > 0, nil
}

// Save はタスクを挿入または更新します。
func (r *GormTaskRepo) Save(t *models.Task) (*models.Task, error) {
	if t.ID == 0 {
		if err := r.db.Create(t).Error; err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		return t, nil
	}

	result := r.db.Model(&models.Task{}).Where("id = ?", t.ID).Select("*").Omit("id", "created_at").Updates(t)
	if err := result.Error; err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.FindByID(t.ID)
}

// Delete は指定されたIDのタスクを削除します。
func (r *GormTaskRepo) Delete(id int) error {
	result := r.db.Delete(&models.Task{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Ping はデータベース接続を確認します。
func (r *GormTaskRepo) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
