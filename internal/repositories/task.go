// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import (
	"errors"

	"go-tasks-api/backend/internal/models"
)

// ErrTaskNotFound はタスクが見つからない場合のエラーです。
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository はTaskの永続化を抽象化します。
type TaskRepository interface {
	FindAll() ([]*models.Task, error)
	FindByID(id int) (*models.Task, error)
	// FindAllByPhotoURL は photo_url が一致するタスクを更新の新しい順に返します。
	// 一致しない場合は空のスライスを返します。
	FindAllByPhotoURL(photoURL string) ([]*models.Task, error)
	ExistsByID(id int) (bool, error)
	// Save はIDが0なら挿入、それ以外なら更新します。
	Save(t *models.Task) (*models.Task, error)
	Delete(id int) error
	Ping() error
}
