package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"go-tasks-api/backend/internal/models"
)

const taskColumns = "id, title, description, completed, photo_url, photo_password_hash, created_at, updated_at"

// MySQLTaskRepo はMySQLを使ったTaskRepositoryの実装です。
type MySQLTaskRepo struct {
	DB *sql.DB
}

// NewMySQLTaskRepo は新しいMySQLTaskRepoインスタンスを作成します。
func NewMySQLTaskRepo(db *sql.DB) *MySQLTaskRepo {
	return &MySQLTaskRepo{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	var photoURL, photoHash sql.NullString
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &photoURL, &photoHash, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if photoURL.Valid {
		t.PhotoURL = &photoURL.String
	}
	if photoHash.Valid {
		t.PhotoPasswordHash = &photoHash.String
	}
	return &t, nil
}

// FindAll はすべてのタスクをID順に取得します。
func (r *MySQLTaskRepo) FindAll() ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks ORDER BY id"

	rows, err := r.DB.Query(query)
	if err != nil {
		log.Printf("Failed to query tasks: %v", err)
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Printf("Failed to scan task: %v", err)
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// FindByID は指定されたIDのタスクを取得します。
func (r *MySQLTaskRepo) FindByID(id int) (*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE id = ?"

	t, err := scanTask(r.DB.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		log.Printf("Failed to query task by ID: %v", err)
		return nil, fmt.Errorf("could not query task: %w", err)
	}
	return t, nil
}

// FindAllByPhotoURL は写真URLを参照するタスクを更新の新しい順に取得します。
func (r *MySQLTaskRepo) FindAllByPhotoURL(photoURL string) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE photo_url = ? ORDER BY updated_at DESC, id DESC"

	rows, err := r.DB.Query(query, photoURL)
	if err != nil {
		log.Printf("Failed to query tasks by photo URL: %v", err)
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			log.Printf("Failed to scan task: %v", err)
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return tasks, nil
}

// ExistsByID はタスクが存在するかを返します。
func (r *MySQLTaskRepo) ExistsByID(id int) (bool, error) {
	var exists bool
	err := r.DB.QueryRow("SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		log.Printf("Failed to check task existence: %v", err)
		return false, fmt.Errorf("could not check task: %w", err)
	}
	return exists, nil
}

// Save はタスクを挿入または更新します。
func (r *MySQLTaskRepo) Save(t *models.Task) (*models.Task, error) {
	now := time.Now().UTC().Truncate(time.Second)

	if t.ID == 0 {
		query := "INSERT INTO tasks (title, description, completed, photo_url, photo_password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
		result, err := r.DB.Exec(query, t.Title, t.Description, t.Completed, t.PhotoURL, t.PhotoPasswordHash, now, now)
		if err != nil {
			log.Printf("Failed to insert task: %v", err)
			return nil, fmt.Errorf("could not insert task: %w", err)
		}

		// 自動採番されたIDを取得
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("could not get last insert ID: %w", err)
		}
		t.ID = int(id)
		t.CreatedAt = now
		t.UpdatedAt = now
		return t, nil
	}

	query := "UPDATE tasks SET title = ?, description = ?, completed = ?, photo_url = ?, photo_password_hash = ?, updated_at = ? WHERE id = ?"
	result, err := r.DB.Exec(query, t.Title, t.Description, t.Completed, t.PhotoURL, t.PhotoPasswordHash, now, t.ID)
	if err != nil {
		log.Printf("Failed to update task: %v", err)
		return nil, fmt.Errorf("could not update task: %w", err)
	}

	// DSNで clientFoundRows=true を指定しているため、値が同じでも1行になる
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	return r.FindByID(t.ID)
}

// Delete は指定されたIDのタスクを削除します。
func (r *MySQLTaskRepo) Delete(id int) error {
	result, err := r.DB.Exec("DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		log.Printf("Failed to delete task: %v", err)
		return fmt.Errorf("could not delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Ping はデータベース接続を確認します。
func (r *MySQLTaskRepo) Ping() error {
	return r.DB.Ping()
}
