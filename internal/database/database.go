// Package database はレコードストアへの接続とテーブル作成を行います。
package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"go-tasks-api/backend/internal/config"
	"go-tasks-api/backend/internal/models"
	"go-tasks-api/backend/internal/repositories"
)

const createTasksTableSQL = `
	CREATE TABLE IF NOT EXISTS tasks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		photo_url VARCHAR(512) NULL,
		photo_password_hash VARCHAR(255) NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_tasks_photo_url (photo_url)
	);`

// InitMySQL はMySQLへの接続を初期化し、tasksテーブルを作成します。
func InitMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := EnsureMySQLSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	log.Println("Successfully connected to MySQL database!")
	return db, nil
}

// EnsureMySQLSchema はtasksテーブルがなければ作成します。
func EnsureMySQLSchema(db *sql.DB) error {
	if _, err := db.Exec(createTasksTableSQL); err != nil {
		return fmt.Errorf("failed to create tasks table: %w", err)
	}
	return nil
}

// InitSQLite はSQLiteをGORMで開き、マイグレーションを実行します。
// pathに ":memory:" を指定するとインメモリDBになります。
func InitSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// SQLiteの書き込みは1接続に直列化する
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Task{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}
	log.Printf("Successfully opened SQLite database at %s", path)
	return db, nil
}

// OpenTaskRepository は設定されたドライバーに応じてTaskRepositoryを返します。
// 戻り値の関数で接続を閉じます。
func OpenTaskRepository(cfg *config.Config) (repositories.TaskRepository, func() error, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		db, err := InitMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return repositories.NewMySQLTaskRepo(db), db.Close, nil
	case config.DriverSQLite:
		db, err := InitSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return repositories.NewGormTaskRepo(db), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
