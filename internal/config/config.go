// Package config は環境変数からアプリケーション設定を読み込みます。
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config はアプリケーションの設定値です。
type Config struct {
	Port string

	DBDriver string
	DBUser   string
	DBPass   string
	DBHost   string
	DBPort   string
	DBName   string
	DBPath   string // SQLiteファイルのパス

	UploadDir       string
	AllowOrigins    []string
	BcryptCost      int
	MaxUploadBytes  int64
	ShutdownTimeout time.Duration
}

// Load は .env を読み込んだ後、環境変数から設定を構築します。
// .env がなくてもエラーにはしません。
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("No .env file loaded, using environment only: %v", err)
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を構築します。
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:      getEnv("PORT", "8080"),
		DBDriver:  strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"),
		DBHost:    getEnv("DB_HOST", "127.0.0.1"),
		DBPort:    getEnv("DB_PORT", "3306"),
		DBName:    os.Getenv("DB_NAME"),
		DBPath:    getEnv("DB_PATH", "tasks.db"),
		UploadDir: getEnv("UPLOAD_DIR", "uploads"),
	}

	for _, origin := range strings.Split(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	var err error
	if cfg.BcryptCost, err = getEnvInt("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	maxUpload, err := getEnvInt("MAX_UPLOAD_BYTES", 10<<20)
	if err != nil {
		return nil, err
	}
	if maxUpload <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	cfg.MaxUploadBytes = int64(maxUpload)

	if cfg.ShutdownTimeout, err = time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s")); err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if cfg.DBUser == "" || cfg.DBName == "" {
			return nil, fmt.Errorf("DB_USER and DB_NAME are required for the mysql driver")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

// MySQLDSN は MySQL接続文字列 (DSN) を構築します。
// 例: user:pass@tcp(db:3306)/dbname
func (c *Config) MySQLDSN() string {
	// clientFoundRows: UPDATEで値が変わらなくても一致行数を返す
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true", c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName)
}

// Addr はHTTPサーバーのアドレスを返します。
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
