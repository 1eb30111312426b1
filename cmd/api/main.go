package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"go-tasks-api/backend/internal/config"
	"go-tasks-api/backend/internal/database"
	"go-tasks-api/backend/internal/routes"
	"go-tasks-api/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// DB接続
	taskRepo, closeDB, err := database.OpenTaskRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// アップロードディレクトリは起動時に作成しておく
	uploads, err := storage.NewUploadDir(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to resolve upload directory: %v", err)
	}
	if err := uploads.EnsureExists(); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	r := routes.SetupRouter(cfg, taskRepo, uploads)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s (db=%s, uploads=%s)", srv.Addr, cfg.DBDriver, uploads.Root())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// 処理中のリクエストが終わってからDBを閉じる
			"http-server": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				if err := srv.Shutdown(ctx); err != nil {
					return err
				}
				return closeDB()
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
