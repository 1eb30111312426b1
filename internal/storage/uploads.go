// Package storage はアップロードされた写真を保存するディレクトリを管理します。
package storage

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFilename はファイル名が空、またはディレクトリ外を指す場合のエラーです。
var ErrInvalidFilename = errors.New("invalid filename")

// UploadDir はアップロード先ディレクトリを表します。
type UploadDir struct {
	root string
}

// NewUploadDir は新しいUploadDirを作成します。pathは絶対パスに変換されます。
func NewUploadDir(path string) (*UploadDir, error) {
	if path == "" {
		return nil, fmt.Errorf("upload directory path is empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve upload directory: %w", err)
	}
	return &UploadDir{root: abs}, nil
}

// Root はディレクトリの絶対パスを返します。
func (d *UploadDir) Root() string {
	return d.root
}

// EnsureExists はディレクトリが存在しなければ作成します。
func (d *UploadDir) EnsureExists() error {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return fmt.Errorf("could not create upload directory: %w", err)
	}
	return nil
}

// SanitizeFilename はディレクトリ成分を取り除き、ベース名だけを返します。
// "..", "." や空文字になる場合は ErrInvalidFilename を返します。
func SanitizeFilename(name string) (string, error) {
	// Windows形式の区切り文字も区切りとして扱う
	name = strings.ReplaceAll(name, "\\", "/")
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "." || clean == ".." || clean == "/" || clean == "" {
		return "", ErrInvalidFilename
	}
	if strings.ContainsRune(clean, 0) {
		return "", ErrInvalidFilename
	}
	return clean, nil
}

// Resolve はファイル名をディレクトリ内のパスに変換します。
// すでにサニタイズ済みの名前でなければ拒否します。
func (d *UploadDir) Resolve(filename string) (string, error) {
	clean, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if clean != filename {
		return "", ErrInvalidFilename
	}

	path := filepath.Join(d.root, clean)
	rel, err := filepath.Rel(d.root, path)
	if err != nil || rel != clean {
		return "", ErrInvalidFilename
	}
	return path, nil
}

// Store はデータをディレクトリに書き込みます。同名ファイルは上書きされます。
// 戻り値はサニタイズ後のファイル名です。
func (d *UploadDir) Store(filename string, r io.Reader) (string, error) {
	clean, err := SanitizeFilename(filename)
	if err != nil {
		return "", err
	}
	if err := d.EnsureExists(); err != nil {
		return "", err
	}

	path := filepath.Join(d.root, clean)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		log.Printf("Failed to open upload file %s: %v", path, err)
		return "", fmt.Errorf("could not open upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		log.Printf("Failed to write upload file %s: %v", path, err)
		return "", fmt.Errorf("could not write upload file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("could not close upload file: %w", err)
	}
	return clean, nil
}

// Read はディレクトリ内のファイルの内容を返します。
func (d *UploadDir) Read(filename string) ([]byte, error) {
	path, err := d.Resolve(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read upload file: %w", err)
	}
	return data, nil
}
