// Package models はTaskとリクエスト用の入力構造体を定義します。
package models

import (
	"io"
	"time"
)

// Task はタスクのデータベース構造体を表します。
type Task struct {
	ID          int    `json:"id,omitempty" gorm:"primaryKey;autoIncrement"`
	Title       string `json:"title" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text;not null"`
	Completed   bool   `json:"completed" gorm:"not null;default:false"`

	// PhotoURL は "/uploads/<filename>" 形式の公開パス。写真がなければnil。
	PhotoURL *string `json:"photoUrl" gorm:"column:photo_url;size:512;index"`

	// PhotoPasswordHash はbcryptハッシュ。平文は保存しない。JSONには出さない。
	PhotoPasswordHash *string `json:"-" gorm:"column:photo_password_hash;size:255"`

	// PhotoProtected はレスポンス用。ハッシュがある場合にtrue。
	PhotoProtected bool `json:"photoProtected" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName はTaskのテーブル名を返します。
func (Task) TableName() string {
	return "tasks"
}

// HasPhotoPassword は写真パスワードのハッシュが保存されているかを返します。
func (t *Task) HasPhotoPassword() bool {
	return t.PhotoPasswordHash != nil && *t.PhotoPasswordHash != ""
}

// Optional はリクエストで値が送られたかどうかを区別するためのラッパーです。
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some は値ありのOptionalを返します。
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// None は値なしのOptionalを返します。
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Upload はアップロードされた写真ファイルを表します。
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// IsEmpty はファイル名またはデータが空かどうかを返します。
func (u *Upload) IsEmpty() bool {
	return u == nil || u.Filename == "" || u.Size == 0 || u.Content == nil
}

// TaskInput は作成・更新リクエストの内容です。
// Title と Description は常に必須で、その他は送られた場合のみ反映されます。
type TaskInput struct {
	Title         string
	Description   string
	Completed     Optional[bool]
	Photo         *Upload
	PhotoPassword Optional[string]
}

// TaskForm はmultipartフォームのバインド用構造体です。
// bindingタグ: Ginでのリクエストバリデーション用 (titleとdescriptionは必須)
// completedは空文字を未指定として扱うため文字列で受け取ります。
type TaskForm struct {
	Title         string  `form:"title" binding:"required"`
	Description   string  `form:"description" binding:"required"`
	Completed     *string `form:"completed"`
	PhotoPassword *string `form:"photoPassword"`
}
