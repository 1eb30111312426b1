package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SecretHasher は写真パスワードの一方向ハッシュと照合を行います。
type SecretHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher はbcryptによるSecretHasherの実装です。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は新しいBcryptHasherを作成します。範囲外のcostはDefaultCostになります。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash は与えられたパスワードをbcryptでハッシュ化します。
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify はハッシュ化されたパスワードと平文のパスワードを比較します。
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
