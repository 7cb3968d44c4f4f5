// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash []byte
	FirstName    string
	LastName     string
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Token はユーザーに紐付くベアラートークンを表す。
// get-or-create方式で、1ユーザーにつき同時に有効なトークンは最大1つ。
type Token struct {
	Key       string
	UserID    string
	CreatedAt time.Time
}

// PasswordResetToken はパスワードリセット用の使い捨てトークンを表す。
// 使用時に削除され、期限切れのレコードはクリーンアップジョブが破棄する。
type PasswordResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
