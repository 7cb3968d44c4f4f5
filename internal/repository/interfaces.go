// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/fittrack/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword は指定ユーザーのパスワードハッシュを更新し、updated_atを進める。
	UpdatePassword(ctx context.Context, userID string, passwordHash []byte) error
}

// TokenRepository はベアラートークンの永続化インターフェース。
type TokenRepository interface {
	// FindByKey はトークンキーでトークンを検索する。見つからない場合はnilを返す。
	FindByKey(ctx context.Context, key string) (*model.Token, error)

	// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
	// 1ユーザーにつき最大1件のため単一レコードを返す。
	FindByUserID(ctx context.Context, userID string) (*model.Token, error)

	// Create はトークンを作成する。
	Create(ctx context.Context, token *model.Token) error

	// DeleteByKey は指定キーのトークンを削除する。
	// 対象が存在しない場合はエラーを返す。
	DeleteByKey(ctx context.Context, key string) error

	// DeleteByUserID は指定ユーザーの全トークンを削除する。
	// パスワード変更・リセット時の全セッション無効化に使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ResetTokenRepository はパスワードリセットトークンの永続化インターフェース。
type ResetTokenRepository interface {
	// Create はリセットトークンを作成する。
	Create(ctx context.Context, token *model.PasswordResetToken) error

	// FindValid は未期限切れのリセットトークンを検索する。
	// 見つからない（または期限切れの）場合はnilを返す。
	FindValid(ctx context.Context, token string) (*model.PasswordResetToken, error)

	// Delete は指定リセットトークンを削除する（使い捨ての消費）。
	Delete(ctx context.Context, token string) error
}

// ActivityRepository はアクティビティデータの永続化インターフェース。
// 全ての読み取り・更新・削除はuser_idでスコープされ、他ユーザーの行は不可視。
type ActivityRepository interface {
	// Create はアクティビティを作成する。
	Create(ctx context.Context, activity *model.Activity) error

	// FindByIDAndUser は指定IDかつ指定ユーザー所有のアクティビティを取得する。
	// 存在しない、または他ユーザー所有の場合はnilを返す。
	FindByIDAndUser(ctx context.Context, id, userID string) (*model.Activity, error)

	// ListByUser はユーザーのアクティビティ一覧をdate降順・created_at降順で返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Activity, error)

	// Update は既存アクティビティを上書き更新し、updated_atを進める。
	Update(ctx context.Context, activity *model.Activity) error

	// DeleteByIDAndUser は指定IDかつ指定ユーザー所有のアクティビティを削除する。
	// 削除された場合はtrueを、対象が見つからない場合はfalseを返す。
	DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error)
}
