package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fittrack/internal/model"
)

// PostgresTokenRepo はPostgreSQLを使用したベアラートークンリポジトリ。
type PostgresTokenRepo struct {
	db *sql.DB
}

// NewPostgresTokenRepo はPostgresTokenRepoを生成する。
func NewPostgresTokenRepo(db *sql.DB) *PostgresTokenRepo {
	return &PostgresTokenRepo{db: db}
}

// FindByKey はトークンキーでトークンを検索する。見つからない場合はnilを返す。
func (r *PostgresTokenRepo) FindByKey(ctx context.Context, key string) (*model.Token, error) {
	token := &model.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT key, user_id, created_at FROM tokens WHERE key = $1`,
		key,
	).Scan(&token.Key, &token.UserID, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	return token, nil
}

// FindByUserID は指定ユーザーのトークンを取得する。見つからない場合はnilを返す。
func (r *PostgresTokenRepo) FindByUserID(ctx context.Context, userID string) (*model.Token, error) {
	token := &model.Token{}
	err := r.db.QueryRowContext(ctx,
		`SELECT key, user_id, created_at FROM tokens WHERE user_id = $1`,
		userID,
	).Scan(&token.Key, &token.UserID, &token.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token by user ID: %w", err)
	}

	return token, nil
}

// Create はトークンを作成する。
func (r *PostgresTokenRepo) Create(ctx context.Context, token *model.Token) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tokens (key, user_id, created_at) VALUES ($1, $2, $3)`,
		token.Key, token.UserID, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// DeleteByKey は指定キーのトークンを削除する。対象が存在しない場合はエラーを返す。
func (r *PostgresTokenRepo) DeleteByKey(ctx context.Context, key string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("token not found")
	}
	return nil
}

// DeleteByUserID は指定ユーザーの全トークンを削除する。
func (r *PostgresTokenRepo) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tokens WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete user tokens: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TokenRepository = (*PostgresTokenRepo)(nil)
