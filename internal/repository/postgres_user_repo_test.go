package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/fittrack/internal/model"
)

// PostgresUserRepoがUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Userモデルのフィールドが正しく構築されることを検証
func TestPostgresUserRepo_UserModel_Fields(t *testing.T) {
	now := time.Now()
	user := &model.User{
		ID:           "user-id-1",
		Username:     "taro",
		Email:        "taro@example.com",
		PasswordHash: []byte("$2a$10$hash"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if user.ID != "user-id-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-id-1")
	}
	if user.Username != "taro" {
		t.Errorf("user.Username = %q, want %q", user.Username, "taro")
	}
	if user.Email != "taro@example.com" {
		t.Errorf("user.Email = %q, want %q", user.Email, "taro@example.com")
	}
	if user.IsSuperuser {
		t.Error("is_superuser should be false by default")
	}
}

// usernameの一意制約違反がErrDuplicateUsernameへ変換されることを検証
func TestPostgresUserRepo_UsernameConflictDetection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			"unique violation on username",
			&pq.Error{Code: "23505", Constraint: "users_username_key"},
			true,
		},
		{
			"wrapped unique violation",
			fmt.Errorf("exec failed: %w", &pq.Error{Code: "23505", Constraint: "users_username_key"}),
			true,
		},
		{
			"unique violation on another constraint",
			&pq.Error{Code: "23505", Constraint: "tokens_user_id_key"},
			false,
		},
		{
			"different error code",
			&pq.Error{Code: "23503", Constraint: "users_username_key"},
			false,
		},
		{
			"non-pq error",
			fmt.Errorf("connection refused"),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUsernameConflict(tt.err); got != tt.want {
				t.Errorf("isUsernameConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}

// 氏名フィールドが省略可能であることを検証
func TestPostgresUserRepo_UserModel_OptionalNames(t *testing.T) {
	user := &model.User{
		ID:       "user-id-2",
		Username: "hanako",
		Email:    "hanako@example.com",
	}

	if user.FirstName != "" {
		t.Error("first_name should be empty by default")
	}
	if user.LastName != "" {
		t.Error("last_name should be empty by default")
	}
}
