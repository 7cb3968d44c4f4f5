// Package model はドメインモデルを定義する。
package model

import (
	"fmt"
	"sort"
	"strings"
)

// APIError は統一エラーフォーマットを表す。
// ハンドラー層でHTTPステータスコードへのマッピングに使用する。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, activity, system
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeActivityNotFound   = "ACTIVITY_NOT_FOUND"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTokenNotFound      = "TOKEN_NOT_FOUND"
	ErrCodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	ErrCodePasswordTooShort   = "PASSWORD_TOO_SHORT"
	ErrCodePasswordUnchanged  = "PASSWORD_UNCHANGED"
	ErrCodeEmailSendFailed    = "EMAIL_SEND_FAILED"
)

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  fmt.Sprintf("A user with that username already exists: %s", username),
		Category: "validation",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid username or password",
		Category: "auth",
	}
}

// NewActivityNotFoundError はアクティビティ未検出エラーを生成する。
// 他ユーザー所有の行も同じエラーになる（所有者スコープによる不可視化）。
func NewActivityNotFoundError(activityID string) *APIError {
	return &APIError{
		Code:     ErrCodeActivityNotFound,
		Message:  fmt.Sprintf("Activity not found: %s", activityID),
		Category: "activity",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found",
		Category: "auth",
	}
}

// NewTokenNotFoundError はトークン未検出エラーを生成する。
func NewTokenNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenNotFound,
		Message:  "No token found for user",
		Category: "auth",
	}
}

// NewInvalidResetTokenError は無効なリセットトークンエラーを生成する。
// 期限切れ・使用済み・uid不正のいずれも同じエラーに畳み込む。
func NewInvalidResetTokenError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidResetToken,
		Message:  "Invalid or expired reset token",
		Category: "auth",
	}
}

// NewPasswordTooShortError はパスワード長不足エラーを生成する。
func NewPasswordTooShortError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordTooShort,
		Message:  "Password must be at least 8 characters long",
		Category: "validation",
	}
}

// NewPasswordUnchangedError は新旧パスワード同一エラーを生成する。
func NewPasswordUnchangedError() *APIError {
	return &APIError{
		Code:     ErrCodePasswordUnchanged,
		Message:  "New password must be different from the old password",
		Category: "validation",
	}
}

// NewEmailSendFailedError はメール送信失敗エラーを生成する。
func NewEmailSendFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailSendFailed,
		Message:  "Failed to send password reset email",
		Category: "system",
	}
}

// ValidationError はフィールド単位のバリデーションエラーを表す。
// キーはフィールド名、値はエラーメッセージ。
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add はフィールドエラーを追加する。同一フィールドへの最初のエラーのみ保持する。
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// HasErrors は1件以上のフィールドエラーが記録されているかを返す。
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error はerrorインターフェースを実装する。フィールド名順に連結して返す。
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}
