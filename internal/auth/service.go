// Package auth はトークン認証、ユーザー登録、パスワード管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 8

// Mailer はパスワードリセットメール送信のインターフェース。
// mail.Mailerが実装する。
type Mailer interface {
	SendPasswordReset(to, username, resetLink string, ttlHours int) error
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// metrics.Collectorが実装する。nilの場合は記録しない。
type MetricsRecorder interface {
	RecordAuthFailure(reason string)
	RecordUserRegistered()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BaseURL       string        // リセットリンクの生成に使用するフロントエンドのベースURL
	ResetTokenTTL time.Duration // リセットトークンの有効期間
}

// RegisterInput はユーザー登録の入力。
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	tokenRepo repository.TokenRepository
	resetRepo repository.ResetTokenRepository
	mailer    Mailer
	metrics   MetricsRecorder
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	resetRepo repository.ResetTokenRepository,
	mailer Mailer,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		resetRepo: resetRepo,
		mailer:    mailer,
		metrics:   metrics,
		config:    config,
	}
}

// Register は新規ユーザーを作成し、トークンを発行する。
// ユーザー名が既に存在する場合はエラーを返す。
func (s *Service) Register(ctx context.Context, input RegisterInput) (*model.User, *model.Token, error) {
	v := model.NewValidationError()
	if input.Username == "" {
		v.Add("username", "This field is required")
	}
	if input.Password == "" {
		v.Add("password", "This field is required")
	}
	if v.HasErrors() {
		return nil, nil, v
	}

	existing, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, nil, model.NewUsernameTakenError(input.Username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックと挿入の間に同名ユーザーが作られた場合も重複として扱う
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, nil, model.NewUsernameTakenError(input.Username)
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.getOrCreateToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordUserRegistered()
	}
	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, token, nil
}

// Login はユーザー名とパスワードを検証し、トークンを返す。
// 既存トークンがあれば再利用する（過去のトークンは無効化しない）。
func (s *Service) Login(ctx context.Context, username, password string) (*model.User, *model.Token, error) {
	v := model.NewValidationError()
	if username == "" {
		v.Add("username", "This field is required")
	}
	if password == "" {
		v.Add("password", "This field is required")
	}
	if v.HasErrors() {
		return nil, nil, v
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		s.recordAuthFailure("unknown_user")
		return nil, nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.recordAuthFailure("bad_password")
		return nil, nil, model.NewInvalidCredentialsError()
	}

	token, err := s.getOrCreateToken(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return user, token, nil
}

// Logout は呼び出し元のトークンを削除する。
func (s *Service) Logout(ctx context.Context, tokenKey string) error {
	if tokenKey == "" {
		return fmt.Errorf("token key is required")
	}

	if err := s.tokenRepo.DeleteByKey(ctx, tokenKey); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// RequestPasswordReset はリセットトークンを発行し、リセットリンクをメールで送る。
// アカウント列挙を防ぐため、該当メールアドレスが存在しない場合もエラーにしない。
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		// 存在しないアカウントでも成功として扱う
		return nil
	}

	tokenValue, err := generateSecret(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	resetToken := &model.PasswordResetToken{
		Token:     tokenValue,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.ResetTokenTTL),
		CreatedAt: time.Now(),
	}
	if err := s.resetRepo.Create(ctx, resetToken); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	uid := encodeUID(user.ID)
	resetLink := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", s.config.BaseURL, uid, tokenValue)
	ttlHours := int(s.config.ResetTokenTTL / time.Hour)

	if err := s.mailer.SendPasswordReset(user.Email, user.Username, resetLink, ttlHours); err != nil {
		slog.Error("failed to send password reset mail",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return model.NewEmailSendFailedError()
	}

	slog.Info("password reset mail sent", slog.String("user_id", user.ID))
	return nil
}

// ConfirmPasswordReset はリセットトークンを検証して新しいパスワードを設定する。
// 成功時には該当ユーザーの全トークンを削除し、既存セッションを無効化する。
func (s *Service) ConfirmPasswordReset(ctx context.Context, uid, tokenValue, newPassword string) error {
	if uid == "" || tokenValue == "" {
		return model.NewInvalidResetTokenError()
	}

	if len(newPassword) < minPasswordLength {
		return model.NewPasswordTooShortError()
	}

	userID, err := decodeUID(uid)
	if err != nil {
		return model.NewInvalidResetTokenError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewInvalidResetTokenError()
	}

	resetToken, err := s.resetRepo.FindValid(ctx, tokenValue)
	if err != nil {
		return fmt.Errorf("failed to find reset token: %w", err)
	}
	if resetToken == nil || resetToken.UserID != user.ID {
		return model.NewInvalidResetTokenError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// 使い捨てトークンを消費する
	if err := s.resetRepo.Delete(ctx, resetToken.Token); err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}

	// 既存の全セッションを無効化する
	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}

	slog.Info("password reset completed", slog.String("user_id", user.ID))
	return nil
}

// ChangePassword は旧パスワードを検証して新しいパスワードを設定する。
// 成功時にはトークンをローテーション（削除+再発行）し、新トークンを返す。
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*model.Token, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	v := model.NewValidationError()
	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(oldPassword)) != nil {
		v.Add("old_password", "Old password is incorrect")
	} else {
		// 旧パスワードが正しい場合のみ新パスワードの内容を検査する
		if len(newPassword) < minPasswordLength {
			v.Add("new_password", "Password must be at least 8 characters long")
		} else if newPassword == oldPassword {
			v.Add("new_password", "New password must be different from the old password")
		}
	}
	if v.HasErrors() {
		return nil, v
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	// トークンローテーション: 既存トークンを削除して再発行する
	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to invalidate tokens: %w", err)
	}

	token, err := s.createToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	slog.Info("password changed", slog.String("user_id", userID))
	return token, nil
}

// getOrCreateToken はユーザーの既存トークンを返すか、なければ新規発行する。
func (s *Service) getOrCreateToken(ctx context.Context, userID string) (*model.Token, error) {
	token, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}
	if token != nil {
		return token, nil
	}
	return s.createToken(ctx, userID)
}

// createToken は新しいトークンを発行して永続化する。
func (s *Service) createToken(ctx context.Context, userID string) (*model.Token, error) {
	key, err := generateSecret(20)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token key: %w", err)
	}

	token := &model.Token{
		Key:       key,
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}

	return token, nil
}

// recordAuthFailure は認証失敗メトリクスを記録する。
func (s *Service) recordAuthFailure(reason string) {
	if s.metrics != nil {
		s.metrics.RecordAuthFailure(reason)
	}
}

// generateSecret は暗号的に安全なランダム16進文字列を生成する。
// nバイトの乱数から2n文字の文字列を返す。
func generateSecret(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// encodeUID はユーザーIDをリセットリンク用にエンコードする。
func encodeUID(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// decodeUID はリセットリンクのuidパラメータをユーザーIDに復元する。
func decodeUID(uid string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", fmt.Errorf("malformed uid: %w", err)
	}
	return string(b), nil
}
