package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/fittrack/internal/auth"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, input auth.RegisterInput) (*model.User, *model.Token, error)
	Login(ctx context.Context, username, password string) (*model.User, *model.Token, error)
	Logout(ctx context.Context, tokenKey string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, uid, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) (*model.Token, error)
}

// AuthHandler はトークン認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// userResponse はユーザー情報のレスポンス。
type userResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsSuperuser bool   `json:"is_superuser"`
}

// toUserResponse はドメインのUserをレスポンス型に変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		IsSuperuser: u.IsSuperuser,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// authResponse は登録・ログインのレスポンス。
type authResponse struct {
	User    userResponse `json:"user"`
	Token   string       `json:"token"`
	Message string       `json:"message"`
}

// messageResponse は単一メッセージのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// resetRequestRequest はリセット要求リクエストのボディ。
type resetRequestRequest struct {
	Email string `json:"email"`
}

// resetConfirmRequest はリセット確定リクエストのボディ。
type resetConfirmRequest struct {
	UID         string `json:"uid"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// passwordChangeRequest はパスワード変更リクエストのボディ。
type passwordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// passwordChangeResponse はパスワード変更のレスポンス。
// ローテーション後の新しいトークンを含む。
type passwordChangeResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// Register は新規ユーザーを登録し、トークンを発行する。
// POST /api/auth/register/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, token, err := h.service.Register(r.Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User:    toUserResponse(user),
		Token:   token.Key,
		Message: "User registered successfully",
	})
}

// Login は認証情報を検証してトークンを返す。
// POST /api/auth/login/
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	user, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User:    toUserResponse(user),
		Token:   token.Key,
		Message: "Login successful",
	})
}

// Logout は呼び出し元のトークンを破棄する。
// POST /api/auth/logout/
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenKey, err := middleware.TokenKeyFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), tokenKey); err != nil {
		// トークン未存在などの失敗は400として返す
		writeErrorResponse(w, http.StatusBadRequest, "Failed to logout")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// RequestPasswordReset はパスワードリセットメールの送信を受け付ける。
// アカウント列挙を防ぐため、メールアドレスの存在有無に関わらず同じ応答を返す。
// POST /api/auth/password-reset/request/
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Email == "" {
		v := model.NewValidationError()
		v.Add("email", "This field is required")
		writeValidationErrorResponse(w, v)
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "If an account with that email exists, a password reset link has been sent",
	})
}

// ConfirmPasswordReset はリセットトークンを検証して新しいパスワードを設定する。
// POST /api/auth/password-reset/confirm/
func (h *AuthHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req resetConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.service.ConfirmPasswordReset(r.Context(), req.UID, req.Token, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully"})
}

// ChangePassword は旧パスワードを検証して新しいパスワードを設定する。
// POST /api/auth/password-change/
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req passwordChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	token, err := h.service.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, passwordChangeResponse{
		Message: "Password changed successfully",
		Token:   token.Key,
	})
}
