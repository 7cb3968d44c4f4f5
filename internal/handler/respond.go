// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/fittrack/internal/model"
)

// errorResponse は単一メッセージのエラーレスポンス。
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// validationErrorResponse はフィールド単位のバリデーションエラーレスポンス。
type validationErrorResponse struct {
	Errors map[string]string `json:"errors"`
}

// writeJSON はJSONレスポンスを書き込む。
// 204 No Contentはボディを持てないため、ステータスのみを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeErrorResponse は単一メッセージのエラーレスポンスを書き込む。
func writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// writeAPIErrorResponse はAPIErrorをエラーレスポンスとして書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeJSON(w, statusCode, errorResponse{
		Error: apiErr.Message,
		Code:  apiErr.Code,
	})
}

// writeValidationErrorResponse はフィールドエラーを400で書き込む。
func writeValidationErrorResponse(w http.ResponseWriter, v *model.ValidationError) {
	writeJSON(w, http.StatusBadRequest, validationErrorResponse{Errors: v.Fields})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeValidationErrorResponse(w, validationErr)
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeErrorResponse(w, http.StatusInternalServerError, "An internal error occurred")
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUsernameTaken,
		model.ErrCodeValidationFailed,
		model.ErrCodeTokenNotFound,
		model.ErrCodeInvalidResetToken,
		model.ErrCodePasswordTooShort,
		model.ErrCodePasswordUnchanged:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials:
		return http.StatusUnauthorized
	case model.ErrCodeActivityNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeEmailSendFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
