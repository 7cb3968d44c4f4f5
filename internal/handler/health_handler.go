package handler

import (
	"encoding/json"
	"net/http"
)

// HealthHandler は死活確認とステータスエコーのHTTPハンドラー。
type HealthHandler struct{}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// healthResponse は死活確認のレスポンス。
type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// statusEchoRequest はステータスエコーリクエストのボディ。
type statusEchoRequest struct {
	Status *string `json:"status"`
}

// statusEchoResponse はステータスエコーのレスポンス。
type statusEchoResponse struct {
	Message   string `json:"message"`
	NewStatus string `json:"new_status"`
}

// Health は常に200を返す死活確認エンドポイント。
// GET /api/health/
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Message: "Service is healthy",
	})
}

// UpdateStatusEcho はボディのstatusフィールドをそのまま返すエコーエンドポイント。
// POST以外のメソッドは405、statusがない場合は400を返す。
// ボディの解析失敗は400として扱う。
// POST /update-status/
func (h *HealthHandler) UpdateStatusEcho(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req statusEchoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Status == nil || *req.Status == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Status is required")
		return
	}

	writeJSON(w, http.StatusOK, statusEchoResponse{
		Message:   "Status updated successfully",
		NewStatus: *req.Status,
	})
}
