package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/fittrack/internal/activity"
	"github.com/hitoshi/fittrack/internal/middleware"
	"github.com/hitoshi/fittrack/internal/model"
)

// dateLayout はアクティビティ日付のJSON表現。
const dateLayout = "2006-01-02"

// ActivityServiceInterface はアクティビティハンドラーが必要とするサービスインターフェース。
type ActivityServiceInterface interface {
	List(ctx context.Context, userID string) ([]*model.Activity, error)
	Create(ctx context.Context, userID string, input activity.Input) (*model.Activity, error)
	Get(ctx context.Context, userID, id string) (*model.Activity, error)
	Update(ctx context.Context, userID, id string, input activity.Input, partial bool) (*model.Activity, error)
	Delete(ctx context.Context, userID, id string) error
	UpdateStatus(ctx context.Context, userID, id string, status model.ActivityStatus) (*model.Activity, error)
	BulkUpdate(ctx context.Context, userID string, items []activity.BulkUpdateItem) (*activity.BulkUpdateResult, error)
}

// ActivityHandler はアクティビティ管理のHTTPハンドラー。
type ActivityHandler struct {
	service ActivityServiceInterface
}

// NewActivityHandler はActivityHandlerを生成する。
func NewActivityHandler(service ActivityServiceInterface) *ActivityHandler {
	return &ActivityHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// activityRequest はアクティビティ作成・更新リクエストのボディ。
// ポインタのフィールドでボディ内の有無を区別する。
type activityRequest struct {
	ActivityType    *string `json:"activity_type"`
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Status          *string `json:"status"`
	DurationMinutes *int    `json:"duration_minutes"`
	Calories        *int    `json:"calories"`
	StepsCount      *int    `json:"steps_count"`
	Date            *string `json:"date"` // YYYY-MM-DD
}

// toInput はリクエストをサービス層の入力に変換する。
// 日付の形式が不正な場合はValidationErrorを返す。
func (req *activityRequest) toInput() (activity.Input, *model.ValidationError) {
	in := activity.Input{
		ActivityType:    req.ActivityType,
		Title:           req.Title,
		Description:     req.Description,
		Status:          req.Status,
		DurationMinutes: req.DurationMinutes,
		Calories:        req.Calories,
		StepsCount:      req.StepsCount,
	}

	if req.Date != nil {
		parsed, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			v := model.NewValidationError()
			v.Add("date", "Date must be in YYYY-MM-DD format")
			return activity.Input{}, v
		}
		in.Date = &parsed
	}

	return in, nil
}

// activityResponse はアクティビティのレスポンス。
type activityResponse struct {
	ID              string    `json:"id"`
	User            string    `json:"user"`
	ActivityType    string    `json:"activity_type"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	Status          string    `json:"status"`
	DurationMinutes *int      `json:"duration_minutes"`
	Calories        *int      `json:"calories"`
	StepsCount      *int      `json:"steps_count"`
	Date            string    `json:"date"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// toActivityResponse はドメインのActivityをレスポンス型に変換する。
func toActivityResponse(a *model.Activity) activityResponse {
	return activityResponse{
		ID:              a.ID,
		User:            a.UserID,
		ActivityType:    string(a.ActivityType),
		Title:           a.Title,
		Description:     a.Description,
		Status:          string(a.Status),
		DurationMinutes: a.DurationMinutes,
		Calories:        a.Calories,
		StepsCount:      a.StepsCount,
		Date:            a.Date.Format(dateLayout),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// activityListResponse はアクティビティ一覧のレスポンス。
type activityListResponse struct {
	Count   int                `json:"count"`
	Results []activityResponse `json:"results"`
}

// activityUpdateResponse は詳細エンドポイントの更新レスポンス。
type activityUpdateResponse struct {
	Data    activityResponse `json:"data"`
	Message string           `json:"message"`
}

// activityEnvelopeResponse は/update/と/status/のレスポンス。
type activityEnvelopeResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    activityResponse `json:"data"`
}

// statusUpdateRequest はステータス更新リクエストのボディ。
// statusが優先され、省略時はis_completedから導出する。
type statusUpdateRequest struct {
	Status      *string `json:"status"`
	IsCompleted *bool   `json:"is_completed"`
}

// bulkUpdateItemRequest は一括更新リクエストの1要素。
type bulkUpdateItemRequest struct {
	ID *string `json:"id"`
	activityRequest
}

// bulkUpdateRequest は一括更新リクエストのボディ。
type bulkUpdateRequest struct {
	Updates *[]bulkUpdateItemRequest `json:"updates"`
}

// bulkSuccessResponse は一括更新で成功した1件のレスポンス。
type bulkSuccessResponse struct {
	ID            string   `json:"id"`
	UpdatedFields []string `json:"updated_fields"`
}

// bulkFailureResponse は一括更新で失敗した1件のレスポンス。
type bulkFailureResponse struct {
	ID     string            `json:"id,omitempty"`
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}

// bulkUpdateResponse は一括更新のレスポンス。
type bulkUpdateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Results struct {
		Successful []bulkSuccessResponse `json:"successful"`
		Failed     []bulkFailureResponse `json:"failed"`
	} `json:"results"`
}

// List は呼び出し元ユーザーのアクティビティ一覧を返す。
// GET /api/activities/
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	activities, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]activityResponse, len(activities))
	for i, a := range activities {
		results[i] = toActivityResponse(a)
	}

	writeJSON(w, http.StatusOK, activityListResponse{
		Count:   len(results),
		Results: results,
	})
}

// Create は新しいアクティビティを作成する。
// POST /api/activities/
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input, vErr := req.toInput()
	if vErr != nil {
		writeValidationErrorResponse(w, vErr)
		return
	}

	created, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityResponse(created))
}

// Get はアクティビティ詳細を返す。
// GET /api/activities/{id}/
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	a, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toActivityResponse(a))
}

// Update はアクティビティを更新する。PUTは全体更新、PATCHは部分更新。
// PUT/PATCH /api/activities/{id}/
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input, vErr := req.toInput()
	if vErr != nil {
		writeValidationErrorResponse(w, vErr)
		return
	}

	partial := r.Method == http.MethodPatch
	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input, partial)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activityUpdateResponse{
		Data:    toActivityResponse(updated),
		Message: "Activity updated successfully",
	})
}

// UpdateAlt は更新専用エンドポイント。常に部分更新として扱い、
// {success, message, data}のエンベロープで返す。
// PUT/PATCH /api/activities/{id}/update/
func (h *ActivityHandler) UpdateAlt(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input, vErr := req.toInput()
	if vErr != nil {
		writeValidationErrorResponse(w, vErr)
		return
	}

	updated, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), input, true)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activityEnvelopeResponse{
		Success: true,
		Message: "Activity updated successfully",
		Data:    toActivityResponse(updated),
	})
}

// Delete はアクティビティを削除する。
// DELETE /api/activities/{id}/
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

// UpdateStatus はアクティビティのステータスのみを変更する。
// ボディはstatusを優先し、なければis_completedから導出する
// （true=completed、false=planned）。
// POST /api/activities/{id}/status/
func (h *ActivityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var status model.ActivityStatus
	switch {
	case req.Status != nil:
		status = model.ActivityStatus(*req.Status)
	case req.IsCompleted != nil:
		if *req.IsCompleted {
			status = model.ActivityStatusCompleted
		} else {
			status = model.ActivityStatusPlanned
		}
	default:
		writeErrorResponse(w, http.StatusBadRequest, "Status is required")
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), userID, chi.URLParam(r, "id"), status)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, activityEnvelopeResponse{
		Success: true,
		Message: "Status updated successfully",
		Data:    toActivityResponse(updated),
	})
}

// BulkUpdate は複数アクティビティを一括で部分更新する。
// 各要素は独立に処理され、1件でも成功すれば200、全件失敗なら400を返す。
// POST /api/activities/bulk-update/
func (h *ActivityHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req bulkUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "updates field is required and must be a list")
		return
	}
	if req.Updates == nil {
		writeErrorResponse(w, http.StatusBadRequest, "updates field is required and must be a list")
		return
	}

	items := make([]activity.BulkUpdateItem, 0, len(*req.Updates))
	failed := make([]bulkFailureResponse, 0)
	for _, itemReq := range *req.Updates {
		input, vErr := itemReq.toInput()
		if vErr != nil {
			id := ""
			if itemReq.ID != nil {
				id = *itemReq.ID
			}
			failed = append(failed, bulkFailureResponse{
				ID:     id,
				Error:  "Validation failed",
				Errors: vErr.Fields,
			})
			continue
		}

		item := activity.BulkUpdateItem{Input: input}
		if itemReq.ID != nil {
			item.ID = *itemReq.ID
		}
		items = append(items, item)
	}

	result, err := h.service.BulkUpdate(r.Context(), userID, items)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := bulkUpdateResponse{}
	resp.Results.Successful = make([]bulkSuccessResponse, len(result.Successful))
	for i, s := range result.Successful {
		resp.Results.Successful[i] = bulkSuccessResponse{
			ID:            s.ID,
			UpdatedFields: s.UpdatedFields,
		}
	}
	resp.Results.Failed = failed
	for _, f := range result.Failed {
		resp.Results.Failed = append(resp.Results.Failed, bulkFailureResponse{
			ID:     f.ID,
			Error:  f.Reason,
			Errors: f.Errors,
		})
	}

	successCount := len(resp.Results.Successful)
	failureCount := len(resp.Results.Failed)
	resp.Success = successCount > 0
	resp.Message = fmt.Sprintf("%d updated successfully, %d failed", successCount, failureCount)

	statusCode := http.StatusOK
	if successCount == 0 {
		statusCode = http.StatusBadRequest
	}
	writeJSON(w, statusCode, resp)
}
