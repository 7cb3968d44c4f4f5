// Package activity はアクティビティ記録のビジネスロジックを提供する。
// 全操作は呼び出し元ユーザーのIDでスコープされ、他ユーザーの行は
// 存在しないものとして扱う。
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/fittrack/internal/model"
	"github.com/hitoshi/fittrack/internal/repository"
)

// MetricsRecorder はアクティビティ操作のメトリクス記録インターフェース。
// metrics.Collectorが実装する。nilの場合は記録しない。
type MetricsRecorder interface {
	RecordActivityCreated(activityType string)
}

// Input はアクティビティの作成・更新の入力。
// ポインタのフィールドはリクエストボディでの有無を区別する。
// nilは未指定を意味し、部分更新では既存値を維持する。
type Input struct {
	ActivityType    *string
	Title           *string
	Description     *string
	Status          *string
	DurationMinutes *int
	Calories        *int
	StepsCount      *int
	Date            *time.Time
}

// FieldNames は入力に含まれるフィールド名の一覧を返す。
// 一括更新の成功レポートに使用する。
func (in *Input) FieldNames() []string {
	names := make([]string, 0, 8)
	if in.ActivityType != nil {
		names = append(names, "activity_type")
	}
	if in.Title != nil {
		names = append(names, "title")
	}
	if in.Description != nil {
		names = append(names, "description")
	}
	if in.Status != nil {
		names = append(names, "status")
	}
	if in.DurationMinutes != nil {
		names = append(names, "duration_minutes")
	}
	if in.Calories != nil {
		names = append(names, "calories")
	}
	if in.StepsCount != nil {
		names = append(names, "steps_count")
	}
	if in.Date != nil {
		names = append(names, "date")
	}
	return names
}

// BulkUpdateItem は一括更新の1要素。
type BulkUpdateItem struct {
	ID    string
	Input Input
}

// BulkSuccess は一括更新で成功した1件の結果。
type BulkSuccess struct {
	ID            string
	UpdatedFields []string
}

// BulkFailure は一括更新で失敗した1件の結果。
// Errorsはバリデーション失敗時のみ設定される。
type BulkFailure struct {
	ID     string
	Reason string
	Errors map[string]string
}

// BulkUpdateResult は一括更新の集計結果。
type BulkUpdateResult struct {
	Successful []BulkSuccess
	Failed     []BulkFailure
}

// Service はアクティビティのビジネスロジックを提供する。
type Service struct {
	repo    repository.ActivityRepository
	metrics MetricsRecorder
}

// NewService はServiceを生成する。
func NewService(repo repository.ActivityRepository, metrics MetricsRecorder) *Service {
	return &Service{repo: repo, metrics: metrics}
}

// List は指定ユーザーの全アクティビティを日付降順で返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Activity, error) {
	activities, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, nil
}

// Create は新しいアクティビティを作成する。
// 所有者はリクエストボディの内容に関わらず呼び出し元ユーザーになる。
func (s *Service) Create(ctx context.Context, userID string, input Input) (*model.Activity, error) {
	now := time.Now()

	a := &model.Activity{
		ID:        uuid.New().String(),
		UserID:    userID,
		Status:    model.ActivityStatusPlanned,
		Date:      truncateToDate(now),
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyInput(a, input)

	if v := validateActivity(a); v != nil {
		return nil, v
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordActivityCreated(string(a.ActivityType))
	}
	slog.Info("activity created",
		slog.String("activity_id", a.ID),
		slog.String("user_id", userID),
		slog.String("activity_type", string(a.ActivityType)),
	)

	return a, nil
}

// Get は指定IDのアクティビティを取得する。
// 存在しない、または他ユーザー所有の場合はNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Activity, error) {
	a, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}
	if a == nil {
		return nil, model.NewActivityNotFoundError(id)
	}
	return a, nil
}

// Update は既存アクティビティを更新する。
// partialがfalseの場合は全体更新で、未指定の必須フィールドはエラー、
// 未指定の任意フィールドはクリアされる。trueの場合は指定フィールドのみ変更する。
func (s *Service) Update(ctx context.Context, userID, id string, input Input, partial bool) (*model.Activity, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if partial {
		applyInput(a, input)
	} else {
		// 全体更新では必須フィールドの欠落をエラーにする
		v := model.NewValidationError()
		if input.ActivityType == nil {
			v.Add("activity_type", "This field is required")
		}
		if input.Title == nil {
			v.Add("title", "This field is required")
		}
		if v.HasErrors() {
			return nil, v
		}
		resetOptional(a)
		applyInput(a, input)
	}
	a.UpdatedAt = time.Now()

	if v := validateActivity(a); v != nil {
		return nil, v
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	slog.Info("activity updated",
		slog.String("activity_id", a.ID),
		slog.String("user_id", userID),
	)
	return a, nil
}

// Delete は指定IDのアクティビティを削除する。
// 存在しない、または他ユーザー所有の場合はNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.DeleteByIDAndUser(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if !deleted {
		return model.NewActivityNotFoundError(id)
	}

	slog.Info("activity deleted",
		slog.String("activity_id", id),
		slog.String("user_id", userID),
	)
	return nil
}

// UpdateStatus はアクティビティのステータスのみを変更する。
func (s *Service) UpdateStatus(ctx context.Context, userID, id string, status model.ActivityStatus) (*model.Activity, error) {
	if !status.IsValid() {
		v := model.NewValidationError()
		v.Add("status", "Must be one of: planned, in_progress, completed")
		return nil, v
	}

	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	a.Status = status
	a.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update activity status: %w", err)
	}

	slog.Info("activity status updated",
		slog.String("activity_id", a.ID),
		slog.String("user_id", userID),
		slog.String("status", string(status)),
	)
	return a, nil
}

// BulkUpdate は複数アクティビティを逐次的に部分更新する。
// 各要素は独立に処理され、途中の失敗は以前の成功をロールバックしない。
func (s *Service) BulkUpdate(ctx context.Context, userID string, items []BulkUpdateItem) (*BulkUpdateResult, error) {
	result := &BulkUpdateResult{
		Successful: make([]BulkSuccess, 0, len(items)),
		Failed:     make([]BulkFailure, 0),
	}

	for _, item := range items {
		if item.ID == "" {
			result.Failed = append(result.Failed, BulkFailure{
				Reason: "Activity ID is required",
			})
			continue
		}

		a, err := s.repo.FindByIDAndUser(ctx, item.ID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to find activity %s: %w", item.ID, err)
		}
		if a == nil {
			result.Failed = append(result.Failed, BulkFailure{
				ID:     item.ID,
				Reason: "Activity not found or does not belong to you",
			})
			continue
		}

		applyInput(a, item.Input)
		a.UpdatedAt = time.Now()

		if v := validateActivity(a); v != nil {
			result.Failed = append(result.Failed, BulkFailure{
				ID:     item.ID,
				Reason: "Validation failed",
				Errors: v.Fields,
			})
			continue
		}

		if err := s.repo.Update(ctx, a); err != nil {
			return nil, fmt.Errorf("failed to update activity %s: %w", item.ID, err)
		}

		result.Successful = append(result.Successful, BulkSuccess{
			ID:            item.ID,
			UpdatedFields: item.Input.FieldNames(),
		})
	}

	slog.Info("bulk update completed",
		slog.String("user_id", userID),
		slog.Int("successful", len(result.Successful)),
		slog.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// applyInput は入力に含まれるフィールドのみをアクティビティに反映する。
func applyInput(a *model.Activity, in Input) {
	if in.ActivityType != nil {
		a.ActivityType = model.ActivityType(*in.ActivityType)
	}
	if in.Title != nil {
		a.Title = *in.Title
	}
	if in.Description != nil {
		a.Description = in.Description
	}
	if in.Status != nil {
		a.Status = model.ActivityStatus(*in.Status)
	}
	if in.DurationMinutes != nil {
		a.DurationMinutes = in.DurationMinutes
	}
	if in.Calories != nil {
		a.Calories = in.Calories
	}
	if in.StepsCount != nil {
		a.StepsCount = in.StepsCount
	}
	if in.Date != nil {
		a.Date = truncateToDate(*in.Date)
	}
}

// resetOptional は全体更新に備えて任意フィールドを初期値に戻す。
// 必須フィールド（種別・タイトル）は入力側の検証で捕捉するため残す。
func resetOptional(a *model.Activity) {
	a.Description = nil
	a.Status = model.ActivityStatusPlanned
	a.DurationMinutes = nil
	a.Calories = nil
	a.StepsCount = nil
}

// truncateToDate は時刻部分を切り捨てて日付のみにする。
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
