package activity

import (
	"github.com/hitoshi/fittrack/internal/model"
)

// maxTitleLength はタイトルの最大文字数。
const maxTitleLength = 200

// validateActivity はマージ後のアクティビティ全体を検証する。
// 違反がなければnilを返す。steps種別のsteps_count必須チェックは
// 作成・全体更新・部分更新の全経路で一律に適用する。
func validateActivity(a *model.Activity) *model.ValidationError {
	v := model.NewValidationError()

	if a.ActivityType == "" {
		v.Add("activity_type", "This field is required")
	} else if !a.ActivityType.IsValid() {
		v.Add("activity_type", "Must be one of: workout, meal, steps")
	}

	if a.Title == "" {
		v.Add("title", "This field is required")
	} else if len(a.Title) > maxTitleLength {
		v.Add("title", "Ensure this field has no more than 200 characters")
	}

	if !a.Status.IsValid() {
		v.Add("status", "Must be one of: planned, in_progress, completed")
	}

	if a.DurationMinutes != nil && *a.DurationMinutes < 0 {
		v.Add("duration_minutes", "Ensure this value is greater than or equal to 0")
	}

	if a.Calories != nil && *a.Calories < 0 {
		v.Add("calories", "Ensure this value is greater than or equal to 0")
	}

	if a.ActivityType == model.ActivityTypeSteps && a.StepsCount == nil {
		v.Add("steps_count", "This field is required for steps activities")
	}

	if v.HasErrors() {
		return v
	}
	return nil
}
