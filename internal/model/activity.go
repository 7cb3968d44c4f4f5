// Package model はドメインモデルを定義する。
package model

import "time"

// ActivityType はアクティビティの種別を表す。
type ActivityType string

const (
	// ActivityTypeWorkout はワークアウト（運動）を表す。
	ActivityTypeWorkout ActivityType = "workout"
	// ActivityTypeMeal は食事を表す。
	ActivityTypeMeal ActivityType = "meal"
	// ActivityTypeSteps は歩数記録を表す。
	ActivityTypeSteps ActivityType = "steps"
)

// IsValid は既知のアクティビティ種別かどうかを返す。
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeWorkout, ActivityTypeMeal, ActivityTypeSteps:
		return true
	}
	return false
}

// ActivityStatus はアクティビティの進行状態を表す。
type ActivityStatus string

const (
	// ActivityStatusPlanned は予定状態を表す（デフォルト）。
	ActivityStatusPlanned ActivityStatus = "planned"
	// ActivityStatusInProgress は実施中状態を表す。
	ActivityStatusInProgress ActivityStatus = "in_progress"
	// ActivityStatusCompleted は完了状態を表す。
	ActivityStatusCompleted ActivityStatus = "completed"
)

// IsValid は既知のステータス値かどうかを返す。
func (s ActivityStatus) IsValid() bool {
	switch s {
	case ActivityStatusPlanned, ActivityStatusInProgress, ActivityStatusCompleted:
		return true
	}
	return false
}

// Activity はユーザーが記録するアクティビティ（ワークアウト・食事・歩数）を表す。
// 必ず1人のユーザーに帰属し、他ユーザーからは見えない。
type Activity struct {
	ID              string
	UserID          string
	ActivityType    ActivityType
	Title           string
	Description     *string
	Status          ActivityStatus
	DurationMinutes *int
	Calories        *int
	StepsCount      *int
	Date            time.Time // 日付のみ有効（時刻部分は切り捨て）
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
