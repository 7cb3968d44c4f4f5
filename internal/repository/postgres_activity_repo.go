package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/fittrack/internal/model"
)

// PostgresActivityRepo はPostgreSQLを使用したアクティビティリポジトリ。
// 読み取り・更新・削除は全てuser_idでスコープし、他ユーザーの行を不可視にする。
type PostgresActivityRepo struct {
	db *sql.DB
}

// NewPostgresActivityRepo はPostgresActivityRepoを生成する。
func NewPostgresActivityRepo(db *sql.DB) *PostgresActivityRepo {
	return &PostgresActivityRepo{db: db}
}

const activityColumns = `id, user_id, activity_type, title, description, status,
	duration_minutes, calories, steps_count, date, created_at, updated_at`

// Create はアクティビティを作成する。
func (r *PostgresActivityRepo) Create(ctx context.Context, activity *model.Activity) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, activity_type, title, description, status,
		 duration_minutes, calories, steps_count, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		activity.ID, activity.UserID, activity.ActivityType, activity.Title,
		activity.Description, activity.Status, activity.DurationMinutes,
		activity.Calories, activity.StepsCount, activity.Date,
		activity.CreatedAt, activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// FindByIDAndUser は指定IDかつ指定ユーザー所有のアクティビティを取得する。
// 存在しない、または他ユーザー所有の場合はnilを返す。
func (r *PostgresActivityRepo) FindByIDAndUser(ctx context.Context, id, userID string) (*model.Activity, error) {
	activity := &model.Activity{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(
		&activity.ID, &activity.UserID, &activity.ActivityType, &activity.Title,
		&activity.Description, &activity.Status, &activity.DurationMinutes,
		&activity.Calories, &activity.StepsCount, &activity.Date,
		&activity.CreatedAt, &activity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find activity: %w", err)
	}

	return activity, nil
}

// ListByUser はユーザーのアクティビティ一覧をdate降順・created_at降順で返す。
func (r *PostgresActivityRepo) ListByUser(ctx context.Context, userID string) ([]*model.Activity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities
		 WHERE user_id = $1
		 ORDER BY date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []*model.Activity{}
	for rows.Next() {
		activity := &model.Activity{}
		err := rows.Scan(
			&activity.ID, &activity.UserID, &activity.ActivityType, &activity.Title,
			&activity.Description, &activity.Status, &activity.DurationMinutes,
			&activity.Calories, &activity.StepsCount, &activity.Date,
			&activity.CreatedAt, &activity.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activities: %w", err)
	}

	return activities, nil
}

// Update は既存アクティビティを上書き更新し、updated_atを進める。
// user_idでもスコープするため、他ユーザーの行は更新されない。
func (r *PostgresActivityRepo) Update(ctx context.Context, activity *model.Activity) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE activities
		 SET activity_type = $1, title = $2, description = $3, status = $4,
		     duration_minutes = $5, calories = $6, steps_count = $7, date = $8,
		     updated_at = now()
		 WHERE id = $9 AND user_id = $10`,
		activity.ActivityType, activity.Title, activity.Description, activity.Status,
		activity.DurationMinutes, activity.Calories, activity.StepsCount, activity.Date,
		activity.ID, activity.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("activity not found: %s", activity.ID)
	}
	return nil
}

// DeleteByIDAndUser は指定IDかつ指定ユーザー所有のアクティビティを削除する。
// 削除された場合はtrueを、対象が見つからない場合はfalseを返す。
func (r *PostgresActivityRepo) DeleteByIDAndUser(ctx context.Context, id, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM activities WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete activity: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ActivityRepository = (*PostgresActivityRepo)(nil)
