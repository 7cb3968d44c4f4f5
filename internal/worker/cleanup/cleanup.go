// Package cleanup は期限切れパスワードリセットトークンの自動削除ジョブを提供する。
// 有効期限を過ぎた行は認証に使えないまま残り続けるため、定期バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// PurgeRecorder は削除件数のメトリクス記録インターフェース。
// metrics.Collectorが実装する。nilの場合は記録しない。
type PurgeRecorder interface {
	RecordResetTokensPurged(count int)
}

// CleanupJob は期限切れリセットトークンの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	db      Executor
	logger  *slog.Logger
	metrics PurgeRecorder
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(db Executor, logger *slog.Logger, metrics PurgeRecorder) *CleanupJob {
	return &CleanupJob{
		db:      db,
		logger:  logger,
		metrics: metrics,
	}
}

// Run は有効期限を過ぎたリセットトークンを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	query := `DELETE FROM password_reset_tokens WHERE expires_at <= now()`
	result, err := j.db.ExecContext(ctx, query)
	if err != nil {
		j.logger.Error("reset token cleanup failed",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to purge expired reset tokens: %w", err)
	}

	deletedCount, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read purge count: %w", err)
	}

	if j.metrics != nil {
		j.metrics.RecordResetTokensPurged(int(deletedCount))
	}

	j.logger.Info("reset token cleanup completed",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// RunPeriodically は指定間隔でRunを繰り返し実行する。
// コンテキストのキャンセルで停止する。起動直後にも1回実行する。
func (j *CleanupJob) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := j.Run(ctx); err != nil {
		j.logger.Error("initial cleanup run failed", slog.String("error", err.Error()))
	}

	for {
		select {
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("periodic cleanup run failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}
