// Package cleanup は期限切れセッションの自動削除ジョブを提供する。
// 有効期限を過ぎたセッション行を日次バッチで削除する。
// セッションの読み取り側は期限切れを常に除外するため、
// このジョブは容量回収のみを目的とする。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SessionPurger は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPurger interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// CleanupJob は期限切れセッションの自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPurger
	logger   *slog.Logger
}

// NewCleanupJob は新しいCleanupJobを生成する。
func NewCleanupJob(sessions SessionPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions: sessions,
		logger:   logger,
	}
}

// Run は有効期限を過ぎたセッションを削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	deletedCount, err := j.sessions.DeleteExpired(ctx)
	if err != nil {
		j.logger.Error("セッションクリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("セッションクリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("セッションクリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
