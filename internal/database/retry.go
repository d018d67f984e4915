package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// maxRetryDelay は接続リトライの最大待機時間。
const maxRetryDelay = 10 * time.Second

// RetryDelay は連続失敗回数に基づいて指数バックオフ遅延を計算する。
// initialから2倍ずつ増加し、maxRetryDelayで頭打ちになる。
func RetryDelay(initial time.Duration, consecutiveErrors int) time.Duration {
	delay := initial
	for i := 0; i < consecutiveErrors; i++ {
		delay *= 2
		if delay > maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

// WaitReady はデータベースが応答するまでPingを繰り返す。
// コンテナ起動直後などDBの準備が遅れる場合に使う。
// attempts回失敗した場合は最後のエラーを返す。ctxのキャンセル時はctx.Err()を返す。
func WaitReady(ctx context.Context, db *sql.DB, attempts int, initialDelay time.Duration) error {
	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = Ping(ctx, db, pingTimeout); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}

		delay := RetryDelay(initialDelay, i)
		slog.Warn("データベースへの接続に失敗しました。リトライします",
			slog.Int("attempt", i+1),
			slog.Duration("retry_in", delay),
			slog.String("error", lastErr.Error()),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("%d回の試行でデータベースに接続できませんでした: %w", attempts, lastErr)
}
