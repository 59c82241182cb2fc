package generator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shouni/go-manga-pdf/pkg/gemini"
)

const (
	retryMultiplier          = 2.0
	retryRandomizationFactor = 0.5
)

// RetryPolicy は画像生成リクエストの再試行方針です。
// MaxRetries は初回を除く再試行回数で、0 なら再試行しません。
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// newBackOff は指数バックオフ（倍率2、ジッター0.5）を生成します。
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = p.InitialInterval
	eb.MaxInterval = p.MaxInterval
	eb.Multiplier = retryMultiplier
	eb.RandomizationFactor = retryRandomizationFactor
	eb.MaxElapsedTime = 0
	eb.Reset()

	maxRetries := p.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(maxRetries)), ctx)
}

// Do は op を成功するか再試行回数を使い切るまで実行します。
// コンテキストの終了と再試行不能なエラーは即座に返します。
func (p RetryPolicy) Do(ctx context.Context, label string, op func(ctx context.Context) error) error {
	attempt := 0
	operation := func() error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if !gemini.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "Generation failed, retrying",
			"unit", label,
			"attempt", attempt,
			"wait", wait.Round(time.Millisecond),
			"error", err,
		)
	}

	err := backoff.RetryNotify(operation, p.newBackOff(ctx), notify)
	if err == nil {
		return nil
	}
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// permanent は再試行しないエラーとして印を付けます。
func permanent(err error) error {
	return backoff.Permanent(err)
}
