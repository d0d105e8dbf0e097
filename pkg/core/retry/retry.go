// Package retry 提供带指数退避的重试工具
package retry

import (
	"context"
	"math"
	"time"

	"github.com/hatchet-dev/pickaxe/pkg/core/errors"
)

// Func 可重试的函数类型
type Func func() error

// MaxDelay 单次退避的上限
const MaxDelay = 30 * time.Second

// Do 执行带指数退避的重试
//
// 仅当 errors.IsRetryable 返回 true 时才会重试。
func Do(ctx context.Context, maxRetries int, baseDelay time.Duration, fn Func) error {
	p := Policy{MaxRetries: maxRetries, BaseDelay: baseDelay}
	return p.Do(ctx, fn)
}

// Policy 重试策略
type Policy struct {
	// MaxRetries 最大重试次数（不含首次执行）
	MaxRetries int
	// BaseDelay 退避基数
	BaseDelay time.Duration
	// Retryable 判断错误是否可重试，默认 errors.IsRetryable
	Retryable func(error) bool
	// OnRetry 每次重试前回调
	OnRetry func(attempt int, err error)
}

// Do 按策略执行 fn
func (p Policy) Do(ctx context.Context, fn Func) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = errors.IsRetryable
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		// 检查上下文是否取消
		select {
		case <-ctx.Done():
			return errors.ErrContextCanceled
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}

		if attempt < p.MaxRetries {
			if p.OnRetry != nil {
				p.OnRetry(attempt+1, err)
			}
			select {
			case <-ctx.Done():
				return errors.ErrContextCanceled
			case <-time.After(Backoff(attempt, p.BaseDelay)):
			}
		}
	}

	return lastErr
}

// Backoff 计算指数退避时间
// 使用公式: baseDelay * 2^attempt + 10% jitter，最大 30 秒
func Backoff(attempt int, baseDelay time.Duration) time.Duration {
	exp := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(baseDelay) * exp)

	jitter := time.Duration(float64(delay) * 0.1)
	delay += jitter

	if delay > MaxDelay {
		delay = MaxDelay
	}
	return delay
}
