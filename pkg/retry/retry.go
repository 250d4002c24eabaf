// Package retry повторяет сетевые операции с настраиваемой задержкой.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"
)

// ErrExhausted возвращается, когда все попытки исчерпаны
var ErrExhausted = errors.New("retry attempts exhausted")

// Func - операция, которую можно повторить
type Func func(ctx context.Context) error

// Retryer выполняет операцию с повторами
type Retryer struct {
	config Config
}

// New создает Retryer; выключенная конфигурация дает одну попытку
func New(config Config) (*Retryer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry config: %w", err)
	}
	return &Retryer{config: config}, nil
}

// Do выполняет fn, пока она не вернет nil, ошибку без повтора,
// или пока не кончатся попытки либо контекст
func (r *Retryer) Do(ctx context.Context, fn Func) error {
	if r == nil || !r.config.Enabled {
		return fn(ctx)
	}

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !r.retryable(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

// delay вычисляет задержку перед попыткой attempt+1
func (r *Retryer) delay(attempt int) time.Duration {
	var d time.Duration

	switch r.config.Backoff {
	case BackoffLinear:
		d = r.config.InitialDelay * time.Duration(attempt)
	case BackoffExponential:
		d = time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	default:
		d = r.config.InitialDelay
	}

	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}

	if r.config.Jitter > 0 {
		d += time.Duration(float64(d) * r.config.Jitter * (rand.Float64()*2 - 1))
		if d < 0 {
			d = r.config.InitialDelay
		}
	}
	return d
}

func (r *Retryer) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if len(r.config.Retryable) == 0 {
		return true
	}

	msg := err.Error()
	for _, pattern := range r.config.Retryable {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}
