// Package retry повторяет вызовы к провайдеру при временных сетевых ошибках
package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Predicate решает, стоит ли повторять вызов после ошибки
type Predicate func(error) bool

// Policy параметры повторов. Attempts включает первую попытку.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// DefaultPolicy политика по умолчанию для вызовов API
func DefaultPolicy() Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 300 * time.Millisecond,
		MaxDelay:  3 * time.Second,
	}
}

// newBackOff экспоненциальная задержка с jitter; без BaseDelay повтор сразу
func (p Policy) newBackOff() backoff.BackOff {
	if p.BaseDelay <= 0 {
		return &backoff.ZeroBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.BaseDelay
	bo.Multiplier = 2
	if p.MaxDelay > 0 {
		bo.MaxInterval = p.MaxDelay
	}
	return bo
}

// Do выполняет fn, повторяя его с экспоненциальной задержкой и jitter.
// Ошибки, для которых retryable false, возвращаются сразу.
func Do(ctx context.Context, p Policy, retryable Predicate, fn func(attempt int) error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if retryable == nil {
		retryable = IsTransient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := fn(attempt)
		if err != nil && !retryable(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(p.newBackOff()),
		backoff.WithMaxTries(uint(p.Attempts)),
		backoff.WithMaxElapsedTime(0),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

// IsTransient true для таймаутов и сетевых ошибок; отмена контекста не повторяется
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
