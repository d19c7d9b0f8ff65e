package retry

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"
)

var errPermanent = errors.New("permanent")

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func fastPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestDo_RetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(3), nil, func(int) error {
		calls++
		if calls < 3 {
			return timeoutErr{}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsOnPermanent(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(5), nil, func(int) error {
		calls++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Errorf("Expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(2), nil, func(int) error {
		calls++
		return timeoutErr{}
	})
	if err == nil {
		t.Fatal("Expected error")
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}
}

func TestDo_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, fastPolicy(3), nil, func(int) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no calls, got %d", calls)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil should not be transient")
	}
	if IsTransient(context.Canceled) {
		t.Error("context.Canceled should not be transient")
	}
	if !IsTransient(context.DeadlineExceeded) {
		t.Error("context.DeadlineExceeded should be transient")
	}
	if !IsTransient(&net.OpError{Op: "dial", Err: errPermanent}) {
		t.Error("net.OpError should be transient")
	}
	if IsTransient(errPermanent) {
		t.Error("plain error should not be transient")
	}
}

func TestDo_ReturnsUnwrappedError(t *testing.T) {
	for _, attempts := range []int{1, 3} {
		err := Do(context.Background(), fastPolicy(attempts), nil, func(int) error {
			return errPermanent
		})
		if err != errPermanent {
			t.Errorf("Expected bare permanent error with %d attempts, got %#v", attempts, err)
		}
	}
}

func TestDo_CustomPredicate(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(4), func(err error) bool {
		return errors.Is(err, errPermanent)
	}, func(attempt int) error {
		calls++
		if attempt != calls {
			t.Errorf("Expected attempt %d, got %d", calls, attempt)
		}
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Errorf("Expected permanent error, got %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 calls, got %d", calls)
	}
}

func TestDo_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := Policy{Attempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls := 0
	start := time.Now()
	err := Do(ctx, p, nil, func(int) error {
		calls++
		cancel()
		return timeoutErr{}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
	if time.Since(start) > time.Second {
		t.Errorf("Expected no backoff wait after cancel, took %v", time.Since(start))
	}
}

func TestPolicy_NewBackOff(t *testing.T) {
	if d := (Policy{}).newBackOff().NextBackOff(); d != 0 {
		t.Errorf("Expected zero delay without BaseDelay, got %v", d)
	}

	bo := DefaultPolicy().newBackOff()
	for i := 0; i < 10; i++ {
		// jitter до 50% сверху от MaxDelay
		if d := bo.NextBackOff(); d <= 0 || d > 3*time.Second*3/2 {
			t.Errorf("Expected delay in (0, 4.5s], got %v", d)
		}
	}
}
