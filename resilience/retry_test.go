package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})

	if r.config.Retries != 3 {
		t.Errorf("Retries = %d, want 3", r.config.Retries)
	}
	if r.config.InitialDelay != 300*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 300ms", r.config.InitialDelay)
	}
	if r.config.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.config.MaxDelay)
	}
	if r.config.Jitter {
		t.Error("Jitter = true, want false")
	}
}

func TestRetry_SuccessOnFirstAttempt(t *testing.T) {
	r := NewRetry(RetryConfig{Retries: 3})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestRetry_SuccessAfterFailures(t *testing.T) {
	r := NewRetry(RetryConfig{
		Retries:      3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	testErr := errors.New("test error")

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return testErr
		}
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	r := NewRetry(RetryConfig{
		Action:       "flaky-call",
		Retries:      3,
		InitialDelay: time.Millisecond,
	})

	attempts := 0
	testErr := errors.New("persistent error")

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return testErr
	})

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Fatalf("Execute() error = %v, want ErrMaxRetriesExceeded", err)
	}

	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("error is not *RetryError: %v", err)
	}
	if retryErr.Action != "flaky-call" {
		t.Errorf("Action = %q, want %q", retryErr.Action, "flaky-call")
	}
	if retryErr.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", retryErr.Attempts)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("RetryError does not wrap the inner error: %v", err)
	}
}

func TestRetry_ProxyError(t *testing.T) {
	r := NewRetry(RetryConfig{
		Retries:      2,
		InitialDelay: time.Millisecond,
		ProxyError:   true,
	})

	testErr := errors.New("underlying error")
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want unwrapped %v", err, testErr)
	}
}

func TestRetry_DelayDoubling(t *testing.T) {
	var delays []time.Duration

	r := NewRetry(RetryConfig{
		Retries:      4,
		InitialDelay: 2 * time.Millisecond,
		OnFail: func(err error, attempt int, delay time.Duration) time.Duration {
			delays = append(delays, delay)
			return 0
		},
	})

	testErr := errors.New("test error")
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})

	want := []time.Duration{2 * time.Millisecond, 4 * time.Millisecond, 8 * time.Millisecond}
	if len(delays) != len(want) {
		t.Fatalf("observed %d delays, want %d", len(delays), len(want))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, d, want[i])
		}
	}
}

func TestRetry_OnFailOverridesDelay(t *testing.T) {
	r := NewRetry(RetryConfig{
		Retries:      2,
		InitialDelay: 500 * time.Millisecond,
		OnFail: func(err error, attempt int, delay time.Duration) time.Duration {
			return time.Millisecond
		},
	})

	testErr := errors.New("test error")

	start := time.Now()
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})

	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Execute() took %v, want the 500ms delay overridden to ~1ms", elapsed)
	}
}

func TestRetry_OnFailPanicSwallowed(t *testing.T) {
	r := NewRetry(RetryConfig{
		Retries:      2,
		InitialDelay: time.Millisecond,
		OnFail: func(err error, attempt int, delay time.Duration) time.Duration {
			panic("hook failure")
		},
	})

	attempts := 0
	testErr := errors.New("test error")

	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		return testErr
	})

	if attempts != 2 {
		t.Errorf("attempts = %d, want 2 despite panicking hook", attempts)
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("Execute() error = %v, want ErrMaxRetriesExceeded", err)
	}
}

func TestRetry_RetryIf(t *testing.T) {
	retryableErr := errors.New("retryable")
	fatalErr := errors.New("fatal")

	r := NewRetry(RetryConfig{
		Retries:      5,
		InitialDelay: time.Millisecond,
		RetryIf: func(err error) bool {
			return errors.Is(err, retryableErr)
		},
	})

	attempts := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts == 1 {
			return retryableErr
		}
		return fatalErr
	})

	if err != fatalErr {
		t.Errorf("Execute() error = %v, want %v unchanged", err, fatalErr)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	r := NewRetry(RetryConfig{
		Retries:      10,
		InitialDelay: 100 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	testErr := errors.New("test error")
	err := r.Execute(ctx, func(ctx context.Context) error {
		return testErr
	})

	if err != context.Canceled {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
}
