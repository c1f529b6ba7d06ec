package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

// recordingPolicy appends its name on entry and exit so chain ordering is
// observable.
func recordingPolicy(name string, trace *[]string) Policy {
	return PolicyFunc(func(ctx context.Context, op Operation) error {
		*trace = append(*trace, name+":enter")
		err := op(ctx)
		*trace = append(*trace, name+":exit")
		return err
	})
}

func TestChain_Empty(t *testing.T) {
	p := Chain()

	executed := false
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		executed = true
		return nil
	})

	if err != nil {
		t.Errorf("Execute() error = %v", err)
	}
	if !executed {
		t.Error("Operation was not executed")
	}
}

func TestChain_InnermostFirst(t *testing.T) {
	var trace []string

	p := Chain(
		recordingPolicy("p1", &trace),
		recordingPolicy("p2", &trace),
		recordingPolicy("p3", &trace),
	)

	err := p.Execute(context.Background(), func(ctx context.Context) error {
		trace = append(trace, "op")
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// p3 outermost, p1 innermost: p3(p2(p1(op))).
	want := []string{"p3:enter", "p2:enter", "p1:enter", "op", "p1:exit", "p2:exit", "p3:exit"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestChain_ErrorPropagates(t *testing.T) {
	p := Chain(
		NewTimeout(TimeoutConfig{Timeout: time.Second}),
		NewBulkhead(BulkheadConfig{MaxConcurrent: 1}),
	)

	testErr := errors.New("test error")
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		return testErr
	})

	if err != testErr {
		t.Errorf("Execute() error = %v, want %v", err, testErr)
	}
}

func TestChain_InnerTimeoutCountsAgainstOuterCircuit(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		GracePeriod:      time.Hour,
	})

	p := Chain(
		NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond}),
		cb,
	)

	err := p.Execute(context.Background(), func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
	if cb.State() != StateOpen {
		t.Errorf("Circuit state = %v, want open: the timeout must count as a failure", cb.State())
	}
}

func TestChain_RetryAroundFlakyOperation(t *testing.T) {
	p := Chain(
		NewTimeout(TimeoutConfig{Timeout: time.Second}),
		NewRetry(RetryConfig{Retries: 3, InitialDelay: time.Millisecond}),
	)

	attempts := 0
	err := p.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
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

func TestChain_IsReusedAcrossCalls(t *testing.T) {
	b := NewBulkhead(BulkheadConfig{MaxConcurrent: 1, FailFast: true})
	p := Chain(b)

	for i := 0; i < 3; i++ {
		if err := p.Execute(context.Background(), func(ctx context.Context) error {
			return nil
		}); err != nil {
			t.Errorf("call %d: Execute() error = %v", i, err)
		}
	}

	if m := b.Metrics(); m.Active != 0 {
		t.Errorf("Active = %d after sequential calls, want 0", m.Active)
	}
}
