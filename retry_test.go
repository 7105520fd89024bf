package sage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), func(context.Context) (string, error) {
		calls++
		return "success", nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got != "success" || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
}

func TestRetryExhaustsBudget(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	_, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls++
		return 0, boom
	}, RetryMaxRetries(2), RetryBaseDelay(time.Millisecond))

	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	// Initial call plus two retries.
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryEventualSuccess(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	}, RetryMaxRetries(5), RetryBaseDelay(time.Millisecond))
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls", got, calls)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		// Cancel while the loop is sleeping before the first retry.
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Retry(ctx, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("always fails")
	}, RetryMaxRetries(10), RetryBaseDelay(time.Second))

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}
