package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"ok":true}`)})
	p := WithRetry(mock, retryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != `{"ok":true}` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
		MockResponse{Content: json.RawMessage(`{"ok":true}`)},
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	down := &ErrProviderUnavailable{Err: errors.New("down")}
	mock := NewMockProvider(MockResponse{Err: down}, MockResponse{Err: down}, MockResponse{Err: down})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_MaxTokensNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrMaxTokensExceeded{}},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRetry(mock, retryConfig())

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	invalid := &ErrInvalidResponse{Err: errors.New("bad json")}
	mock := NewMockProvider(MockResponse{Err: invalid}, MockResponse{Err: invalid}, MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ContextCanceledStops(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: context.Canceled}, MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(mock, retryConfig())

	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithRetry(mock, RetryConfig{})

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackoff_HonorsRetryAfterAndCap(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}

	if got := r.backoff(0, &ErrRateLimit{RetryAfter: 7 * time.Second}); got != 7*time.Second {
		t.Fatalf("expected RetryAfter to win, got %s", got)
	}
	got := r.backoff(5, errors.New("x"))
	if got > 2400*time.Millisecond || got < 1600*time.Millisecond {
		t.Fatalf("expected capped wait with jitter, got %s", got)
	}
}
