package flow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o wait" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{errors.New("429 Too Many Requests"), KindRateLimited},
		{errors.New("request rate limit exceeded"), KindRateLimited},
		{errors.New("access blocked by target"), KindRateLimited},
		{errors.New("navigation timed out"), KindTimeout},
		{context.DeadlineExceeded, KindTimeout},
		{timeoutNetErr{}, KindTimeout},
		{errors.New("connection reset by peer"), KindTransient},
		{errors.New("connection refused"), KindTransient},
		{errors.New("502 Bad Gateway"), KindTransient},
		{errors.New("503 Service Unavailable"), KindTransient},
		{errors.New("element not found"), KindFatal},
		{errors.New("invalid selector"), KindFatal},
	}

	for _, tt := range tests {
		got := Classify(tt.err)
		if got.Kind != tt.want {
			t.Errorf("Classify(%q).Kind = %v, want %v", tt.err, got.Kind, tt.want)
		}
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	orig := NewRateLimited(errors.New("slow down"), 30*time.Second)

	got := Classify(orig)
	if got != orig {
		t.Fatalf("Classify returned %v, want the original classified error", got)
	}
	if got.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", got.RetryAfter)
	}

	// Classification must survive wrapping.
	wrapped := fmt.Errorf("scrape step: %w", orig)
	if got := Classify(wrapped); got.Kind != KindRateLimited || got.RetryAfter != 30*time.Second {
		t.Errorf("Classify(wrapped) = %v, want the inner rate-limited error", got)
	}
}

func TestKindRetryable(t *testing.T) {
	if KindFatal.Retryable() {
		t.Error("KindFatal must not be retryable")
	}
	for _, k := range []Kind{KindTransient, KindRateLimited, KindTimeout} {
		if !k.Retryable() {
			t.Errorf("%v must be retryable", k)
		}
	}
}

func TestKindOf(t *testing.T) {
	exhausted := &RetriesExhaustedError{Attempts: 4, Last: NewTimeout(errors.New("slow"))}
	if got := KindOf(exhausted); got != KindTimeout {
		t.Errorf("KindOf(exhausted) = %v, want timeout", got)
	}
	if got := KindOf(errors.New("plain")); got != KindFatal {
		t.Errorf("KindOf(plain) = %v, want fatal", got)
	}
}
