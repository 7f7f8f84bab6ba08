package flow

import (
	"testing"
	"time"
)

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	if p.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", p.MaxRetries)
	}
	if p.InitialDelay != 1*time.Second {
		t.Errorf("InitialDelay = %v, want 1s", p.InitialDelay)
	}
	if p.MaxDelay != 60*time.Second {
		t.Errorf("MaxDelay = %v, want 60s", p.MaxDelay)
	}
	if p.ExponentialBase != 2.0 {
		t.Errorf("ExponentialBase = %v, want 2.0", p.ExponentialBase)
	}
	if !p.Jitter {
		t.Error("Jitter should default to true")
	}
	if err := p.Validate(); err != nil {
		t.Errorf("default policy must validate: %v", err)
	}
}

func TestRetryPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		wantErr bool
	}{
		{"valid", RetryPolicy{MaxRetries: 0, InitialDelay: time.Second, MaxDelay: time.Second, ExponentialBase: 2}, false},
		{"negative retries", RetryPolicy{MaxRetries: -1, InitialDelay: time.Second, MaxDelay: time.Second, ExponentialBase: 2}, true},
		{"zero initial delay", RetryPolicy{InitialDelay: 0, MaxDelay: time.Second, ExponentialBase: 2}, true},
		{"max below initial", RetryPolicy{InitialDelay: 2 * time.Second, MaxDelay: time.Second, ExponentialBase: 2}, true},
		{"base not above one", RetryPolicy{InitialDelay: time.Second, MaxDelay: time.Second, ExponentialBase: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimitPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RateLimitPolicy
		wantErr bool
	}{
		{"per second only", RateLimitPolicy{PerSecond: 2, Burst: 1}, false},
		{"per minute only", RateLimitPolicy{PerMinute: 30, Burst: 1}, false},
		{"both budgets", RateLimitPolicy{PerSecond: 2, PerMinute: 30, Burst: 5}, false},
		{"no rate", RateLimitPolicy{Burst: 1}, true},
		{"zero burst", RateLimitPolicy{PerSecond: 1, Burst: 0}, true},
		{"negative rate", RateLimitPolicy{PerSecond: -1, PerMinute: 30, Burst: 1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
