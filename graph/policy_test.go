package graph

import (
	"testing"
	"time"
)

func TestRetryPolicyBackoff(t *testing.T) {
	p := &RetryPolicy{BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}

	for attempt, base := range []time.Duration{
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
	} {
		for i := 0; i < 20; i++ {
			d := p.backoff(attempt)
			if d < base {
				t.Errorf("attempt %d: backoff %v below base %v", attempt, d, base)
			}
			if d > p.MaxDelay {
				t.Errorf("attempt %d: backoff %v above cap %v", attempt, d, p.MaxDelay)
			}
		}
	}

	// Deep attempts hit the cap.
	for i := 0; i < 20; i++ {
		if d := p.backoff(10); d != p.MaxDelay {
			t.Errorf("capped backoff = %v, want %v", d, p.MaxDelay)
		}
	}
}

func TestRetryPolicyBackoffZeroBase(t *testing.T) {
	p := &RetryPolicy{}
	if d := p.backoff(3); d != 0 {
		t.Errorf("backoff without base delay = %v, want 0", d)
	}
}

func TestRetryPolicyBackoffNoCap(t *testing.T) {
	p := &RetryPolicy{BaseDelay: time.Millisecond}
	d := p.backoff(2)
	if d < 4*time.Millisecond || d > 6*time.Millisecond {
		t.Errorf("uncapped backoff = %v, want in [4ms, 6ms]", d)
	}
}
