package backoff_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/xraph/netqueue/backoff"
)

func TestConstant(t *testing.T) {
	s := backoff.Constant(250 * time.Millisecond)
	for attempt := 1; attempt <= 5; attempt++ {
		if got := s.Delay(attempt); got != 250*time.Millisecond {
			t.Errorf("Delay(%d) = %v, want 250ms", attempt, got)
		}
	}
}

func TestExponential_Doubles(t *testing.T) {
	s := backoff.Exponential{Base: 100 * time.Millisecond, Max: time.Second}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
		{5, time.Second},
		{500, time.Second},
	}
	for _, tt := range tests {
		if got := s.Delay(tt.attempt); got != tt.want {
			t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestExponential_LargeBaseClamps(t *testing.T) {
	// 2^40ns << 31 wraps around; it must clamp instead.
	base := time.Duration(1) << 40

	capped := backoff.Exponential{Base: base, Max: time.Hour}
	if got := capped.Delay(32); got != time.Hour {
		t.Errorf("capped Delay(32) = %v, want %v", got, time.Hour)
	}

	uncapped := backoff.Exponential{Base: base}
	if got := uncapped.Delay(32); got != time.Duration(math.MaxInt64) {
		t.Errorf("uncapped Delay(32) = %v, want max duration", got)
	}
	if got := uncapped.Delay(2); got != base<<1 {
		t.Errorf("uncapped Delay(2) = %v, want %v", got, base<<1)
	}
}

func TestExponential_Jitter(t *testing.T) {
	s := backoff.Exponential{Base: time.Second, Max: time.Minute, Jitter: 0.5}
	for range 100 {
		d := s.Delay(3)
		if d < 2*time.Second || d > 4*time.Second {
			t.Fatalf("Delay(3) = %v, want within [2s, 4s]", d)
		}
	}
}

func TestStrategyFunc(t *testing.T) {
	s := backoff.StrategyFunc(func(n int) time.Duration { return time.Duration(n) * time.Millisecond })
	if got := s.Delay(7); got != 7*time.Millisecond {
		t.Errorf("Delay(7) = %v", got)
	}
}

func TestDefault(t *testing.T) {
	s := backoff.Default()
	if d := s.Delay(1); d <= 0 || d > 100*time.Millisecond {
		t.Errorf("Delay(1) = %v", d)
	}
	if d := s.Delay(50); d > 5*time.Second {
		t.Errorf("Delay(50) = %v exceeds cap", d)
	}
}

func TestWait(t *testing.T) {
	if err := backoff.Wait(context.Background(), time.Millisecond); err != nil {
		t.Errorf("Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := backoff.Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait on cancelled ctx = %v, want Canceled", err)
	}
	if err := backoff.Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("zero Wait on cancelled ctx = %v, want Canceled", err)
	}
}
