package resilience

import (
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/jira-mcp/internal/common"
)

// newTestBreaker returns a breaker with a controllable clock.
func newTestBreaker(t *testing.T, failureThreshold, successThreshold int) (*CircuitBreaker, *time.Time) {
	t.Helper()

	b := NewCircuitBreaker(common.BreakerConfig{
		Enabled:          true,
		FailureThreshold: failureThreshold,
		SuccessThreshold: successThreshold,
		Timeout:          "30s",
	}, common.NewSilentLogger())

	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }
	return b, &now
}

func TestBreakerStartsClosed(t *testing.T) {
	b, _ := newTestBreaker(t, 3, 2)

	snap := b.State()
	if snap.State != StateClosed {
		t.Fatalf("initial state = %s, want closed", snap.State)
	}
	if !b.CanAttempt() {
		t.Error("CanAttempt should be true while closed")
	}
}

func TestBreakerOpensAtFailureThreshold(t *testing.T) {
	b, now := newTestBreaker(t, 3, 2)

	b.RecordFailure()
	b.RecordFailure()
	if b.State().State != StateClosed {
		t.Fatal("breaker opened before threshold")
	}

	b.RecordFailure()
	snap := b.State()
	if snap.State != StateOpen {
		t.Fatalf("state after %d failures = %s, want open", 3, snap.State)
	}
	wantNext := now.Add(30 * time.Second)
	if !snap.NextAttemptAt.Equal(wantNext) {
		t.Errorf("NextAttemptAt = %v, want %v", snap.NextAttemptAt, wantNext)
	}
	if b.CanAttempt() {
		t.Error("CanAttempt should be false while open")
	}
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	b, now := newTestBreaker(t, 1, 2)

	b.RecordFailure()
	if b.CanAttempt() {
		t.Fatal("CanAttempt should be false right after opening")
	}

	*now = now.Add(31 * time.Second)
	if !b.CanAttempt() {
		t.Fatal("CanAttempt should permit a probe once the cooldown passes")
	}
	if got := b.State().State; got != StateHalfOpen {
		t.Errorf("state after probe permit = %s, want half_open", got)
	}
}

func TestBreakerClosesAfterSuccessThreshold(t *testing.T) {
	b, now := newTestBreaker(t, 1, 2)

	b.RecordFailure()
	*now = now.Add(time.Minute)
	b.CanAttempt() // transition to half-open

	b.RecordSuccess()
	if got := b.State().State; got != StateHalfOpen {
		t.Fatalf("state after 1 success = %s, want half_open", got)
	}

	b.RecordSuccess()
	snap := b.State()
	if snap.State != StateClosed {
		t.Fatalf("state after success threshold = %s, want closed", snap.State)
	}
	if snap.FailureCount != 0 || snap.SuccessCount != 0 {
		t.Errorf("counters = %d/%d, want 0/0", snap.FailureCount, snap.SuccessCount)
	}
}

func TestBreakerHalfOpenSuccessClearsFailureCount(t *testing.T) {
	b, now := newTestBreaker(t, 1, 2)

	b.RecordFailure()
	*now = now.Add(time.Minute)
	b.CanAttempt() // transition to half-open

	b.RecordSuccess()
	snap := b.State()
	if snap.State != StateHalfOpen {
		t.Fatalf("state after 1 success = %s, want half_open", snap.State)
	}
	if snap.FailureCount != 0 {
		t.Errorf("failure count after success = %d, want 0", snap.FailureCount)
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b, now := newTestBreaker(t, 1, 2)

	b.RecordFailure()
	*now = now.Add(time.Minute)
	b.CanAttempt()
	b.RecordSuccess() // partial progress

	b.RecordFailure()
	snap := b.State()
	if snap.State != StateOpen {
		t.Fatalf("state after half-open failure = %s, want open", snap.State)
	}
	if snap.SuccessCount != 0 {
		t.Errorf("success count not discarded: %d", snap.SuccessCount)
	}
	wantNext := now.Add(30 * time.Second)
	if !snap.NextAttemptAt.Equal(wantNext) {
		t.Errorf("NextAttemptAt = %v, want fresh cooldown %v", snap.NextAttemptAt, wantNext)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(t, 3, 2)

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	if got := b.State().FailureCount; got != 0 {
		t.Errorf("failure count after success = %d, want 0", got)
	}

	// The threshold now needs three more consecutive failures.
	b.RecordFailure()
	b.RecordFailure()
	if b.State().State != StateClosed {
		t.Error("breaker opened early after counter reset")
	}
}

func TestDisabledBreakerAlwaysPermits(t *testing.T) {
	b := NewCircuitBreaker(common.BreakerConfig{
		Enabled:          false,
		FailureThreshold: 1,
		SuccessThreshold: 1,
		Timeout:          "30s",
	}, common.NewSilentLogger())

	for i := 0; i < 10; i++ {
		b.RecordFailure()
	}
	if !b.CanAttempt() {
		t.Error("disabled breaker must always permit attempts")
	}
	if got := b.State().State; got != StateClosed {
		t.Errorf("disabled breaker state = %s, want closed", got)
	}
}

func TestBreakerReset(t *testing.T) {
	b, _ := newTestBreaker(t, 1, 2)

	b.RecordFailure()
	b.Reset()

	snap := b.State()
	if snap.State != StateClosed || snap.FailureCount != 0 || snap.SuccessCount != 0 {
		t.Errorf("after reset: %+v, want closed with zero counters", snap)
	}
	if !b.CanAttempt() {
		t.Error("CanAttempt should be true after reset")
	}
}

func TestBreakerConcurrentRecording(t *testing.T) {
	b, _ := newTestBreaker(t, 50, 2)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()

	if got := b.State().State; got != StateOpen {
		t.Errorf("state after 100 concurrent failures = %s, want open", got)
	}
	if b.CanAttempt() {
		t.Error("CanAttempt should be false after racing past the threshold")
	}
}

func TestNextAttemptAtZeroWhileClosed(t *testing.T) {
	b, _ := newTestBreaker(t, 3, 2)
	if got := b.NextAttemptAt(); !got.IsZero() {
		t.Errorf("NextAttemptAt while closed = %v, want zero", got)
	}
}
