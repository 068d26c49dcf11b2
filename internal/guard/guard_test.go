package guard

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

var validPayload = Payload{Date: "2024-01-01", Space: "Garden Hall", PhoneNumber: "12345678"}

func newTestGuard() (*Guard, *ManualClock) {
	clock := NewManualClock(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC))
	return New(Options{Clock: clock}), clock
}

func countingSubmit(calls *int32, err error) SubmitFunc {
	return func(ctx context.Context, p Payload) error {
		atomic.AddInt32(calls, 1)
		return err
	}
}

func TestInvalidPhoneNeverSubmits(t *testing.T) {
	g, _ := newTestGuard()
	var calls int32

	for _, phone := range []string{"1234567", "123456789", "", "abcdefgh", "1234 567"} {
		p := validPayload
		p.PhoneNumber = phone
		out := g.Confirm(context.Background(), false, p, countingSubmit(&calls, nil))
		if out.Accepted {
			t.Errorf("phone %q: expected rejection", phone)
		}
		if out.Reason != InvalidPhone {
			t.Errorf("phone %q: expected reason %s, got %s", phone, InvalidPhone, out.Reason)
		}
		if out.Alert != "Phone number must be exactly 8 digits" {
			t.Errorf("phone %q: unexpected alert %q", phone, out.Alert)
		}
	}
	if calls != 0 {
		t.Fatalf("submit called %d times for invalid phones", calls)
	}
	if g.State() != Idle {
		t.Fatalf("expected idle after validation failure, got %s", g.State())
	}
}

func TestMissingDateOrSpaceNeverSubmits(t *testing.T) {
	g, _ := newTestGuard()
	var calls int32

	noDate := validPayload
	noDate.Date = "  "
	if out := g.Confirm(context.Background(), false, noDate, countingSubmit(&calls, nil)); out.Reason != MissingDate {
		t.Errorf("expected %s, got %s", MissingDate, out.Reason)
	}

	noSpace := validPayload
	noSpace.Space = ""
	if out := g.Confirm(context.Background(), false, noSpace, countingSubmit(&calls, nil)); out.Reason != MissingSpace {
		t.Errorf("expected %s, got %s", MissingSpace, out.Reason)
	}

	if calls != 0 {
		t.Fatalf("submit called %d times", calls)
	}
}

func TestRapidTapsSubmitOnce(t *testing.T) {
	g, clock := newTestGuard()
	var calls int32
	submit := countingSubmit(&calls, nil)

	first := g.Confirm(context.Background(), false, validPayload, submit)
	if !first.Accepted || first.Reason != Submitted {
		t.Fatalf("first tap should submit, got %+v", first)
	}

	clock.Advance(100 * time.Millisecond)
	second := g.Confirm(context.Background(), false, validPayload, submit)
	if second.Accepted {
		t.Fatalf("second tap 100ms later should be suppressed, got %+v", second)
	}
	if !second.Rejected() {
		t.Errorf("expected a lock rejection, got %s", second.Reason)
	}

	for i := 0; i < 10; i++ {
		clock.Advance(150 * time.Millisecond)
		g.Confirm(context.Background(), false, validPayload, submit)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one submit inside the cool-down window, got %d", calls)
	}
}

func TestConcurrentTapWhileInFlight(t *testing.T) {
	g, _ := newTestGuard()
	var calls int32
	started := make(chan struct{})
	finish := make(chan struct{})

	go g.Confirm(context.Background(), false, validPayload, func(ctx context.Context, p Payload) error {
		atomic.AddInt32(&calls, 1)
		close(started)
		<-finish
		return nil
	})
	<-started

	if g.State() != InFlight {
		t.Errorf("expected in_flight, got %s", g.State())
	}
	out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil))
	if out.Reason != Locked {
		t.Errorf("expected %s while in flight, got %s", Locked, out.Reason)
	}
	close(finish)

	if calls != 1 {
		t.Fatalf("expected one submit, got %d", calls)
	}
}

func TestExternalSubmittingFlagBlocks(t *testing.T) {
	g, _ := newTestGuard()
	var calls int32
	out := g.Confirm(context.Background(), true, validPayload, countingSubmit(&calls, nil))
	if out.Reason != Busy || calls != 0 {
		t.Fatalf("expected busy without submit, got %s (calls=%d)", out.Reason, calls)
	}
}

func TestFailureStillReleasesAfterCoolDown(t *testing.T) {
	g, clock := newTestGuard()
	var calls int32
	boom := errors.New("server unavailable")

	out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, boom))
	if out.Reason != Failed || !errors.Is(out.Err, boom) {
		t.Fatalf("expected failure outcome, got %+v", out)
	}
	if out.Alert != AlertFailed {
		t.Errorf("unexpected alert %q", out.Alert)
	}

	s := g.Snapshot()
	if s.Confirming {
		t.Error("confirming flag should clear immediately after the callback returns")
	}
	if !s.Locked || s.State != CoolingDown {
		t.Errorf("expected lock held while cooling down, got %+v", s)
	}

	clock.Advance(time.Second)
	if again := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); again.Accepted {
		t.Fatal("retry inside the cool-down must be suppressed")
	}

	clock.Advance(1001 * time.Millisecond)
	if g.State() != Idle {
		t.Fatalf("expected idle after cool-down, got %s", g.State())
	}
	if again := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); !again.Accepted {
		t.Fatalf("retry after cool-down should submit, got %+v", again)
	}
	if calls != 2 {
		t.Fatalf("expected two submits, got %d", calls)
	}
}

func TestCloseResetsState(t *testing.T) {
	g, clock := newTestGuard()
	var calls int32

	g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil))
	g.Close()

	s := g.Snapshot()
	if s.Locked || s.Confirming || !s.LastSubmission.IsZero() || s.State != Idle {
		t.Fatalf("expected initial values after close, got %+v", s)
	}
	if out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); out.Reason != Closed {
		t.Errorf("confirm on a closed form should be ignored, got %s", out.Reason)
	}

	g.Open()
	clock.Advance(10 * time.Millisecond)
	if out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); !out.Accepted {
		t.Fatalf("reopened form must not inherit the old cool-down, got %+v", out)
	}
	if calls != 2 {
		t.Fatalf("expected two submits, got %d", calls)
	}
}

func TestStaleTimerDoesNotUnlockNewSession(t *testing.T) {
	g, clock := newTestGuard()
	var calls int32

	g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil))
	clock.Advance(1500 * time.Millisecond)
	g.Close()
	g.Open()

	g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil))
	// The first session's timer would have fired here.
	clock.Advance(600 * time.Millisecond)
	if !g.Snapshot().Locked {
		t.Fatal("timer from a closed session released the new session's lock")
	}
	clock.Advance(1500 * time.Millisecond)
	if g.Snapshot().Locked {
		t.Fatal("lock should be released after the new session's cool-down")
	}
}

func TestCustomCoolDown(t *testing.T) {
	clock := NewManualClock(time.Now())
	g := New(Options{Clock: clock, CoolDown: 500 * time.Millisecond})
	var calls int32

	g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil))
	clock.Advance(500 * time.Millisecond)
	if out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); !out.Accepted {
		t.Fatalf("expected submit once the window elapsed, got %+v", out)
	}
}

func TestPanickingSubmitStillCoolsDown(t *testing.T) {
	g, clock := newTestGuard()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected the submit panic to propagate")
			}
		}()
		g.Confirm(context.Background(), false, validPayload, func(ctx context.Context, p Payload) error {
			panic("repository exploded")
		})
	}()

	s := g.Snapshot()
	if s.Confirming || s.State != CoolingDown {
		t.Fatalf("expected cooling down after a panic, got %+v", s)
	}

	clock.Advance(DefaultCoolDown)
	var calls int32
	if out := g.Confirm(context.Background(), false, validPayload, countingSubmit(&calls, nil)); !out.Accepted {
		t.Fatalf("guard should accept again after the cool-down, got %s (state %s)", out.Reason, g.State())
	}
	if calls != 1 {
		t.Errorf("expected one submit, got %d", calls)
	}
}
