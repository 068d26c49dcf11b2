// Package guard prevents duplicate booking submissions.
//
// A Guard belongs to a single booking form. It accepts at most one submission
// per cool-down window and forgets everything when the form is closed.
package guard

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultCoolDown is the window during which a repeated confirm is suppressed.
const DefaultCoolDown = 2000 * time.Millisecond

const (
	AlertInvalidPhone = "Phone number must be exactly 8 digits"
	AlertMissingDate  = "Please select a date"
	AlertMissingSpace = "Please enter the venue/space"
	AlertFailed       = "Failed to submit booking. Please try again."
)

type State int

const (
	Idle State = iota
	Validating
	InFlight
	CoolingDown
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case InFlight:
		return "in_flight"
	case CoolingDown:
		return "cooling_down"
	}
	return "unknown"
}

// Reason explains the result of a Confirm call.
type Reason string

const (
	Submitted    Reason = "submitted"
	Locked       Reason = "locked"
	Busy         Reason = "busy"
	CoolingOff   Reason = "cooling_down"
	InvalidPhone Reason = "invalid_phone"
	MissingDate  Reason = "missing_date"
	MissingSpace Reason = "missing_space"
	Failed       Reason = "failed"
	Closed       Reason = "closed"
)

// Payload is what gets handed to the submit callback.
type Payload struct {
	Date        string `json:"date"`
	Space       string `json:"space"`
	PhoneNumber string `json:"phone_number"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{8}$`)

// Validate checks the payload the same way the form does before any network call.
func (p Payload) Validate() (Reason, string, bool) {
	if !phonePattern.MatchString(strings.TrimSpace(p.PhoneNumber)) {
		return InvalidPhone, AlertInvalidPhone, false
	}
	if strings.TrimSpace(p.Date) == "" {
		return MissingDate, AlertMissingDate, false
	}
	if strings.TrimSpace(p.Space) == "" {
		return MissingSpace, AlertMissingSpace, false
	}
	return "", "", true
}

type SubmitFunc func(ctx context.Context, p Payload) error

// Outcome is returned by Confirm. Accepted means the submit callback was invoked.
type Outcome struct {
	Accepted bool
	Reason   Reason
	Alert    string
	Err      error
}

// Snapshot is a copy of the guard's internal flags.
type Snapshot struct {
	State          State
	Locked         bool
	Confirming     bool
	Visible        bool
	LastSubmission time.Time
}

type Options struct {
	CoolDown time.Duration
	Clock    Clock
}

type Guard struct {
	mu       sync.Mutex
	clock    Clock
	coolDown time.Duration

	state          State
	locked         bool
	confirming     bool
	visible        bool
	lastSubmission time.Time

	// generation is bumped by Close so timers from an earlier session are ignored.
	generation uint64
	timer      Timer
}

// New returns an open guard in the Idle state.
func New(opts Options) *Guard {
	if opts.CoolDown <= 0 {
		opts.CoolDown = DefaultCoolDown
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	return &Guard{
		clock:    opts.Clock,
		coolDown: opts.CoolDown,
		visible:  true,
	}
}

func (g *Guard) CoolDown() time.Duration { return g.coolDown }

// Open marks the form visible again. State was already reset by Close.
func (g *Guard) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.visible = true
}

// Close resets the guard to its initial idle values and hides the form.
func (g *Guard) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generation++
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.state = Idle
	g.locked = false
	g.confirming = false
	g.lastSubmission = time.Time{}
	g.visible = false
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Snapshot{
		State:          g.state,
		Locked:         g.locked,
		Confirming:     g.confirming,
		Visible:        g.visible,
		LastSubmission: g.lastSubmission,
	}
}

// Confirm runs one confirm attempt. externalSubmitting mirrors a submitting flag
// owned by the caller; when true the attempt is dropped.
func (g *Guard) Confirm(ctx context.Context, externalSubmitting bool, p Payload, submit SubmitFunc) Outcome {
	g.mu.Lock()
	if !g.visible {
		g.mu.Unlock()
		return Outcome{Reason: Closed}
	}
	if g.locked {
		g.mu.Unlock()
		return Outcome{Reason: Locked}
	}
	if g.confirming || externalSubmitting {
		g.mu.Unlock()
		return Outcome{Reason: Busy}
	}
	now := g.clock.Now()
	if !g.lastSubmission.IsZero() && now.Sub(g.lastSubmission) < g.coolDown {
		g.mu.Unlock()
		return Outcome{Reason: CoolingOff}
	}

	g.state = Validating
	if reason, alert, ok := p.Validate(); !ok {
		g.state = Idle
		g.mu.Unlock()
		return Outcome{Reason: reason, Alert: alert}
	}

	g.locked = true
	g.confirming = true
	g.lastSubmission = now
	g.state = InFlight
	gen := g.generation
	g.mu.Unlock()

	if err := g.invoke(ctx, gen, p, submit); err != nil {
		return Outcome{Accepted: true, Reason: Failed, Alert: AlertFailed, Err: err}
	}
	return Outcome{Accepted: true, Reason: Submitted}
}

// invoke calls submit and starts the cool-down however it returns, including
// by panic, so the lock is always released eventually.
func (g *Guard) invoke(ctx context.Context, gen uint64, p Payload, submit SubmitFunc) error {
	defer func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if gen == g.generation {
			g.confirming = false
			g.state = CoolingDown
			g.timer = g.clock.AfterFunc(g.coolDown, func() { g.release(gen) })
		}
	}()
	return submit(ctx, p)
}

func (g *Guard) release(gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.generation || g.state != CoolingDown {
		return
	}
	g.locked = false
	g.state = Idle
	g.timer = nil
}

// Rejected reports whether the outcome was suppressed by the lock or cool-down.
func (o Outcome) Rejected() bool {
	switch o.Reason {
	case Locked, Busy, CoolingOff:
		return true
	}
	return false
}

// Invalid reports whether the payload failed validation.
func (o Outcome) Invalid() bool {
	switch o.Reason {
	case InvalidPhone, MissingDate, MissingSpace:
		return true
	}
	return false
}
