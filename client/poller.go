package client

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxAttempts  = 41
)

// AdmissionAPI is what the poller needs from the SDK. *Client satisfies it.
type AdmissionAPI interface {
	CheckRole(ctx context.Context, roomID string) (Role, error)
	RequestAccess(ctx context.Context, roomID string) error
	CheckStatus(ctx context.Context, roomID string) (Status, error)
}

type Outcome int

const (
	OutcomeAdmitted Outcome = iota
	OutcomeDenied
	OutcomeTimedOut
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdmitted:
		return "admitted"
	case OutcomeDenied:
		return "denied"
	case OutcomeTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome  Outcome
	Message  string
	Attempts int // status polls issued, not counting the initial role check
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		p.interval = d
	}
}

func WithMaxAttempts(n int) PollerOption {
	return func(p *Poller) {
		p.maxAttempts = n
	}
}

// Poller drives a requester through admission: one role check, one access
// request, then a bounded status poll. The loop has a single timeout
// budget (interval x max attempts); any countdown shown to the user should
// derive from Budget so the display and the retry loop cannot drift apart.
type Poller struct {
	api         AdmissionAPI
	interval    time.Duration
	maxAttempts int
}

func NewPoller(api AdmissionAPI, opts ...PollerOption) *Poller {
	p := &Poller{
		api:         api,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Budget is the hard ceiling on how long WaitForAdmission can block, absent
// an earlier decision or cancellation.
func (p *Poller) Budget() time.Duration {
	return p.interval * time.Duration(p.maxAttempts)
}

// WaitForAdmission runs the admission flow for one room.
//
// Owners and already-approved participants are admitted without polling.
// A rejected access request (sticky denial included) is surfaced as a
// denial with no polling. Otherwise the loop sleeps for the interval, asks
// for the stored status and reacts: approved admits, denied rejects,
// pending and "not found" keep polling. A transport failure kills the loop
// immediately — the caller may retry manually, the loop itself never does.
// Exhausting the budget yields OutcomeTimedOut, which is distinct from an
// explicit denial.
//
// Cancellation is the caller's context: tear down the session and the loop
// dies with it instead of polling a detached target.
func (p *Poller) WaitForAdmission(ctx context.Context, roomID string) (Result, error) {
	role, err := p.api.CheckRole(ctx, roomID)
	if err != nil {
		return Result{}, fmt.Errorf("verifying role: %w", err)
	}
	if role == RoleOwner || role == RoleApproved {
		return Result{Outcome: OutcomeAdmitted, Message: "access granted"}, nil
	}

	if err := p.api.RequestAccess(ctx, roomID); err != nil {
		return Result{
			Outcome: OutcomeDenied,
			Message: fmt.Sprintf("access denied: %v", err),
		}, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return Result{Attempts: attempt - 1}, ctx.Err()
		case <-ticker.C:
		}

		status, err := p.api.CheckStatus(ctx, roomID)
		if err != nil {
			return Result{Attempts: attempt}, fmt.Errorf("checking access status: %w", err)
		}

		switch status {
		case StatusApproved:
			return Result{Outcome: OutcomeAdmitted, Message: "access approved", Attempts: attempt}, nil
		case StatusDenied:
			return Result{Outcome: OutcomeDenied, Message: "access denied", Attempts: attempt}, nil
		default:
			// pending or not found: the decision has not landed yet
		}
	}

	return Result{
		Outcome:  OutcomeTimedOut,
		Message:  "request timed out",
		Attempts: p.maxAttempts,
	}, nil
}
