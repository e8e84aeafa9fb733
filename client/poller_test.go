package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubAPI scripts the admission backend: a fixed role, a request verdict,
// and a sequence of statuses handed out one per poll (the last one repeats).
type stubAPI struct {
	mu          sync.Mutex
	role        Role
	roleErr     error
	requestErr  error
	statuses    []Status
	statusErr   error
	statusCalls int
}

func (s *stubAPI) CheckRole(ctx context.Context, roomID string) (Role, error) {
	return s.role, s.roleErr
}

func (s *stubAPI) RequestAccess(ctx context.Context, roomID string) error {
	return s.requestErr
}

func (s *stubAPI) CheckStatus(ctx context.Context, roomID string) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statusCalls++
	if s.statusErr != nil {
		return "", s.statusErr
	}

	idx := s.statusCalls - 1
	if idx >= len(s.statuses) {
		idx = len(s.statuses) - 1
	}
	return s.statuses[idx], nil
}

func (s *stubAPI) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusCalls
}

func fastPoller(api AdmissionAPI) *Poller {
	return NewPoller(api, WithInterval(time.Millisecond))
}

// pendingTimes builds k pendings followed by a terminal status.
func pendingTimes(k int, terminal Status) []Status {
	statuses := make([]Status, 0, k+1)
	for i := 0; i < k; i++ {
		statuses = append(statuses, StatusPending)
	}
	return append(statuses, terminal)
}

func TestOwnerAdmittedWithoutPolling(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RoleOwner}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeAdmitted {
		t.Errorf("expected admitted, got %s", res.Outcome)
	}
	if api.calls() != 0 {
		t.Errorf("owner should not poll, issued %d polls", api.calls())
	}
}

func TestApprovedRoleAdmittedWithoutPolling(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RoleApproved}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeAdmitted || api.calls() != 0 {
		t.Errorf("expected immediate admission, got %s after %d polls", res.Outcome, api.calls())
	}
}

func TestRequestFailureAbortsBeforePolling(t *testing.T) {
	t.Parallel()
	api := &stubAPI{
		role:       RolePending,
		requestErr: &APIError{StatusCode: 409, Message: "Request already sent"},
	}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeDenied {
		t.Errorf("expected denial, got %s", res.Outcome)
	}
	if api.calls() != 0 {
		t.Errorf("sticky deny must not poll, issued %d polls", api.calls())
	}
}

func TestAdmittedAfterExactlyKPlusOnePolls(t *testing.T) {
	t.Parallel()
	const k = 5
	api := &stubAPI{role: RolePending, statuses: pendingTimes(k, StatusApproved)}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeAdmitted {
		t.Fatalf("expected admitted, got %s", res.Outcome)
	}
	if res.Attempts != k+1 {
		t.Errorf("expected %d attempts, got %d", k+1, res.Attempts)
	}

	// No stray poll after the decision landed.
	time.Sleep(10 * time.Millisecond)
	if api.calls() != k+1 {
		t.Errorf("polling continued after admission: %d calls", api.calls())
	}
}

func TestDeniedMidLoop(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RolePending, statuses: pendingTimes(2, StatusDenied)}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeDenied {
		t.Errorf("expected denial, got %s", res.Outcome)
	}
	if res.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", res.Attempts)
	}
}

func TestNotFoundKeepsPolling(t *testing.T) {
	t.Parallel()
	api := &stubAPI{
		role:     RolePending,
		statuses: []Status{StatusNotFound, StatusPending, StatusApproved},
	}

	res, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeAdmitted || res.Attempts != 3 {
		t.Errorf("expected admission on poll 3, got %s after %d", res.Outcome, res.Attempts)
	}
}

func TestTimeoutIssuesNoExtraPoll(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RolePending, statuses: []Status{StatusPending}}
	p := fastPoller(api)

	res, err := p.WaitForAdmission(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Outcome != OutcomeTimedOut {
		t.Errorf("expected timeout, got %s", res.Outcome)
	}
	if res.Attempts != DefaultMaxAttempts {
		t.Errorf("expected %d attempts, got %d", DefaultMaxAttempts, res.Attempts)
	}

	time.Sleep(10 * time.Millisecond)
	if api.calls() != DefaultMaxAttempts {
		t.Errorf("expected exactly %d polls, got %d", DefaultMaxAttempts, api.calls())
	}
}

func TestTransportFailureKillsLoop(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RolePending, statusErr: errors.New("connection refused")}

	_, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err == nil {
		t.Fatal("expected transport error to surface")
	}
	if api.calls() != 1 {
		t.Errorf("loop must die on first transport failure, issued %d polls", api.calls())
	}
}

func TestRoleCheckFailureAborts(t *testing.T) {
	t.Parallel()
	api := &stubAPI{roleErr: errors.New("connection refused")}

	_, err := fastPoller(api).WaitForAdmission(context.Background(), "abc123")
	if err == nil {
		t.Fatal("expected role check error to surface")
	}
	if api.calls() != 0 {
		t.Errorf("no polls expected, got %d", api.calls())
	}
}

func TestCancellationStopsLoop(t *testing.T) {
	t.Parallel()
	api := &stubAPI{role: RolePending, statuses: []Status{StatusPending}}
	p := NewPoller(api, WithInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := p.WaitForAdmission(ctx, "abc123")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	calls := api.calls()
	time.Sleep(20 * time.Millisecond)
	if api.calls() != calls {
		t.Error("polling continued after cancellation")
	}
}

func TestBudgetDerivesFromSingleSource(t *testing.T) {
	t.Parallel()
	p := NewPoller(&stubAPI{}, WithInterval(3*time.Second), WithMaxAttempts(41))

	if p.Budget() != 123*time.Second {
		t.Errorf("expected 123s budget, got %v", p.Budget())
	}
}
