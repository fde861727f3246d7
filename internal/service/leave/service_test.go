package leave

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
)

// --- in-memory fakes over the domain repository interfaces ---

type fakeBalanceRepo struct {
	balances    map[string]int // "user/type" -> days
	upsertCalls int
	failUpsert  int // fail upserts after this many succeed; 0 = never
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]int)}
}

func balanceKey(username string, t leave.LeaveType) string {
	return username + "/" + string(t)
}

func (f *fakeBalanceRepo) GetByUser(_ context.Context, username string) ([]leave.Balance, error) {
	var out []leave.Balance
	for _, t := range leave.LeaveTypes() {
		if days, ok := f.balances[balanceKey(username, t)]; ok {
			out = append(out, leave.Balance{Username: username, Type: t, Days: days})
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) GetByUserAndType(_ context.Context, username string, t leave.LeaveType) (leave.Balance, error) {
	return leave.Balance{Username: username, Type: t, Days: f.balances[balanceKey(username, t)]}, nil
}

func (f *fakeBalanceRepo) Upsert(_ context.Context, username string, t leave.LeaveType, days int) error {
	if f.failUpsert > 0 && f.upsertCalls >= f.failUpsert {
		return errors.New("storage gone")
	}
	f.upsertCalls++
	f.balances[balanceKey(username, t)] = days
	return nil
}

func (f *fakeBalanceRepo) Debit(_ context.Context, username string, t leave.LeaveType, days int) error {
	key := balanceKey(username, t)
	held := f.balances[key]
	if held < days {
		return &leave.InsufficientBalanceError{Type: t, Have: held, Need: days}
	}
	f.balances[key] = held - days
	return nil
}

type fakeRequestRepo struct {
	requests     map[string]leave.Request
	nextID       int
	getByIDCalls int
	updateErr    error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]leave.Request)}
}

func (f *fakeRequestRepo) Create(_ context.Context, r leave.Request) (leave.Request, error) {
	f.nextID++
	r.ID = fmt.Sprintf("req-%d", f.nextID)
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (leave.Request, error) {
	f.getByIDCalls++
	r, ok := f.requests[id]
	if !ok {
		return leave.Request{}, leave.ErrRequestNotFound
	}
	return r, nil
}

func (f *fakeRequestRepo) ListByUser(_ context.Context, username string, status leave.RequestStatus) ([]leave.Request, error) {
	var out []leave.Request
	for _, r := range f.requests {
		if r.Username == username && (status == "" || r.Status == status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListAll(_ context.Context, status leave.RequestStatus) ([]leave.Request, error) {
	var out []leave.Request
	for _, r := range f.requests {
		if status == "" || r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListApprovedOverlapping(_ context.Context, username string, from, to time.Time) ([]leave.Request, error) {
	var out []leave.Request
	for _, r := range f.requests {
		if r.Status != leave.RequestStatusApproved {
			continue
		}
		if username != "" && r.Username != username {
			continue
		}
		if r.StartDate.After(to) || r.EndDate.Before(from) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateStatus(_ context.Context, id string, status leave.RequestStatus, approver *string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	r, ok := f.requests[id]
	if !ok || r.Status != leave.RequestStatusPending {
		return leave.ErrRequestAlreadyProcessed
	}
	r.Status = status
	if approver != nil {
		r.Approver = approver
	}
	r.UpdatedAt = time.Now()
	f.requests[id] = r
	return nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	u, ok := f.users[username]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	f.users[u.Username] = u
	return u, nil
}

// fakeTxManager mirrors the transactional contract: on error, balance
// mutations made inside fn are rolled back.
type fakeTxManager struct {
	balances *fakeBalanceRepo
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	snapshot := make(map[string]int, len(f.balances.balances))
	for k, v := range f.balances.balances {
		snapshot[k] = v
	}
	if err := fn(ctx); err != nil {
		f.balances.balances = snapshot
		return err
	}
	return nil
}

type fixture struct {
	svc      *LeaveServiceImpl
	balances *fakeBalanceRepo
	requests *fakeRequestRepo
	users    *fakeUserRepo
}

func newFixture() *fixture {
	balances := newFakeBalanceRepo()
	requests := newFakeRequestRepo()
	users := &fakeUserRepo{users: map[string]user.User{
		"alex": {Username: "alex", Role: user.RoleEmployees},
		"neha": {Username: "neha", Role: user.RoleHR},
	}}
	authorizer := user.NewAuthorizer([]user.Role{user.RoleHR, user.RoleLeaders})
	svc := NewLeaveService(&fakeTxManager{balances: balances}, balances, requests, users, authorizer)
	return &fixture{svc: svc, balances: balances, requests: requests, users: users}
}

var (
	employee = user.Identity{Username: "alex", Role: user.RoleEmployees}
	approver = user.Identity{Username: "neha", Role: user.RoleHR}
)

// --- ledger ---

func TestGetBalancesZeroFillsAllTypes(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 10

	got, err := f.svc.GetBalances(context.Background(), employee, "")
	require.NoError(t, err)
	require.Len(t, got, 4)

	byType := make(map[string]int)
	for _, b := range got {
		byType[b.LeaveType] = b.BalanceDays
	}
	assert.Equal(t, 10, byType["Annual"])
	assert.Equal(t, 0, byType["Sick"])
	assert.Equal(t, 0, byType["Casual"])
	assert.Equal(t, 0, byType["Unpaid"])
}

func TestGetBalancesOtherUserRequiresApprover(t *testing.T) {
	f := newFixture()

	_, err := f.svc.GetBalances(context.Background(), employee, "neha")
	assert.ErrorIs(t, err, user.ErrApproverRequired)

	_, err = f.svc.GetBalances(context.Background(), approver, "alex")
	assert.NoError(t, err)
}

func TestSetBalances(t *testing.T) {
	f := newFixture()

	err := f.svc.SetBalances(context.Background(), approver, leave.SetBalancesRequest{
		User: "alex",
		Balances: map[string]int{
			"Annual":   12,
			"Sick":     -3, // clamps to zero
			"Vacation": 99, // unrecognized, silently ignored
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 12, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)])
	assert.Equal(t, 0, f.balances.balances[balanceKey("alex", leave.LeaveTypeSick)])
	_, exists := f.balances.balances["alex/Vacation"]
	assert.False(t, exists)
}

func TestSetBalancesForbiddenForNonApprover(t *testing.T) {
	f := newFixture()
	err := f.svc.SetBalances(context.Background(), employee, leave.SetBalancesRequest{
		User:     "alex",
		Balances: map[string]int{"Annual": 5},
	})
	assert.ErrorIs(t, err, user.ErrApproverRequired)
}

// A failure writing one ledger row must roll back the rows already
// written in the same call.
func TestSetBalancesAllOrNothing(t *testing.T) {
	f := newFixture()
	f.balances.failUpsert = 1

	err := f.svc.SetBalances(context.Background(), approver, leave.SetBalancesRequest{
		User: "alex",
		Balances: map[string]int{
			"Annual": 7,
			"Sick":   4,
		},
	})
	require.Error(t, err)
	assert.Empty(t, f.balances.balances, "partial ledger writes must not survive a failed set")
}

func TestSetBalancesUnknownUser(t *testing.T) {
	f := newFixture()
	err := f.svc.SetBalances(context.Background(), approver, leave.SetBalancesRequest{
		User:     "ghost",
		Balances: map[string]int{"Annual": 5},
	})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// --- create ---

func TestCreateRequestComputesBusinessDays(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 5

	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Annual",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created.Days)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, "alex", created.Username)

	// creation is advisory only: nothing debited yet
	assert.Equal(t, 5, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)])
}

func TestCreateRequestInvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Vacation",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	assert.Error(t, err)

	_, err = f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Unpaid",
		StartDate: "01/01/2024",
		EndDate:   "2024-01-05",
	})
	assert.Error(t, err)
}

func TestCreateRequestWeekendOnlyRejected(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 10

	_, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Annual",
		StartDate: "2024-01-06",
		EndDate:   "2024-01-07",
	})
	assert.ErrorIs(t, err, leave.ErrNoBusinessDays)
}

func TestCreateRequestInsufficientBalance(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 3

	_, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Annual",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})

	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 3, insufficient.Have)
	assert.Equal(t, 5, insufficient.Need)
}

func TestCreateRequestUnpaidSkipsBalanceCheck(t *testing.T) {
	f := newFixture()
	// no balances at all

	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Unpaid",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created.Days)
}

func TestCreateRequestSwapsReversedDates(t *testing.T) {
	f := newFixture()
	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Unpaid",
		StartDate: "2024-01-05",
		EndDate:   "2024-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, created.Days)
	assert.Equal(t, "2024-01-01", created.StartDate)
	assert.Equal(t, "2024-01-05", created.EndDate)
}

// --- cancel ---

func TestCancelRequestOnlyOnce(t *testing.T) {
	f := newFixture()
	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Unpaid",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelRequest(context.Background(), employee, created.ID))
	assert.Equal(t, leave.RequestStatusCancelled, f.requests.requests[created.ID].Status)

	err = f.svc.CancelRequest(context.Background(), employee, created.ID)
	assert.ErrorIs(t, err, leave.ErrRequestAlreadyProcessed)
}

func TestCancelRequestNotOwnerReportsNotFound(t *testing.T) {
	f := newFixture()
	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: "Unpaid",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-05",
	})
	require.NoError(t, err)

	err = f.svc.CancelRequest(context.Background(), approver, created.ID)
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)

	err = f.svc.CancelRequest(context.Background(), employee, "nope")
	assert.ErrorIs(t, err, leave.ErrRequestNotFound)
}

// --- decide ---

func createPending(t *testing.T, f *fixture, leaveType, start, end string) leave.RequestResponse {
	t.Helper()
	created, err := f.svc.CreateRequest(context.Background(), employee, leave.CreateRequestRequest{
		LeaveType: leaveType,
		StartDate: start,
		EndDate:   end,
	})
	require.NoError(t, err)
	return created
}

func TestDecideForbiddenBeforeAnyRead(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 5
	created := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")

	readsBefore := f.requests.getByIDCalls
	_, err := f.svc.DecideRequest(context.Background(), employee, created.ID, leave.DecisionApprove)
	assert.ErrorIs(t, err, user.ErrApproverRequired)
	assert.Equal(t, readsBefore, f.requests.getByIDCalls, "authority check must run before any state is read")
}

func TestDecideReject(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 5
	created := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")

	decided, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionReject)
	require.NoError(t, err)
	assert.Equal(t, "Rejected", decided.Status)
	require.NotNil(t, decided.Approver)
	assert.Equal(t, "neha", *decided.Approver)

	// rejection never touches the ledger
	assert.Equal(t, 5, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)])
}

func TestDecideApproveDebitsExactly(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 8
	created := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")

	decided, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, "Approved", decided.Status)
	assert.Equal(t, 3, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)])
	assert.Equal(t, leave.RequestStatusApproved, f.requests.requests[created.ID].Status)
}

func TestDecideApproveUnpaidSkipsLedger(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-01", "2024-01-05")

	decided, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, "Approved", decided.Status)
	assert.Empty(t, f.balances.balances)
}

func TestDecideTerminalStateRejected(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-01", "2024-01-05")
	require.NoError(t, f.svc.CancelRequest(context.Background(), employee, created.ID))

	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	assert.ErrorIs(t, err, leave.ErrRequestAlreadyProcessed)
}

func TestDecideInvalidAction(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-01", "2024-01-05")

	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionAction("defer"))
	assert.ErrorIs(t, err, leave.ErrInvalidAction)
}

// Two pending requests can both pass the advisory creation check, but only
// one of them is satisfiable at decision time.
func TestDecideSecondApprovalFailsOnDrainedBalance(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 5

	first := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")
	second := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")

	_, err := f.svc.DecideRequest(context.Background(), approver, first.ID, leave.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, 0, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)])

	_, err = f.svc.DecideRequest(context.Background(), approver, second.ID, leave.DecisionApprove)
	var insufficient *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 0, insufficient.Have)
	assert.Equal(t, 5, insufficient.Need)

	// the failed approval left the request pending
	assert.Equal(t, leave.RequestStatusPending, f.requests.requests[second.ID].Status)
}

// The debit and the transition are one atomic unit: a failed transition
// rolls the debit back.
func TestDecideApproveRollsBackDebitOnTransitionFailure(t *testing.T) {
	f := newFixture()
	f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)] = 5
	created := createPending(t, f, "Annual", "2024-01-01", "2024-01-05")

	f.requests.updateErr = errors.New("storage gone")
	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.Error(t, err)

	assert.Equal(t, 5, f.balances.balances[balanceKey("alex", leave.LeaveTypeAnnual)],
		"debit must not survive a failed status transition")
}

// --- listings ---

func TestListRequestsScope(t *testing.T) {
	f := newFixture()
	createPending(t, f, "Unpaid", "2024-01-01", "2024-01-05")

	other := leave.Request{Username: "neha", Type: leave.LeaveTypeUnpaid, Status: leave.RequestStatusPending,
		StartDate: mustParse(t, "2024-02-01"), EndDate: mustParse(t, "2024-02-02"), Days: 2}
	_, err := f.requests.Create(context.Background(), other)
	require.NoError(t, err)

	own, err := f.svc.ListRequests(context.Background(), employee, leave.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	// non-approver asking for all still sees only their own
	own, err = f.svc.ListRequests(context.Background(), employee, leave.RequestFilter{Scope: "all"})
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.svc.ListRequests(context.Background(), approver, leave.RequestFilter{Scope: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListRequestsStatusFilter(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-01", "2024-01-05")
	createPending(t, f, "Unpaid", "2024-02-01", "2024-02-02")
	require.NoError(t, f.svc.CancelRequest(context.Background(), employee, created.ID))

	pending, err := f.svc.ListRequests(context.Background(), employee, leave.RequestFilter{Status: leave.RequestStatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	cancelled, err := f.svc.ListRequests(context.Background(), employee, leave.RequestFilter{Status: leave.RequestStatusCancelled})
	require.NoError(t, err)
	assert.Len(t, cancelled, 1)
}

func TestListAbsencesOverlapWindow(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-10", "2024-01-12")
	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.NoError(t, err)

	// window overlapping the absence
	got, err := f.svc.ListAbsences(context.Background(), employee, leave.AbsenceFilter{
		From: mustParse(t, "2024-01-11"),
		To:   mustParse(t, "2024-01-20"),
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// disjoint window
	got, err = f.svc.ListAbsences(context.Background(), employee, leave.AbsenceFilter{
		From: mustParse(t, "2024-02-01"),
		To:   mustParse(t, "2024-02-28"),
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// Window bounds carrying a time of day still match requests on the boundary
// dates, including an absence whose last day is today.
func TestListAbsencesNormalizesBoundsToDates(t *testing.T) {
	f := newFixture()
	today := time.Now().Format(leave.DateLayout)
	created := createPending(t, f, "Unpaid", today, today)
	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.NoError(t, err)

	got, err := f.svc.ListAbsences(context.Background(), employee, leave.AbsenceFilter{
		From: time.Now(),
		To:   time.Now(),
	})
	require.NoError(t, err)
	assert.Len(t, got, 1, "absence ending today must appear in a today..today window")
}

func TestListAbsencesIncludesWindowStartBoundary(t *testing.T) {
	f := newFixture()
	created := createPending(t, f, "Unpaid", "2024-01-08", "2024-01-10")
	_, err := f.svc.DecideRequest(context.Background(), approver, created.ID, leave.DecisionApprove)
	require.NoError(t, err)

	// window starts on the absence's last day, with a mid-day timestamp
	from := mustParse(t, "2024-01-10").Add(14 * time.Hour)
	got, err := f.svc.ListAbsences(context.Background(), employee, leave.AbsenceFilter{
		From: from,
		To:   from.AddDate(0, 0, 7),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-10", got[0].EndDate)
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(leave.DateLayout, s)
	require.NoError(t, err)
	return d
}
