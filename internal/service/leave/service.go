package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
)

// DefaultAbsenceWindowDays is the absence listing window when the caller
// gives no to date.
const DefaultAbsenceWindowDays = 30

// TxManager runs fn inside a storage transaction; every repository call made
// with the context fn receives joins that transaction.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}

type LeaveServiceImpl struct {
	tx TxManager
	leave.BalanceRepository
	leave.RequestRepository
	user.UserRepository
	authorizer *user.Authorizer
}

func NewLeaveService(
	tx TxManager,
	balanceRepository leave.BalanceRepository,
	requestRepository leave.RequestRepository,
	userRepository user.UserRepository,
	authorizer *user.Authorizer,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		tx:                tx,
		BalanceRepository: balanceRepository,
		RequestRepository: requestRepository,
		UserRepository:    userRepository,
		authorizer:        authorizer,
	}
}

// GetBalances implements leave.LeaveService. Every recognized leave type is
// present in the response; types with no stored row read as zero.
func (l *LeaveServiceImpl) GetBalances(ctx context.Context, caller user.Identity, targetUser string) ([]leave.BalanceResponse, error) {
	if targetUser == "" {
		targetUser = caller.Username
	}
	if targetUser != caller.Username && !l.authorizer.IsApprover(caller.Role) {
		return nil, user.ErrApproverRequired
	}

	stored, err := l.BalanceRepository.GetByUser(ctx, targetUser)
	if err != nil {
		return nil, fmt.Errorf("failed to get balances: %w", err)
	}

	held := make(map[leave.LeaveType]int, len(stored))
	for _, b := range stored {
		held[b.Type] = b.Days
	}

	out := make([]leave.BalanceResponse, 0, len(leave.LeaveTypes()))
	for _, t := range leave.LeaveTypes() {
		out = append(out, leave.BalanceResponse{
			LeaveType:   string(t),
			BalanceDays: held[t],
		})
	}
	return out, nil
}

// SetBalances implements leave.LeaveService. Unrecognized leave types are
// silently ignored; negative values clamp to zero.
func (l *LeaveServiceImpl) SetBalances(ctx context.Context, caller user.Identity, req leave.SetBalancesRequest) error {
	if !l.authorizer.IsApprover(caller.Role) {
		return user.ErrApproverRequired
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if _, err := l.UserRepository.GetByUsername(ctx, req.User); err != nil {
		return fmt.Errorf("failed to resolve target user: %w", err)
	}

	// All rows commit or none do; a failure mid-way must not leave a
	// partially updated ledger.
	return l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		for rawType, days := range req.Balances {
			leaveType, ok := leave.ParseLeaveType(rawType)
			if !ok {
				continue
			}
			if days < 0 {
				days = 0
			}
			if err := l.BalanceRepository.Upsert(txCtx, req.User, leaveType, days); err != nil {
				return fmt.Errorf("failed to set %s balance: %w", leaveType, err)
			}
		}
		return nil
	})
}

// CreateRequest implements leave.LeaveService. The balance read here is
// advisory: nothing is debited until an approver decides the request, and
// the decision re-checks against the then-current balance.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, caller user.Identity, req leave.CreateRequestRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	leaveType, _ := leave.ParseLeaveType(req.LeaveType)
	startDate, _ := time.Parse(leave.DateLayout, req.StartDate)
	endDate, _ := time.Parse(leave.DateLayout, req.EndDate)
	if endDate.Before(startDate) {
		startDate, endDate = endDate, startDate
	}

	days := leave.BusinessDays(startDate, endDate)
	if days <= 0 {
		return leave.RequestResponse{}, leave.ErrNoBusinessDays
	}

	if leaveType.Deductible() {
		balance, err := l.BalanceRepository.GetByUserAndType(ctx, caller.Username, leaveType)
		if err != nil {
			return leave.RequestResponse{}, fmt.Errorf("failed to read balance: %w", err)
		}
		if balance.Days < days {
			return leave.RequestResponse{}, &leave.InsufficientBalanceError{
				Type: leaveType,
				Have: balance.Days,
				Need: days,
			}
		}
	}

	request := leave.Request{
		Username:  caller.Username,
		Type:      leaveType,
		StartDate: startDate,
		EndDate:   endDate,
		Days:      days,
		Reason:    req.Reason,
		Status:    leave.RequestStatusPending,
	}

	created, err := l.RequestRepository.Create(ctx, request)
	if err != nil {
		return leave.RequestResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return leave.NewRequestResponse(created), nil
}

// CancelRequest implements leave.LeaveService. Only the requester may
// cancel, and only while the request is still Pending. A request owned by
// someone else is reported as not found, not as forbidden.
func (l *LeaveServiceImpl) CancelRequest(ctx context.Context, caller user.Identity, requestID string) error {
	request, err := l.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.Username != caller.Username {
		return leave.ErrRequestNotFound
	}
	if request.Status.Terminal() {
		return leave.ErrRequestAlreadyProcessed
	}

	// Nothing was debited at creation, so cancelling never touches the
	// ledger.
	return l.RequestRepository.UpdateStatus(ctx, requestID, leave.RequestStatusCancelled, nil)
}

// DecideRequest implements leave.LeaveService. The approver check runs
// before any mutable state is read. On approve, the balance re-check, the
// debit, and the status transition commit as one transaction: a concurrent
// approval against the same (user, type) row observes the earlier debit and
// fails with InsufficientBalance.
func (l *LeaveServiceImpl) DecideRequest(ctx context.Context, caller user.Identity, requestID string, action leave.DecisionAction) (leave.RequestResponse, error) {
	if !l.authorizer.IsApprover(caller.Role) {
		return leave.RequestResponse{}, user.ErrApproverRequired
	}

	request, err := l.RequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if request.Status.Terminal() {
		return leave.RequestResponse{}, leave.ErrRequestAlreadyProcessed
	}

	approver := caller.Username

	switch action {
	case leave.DecisionReject:
		if err := l.RequestRepository.UpdateStatus(ctx, requestID, leave.RequestStatusRejected, &approver); err != nil {
			return leave.RequestResponse{}, err
		}
		request.Status = leave.RequestStatusRejected

	case leave.DecisionApprove:
		err := l.tx.WithTransaction(ctx, func(txCtx context.Context) error {
			if request.Type.Deductible() {
				if err := l.BalanceRepository.Debit(txCtx, request.Username, request.Type, request.Days); err != nil {
					return err
				}
			}
			return l.RequestRepository.UpdateStatus(txCtx, requestID, leave.RequestStatusApproved, &approver)
		})
		if err != nil {
			return leave.RequestResponse{}, err
		}
		request.Status = leave.RequestStatusApproved

	default:
		return leave.RequestResponse{}, leave.ErrInvalidAction
	}

	request.Approver = &approver
	return leave.NewRequestResponse(request), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, caller user.Identity, filter leave.RequestFilter) ([]leave.RequestResponse, error) {
	var (
		requests []leave.Request
		err      error
	)
	if filter.Scope == "all" && l.authorizer.IsApprover(caller.Role) {
		requests, err = l.RequestRepository.ListAll(ctx, filter.Status)
	} else {
		requests, err = l.RequestRepository.ListByUser(ctx, caller.Username, filter.Status)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}

	out := make([]leave.RequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, leave.NewRequestResponse(r))
	}
	return out, nil
}

// ListAbsences implements leave.LeaveService. Returns Approved requests
// overlapping [From, To]; defaults are today through today+30 days. Both
// bounds are normalized to calendar dates, so a mid-day timestamp still
// matches a request whose last day is that date.
func (l *LeaveServiceImpl) ListAbsences(ctx context.Context, caller user.Identity, filter leave.AbsenceFilter) ([]leave.RequestResponse, error) {
	today := leave.DateOf(time.Now())
	from := filter.From
	if from.IsZero() {
		from = today
	} else {
		from = leave.DateOf(from)
	}
	to := filter.To
	if to.IsZero() {
		to = today.AddDate(0, 0, DefaultAbsenceWindowDays)
	} else {
		to = leave.DateOf(to)
	}

	username := caller.Username
	if filter.Scope == "all" && l.authorizer.IsApprover(caller.Role) {
		username = ""
	}

	absences, err := l.RequestRepository.ListApprovedOverlapping(ctx, username, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list absences: %w", err)
	}

	out := make([]leave.RequestResponse, 0, len(absences))
	for _, r := range absences {
		out = append(out, leave.NewRequestResponse(r))
	}
	return out, nil
}
