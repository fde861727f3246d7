package leave

import (
	"context"
	"time"
)

// BalanceRepository - interface for the leave_balances table
type BalanceRepository interface {
	GetByUser(ctx context.Context, username string) ([]Balance, error)
	GetByUserAndType(ctx context.Context, username string, leaveType LeaveType) (Balance, error)
	Upsert(ctx context.Context, username string, leaveType LeaveType, days int) error
	// Debit decrements the balance by days only when the stored balance is
	// at least days; it returns *InsufficientBalanceError otherwise. Callers
	// run it inside the approval transaction.
	Debit(ctx context.Context, username string, leaveType LeaveType, days int) error
}

// RequestRepository - interface for the leave_requests table
type RequestRepository interface {
	Create(ctx context.Context, request Request) (Request, error)
	GetByID(ctx context.Context, id string) (Request, error)
	ListByUser(ctx context.Context, username string, status RequestStatus) ([]Request, error)
	ListAll(ctx context.Context, status RequestStatus) ([]Request, error)
	ListApprovedOverlapping(ctx context.Context, username string, from, to time.Time) ([]Request, error)
	// UpdateStatus transitions a request out of Pending; it returns
	// ErrRequestAlreadyProcessed when the stored status is no longer Pending.
	UpdateStatus(ctx context.Context, id string, status RequestStatus, approver *string) error
}
