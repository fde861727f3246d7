package leave

import (
	"context"

	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
)

type LeaveService interface {
	// Ledger
	GetBalances(ctx context.Context, caller user.Identity, targetUser string) ([]BalanceResponse, error)
	SetBalances(ctx context.Context, caller user.Identity, req SetBalancesRequest) error
	// Requests
	CreateRequest(ctx context.Context, caller user.Identity, req CreateRequestRequest) (RequestResponse, error)
	CancelRequest(ctx context.Context, caller user.Identity, requestID string) error
	DecideRequest(ctx context.Context, caller user.Identity, requestID string, action DecisionAction) (RequestResponse, error)
	ListRequests(ctx context.Context, caller user.Identity, filter RequestFilter) ([]RequestResponse, error)
	ListAbsences(ctx context.Context, caller user.Identity, filter AbsenceFilter) ([]RequestResponse, error)
}
