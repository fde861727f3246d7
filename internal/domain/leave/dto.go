package leave

import (
	"time"

	"github.com/peoplecore/hrops-backend-go/internal/pkg/validator"
)

type BalanceResponse struct {
	LeaveType   string `json:"leave_type"`
	BalanceDays int    `json:"balance_days"`
}

type SetBalancesRequest struct {
	User     string         `json:"user"`
	Balances map[string]int `json:"balances"`
}

func (r SetBalancesRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.User) {
		errs = append(errs, validator.ValidationError{Field: "user", Message: "user is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CreateRequestRequest struct {
	LeaveType string  `json:"leave_type"`
	StartDate string  `json:"start_date"`
	EndDate   string  `json:"end_date"`
	Reason    *string `json:"reason,omitempty"`
}

func (r CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors
	if _, ok := ParseLeaveType(r.LeaveType); !ok {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "must be one of Annual, Sick, Casual, Unpaid"})
	}
	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a YYYY-MM-DD date"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a YYYY-MM-DD date"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type DecisionAction string

const (
	DecisionApprove DecisionAction = "approve"
	DecisionReject  DecisionAction = "reject"
)

type DecideRequestRequest struct {
	Action string `json:"action"`
}

type RequestResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	LeaveType string    `json:"leave_type"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      int       `json:"days"`
	Reason    *string   `json:"reason,omitempty"`
	Status    string    `json:"status"`
	Approver  *string   `json:"approver,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewRequestResponse(r Request) RequestResponse {
	return RequestResponse{
		ID:        r.ID,
		Username:  r.Username,
		LeaveType: string(r.Type),
		StartDate: r.StartDate.Format(DateLayout),
		EndDate:   r.EndDate.Format(DateLayout),
		Days:      r.Days,
		Reason:    r.Reason,
		Status:    string(r.Status),
		Approver:  r.Approver,
		CreatedAt: r.CreatedAt,
	}
}

// RequestFilter scopes request listings. Scope "all" is honored only for
// approvers; Status empty means every status.
type RequestFilter struct {
	Scope  string
	Status RequestStatus
}

// AbsenceFilter selects approved requests overlapping [From, To].
type AbsenceFilter struct {
	From  time.Time
	To    time.Time
	Scope string
}
