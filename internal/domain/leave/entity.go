package leave

import "time"

// LeaveType is the closed four-member set of leave categories. Unpaid leave
// is exempt from balance checks and never touches the ledger.
type LeaveType string

const (
	LeaveTypeAnnual LeaveType = "Annual"
	LeaveTypeSick   LeaveType = "Sick"
	LeaveTypeCasual LeaveType = "Casual"
	LeaveTypeUnpaid LeaveType = "Unpaid"
)

// LeaveTypes lists every recognized type in display order.
func LeaveTypes() []LeaveType {
	return []LeaveType{LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCasual, LeaveTypeUnpaid}
}

// ParseLeaveType validates a stored or client-supplied type string. Storage
// is not trusted: every boundary re-validates.
func ParseLeaveType(s string) (LeaveType, bool) {
	switch LeaveType(s) {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeCasual, LeaveTypeUnpaid:
		return LeaveType(s), true
	}
	return "", false
}

// Deductible reports whether approving a request of this type debits the
// ledger.
func (t LeaveType) Deductible() bool {
	return t != LeaveTypeUnpaid
}

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "Pending"
	RequestStatusApproved  RequestStatus = "Approved"
	RequestStatusRejected  RequestStatus = "Rejected"
	RequestStatusCancelled RequestStatus = "Cancelled"
)

func ParseRequestStatus(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled:
		return RequestStatus(s), true
	}
	return "", false
}

// Terminal reports whether no further transition is possible. Pending is the
// only state from which any other state is reachable.
func (s RequestStatus) Terminal() bool {
	return s != RequestStatusPending
}

// Balance entity: one row per (username, leave type), whole days, never
// negative at rest. Rows are materialized lazily; a missing row reads as 0.
type Balance struct {
	Username  string
	Type      LeaveType
	Days      int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Request entity. Days is derived once at creation from the business-day
// count of [StartDate, EndDate] and never recomputed afterwards.
type Request struct {
	ID        string
	Username  string
	Type      LeaveType
	StartDate time.Time
	EndDate   time.Time
	Days      int
	Reason    *string
	Status    RequestStatus
	Approver  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
