package leave

import (
	"errors"
	"fmt"
)

var (
	ErrRequestNotFound         = errors.New("leave request not found")
	ErrRequestAlreadyProcessed = errors.New("only pending requests can be modified")
	ErrNoBusinessDays          = errors.New("no business days in range")
	ErrInvalidAction           = errors.New("invalid decision action")
)

// InsufficientBalanceError carries the held and required day counts so the
// client can display both.
type InsufficientBalanceError struct {
	Type LeaveType
	Have int
	Need int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: have %d, need %d", e.Type, e.Have, e.Need)
}
