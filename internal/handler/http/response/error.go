package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var insufficient *leave.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		BadRequest(w, insufficient.Error(), map[string]string{
			"have": strconv.Itoa(insufficient.Have),
			"need": strconv.Itoa(insufficient.Need),
		})
		return
	}

	switch {
	// User domain errors
	case errors.Is(err, user.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrApproverRequired):
		Forbidden(w, "Approver role required")

	// Leave domain errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrRequestAlreadyProcessed):
		Conflict(w, "Only pending requests can be modified")
	case errors.Is(err, leave.ErrNoBusinessDays),
		errors.Is(err, leave.ErrInvalidAction):
		BadRequest(w, err.Error(), nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
