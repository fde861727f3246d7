package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/peoplecore/hrops-backend-go/internal/domain/leave"
	"github.com/peoplecore/hrops-backend-go/internal/handler/http/middleware"
	"github.com/peoplecore/hrops-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	GetBalances(w http.ResponseWriter, r *http.Request)
	SetBalances(w http.ResponseWriter, r *http.Request)

	ListRequests(w http.ResponseWriter, r *http.Request)
	CreateRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
	DecideRequest(w http.ResponseWriter, r *http.Request)

	ListAbsences(w http.ResponseWriter, r *http.Request)
	CurrentAbsences(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	targetUser := r.URL.Query().Get("user")
	balances, err := l.leaveService.GetBalances(r.Context(), caller, targetUser)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}

// SetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) SetBalances(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.SetBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SetBalances decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := l.leaveService.SetBalances(r.Context(), caller, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Balances updated successfully", nil)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := leave.RequestFilter{
		Scope: r.URL.Query().Get("scope"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := leave.ParseRequestStatus(raw)
		if !ok {
			response.BadRequest(w, "Invalid status filter", nil)
			return
		}
		filter.Status = status
	}

	requests, err := l.leaveService.ListRequests(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// CreateRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := l.leaveService.CreateRequest(r.Context(), caller, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", created)
}

// CancelRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	if err := l.leaveService.CancelRequest(r.Context(), caller, requestID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled", nil)
}

// DecideRequest implements LeaveHandler.
func (l *LeaveHandlerImpl) DecideRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		response.BadRequest(w, "Request ID is required", nil)
		return
	}

	var req leave.DecideRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("DecideRequest decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	var action leave.DecisionAction
	switch leave.DecisionAction(req.Action) {
	case leave.DecisionApprove, leave.DecisionReject:
		action = leave.DecisionAction(req.Action)
	default:
		response.BadRequest(w, "action must be approve or reject", nil)
		return
	}

	decided, err := l.leaveService.DecideRequest(r.Context(), caller, requestID, action)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+decided.Status, decided)
}

// ListAbsences implements LeaveHandler.
func (l *LeaveHandlerImpl) ListAbsences(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := leave.AbsenceFilter{
		Scope: r.URL.Query().Get("scope"),
		From:  parseDateOrZero(r.URL.Query().Get("from")),
		To:    parseDateOrZero(r.URL.Query().Get("to")),
	}

	absences, err := l.leaveService.ListAbsences(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, absences)
}

// CurrentAbsences implements LeaveHandler: who is on approved leave today.
func (l *LeaveHandlerImpl) CurrentAbsences(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	today := time.Now()
	filter := leave.AbsenceFilter{
		Scope: r.URL.Query().Get("scope"),
		From:  today,
		To:    today,
	}

	absences, err := l.leaveService.ListAbsences(r.Context(), caller, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, absences)
}

// parseDateOrZero returns the zero time for missing or malformed dates; the
// service substitutes its defaults.
func parseDateOrZero(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(leave.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
