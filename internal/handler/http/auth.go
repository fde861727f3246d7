package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/peoplecore/hrops-backend-go/internal/handler/http/response"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/validator"
	"github.com/peoplecore/hrops-backend-go/internal/service/auth"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService *auth.AuthService
}

func NewAuthHandler(authService *auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if validator.IsEmpty(req.Username) || validator.IsEmpty(req.Password) {
		response.BadRequest(w, "username and password are required", nil)
		return
	}

	result, err := a.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
