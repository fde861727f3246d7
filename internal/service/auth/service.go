package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/jwt"
)

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

type AuthService struct {
	userRepository user.UserRepository
	jwtService     jwt.Service
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service) *AuthService {
	return &AuthService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

// Login verifies the credentials and issues an access token carrying the
// caller's username and role. A missing user and a wrong password report
// the same error.
func (a *AuthService) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	u, err := a.userRepository.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return LoginResponse{}, user.ErrInvalidCredentials
		}
		return LoginResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return LoginResponse{}, user.ErrInvalidCredentials
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(u.Username, u.Role)
	if err != nil {
		return LoginResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Username:    u.Username,
		Role:        string(u.Role),
	}, nil
}
