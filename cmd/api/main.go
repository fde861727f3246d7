package main

import (
	"fmt"
	"net/http"

	"github.com/peoplecore/hrops-backend-go/internal/config"
	"github.com/peoplecore/hrops-backend-go/internal/domain/user"
	appHTTP "github.com/peoplecore/hrops-backend-go/internal/handler/http"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/database"
	"github.com/peoplecore/hrops-backend-go/internal/pkg/jwt"
	"github.com/peoplecore/hrops-backend-go/internal/repository/postgresql"
	authService "github.com/peoplecore/hrops-backend-go/internal/service/auth"
	leaveService "github.com/peoplecore/hrops-backend-go/internal/service/leave"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	userRepo := postgresql.NewUserRepository(db)
	balanceRepo := postgresql.NewBalanceRepository(db)
	requestRepo := postgresql.NewRequestRepository(db)

	approverRoles := make([]user.Role, 0, len(cfg.Leave.ApproverRoles))
	for _, r := range cfg.Leave.ApproverRoles {
		role, ok := user.ParseRole(r)
		if !ok {
			fmt.Println("Unknown role in APPROVER_ROLES:", r)
			return
		}
		approverRoles = append(approverRoles, role)
	}
	authorizer := user.NewAuthorizer(approverRoles)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authSvc := authService.NewAuthService(userRepo, jwtService)
	leaveSvc := leaveService.NewLeaveService(postgresql.NewTxManager(db), balanceRepo, requestRepo, userRepo, authorizer)

	authHandler := appHTTP.NewAuthHandler(authSvc)
	leaveHandler := appHTTP.NewLeaveHandler(leaveSvc)

	router := appHTTP.NewRouter(
		jwtService,
		authHandler,
		leaveHandler,
		cfg.App.Env,
		cfg.App.FrontendURL,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
