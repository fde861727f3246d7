package user

import "context"

// UserRepository - interface for the users table
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	Create(ctx context.Context, u User) (User, error)
}
