package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/model"
)

// UserRepository stores accounts.
type UserRepository interface {
	// Create inserts user; ErrEmailTaken when the email already exists.
	Create(ctx context.Context, user *model.User) error
	// FindByID returns ErrUserNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// FindByEmail returns ErrUserNotFound when missing.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
