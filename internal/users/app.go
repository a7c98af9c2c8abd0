package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/rizkyyjun/sportmate/internal/models"
)

// UsersRepository defines what the app layer needs from the repository.
type UsersRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// App handles user lookups for the other domains.
type App struct {
	repo UsersRepository
}

// NewApp creates a new users App.
func NewApp(repo UsersRepository) *App {
	return &App{repo: repo}
}

// GetUser retrieves a user by ID.
func (a *App) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return a.repo.GetUser(ctx, id)
}
