package repository

import (
	"context"
	"errors"

	"codeshare-backend/internal/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint is violated.
	ErrDuplicate = errors.New("record already exists")
)

// UserStore defines persistence for users.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FileStore defines persistence for file metadata.
type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	GetFilesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error)
	// GetFileByCode returns the most recently created file with the code.
	GetFileByCode(ctx context.Context, code string) (*models.File, error)
	// DeleteFileByOwner removes the file only if it belongs to ownerID and
	// returns the removed record.
	DeleteFileByOwner(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// Store is the aggregate used for dependency injection.
type Store interface {
	UserStore
	FileStore
	Ping(ctx context.Context) error
	Close()
}
