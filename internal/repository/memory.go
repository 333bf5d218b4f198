package repository

import (
	"context"
	"sync"

	"codeshare-backend/internal/models"

	"github.com/google/uuid"
)

// InMemoryStore is a Store kept in process memory.
type InMemoryStore struct {
	mu              sync.RWMutex
	usersByID       map[uuid.UUID]*models.User
	usersByUsername map[string]*models.User
	files           []*models.File
	storedNames     map[string]struct{}
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		usersByID:       make(map[uuid.UUID]*models.User),
		usersByUsername: make(map[string]*models.User),
		storedNames:     make(map[string]struct{}),
	}
}

func (s *InMemoryStore) Ping(ctx context.Context) error { return nil }

func (s *InMemoryStore) Close() {}

// --- UserStore ---

func (s *InMemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[user.Username]; exists {
		return ErrDuplicate
	}

	u := *user
	s.usersByID[u.ID] = &u
	s.usersByUsername[u.Username] = &u
	return nil
}

func (s *InMemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

func (s *InMemoryStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.usersByID[id]
	if !exists {
		return nil, ErrNotFound
	}
	u := *user
	return &u, nil
}

// --- FileStore ---

func (s *InMemoryStore) CreateFile(ctx context.Context, file *models.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByID[file.OwnerID]; !exists {
		return ErrNotFound
	}
	if _, exists := s.storedNames[file.StoredName]; exists {
		return ErrDuplicate
	}

	f := *file
	s.files = append(s.files, &f)
	s.storedNames[f.StoredName] = struct{}{}
	return nil
}

func (s *InMemoryStore) GetFilesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := []*models.File{}
	for _, f := range s.files {
		if f.OwnerID == ownerID {
			c := *f
			files = append(files, &c)
		}
	}
	return files, nil
}

func (s *InMemoryStore) GetFileByCode(ctx context.Context, code string) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// newest first
	for i := len(s.files) - 1; i >= 0; i-- {
		if s.files[i].Code == code {
			c := *s.files[i]
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) DeleteFileByOwner(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.ID == fileID && f.OwnerID == ownerID {
			s.files = append(s.files[:i], s.files[i+1:]...)
			delete(s.storedNames, f.StoredName)
			return f, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.files {
		if f.Code == code {
			return true, nil
		}
	}
	return false, nil
}
