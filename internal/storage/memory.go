package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/models"
	usermodel "github.com/abiodunmale/todoapi/internal/models/user"
)

// MemoryUserStore is an in-memory substitute for UserStorage. It keeps the
// same contracts (unique email, nil-on-missing lookup) so service and handler
// tests run without a database.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*usermodel.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users: make(map[string]*usermodel.User),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, email, passwordHash string) (*usermodel.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return nil, apperrors.ErrAlreadyExists
		}
	}

	now := time.Now()
	user := &usermodel.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user

	copied := *user
	return &copied, nil
}

func (s *MemoryUserStore) GetByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}

	return nil, nil
}

// MemoryTodoStore mirrors TodoStorage, including owner scoping and the
// uniform not-found for missing and foreign-owned ids.
type MemoryTodoStore struct {
	mu    sync.RWMutex
	todos map[string]*models.Todo
	seq   int
}

func NewMemoryTodoStore() *MemoryTodoStore {
	return &MemoryTodoStore{
		todos: make(map[string]*models.Todo),
	}
}

func (s *MemoryTodoStore) Create(ctx context.Context, userID, title string) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Monotonic timestamps keep recent-first ordering stable even when two
	// creates land in the same wall-clock nanosecond.
	s.seq++
	now := time.Now().Add(time.Duration(s.seq) * time.Nanosecond)

	todo := &models.Todo{
		ID:        uuid.New().String(),
		Title:     title,
		Completed: false,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.todos[todo.ID] = todo

	copied := *todo
	return &copied, nil
}

func (s *MemoryTodoStore) GetByID(ctx context.Context, todoID, userID string) (*models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	todo, exists := s.todos[todoID]
	if !exists || todo.UserID != userID {
		return nil, apperrors.ErrNotFound
	}

	copied := *todo
	return &copied, nil
}

func (s *MemoryTodoStore) Update(ctx context.Context, todoID, userID string, patch models.TodoPatch) (*models.Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, exists := s.todos[todoID]
	if !exists || todo.UserID != userID {
		return nil, apperrors.ErrNotFound
	}

	if patch.Title != nil {
		todo.Title = *patch.Title
	}
	if patch.Completed != nil {
		todo.Completed = *patch.Completed
	}
	todo.UpdatedAt = time.Now()

	copied := *todo
	return &copied, nil
}

func (s *MemoryTodoStore) Delete(ctx context.Context, todoID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, exists := s.todos[todoID]
	if !exists || todo.UserID != userID {
		return apperrors.ErrNotFound
	}

	delete(s.todos, todoID)
	return nil
}

func (s *MemoryTodoStore) List(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owned := make([]models.Todo, 0)
	for _, todo := range s.todos {
		if todo.UserID == userID {
			owned = append(owned, *todo)
		}
	}

	sort.Slice(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})

	if offset >= len(owned) {
		return []models.Todo{}, nil
	}

	end := offset + limit
	if end > len(owned) {
		end = len(owned)
	}

	return owned[offset:end], nil
}

func (s *MemoryTodoStore) Count(ctx context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, todo := range s.todos {
		if todo.UserID == userID {
			count++
		}
	}

	return count, nil
}
