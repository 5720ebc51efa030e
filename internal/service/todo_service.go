package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/cache"
	"github.com/abiodunmale/todoapi/internal/logger"
	"github.com/abiodunmale/todoapi/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	cachePopulateTimeout = 5 * time.Second
)

// TodoStore is the storage contract the todo service depends on. Tests
// substitute storage.MemoryTodoStore.
type TodoStore interface {
	Create(ctx context.Context, userID, title string) (*models.Todo, error)
	GetByID(ctx context.Context, todoID, userID string) (*models.Todo, error)
	Update(ctx context.Context, todoID, userID string, patch models.TodoPatch) (*models.Todo, error)
	Delete(ctx context.Context, todoID, userID string) error
	List(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error)
	Count(ctx context.Context, userID string) (int, error)
}

// PageCache is the response-cache contract. A nil cache disables caching;
// every operation must behave identically without it.
type PageCache interface {
	GetPage(ctx context.Context, key string, dest interface{}) (bool, error)
	SetPage(ctx context.Context, key string, value interface{}) error
	InvalidateUser(ctx context.Context, userID string) error
}

type TodoService struct {
	todos TodoStore
	pages PageCache
	log   zerolog.Logger
}

func NewTodoService(todos TodoStore, pages PageCache) *TodoService {
	return &TodoService{
		todos: todos,
		pages: pages,
		log:   logger.New("todo-service"),
	}
}

// List returns one recent-first page of the user's todos. Cached pages are
// served verbatim; on a miss the page is assembled from storage and the cache
// is repopulated in the background so a slow or down redis never delays the
// response.
func (s *TodoService) List(ctx context.Context, userID string, page, limit int) (*models.TodoPage, error) {
	page, limit = clampPaging(page, limit)
	key := cache.PageKey(userID, page, limit)

	if s.pages != nil {
		var cached models.TodoPage
		hit, err := s.pages.GetPage(ctx, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	offset := (page - 1) * limit

	todos, err := s.todos.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.todos.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &models.TodoPage{
		Todos: todos,
		Pagination: models.Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages(total, limit),
			TotalItems:   total,
			ItemsPerPage: limit,
		},
	}

	if s.pages != nil {
		go s.populateCache(key, *result)
	}

	return result, nil
}

func (s *TodoService) populateCache(key string, page models.TodoPage) {
	ctx, cancel := context.WithTimeout(context.Background(), cachePopulateTimeout)
	defer cancel()

	if err := s.pages.SetPage(ctx, key, page); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("cache populate failed")
	}
}

func (s *TodoService) Create(ctx context.Context, userID, title string) (*models.Todo, error) {
	todo, err := s.todos.Create(ctx, userID, title)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return todo, nil
}

func (s *TodoService) Update(ctx context.Context, todoID, userID string, patch models.TodoPatch) (*models.Todo, error) {
	todo, err := s.todos.Update(ctx, todoID, userID, patch)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, userID)
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, todoID, userID string) error {
	if err := s.todos.Delete(ctx, todoID, userID); err != nil {
		return err
	}

	s.invalidate(ctx, userID)
	return nil
}

// GetByID bypasses the cache; single-item reads are cheap enough to always
// hit storage. A syntactically invalid id is reported as such rather than as
// a missing todo.
func (s *TodoService) GetByID(ctx context.Context, todoID, userID string) (*models.Todo, error) {
	if err := uuid.Validate(todoID); err != nil {
		return nil, apperrors.ErrInvalidID
	}

	return s.todos.GetByID(ctx, todoID, userID)
}

// invalidate drops every cached page for the user after a successful write.
// An invalidation failure is logged, not surfaced: the entry TTL bounds the
// staleness, and the write itself already succeeded.
func (s *TodoService) invalidate(ctx context.Context, userID string) {
	if s.pages == nil {
		return
	}

	if err := s.pages.InvalidateUser(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cache invalidation failed")
	}
}

func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	return (total + limit - 1) / limit
}
