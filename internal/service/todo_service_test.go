package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/cache"
	"github.com/abiodunmale/todoapi/internal/models"
	"github.com/abiodunmale/todoapi/internal/storage"
)

// fakePageCache mirrors the redis page cache in a map, including
// prefix-scoped invalidation.
type fakePageCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakePageCache() *fakePageCache {
	return &fakePageCache{entries: make(map[string]string)}
}

func (c *fakePageCache) GetPage(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal([]byte(val), dest)
}

func (c *fakePageCache) SetPage(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = string(data)
	return nil
}

func (c *fakePageCache) InvalidateUser(ctx context.Context, userID string) error {
	prefix := fmt.Sprintf("todos:user:%s:", userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
	return nil
}

func (c *fakePageCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func (c *fakePageCache) waitFor(t *testing.T, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.has(key) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("cache entry %s never populated", key)
}

func newTodoService(pages PageCache) *TodoService {
	return NewTodoService(storage.NewMemoryTodoStore(), pages)
}

func seedTodos(t *testing.T, svc *TodoService, userID string, titles ...string) []*models.Todo {
	t.Helper()
	created := make([]*models.Todo, 0, len(titles))
	for _, title := range titles {
		todo, err := svc.Create(context.Background(), userID, title)
		if err != nil {
			t.Fatalf("failed to seed todo: %v", err)
		}
		created = append(created, todo)
	}
	return created
}

func TestCreate_DefaultsToIncomplete(t *testing.T) {
	svc := newTodoService(nil)

	todo, err := svc.Create(context.Background(), "user-1", "Buy milk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if todo.Completed {
		t.Error("new todo must not be completed")
	}
	if todo.UserID != "user-1" {
		t.Errorf("expected owner 'user-1', got '%s'", todo.UserID)
	}
	if todo.Title != "Buy milk" {
		t.Errorf("expected title 'Buy milk', got '%s'", todo.Title)
	}
}

func TestList_PaginationMath(t *testing.T) {
	svc := newTodoService(nil)
	seedTodos(t, svc, "user-1", "t1", "t2", "t3", "t4", "t5")

	page, err := svc.List(context.Background(), "user-1", 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Todos) != 2 {
		t.Errorf("expected 2 items, got %d", len(page.Todos))
	}
	if page.Pagination.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", page.Pagination.TotalPages)
	}
	if page.Pagination.TotalItems != 5 {
		t.Errorf("expected 5 total items, got %d", page.Pagination.TotalItems)
	}
	if page.Pagination.ItemsPerPage != 2 {
		t.Errorf("expected 2 items per page, got %d", page.Pagination.ItemsPerPage)
	}
}

func TestList_LastPartialPage(t *testing.T) {
	svc := newTodoService(nil)
	seedTodos(t, svc, "user-1", "t1", "t2", "t3", "t4", "t5")

	page, err := svc.List(context.Background(), "user-1", 3, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Todos) != 1 {
		t.Errorf("expected 1 item on the last page, got %d", len(page.Todos))
	}
}

func TestList_OutOfRangePageIsEmptyNotError(t *testing.T) {
	svc := newTodoService(nil)
	seedTodos(t, svc, "user-1", "t1", "t2")

	page, err := svc.List(context.Background(), "user-1", 9, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Todos) != 0 {
		t.Errorf("expected 0 items, got %d", len(page.Todos))
	}
	if page.Pagination.CurrentPage != 9 {
		t.Errorf("expected current page 9, got %d", page.Pagination.CurrentPage)
	}
}

func TestList_ClampsPageAndLimit(t *testing.T) {
	svc := newTodoService(nil)
	seedTodos(t, svc, "user-1", "t1")

	page, err := svc.List(context.Background(), "user-1", -3, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.CurrentPage != 1 {
		t.Errorf("expected page clamped to 1, got %d", page.Pagination.CurrentPage)
	}
	if page.Pagination.ItemsPerPage != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, page.Pagination.ItemsPerPage)
	}

	page, err = svc.List(context.Background(), "user-1", 1, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Pagination.ItemsPerPage != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, page.Pagination.ItemsPerPage)
	}
}

func TestList_RecentFirst(t *testing.T) {
	svc := newTodoService(nil)
	seedTodos(t, svc, "user-1", "oldest", "middle", "newest")

	page, err := svc.List(context.Background(), "user-1", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Todos) != 3 {
		t.Fatalf("expected 3 items, got %d", len(page.Todos))
	}
	if page.Todos[0].Title != "newest" || page.Todos[2].Title != "oldest" {
		t.Errorf("expected recent-first ordering, got %s..%s", page.Todos[0].Title, page.Todos[2].Title)
	}
}

func TestList_PopulatesCacheAfterMiss(t *testing.T) {
	pages := newFakePageCache()
	svc := newTodoService(pages)
	seedTodos(t, svc, "user-1", "t1")

	if _, err := svc.List(context.Background(), "user-1", 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pages.waitFor(t, cache.PageKey("user-1", 1, 10))
}

func TestList_ServesCachedPageVerbatim(t *testing.T) {
	pages := newFakePageCache()
	svc := newTodoService(pages)

	planted := models.TodoPage{
		Todos: []models.Todo{{ID: "cached-id", Title: "cached title", UserID: "user-1"}},
		Pagination: models.Pagination{
			CurrentPage: 1, TotalPages: 1, TotalItems: 1, ItemsPerPage: 10,
		},
	}
	if err := pages.SetPage(context.Background(), cache.PageKey("user-1", 1, 10), planted); err != nil {
		t.Fatalf("failed to plant cache entry: %v", err)
	}

	page, err := svc.List(context.Background(), "user-1", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Todos) != 1 || page.Todos[0].ID != "cached-id" {
		t.Error("expected the cached payload to be served without touching storage")
	}
}

func TestWrites_InvalidateCachedPages(t *testing.T) {
	pages := newFakePageCache()
	svc := newTodoService(pages)
	created := seedTodos(t, svc, "user-1", "Buy milk", "Walk dog")

	listOnce := func() *models.TodoPage {
		page, err := svc.List(context.Background(), "user-1", 1, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return page
	}

	first := listOnce()
	if first.Pagination.TotalItems != 2 || first.Pagination.TotalPages != 2 {
		t.Fatalf("expected 2 items over 2 pages, got %+v", first.Pagination)
	}
	pages.waitFor(t, cache.PageKey("user-1", 1, 1))

	// "Walk dog" is newest so it leads page 1; delete it and the cached page
	// must not be served again.
	if err := svc.Delete(context.Background(), created[1].ID, "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := listOnce()
	if second.Pagination.TotalItems != 1 {
		t.Errorf("expected 1 item after delete, got %d", second.Pagination.TotalItems)
	}
	if len(second.Todos) != 1 || second.Todos[0].Title != "Buy milk" {
		t.Errorf("expected 'Buy milk' after delete, got %+v", second.Todos)
	}
}

func TestWrites_DoNotInvalidateOtherUsers(t *testing.T) {
	pages := newFakePageCache()
	svc := newTodoService(pages)
	seedTodos(t, svc, "user-2", "other user todo")

	if _, err := svc.List(context.Background(), "user-2", 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	key := cache.PageKey("user-2", 1, 10)
	pages.waitFor(t, key)

	seedTodos(t, svc, "user-1", "mine")

	if !pages.has(key) {
		t.Error("a write by user-1 must not invalidate user-2's cached pages")
	}
}

func TestOwnership_UniformNotFound(t *testing.T) {
	svc := newTodoService(nil)
	created := seedTodos(t, svc, "user-a", "private")
	ctx := context.Background()

	if _, err := svc.GetByID(ctx, created[0].ID, "user-b"); !apperrors.IsNotFound(err) {
		t.Errorf("expected ErrNotFound on cross-owner get, got %v", err)
	}

	title := "stolen"
	if _, err := svc.Update(ctx, created[0].ID, "user-b", models.TodoPatch{Title: &title}); !apperrors.IsNotFound(err) {
		t.Errorf("expected ErrNotFound on cross-owner update, got %v", err)
	}

	if err := svc.Delete(ctx, created[0].ID, "user-b"); !apperrors.IsNotFound(err) {
		t.Errorf("expected ErrNotFound on cross-owner delete, got %v", err)
	}

	// The todo is untouched.
	todo, err := svc.GetByID(ctx, created[0].ID, "user-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if todo.Title != "private" {
		t.Errorf("expected title 'private', got '%s'", todo.Title)
	}
}

func TestGetByID_InvalidIDFormat(t *testing.T) {
	svc := newTodoService(nil)

	_, err := svc.GetByID(context.Background(), "not-a-uuid", "user-1")
	if !apperrors.IsInvalidID(err) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}

func TestUpdate_PartialPatch(t *testing.T) {
	svc := newTodoService(nil)
	created := seedTodos(t, svc, "user-1", "original")
	ctx := context.Background()

	completed := true
	updated, err := svc.Update(ctx, created[0].ID, "user-1", models.TodoPatch{Completed: &completed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Completed {
		t.Error("expected completed true")
	}
	if updated.Title != "original" {
		t.Errorf("patch without title must keep it, got '%s'", updated.Title)
	}
}

func TestUpdate_EmptyPatchIsNoOp(t *testing.T) {
	svc := newTodoService(nil)
	created := seedTodos(t, svc, "user-1", "original")

	updated, err := svc.Update(context.Background(), created[0].ID, "user-1", models.TodoPatch{})
	if err != nil {
		t.Fatalf("empty patch must not error: %v", err)
	}
	if updated.Title != "original" || updated.Completed {
		t.Errorf("empty patch must change nothing, got %+v", updated)
	}
}

func TestDelete_MissingID(t *testing.T) {
	svc := newTodoService(nil)

	err := svc.Delete(context.Background(), "8c2e8e3a-9f5e-4a1f-8c88-111111111111", "user-1")
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
