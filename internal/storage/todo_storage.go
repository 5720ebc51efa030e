package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/database"
	"github.com/abiodunmale/todoapi/internal/models"
)

type TodoStorage struct {
	db *database.DBManager
}

func NewTodoStorage(db *database.DBManager) *TodoStorage {
	return &TodoStorage{db: db}
}

func (s *TodoStorage) Create(ctx context.Context, userID, title string) (*models.Todo, error) {
	todoID := uuid.New().String()
	now := time.Now()

	query := `
		INSERT INTO todos (id, title, completed, user_id, created_at, updated_at)
		VALUES ($1, $2, false, $3, $4, $5)
		RETURNING id, title, completed, user_id, created_at, updated_at
	`

	var todo models.Todo
	err := s.db.Write().QueryRow(ctx, query,
		todoID,
		title,
		userID,
		now,
		now,
	).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	return &todo, nil
}

// GetByID fetches a todo matching both id and owner. A wrong id and an id
// owned by someone else are indistinguishable: both return ErrNotFound.
func (s *TodoStorage) GetByID(ctx context.Context, todoID, userID string) (*models.Todo, error) {
	query := `
		SELECT id, title, completed, user_id, created_at, updated_at
		FROM todos
		WHERE id = $1 AND user_id = $2
	`

	var todo models.Todo
	err := s.db.Read().QueryRow(ctx, query, todoID, userID).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return &todo, nil
}

// Update applies the patch in a single statement keyed on id and owner, so
// ownership filtering and the write cannot race.
func (s *TodoStorage) Update(ctx context.Context, todoID, userID string, patch models.TodoPatch) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET title = COALESCE($3::text, title),
		    completed = COALESCE($4::boolean, completed),
		    updated_at = $5
		WHERE id = $1 AND user_id = $2
		RETURNING id, title, completed, user_id, created_at, updated_at
	`

	var todo models.Todo
	err := s.db.Write().QueryRow(ctx, query,
		todoID,
		userID,
		patch.Title,
		patch.Completed,
		time.Now(),
	).Scan(
		&todo.ID,
		&todo.Title,
		&todo.Completed,
		&todo.UserID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	return &todo, nil
}

func (s *TodoStorage) Delete(ctx context.Context, todoID, userID string) error {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2`

	tag, err := s.db.Write().Exec(ctx, query, todoID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (s *TodoStorage) List(ctx context.Context, userID string, limit, offset int) ([]models.Todo, error) {
	query := `
		SELECT id, title, completed, user_id, created_at, updated_at
		FROM todos
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Read().Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]models.Todo, 0, limit)
	for rows.Next() {
		var todo models.Todo
		err := rows.Scan(
			&todo.ID,
			&todo.Title,
			&todo.Completed,
			&todo.UserID,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, nil
}

func (s *TodoStorage) Count(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM todos WHERE user_id = $1`

	var count int
	if err := s.db.Read().QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}

	return count, nil
}
