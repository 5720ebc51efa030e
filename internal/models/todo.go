package models

import "time"

type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoPatch carries an update payload. Nil fields are left untouched; an
// all-nil patch is a permitted no-op.
type TodoPatch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// TodoPage is the paginated list response. It is also the value serialized
// into the response cache, so its shape must stay stable across the cache
// round-trip.
type TodoPage struct {
	Todos      []Todo     `json:"todos"`
	Pagination Pagination `json:"pagination"`
}

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}
