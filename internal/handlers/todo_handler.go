package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/logger"
	"github.com/abiodunmale/todoapi/internal/middleware"
	"github.com/abiodunmale/todoapi/internal/service"
	"github.com/abiodunmale/todoapi/internal/validation"
)

type TodoHandler struct {
	todoService *service.TodoService
	log         zerolog.Logger
}

func NewTodoHandler(todoService *service.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
		log:         logger.New("todo-handler"),
	}
}

// List handles GET /todos?page=&limit=. Out-of-range values are clamped by
// the service, never rejected.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.todoService.List(r.Context(), userID, page, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list todos")
		RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, result)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Check(req); errs != nil {
		RespondValidationErrors(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())

	todo, err := h.todoService.Create(r.Context(), userID, req.Title)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create todo")
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, todo)
}

func (h *TodoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	todoID := r.PathValue("id")

	todo, err := h.todoService.GetByID(r.Context(), todoID, userID)
	if err != nil {
		switch {
		case apperrors.IsInvalidID(err):
			RespondError(w, http.StatusBadRequest, "Invalid todo ID format")
		case apperrors.IsNotFound(err):
			RespondError(w, http.StatusNotFound, "Todo not found")
		default:
			h.log.Error().Err(err).Msg("failed to get todo")
			RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	RespondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req validation.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Check(req); errs != nil {
		RespondValidationErrors(w, errs)
		return
	}

	userID := middleware.GetUserID(r.Context())
	todoID := r.PathValue("id")

	todo, err := h.todoService.Update(r.Context(), todoID, userID, req.Patch())
	if err != nil {
		if apperrors.IsNotFound(err) {
			RespondError(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to update todo")
		RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, todo)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	todoID := r.PathValue("id")

	if err := h.todoService.Delete(r.Context(), todoID, userID); err != nil {
		if apperrors.IsNotFound(err) {
			RespondError(w, http.StatusNotFound, "Todo not found")
			return
		}
		h.log.Error().Err(err).Msg("failed to delete todo")
		RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
