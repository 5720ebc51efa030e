package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/apperrors"
	"github.com/abiodunmale/todoapi/internal/logger"
	"github.com/abiodunmale/todoapi/internal/service"
	"github.com/abiodunmale/todoapi/internal/validation"
)

type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         logger.New("auth-handler"),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req validation.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Normalize()
	if errs := validation.Check(req); errs != nil {
		RespondValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.IsAlreadyExists(err) {
			RespondError(w, http.StatusBadRequest, "User already exists")
			return
		}
		h.log.Error().Err(err).Msg("failed to register user")
		RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	RespondJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req validation.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Normalize()
	if errs := validation.Check(req); errs != nil {
		RespondValidationErrors(w, errs)
		return
	}

	resp, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.IsInvalidCredentials(err) {
			RespondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.log.Error().Err(err).Msg("failed to login")
		RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	RespondJSON(w, http.StatusOK, resp)
}
