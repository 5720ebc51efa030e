package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abiodunmale/todoapi/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type CreateTodoRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// UpdateTodoRequest allows a structurally empty patch; a no-op update is
// permitted and harmless.
type UpdateTodoRequest struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Completed *bool   `json:"completed"`
}

// Normalize lowercases and trims the email before it reaches the auth
// service, so "A@X.com " and "a@x.com" are the same account.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r UpdateTodoRequest) Patch() models.TodoPatch {
	return models.TodoPatch{
		Title:     r.Title,
		Completed: r.Completed,
	}
}

// Check validates the payload and returns one entry per violated field.
func Check(payload interface{}) []models.FieldError {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.FieldError{{Path: "", Message: err.Error()}}
	}

	fieldErrs := make([]models.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs = append(fieldErrs, models.FieldError{
			Path:    jsonPath(fe),
			Message: messageFor(fe),
		})
	}

	return fieldErrs
}

func jsonPath(fe validator.FieldError) string {
	// Namespace looks like "RegisterRequest.Email"; clients want "email".
	parts := strings.Split(fe.Namespace(), ".")
	field := parts[len(parts)-1]
	return strings.ToLower(field[:1]) + field[1:]
}

func messageFor(fe validator.FieldError) string {
	path := jsonPath(fe)

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", path)
	case "email":
		return "Invalid email format"
	case "min":
		if fe.Kind().String() == "string" || fe.Kind().String() == "ptr" {
			return fmt.Sprintf("%s must be at least %s characters", path, fe.Param())
		}
		return fmt.Sprintf("%s is too small", path)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", path, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", path)
	}
}
