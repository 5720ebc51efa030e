package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/abiodunmale/todoapi/internal/models"
)

func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, models.ErrorResponse{Message: message})
}

func RespondValidationErrors(w http.ResponseWriter, errs []models.FieldError) {
	RespondJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Message: "Validation failed",
		Errors:  errs,
	})
}
