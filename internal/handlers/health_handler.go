package handlers

import (
	"net/http"
	"time"
)

func Health(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"service": "todo-api",
		"time":    time.Now().Format(time.RFC3339),
	})
}
