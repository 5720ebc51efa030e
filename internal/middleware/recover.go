package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/logger"
	"github.com/abiodunmale/todoapi/internal/models"
)

// Recover converts a panic into a 500 response. The full detail is always
// logged; the stack reaches the client only in development mode.
type Recover struct {
	devMode bool
	log     zerolog.Logger
}

func NewRecover(devMode bool) *Recover {
	return &Recover{
		devMode: devMode,
		log:     logger.New("recover"),
	}
}

func (m *Recover) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				stack := debug.Stack()
				m.log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", stack).
					Msg("panic recovered")

				resp := models.ErrorResponse{Message: "Internal Server Error"}
				if m.devMode {
					resp.Stack = string(stack)
				}
				respondJSON(w, http.StatusInternalServerError, resp)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
