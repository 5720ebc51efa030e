package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/abiodunmale/todoapi/internal/logger"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestLogger logs each request at debug level with method, path, status
// and latency.
type RequestLogger struct {
	log zerolog.Logger
}

func NewRequestLogger() *RequestLogger {
	return &RequestLogger{
		log: logger.New("http"),
	}
}

func (m *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		m.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("latency", time.Since(start)).
			Str("client_ip", GetClientIP(r)).
			Msg("request")
	})
}
