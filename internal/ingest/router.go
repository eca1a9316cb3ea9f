package ingest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ingestguard/ingestguard/internal/logger"
	"github.com/ingestguard/ingestguard/internal/session"
)

// NewRouter wires the ingest HTTP surface: an unauthenticated health probe
// and passphrase-validation endpoint, and a session-authenticated group for
// upload and the listing/deletion API.
//
// Routes:
//   - GET  /health                     - liveness probe
//   - POST /api/validate-passphrase    - exchange (email, passphrase) for a session token
//   - POST /api/upload                 - authenticated upload (multipart: file, email, passphrase)
//   - GET  /api/files                  - authenticated listing
//   - DELETE /api/files                - authenticated deletion
func NewRouter(h *Handlers, sessions *session.Registry) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/validate-passphrase", h.ValidatePassphrase)

		r.Group(func(r chi.Router) {
			r.Use(SessionAuth(sessions))

			r.Post("/upload", h.Upload)
			r.Get("/files", h.Files)
			r.Delete("/files", h.DeleteFile)
		})
	})

	return r
}

// requestLogger logs each request's start and completion using the internal
// structured logger. Healthcheck requests log at DEBUG to avoid noise.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		logArgs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", duration.String(),
		}

		if r.URL.Path == "/health" {
			logger.Debug("ingest request completed", logArgs...)
		} else {
			logger.Info("ingest request completed", logArgs...)
		}
	})
}
