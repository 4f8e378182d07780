// internal/routes/routes.go
package routes

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"solifin/internal/config"
	"solifin/internal/interfaces"
	"solifin/internal/middleware"
	"solifin/internal/schema"
)

// Deps are the collaborators shared by the API handlers.
type Deps struct {
	Store    interfaces.AttachmentStore
	Notifier interfaces.ModerationNotifier
	Logger   *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func SetupRoutes(db *sql.DB, cfg *config.Config, deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.MethodOverride)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "SOLIFIN publications API", "docs": "/swagger/index.html"})
	})

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		dbStatus := map[string]any{"status": "ok"}
		status := http.StatusOK
		if err := db.PingContext(ctx); err != nil {
			dbStatus = map[string]any{"status": "down", "error": err.Error()}
			status = http.StatusServiceUnavailable
		}
		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]any{"status": overall, "db": dbStatus})
	})

	RegisterSwaggerRoutes(r)

	registry := schema.NewRegistry()

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JWTAuth(cfg.JWTSecret))

		RegisterMyPageRoutes(r, db, logger)
		RegisterPublicationRoutes(r, db, registry, deps.Store, deps.Notifier, logger)
	})

	return r
}
