package routes

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"solifin/internal/handlers"
	"solifin/internal/repository"
)

func RegisterMyPageRoutes(router chi.Router, db *sql.DB, logger *slog.Logger) {
	h := handlers.NewMyPageHandler(repository.NewPageRepository(db), repository.NewPublicationRepository(db), logger)
	router.Get("/my-page", h.Get)
}
