package routes

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi/v5"

	"solifin/internal/handlers"
	"solifin/internal/interfaces"
	"solifin/internal/logging"
	"solifin/internal/middleware"
	"solifin/internal/models"
	"solifin/internal/repository"
	"solifin/internal/schema"
)

// RegisterPublicationRoutes mounts one collection per publication type.
// Updates are accepted as PUT or as POST with _method=PUT.
func RegisterPublicationRoutes(
	router chi.Router,
	db *sql.DB,
	registry *schema.Registry,
	store interfaces.AttachmentStore,
	notifier interfaces.ModerationNotifier,
	logger *slog.Logger,
) {
	repo := repository.NewPublicationRepository(db)

	for _, t := range models.PublicationTypes {
		h, err := handlers.NewPublicationHandler(t, registry, repo, store, notifier, logger)
		if err != nil {
			logger.Error("skipping publication routes", "type", string(t), logging.Err(err))
			continue
		}
		logger.Debug("registering publication routes", "resource", t.Resource())

		router.Route("/"+t.Resource(), func(r chi.Router) {
			r.With(middleware.RequireAdmin).Get("/", h.List)
			r.Post("/", h.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Put("/", h.Update)
				r.Delete("/", h.Delete)
				r.Patch("/status", h.UpdateStatus)
				r.Patch("/state", h.UpdateState)
			})
		})
	}
}
