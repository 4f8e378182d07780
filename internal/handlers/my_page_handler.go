package handlers

import (
	"log/slog"
	"net/http"

	"solifin/internal/interfaces"
	"solifin/internal/logging"
	"solifin/internal/models"
)

type MyPageHandler struct {
	pages        interfaces.PageRepository
	publications interfaces.PublicationRepository
	logger       *slog.Logger
}

func NewMyPageHandler(pages interfaces.PageRepository, publications interfaces.PublicationRepository, logger *slog.Logger) *MyPageHandler {
	return &MyPageHandler{pages: pages, publications: publications, logger: logger.With("component", "my_page")}
}

// Get returns the caller's page with all of their publications, newest
// first, whatever their status.
// @Tags MyPage
// @Summary Get my page
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.MyPage
// @Failure 401 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/my-page [get]
func (h *MyPageHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}

	page, err := h.pages.GetOrCreateByOwner(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to load page", "user_id", actor.UserID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to load page")
		return
	}

	out := models.MyPage{
		Page:                  *page,
		Advertisements:        []models.Publication{},
		JobOffers:             []models.Publication{},
		BusinessOpportunities: []models.Publication{},
	}
	for _, t := range models.PublicationTypes {
		items, err := h.publications.List(r.Context(), interfaces.PublicationFilter{Type: t, OwnerID: actor.UserID})
		if err != nil {
			h.logger.Error("failed to list publications", "user_id", actor.UserID, "type", string(t), logging.Err(err))
			writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to load page")
			return
		}
		for _, p := range items {
			out.Add(p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}
