package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"solifin/internal/lifecycle"
	"solifin/internal/middleware"
	"solifin/internal/models"
)

type mockPageRepo struct{}

func (mockPageRepo) GetOrCreateByOwner(ctx context.Context, ownerID string) (*models.Page, error) {
	return &models.Page{ID: "page-" + ownerID, OwnerID: ownerID, Subscribers: 3}, nil
}

func TestMyPageGroupsOwnPublications(t *testing.T) {
	mine := storedAd(models.ApprovalStatusRejected, models.AvailabilityAvailable)
	other := storedAd(models.ApprovalStatusApproved, models.AvailabilityAvailable)
	other.ID, other.OwnerID = "ad-2", "u2"
	job := &models.Publication{ID: "job-1", Type: models.PublicationTypeJobOffer, OwnerID: "u1",
		ApprovalStatus: models.ApprovalStatusPending, Availability: models.AvailabilityAvailable}
	repo := newMockPublicationRepo(mine, other, job)

	h := NewMyPageHandler(mockPageRepo{}, repo, discardLogger())
	r := chi.NewRouter()
	r.Get("/my-page", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/my-page", nil)
	req = req.WithContext(middleware.WithActor(req.Context(), lifecycle.Actor{UserID: "u1"}))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	ads, _ := resp["advertisements"].([]any)
	jobs, _ := resp["job_offers"].([]any)
	opps, ok := resp["business_opportunities"].([]any)
	if len(ads) != 1 || len(jobs) != 1 || !ok || len(opps) != 0 {
		t.Fatalf("unexpected page %s", w.Body.String())
	}
	page, _ := resp["page"].(map[string]any)
	if page["id"] != "page-u1" {
		t.Fatalf("unexpected page meta %v", page)
	}
}

func TestMyPageRequiresActor(t *testing.T) {
	h := NewMyPageHandler(mockPageRepo{}, newMockPublicationRepo(), discardLogger())
	w := httptest.NewRecorder()
	h.Get(w, httptest.NewRequest(http.MethodGet, "/my-page", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}
