package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"solifin/internal/attachment"
	"solifin/internal/interfaces"
	"solifin/internal/lifecycle"
	"solifin/internal/middleware"
	"solifin/internal/models"
	"solifin/internal/schema"
	"solifin/internal/submission"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type mockPublicationRepo struct {
	mu      sync.Mutex
	items   map[string]*models.Publication
	filters []interfaces.PublicationFilter
	updates int
}

var _ interfaces.PublicationRepository = (*mockPublicationRepo)(nil)

func newMockPublicationRepo(ps ...*models.Publication) *mockPublicationRepo {
	m := &mockPublicationRepo{items: map[string]*models.Publication{}}
	for _, p := range ps {
		m.items[p.ID] = p
	}
	return m
}

func clonePublication(p *models.Publication) *models.Publication {
	c := *p
	c.Attachments = append([]models.Attachment(nil), p.Attachments...)
	c.Attributes = map[string]any{}
	for k, v := range p.Attributes {
		c.Attributes[k] = v
	}
	return &c
}

func (m *mockPublicationRepo) Create(ctx context.Context, p *models.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	m.items[p.ID] = clonePublication(p)
	return nil
}

func (m *mockPublicationRepo) GetByID(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok || p.Type != t {
		return nil, sql.ErrNoRows
	}
	return clonePublication(p), nil
}

func (m *mockPublicationRepo) matching(f interfaces.PublicationFilter) []models.Publication {
	var out []models.Publication
	for _, p := range m.items {
		if p.Type != f.Type || (f.OwnerID != "" && p.OwnerID != f.OwnerID) || (f.Status != "" && p.ApprovalStatus != f.Status) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func (m *mockPublicationRepo) List(ctx context.Context, f interfaces.PublicationFilter) ([]models.Publication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	return m.matching(f), nil
}

func (m *mockPublicationRepo) Count(ctx context.Context, f interfaces.PublicationFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.matching(f)), nil
}

func (m *mockPublicationRepo) Update(ctx context.Context, p *models.Publication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[p.ID]; !ok {
		return sql.ErrNoRows
	}
	m.updates++
	m.items[p.ID] = clonePublication(p)
	return nil
}

func (m *mockPublicationRepo) Delete(ctx context.Context, t models.PublicationType, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

func (m *mockPublicationRepo) get(id string) *models.Publication {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[id]
}

type fakeStore struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
}

func (s *fakeStore) Put(ctx context.Context, key string, f *attachment.File) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts = append(s.puts, key)
	return "https://cdn.test/" + key, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes = append(s.deletes, key)
	return nil
}

type recordingNotifier struct {
	moderated []*models.Publication
}

func (n *recordingNotifier) PublicationModerated(ctx context.Context, p *models.Publication) error {
	n.moderated = append(n.moderated, p)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type handlerFixture struct {
	repo     *mockPublicationRepo
	store    *fakeStore
	notifier *recordingNotifier
	registry *schema.Registry
	router   chi.Router
}

func newFixture(t *testing.T, actor lifecycle.Actor, ps ...*models.Publication) *handlerFixture {
	t.Helper()
	f := &handlerFixture{
		repo:     newMockPublicationRepo(ps...),
		store:    &fakeStore{},
		notifier: &recordingNotifier{},
		registry: schema.NewRegistry(),
	}
	h, err := NewPublicationHandler(models.PublicationTypeAdvertisement, f.registry, f.repo, f.store, f.notifier, discardLogger())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	r := chi.NewRouter()
	r.Use(middleware.MethodOverride)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithActor(req.Context(), actor)))
		})
	})
	r.Get("/advertisements", h.List)
	r.Post("/advertisements", h.Create)
	r.Get("/advertisements/{id}", h.Get)
	r.Put("/advertisements/{id}", h.Update)
	r.Delete("/advertisements/{id}", h.Delete)
	r.Patch("/advertisements/{id}/status", h.UpdateStatus)
	r.Patch("/advertisements/{id}/state", h.UpdateState)
	f.router = r
	return f
}

func (f *handlerFixture) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) submit(t *testing.T, target string, s *submission.Session) *httptest.ResponseRecorder {
	t.Helper()
	p, err := s.Payload(submission.NewBuilder(f.registry))
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	var buf bytes.Buffer
	ct, err := p.Encode(&buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return f.do(http.MethodPost, target, &buf, ct)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v (%s)", err, w.Body.String())
	}
	return resp
}

func adSession(t *testing.T, registry *schema.Registry) *submission.Session {
	t.Helper()
	s, err := submission.NewSession(registry, models.PublicationTypeAdvertisement)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	for k, v := range map[string]any{
		"categorie":           "produit",
		"titre":               "Sac de riz",
		"description":         "Riz parfumé 25kg",
		"phone":               schema.Phone{CountryCode: "+225", Number: "701234567"},
		"prix_unitaire_vente": "15000",
		"devise":              "XOF",
		"quantite_disponible": "40",
	} {
		if err := s.Set(k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	return s
}

func storedAd(status models.ApprovalStatus, state models.AvailabilityState) *models.Publication {
	return &models.Publication{
		ID:             "ad-1",
		Type:           models.PublicationTypeAdvertisement,
		OwnerID:        "u1",
		Title:          "Sac de riz",
		Description:    "Riz parfumé",
		Contacts:       "+225 701234567",
		ApprovalStatus: status,
		Availability:   state,
		Attributes: map[string]any{
			"categorie":           "produit",
			"prix_unitaire_vente": "15000",
			"devise":              "XOF",
			"quantite_disponible": "40",
			"email":               "owner@solifin.test",
		},
		Attachments: []models.Attachment{
			{Slot: "image", URL: "https://cdn.test/advertisements/ad-1/image-old.png", Key: "advertisements/ad-1/image-old.png", Name: "riz.png"},
		},
	}
}

var owner = lifecycle.Actor{UserID: "u1"}
var admin = lifecycle.Actor{UserID: "admin-1", Admin: true}

func TestCreatePublicationStartsPending(t *testing.T) {
	f := newFixture(t, owner)
	s := adSession(t, f.registry)
	if err := s.SelectFile("image", &attachment.File{Name: "riz.png", ContentType: "image/png", Data: pngHeader}); err != nil {
		t.Fatalf("select: %v", err)
	}

	w := f.submit(t, "/advertisements", s)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["statut"] != "pending" || resp["etat"] != "disponible" {
		t.Fatalf("unexpected lifecycle: %v", resp)
	}
	p := f.repo.get(resp["id"].(string))
	if p == nil {
		t.Fatalf("publication not stored")
	}
	if p.OwnerID != "u1" || p.Contacts != "+225 701234567" || p.Title != "Sac de riz" {
		t.Fatalf("unexpected publication: %+v", p)
	}
	if p.Attributes["prix_unitaire_vente"] != "15000" {
		t.Fatalf("missing attribute: %v", p.Attributes)
	}
	if _, ok := p.Attributes["statut"]; ok {
		t.Fatalf("statut must not be an attribute")
	}
	if len(f.store.puts) != 1 || !strings.HasPrefix(f.store.puts[0], "advertisements/"+p.ID+"/image-") {
		t.Fatalf("unexpected uploads: %v", f.store.puts)
	}
	a, ok := p.Attachment("image")
	if !ok || a.MimeType != "image/png" {
		t.Fatalf("unexpected attachment: %+v", p.Attachments)
	}
}

func TestCreatePublicationValidationErrors(t *testing.T) {
	f := newFixture(t, owner)

	// A hand-built form: the server validates on its own.
	body := "--b\r\nContent-Disposition: form-data; name=\"categorie\"\r\n\r\nproduit\r\n" +
		"--b\r\nContent-Disposition: form-data; name=\"contacts\"\r\n\r\n+225 0701\r\n--b--\r\n"
	w := f.do(http.MethodPost, "/advertisements", strings.NewReader(body), "multipart/form-data; boundary=b")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	if resp["error"] != "validation_error" {
		t.Fatalf("unexpected error: %v", resp)
	}
	fields, _ := resp["fields"].(map[string]any)
	for _, name := range []string{"titre", "description", "phone", "quantite_disponible"} {
		if fields[name] == nil {
			t.Fatalf("expected error on %s, got %v", name, fields)
		}
	}
	if len(f.repo.items) != 0 || len(f.store.puts) != 0 {
		t.Fatalf("nothing should be stored")
	}
}

func TestCreatePublicationRejectsWrongAttachmentType(t *testing.T) {
	f := newFixture(t, owner)
	p, err := adSession(t, f.registry).Payload(submission.NewBuilder(f.registry))
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	var buf bytes.Buffer
	ct, err := p.Encode(&buf)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Append a PDF in the video slot by re-encoding with an extra part.
	boundary := strings.TrimPrefix(ct, "multipart/form-data; boundary=")
	raw := strings.TrimSuffix(buf.String(), "--"+boundary+"--\r\n")
	raw += "--" + boundary + "\r\nContent-Disposition: form-data; name=\"video\"; filename=\"doc.pdf\"\r\nContent-Type: application/pdf\r\n\r\n%PDF-1.4\r\n--" + boundary + "--\r\n"

	w := f.do(http.MethodPost, "/advertisements", strings.NewReader(raw), ct)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	fields, _ := decodeBody(t, w)["fields"].(map[string]any)
	if fields["video"] == nil {
		t.Fatalf("expected video error, got %v", fields)
	}
}

func TestUpdateRejectedGoesBackToPending(t *testing.T) {
	stored := storedAd(models.ApprovalStatusRejected, models.AvailabilityAvailable)
	stored.RejectionReason = "Photo floue"
	f := newFixture(t, owner, stored)

	s, err := submission.EditSession(f.registry, clonePublication(stored))
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}
	_ = s.Set("titre", "Sac de riz 50kg")
	_ = s.Set("categorie", "service")
	if err := s.RemoveFile("image"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	w := f.submit(t, "/advertisements/ad-1?_method=PUT", s)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	p := f.repo.get("ad-1")
	if p.ApprovalStatus != models.ApprovalStatusPending || p.RejectionReason != "" {
		t.Fatalf("unexpected lifecycle: %s %q", p.ApprovalStatus, p.RejectionReason)
	}
	if p.Title != "Sac de riz 50kg" {
		t.Fatalf("title not updated: %q", p.Title)
	}
	if _, ok := p.Attributes["quantite_disponible"]; ok {
		t.Fatalf("hidden field must be dropped: %v", p.Attributes)
	}
	if _, ok := p.Attachment("image"); ok {
		t.Fatalf("image should be removed")
	}
	if len(f.store.deletes) != 1 || f.store.deletes[0] != "advertisements/ad-1/image-old.png" {
		t.Fatalf("unexpected deletes: %v", f.store.deletes)
	}
}

func TestUpdateApprovedIsConflict(t *testing.T) {
	f := newFixture(t, owner, storedAd(models.ApprovalStatusApproved, models.AvailabilityAvailable))
	s, err := submission.EditSession(f.registry, storedAd(models.ApprovalStatusApproved, models.AvailabilityAvailable))
	if err != nil {
		t.Fatalf("edit session: %v", err)
	}

	w := f.submit(t, "/advertisements/ad-1?_method=PUT", s)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["error"] != "state_conflict" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestUpdateByOtherUserForbidden(t *testing.T) {
	f := newFixture(t, lifecycle.Actor{UserID: "u2"}, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))
	s, _ := submission.EditSession(f.registry, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.submit(t, "/advertisements/ad-1?_method=PUT", s)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateStatusApproveNotifies(t *testing.T) {
	f := newFixture(t, admin, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"approved"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if f.repo.get("ad-1").ApprovalStatus != models.ApprovalStatusApproved {
		t.Fatalf("status not stored")
	}
	if len(f.notifier.moderated) != 1 {
		t.Fatalf("expected one notification, got %d", len(f.notifier.moderated))
	}

	// Approving twice is a conflict.
	w = f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"approved"}`), "application/json")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateStatusPendingOnPendingIsNoop(t *testing.T) {
	f := newFixture(t, admin, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"pending"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if f.repo.updates != 0 {
		t.Fatalf("expected no write, got %d", f.repo.updates)
	}
	if len(f.notifier.moderated) != 0 {
		t.Fatalf("expected no notification, got %d", len(f.notifier.moderated))
	}
	if decodeBody(t, w)["statut"] != "pending" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestUpdateStatusRejectRequiresReason(t *testing.T) {
	f := newFixture(t, admin, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"rejected"}`), "application/json")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d (%s)", w.Code, w.Body.String())
	}
	fields, _ := decodeBody(t, w)["fields"].(map[string]any)
	if fields["raison_rejet"] == nil {
		t.Fatalf("expected raison_rejet error, got %s", w.Body.String())
	}

	w = f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"rejected","raison_rejet":"Prix manquant"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if p := f.repo.get("ad-1"); p.RejectionReason != "Prix manquant" || p.ApprovalStatus != models.ApprovalStatusRejected {
		t.Fatalf("unexpected publication %+v", p)
	}
}

func TestUpdateStatusRequiresAdmin(t *testing.T) {
	f := newFixture(t, owner, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/status", strings.NewReader(`{"statut":"approved"}`), "application/json")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateStateToggle(t *testing.T) {
	f := newFixture(t, owner, storedAd(models.ApprovalStatusApproved, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/state", strings.NewReader(`{"etat":"termine"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if f.repo.get("ad-1").Availability != models.AvailabilityCompleted {
		t.Fatalf("state not stored")
	}

	w = f.do(http.MethodPatch, "/advertisements/ad-1/state", strings.NewReader(`{"etat":"completed"}`), "application/json")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}

	w = f.do(http.MethodPatch, "/advertisements/ad-1/state", strings.NewReader(`{"etat":"disponible"}`), "application/json")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestUpdateStatePendingIsConflict(t *testing.T) {
	f := newFixture(t, owner, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodPatch, "/advertisements/ad-1/state", strings.NewReader(`{"etat":"termine"}`), "application/json")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d (%s)", w.Code, w.Body.String())
	}
}

func TestDeletePublicationReleasesAssets(t *testing.T) {
	f := newFixture(t, owner, storedAd(models.ApprovalStatusApproved, models.AvailabilityCompleted))

	w := f.do(http.MethodDelete, "/advertisements/ad-1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	if f.repo.get("ad-1") != nil {
		t.Fatalf("publication still stored")
	}
	if len(f.store.deletes) != 1 {
		t.Fatalf("expected asset deletion, got %v", f.store.deletes)
	}

	w = f.do(http.MethodDelete, "/advertisements/ad-1", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestGetHidesUnapprovedFromOthers(t *testing.T) {
	f := newFixture(t, lifecycle.Actor{UserID: "u2"}, storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable))

	w := f.do(http.MethodGet, "/advertisements/ad-1", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d (%s)", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected json content-type got %q", ct)
	}
}

func TestListPublicationsFilters(t *testing.T) {
	pending := storedAd(models.ApprovalStatusPending, models.AvailabilityAvailable)
	approved := storedAd(models.ApprovalStatusApproved, models.AvailabilityAvailable)
	approved.ID = "ad-2"
	f := newFixture(t, admin, pending, approved)

	w := f.do(http.MethodGet, "/advertisements?statut=pending&page=1&page_size=10", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", w.Code, w.Body.String())
	}
	resp := decodeBody(t, w)
	data, _ := resp["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("expected one pending publication, got %v", resp)
	}
	pg, _ := resp["pagination"].(map[string]any)
	if pg["total"] != float64(1) {
		t.Fatalf("unexpected pagination %v", pg)
	}
	last := f.repo.filters[len(f.repo.filters)-1]
	if last.Limit != 10 || last.Offset != 0 || last.Status != models.ApprovalStatusPending {
		t.Fatalf("unexpected filter %+v", last)
	}

	w = f.do(http.MethodGet, "/advertisements?statut=bogus", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
