package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"solifin/internal/attachment"
	"solifin/internal/interfaces"
	"solifin/internal/lifecycle"
	"solifin/internal/logging"
	"solifin/internal/middleware"
	"solifin/internal/models"
	"solifin/internal/schema"
	"solifin/internal/storage"
	"solifin/internal/submission"
)

const maxFormMemory = 32 << 20

// PublicationHandler serves one publication resource (advertisements, job
// offers or business opportunities).
type PublicationHandler struct {
	typ       models.PublicationType
	repo      interfaces.PublicationRepository
	store     interfaces.AttachmentStore
	notifier  interfaces.ModerationNotifier
	schema    schema.Schema
	validator *validator.Validate
	logger    *slog.Logger
}

func NewPublicationHandler(
	t models.PublicationType,
	registry *schema.Registry,
	repo interfaces.PublicationRepository,
	store interfaces.AttachmentStore,
	notifier interfaces.ModerationNotifier,
	logger *slog.Logger,
) (*PublicationHandler, error) {
	s, err := registry.Schema(t)
	if err != nil {
		return nil, err
	}
	return &PublicationHandler{
		typ:       t,
		repo:      repo,
		store:     store,
		notifier:  notifier,
		schema:    s,
		validator: schema.NewValidator(),
		logger:    logger.With("component", "publications", "type", string(t)),
	}, nil
}

func actorOrReject(w http.ResponseWriter, r *http.Request) (lifecycle.Actor, bool) {
	a, ok := middleware.ActorFromContext(r.Context())
	if !ok || a.UserID == "" {
		writeJSONErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return lifecycle.Actor{}, false
	}
	return a, true
}

func (h *PublicationHandler) load(w http.ResponseWriter, r *http.Request) (*models.Publication, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "Publication ID is required")
		return nil, false
	}
	p, err := h.repo.GetByID(r.Context(), h.typ, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Publication not found")
			return nil, false
		}
		h.logger.Error("failed to get publication", "id", id, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get publication")
		return nil, false
	}
	return p, true
}

func writeLifecycleError(w http.ResponseWriter, err error) {
	var conflict *lifecycle.StateConflictError
	switch {
	case errors.As(err, &conflict):
		writeJSONErrorResponse(w, http.StatusConflict, "state_conflict", conflict.Error())
	case errors.Is(err, lifecycle.ErrForbidden):
		writeJSONErrorResponse(w, http.StatusForbidden, "forbidden", "You are not allowed to do this")
	case errors.Is(err, lifecycle.ErrReasonRequired):
		writeValidationErrorResponse(w, "Invalid request", map[string][]string{"raison_rejet": {err.Error()}})
	default:
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
	}
}

// List returns every owner's publications for moderation.
// @Tags Publications
// @Summary List publications (admin)
// @Security BearerAuth
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Param statut query string false "pending, approved or rejected"
// @Param etat query string false "disponible or termine"
// @Param q query string false "Search in title, description, contacts and address"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/{resource} [get]
func (h *PublicationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := parsePaginationParams(r, 6, 100)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_pagination", "invalid pagination: "+err.Error())
		return
	}

	q := r.URL.Query()
	filter := interfaces.PublicationFilter{Type: h.typ, Search: q.Get("q"), Limit: p.limit, Offset: p.offset}
	if s := q.Get("statut"); s != "" && s != "all" {
		filter.Status = models.ApprovalStatus(s)
		if !filter.Status.Valid() {
			writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "statut must be pending, approved or rejected")
			return
		}
	}
	if s := q.Get("etat"); s != "" && s != "all" {
		state, err := models.ParseAvailability(s)
		if err != nil {
			writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", "etat must be disponible or termine")
			return
		}
		filter.State = state
	}

	total, err := h.repo.Count(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to count publications", logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list publications")
		return
	}
	items, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list publications", logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list publications")
		return
	}
	if items == nil {
		items = []models.Publication{}
	}
	writePaginatedResponse(w, http.StatusOK, items, p.page, p.pageSize, total)
}

// Get returns one publication. Unapproved publications are only visible to
// their owner and to administrators.
func (h *PublicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	if p.ApprovalStatus != models.ApprovalStatusApproved && !actor.Admin && !actor.Owns(p) {
		writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Publication not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// submittedForm is a parsed and validated create or update body.
type submittedForm struct {
	values  schema.Values
	files   map[string]*attachment.File
	removed map[string]bool
}

func readFilePart(fh *multipart.FileHeader) (*attachment.File, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &attachment.File{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Data: data}, nil
}

// parseForm decodes the multipart body against the schema, reporting every
// field and slot error at once.
func (h *PublicationHandler) parseForm(w http.ResponseWriter, r *http.Request) (*submittedForm, bool) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Failed to parse form")
		return nil, false
	}
	values, err := schema.FromForm(h.schema, r.MultipartForm.Value)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}

	fields := schema.Validate(h.validator, h.schema, values).Fields()
	form := &submittedForm{values: values, files: map[string]*attachment.File{}, removed: map[string]bool{}}
	for _, f := range h.schema.FileFields() {
		if r.MultipartForm.Value[submission.RemoveField(f.Name)] != nil {
			form.removed[f.Name] = r.FormValue(submission.RemoveField(f.Name)) == "1"
		}
		headers := r.MultipartForm.File[f.Name]
		if len(headers) == 0 {
			continue
		}
		file, err := readFilePart(headers[0])
		if err != nil {
			fields[f.Name] = append(fields[f.Name], "could not read file")
			continue
		}
		if err := attachment.Check(f.Name, f.Slot, file); err != nil {
			fields[f.Name] = append(fields[f.Name], err.Error())
			continue
		}
		form.files[f.Name] = file
	}
	if len(fields) > 0 {
		writeValidationErrorResponse(w, "Invalid publication", fields)
		return nil, false
	}
	return form, true
}

// missingFiles reports required slots left empty once form is applied over
// the assets of current, which is nil on create.
func (h *PublicationHandler) missingFiles(current *models.Publication, form *submittedForm) map[string][]string {
	fields := map[string][]string{}
	for _, f := range h.schema.Visible(form.values) {
		if f.Kind != schema.KindFile || !f.Required {
			continue
		}
		if _, ok := form.files[f.Name]; ok {
			continue
		}
		if current != nil && !form.removed[f.Name] {
			if _, ok := current.Attachment(f.Name); ok {
				continue
			}
		}
		fields[f.Name] = append(fields[f.Name], "is required")
	}
	return fields
}

// apply copies the visible field values onto p. Hidden fields are dropped.
func (h *PublicationHandler) apply(p *models.Publication, v schema.Values) {
	p.Attributes = map[string]any{}
	p.Contacts = ""
	for _, f := range h.schema.Visible(v) {
		switch {
		case f.Kind == schema.KindFile:
		case f.Name == "titre":
			p.Title = strings.TrimSpace(v.String(f.Name))
		case f.Name == "description":
			p.Description = strings.TrimSpace(v.String(f.Name))
		case f.Kind == schema.KindPhone:
			if ph := v.Phone(f.Name); !ph.IsZero() {
				p.Contacts = ph.String()
			}
		case f.Kind == schema.KindList:
			if l := v.List(f.Name); l != nil {
				p.Attributes[f.Name] = l
			}
		default:
			if x := v[f.Name]; schema.ShouldInclude(x) {
				p.Attributes[f.Name] = strings.TrimSpace(v.String(f.Name))
			}
		}
	}
}

// storeFiles uploads the new files of form into p's slots and returns the
// keys of replaced or removed objects, to be released once p is saved.
func (h *PublicationHandler) storeFiles(ctx context.Context, p *models.Publication, form *submittedForm) (stale, uploaded []string, err error) {
	for _, f := range h.schema.FileFields() {
		if file, ok := form.files[f.Name]; ok {
			key := storage.ObjectKey(h.typ, p.ID, f.Name, uuid.NewString()[:8], file.Name)
			url, err := h.store.Put(ctx, key, file)
			if err != nil {
				return nil, uploaded, err
			}
			uploaded = append(uploaded, key)
			if old, ok := p.Attachment(f.Name); ok && old.Key != "" {
				stale = append(stale, old.Key)
			}
			p.SetAttachment(models.Attachment{
				Slot: f.Name, URL: url, Name: file.Name, Key: key, MimeType: file.MIMEType(), Size: file.Size(),
			})
			continue
		}
		if form.removed[f.Name] {
			if old, ok := p.RemoveAttachment(f.Name); ok && old.Key != "" {
				stale = append(stale, old.Key)
			}
		}
	}
	return stale, uploaded, nil
}

func (h *PublicationHandler) release(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := h.store.Delete(ctx, k); err != nil {
			h.logger.Warn("failed to delete attachment", "key", k, logging.Err(err))
		}
	}
}

// Create stores a new publication. Whatever the body says, it starts
// pending and available.
// @Tags Publications
// @Summary Create publication
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Success 201 {object} models.Publication
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/{resource} [post]
func (h *PublicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if missing := h.missingFiles(nil, form); len(missing) > 0 {
		writeValidationErrorResponse(w, "Invalid publication", missing)
		return
	}

	initial := lifecycle.Initial()
	p := &models.Publication{
		ID:             uuid.NewString(),
		Type:           h.typ,
		OwnerID:        actor.UserID,
		ApprovalStatus: initial.Approval,
		Availability:   initial.Availability,
	}
	h.apply(p, form.values)

	_, uploaded, err := h.storeFiles(r.Context(), p, form)
	if err != nil {
		h.release(r.Context(), uploaded)
		h.logger.Error("failed to store attachments", logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to store attachments")
		return
	}
	if err := h.repo.Create(r.Context(), p); err != nil {
		h.release(r.Context(), uploaded)
		h.logger.Error("failed to create publication", logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "create_publication_failed", "Failed to create publication")
		return
	}
	h.logger.Info("publication created", "id", p.ID, "owner", p.OwnerID)
	writeJSON(w, http.StatusCreated, p)
}

// Update replaces the content of a publication. It is reached through
// PUT or through POST with _method=PUT.
// @Tags Publications
// @Summary Update publication
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Param id path string true "Publication ID"
// @Param _method query string false "PUT"
// @Success 200 {object} models.Publication
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/{resource}/{id} [post]
func (h *PublicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := lifecycle.Authorize(actor, p, lifecycle.ActionEdit); err != nil {
		writeLifecycleError(w, err)
		return
	}
	next, err := lifecycle.Edit(lifecycle.Of(p))
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	if missing := h.missingFiles(p, form); len(missing) > 0 {
		writeValidationErrorResponse(w, "Invalid publication", missing)
		return
	}

	wasRejected := p.ApprovalStatus == models.ApprovalStatusRejected
	h.apply(p, form.values)
	p.ApprovalStatus, p.Availability = next.Approval, next.Availability
	if wasRejected {
		p.RejectionReason = ""
	}

	stale, uploaded, err := h.storeFiles(r.Context(), p, form)
	if err != nil {
		h.release(r.Context(), uploaded)
		h.logger.Error("failed to store attachments", "id", p.ID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "upload_failed", "Failed to store attachments")
		return
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.release(r.Context(), uploaded)
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Publication not found")
			return
		}
		h.logger.Error("failed to update publication", "id", p.ID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_publication_failed", "Failed to update publication")
		return
	}
	h.release(r.Context(), stale)
	writeJSON(w, http.StatusOK, p)
}

// @Tags Publications
// @Summary Delete publication
// @Security BearerAuth
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Param id path string true "Publication ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/{resource}/{id} [delete]
func (h *PublicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := lifecycle.Authorize(actor, p, lifecycle.ActionDelete); err != nil {
		writeLifecycleError(w, err)
		return
	}
	if err := h.repo.Delete(r.Context(), h.typ, p.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSONErrorResponse(w, http.StatusNotFound, "not_found", "Publication not found")
			return
		}
		h.logger.Error("failed to delete publication", "id", p.ID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "delete_publication_failed", "Failed to delete publication")
		return
	}
	keys := make([]string, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		if a.Key != "" {
			keys = append(keys, a.Key)
		}
	}
	h.release(r.Context(), keys)
	writeJSONMessage(w, http.StatusOK, "publication deleted successfully")
}

func (h *PublicationHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := map[string][]string{}
			for _, fe := range verrs {
				name := jsonFieldName(fe.Field())
				fields[name] = append(fields[name], fmt.Sprintf("failed on %s", fe.Tag()))
			}
			writeValidationErrorResponse(w, "Invalid request", fields)
			return false
		}
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return false
	}
	return true
}

func jsonFieldName(structField string) string {
	switch structField {
	case "Status":
		return submission.StatusField
	case "Reason":
		return "raison_rejet"
	case "State":
		return submission.StateField
	}
	return strings.ToLower(structField)
}

// UpdateStatus is the moderation decision on a pending publication.
// @Tags Publications
// @Summary Approve or reject publication (admin)
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Param id path string true "Publication ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.Publication
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/{resource}/{id}/status [patch]
func (h *PublicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	action := lifecycle.ActionApprove
	if req.Status == models.ApprovalStatusRejected {
		action = lifecycle.ActionReject
	}
	if err := lifecycle.Authorize(actor, p, action); err != nil {
		writeLifecycleError(w, err)
		return
	}
	next, err := lifecycle.SetApproval(lifecycle.Of(p), req.Status, req.Reason)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	if next.Approval == p.ApprovalStatus {
		writeJSON(w, http.StatusOK, p)
		return
	}
	p.ApprovalStatus = next.Approval
	p.RejectionReason = ""
	if next.Approval == models.ApprovalStatusRejected {
		p.RejectionReason = strings.TrimSpace(req.Reason)
	}
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.logger.Error("failed to update status", "id", p.ID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_status_failed", "Failed to update status")
		return
	}
	h.logger.Info("publication moderated", "id", p.ID, "statut", p.ApprovalStatus, "by", actor.UserID)
	if h.notifier != nil {
		if err := h.notifier.PublicationModerated(r.Context(), p); err != nil {
			h.logger.Warn("moderation notification failed", "id", p.ID, logging.Err(err))
		}
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateState toggles availability of an approved publication.
// @Tags Publications
// @Summary Mark publication completed or available (owner)
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param resource path string true "advertisements, job-offers or business-opportunities"
// @Param id path string true "Publication ID"
// @Param request body models.UpdateStateRequest true "New state"
// @Success 200 {object} models.Publication
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/{resource}/{id}/state [patch]
func (h *PublicationHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrReject(w, r)
	if !ok {
		return
	}
	var req models.UpdateStateRequest
	if !h.decode(w, r, &req) {
		return
	}
	target, err := models.ParseAvailability(req.State)
	if err != nil {
		writeJSONErrorResponse(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	p, ok := h.load(w, r)
	if !ok {
		return
	}
	action := lifecycle.ActionComplete
	if target == models.AvailabilityAvailable {
		action = lifecycle.ActionReopen
	}
	if err := lifecycle.Authorize(actor, p, action); err != nil {
		writeLifecycleError(w, err)
		return
	}
	next, err := lifecycle.SetAvailability(lifecycle.Of(p), target)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	p.Availability = next.Availability
	if err := h.repo.Update(r.Context(), p); err != nil {
		h.logger.Error("failed to update state", "id", p.ID, logging.Err(err))
		writeJSONErrorResponse(w, http.StatusInternalServerError, "update_state_failed", "Failed to update state")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
