// Package dashboard drives an owner's (or moderator's) view of their
// publications: it submits edits and transitions through the API, refetches
// after every successful mutation, and exposes the filtered, paginated
// collections.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"solifin/internal/lifecycle"
	"solifin/internal/logging"
	"solifin/internal/models"
	"solifin/internal/query"
	"solifin/internal/schema"
	"solifin/internal/submission"
)

// API is the REST boundary the dashboard consumes.
type API interface {
	MyPage(ctx context.Context) (*models.MyPage, error)
	Get(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error)
	Submit(ctx context.Context, t models.PublicationType, id string, p *submission.Payload) (*models.Publication, error)
	Delete(ctx context.Context, t models.PublicationType, id string) error
	SetApprovalStatus(ctx context.Context, t models.PublicationType, id string, status models.ApprovalStatus, reason string) (*models.Publication, error)
	SetAvailability(ctx context.Context, t models.PublicationType, id string, state models.AvailabilityState) (*models.Publication, error)
}

var (
	// ErrBusy is returned while another mutation of the same publication is
	// in flight.
	ErrBusy     = errors.New("an operation on this publication is already in progress")
	ErrNotFound = errors.New("publication not found")
)

type Dashboard struct {
	api      API
	registry *schema.Registry
	builder  *submission.Builder
	actor    lifecycle.Actor
	notifier Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	browser  *query.Browser
	page     *models.MyPage
	inflight map[string]struct{}
}

type Options struct {
	Registry *schema.Registry
	Actor    lifecycle.Actor
	PageSize int
	Now      func() time.Time
	Notifier Notifier
	Logger   *slog.Logger
}

func New(api API, opts Options) *Dashboard {
	if opts.Registry == nil {
		opts.Registry = schema.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(opts.Logger)
	}
	return &Dashboard{
		api:      api,
		registry: opts.Registry,
		builder:  submission.NewBuilder(opts.Registry),
		actor:    opts.Actor,
		notifier: opts.Notifier,
		logger:   opts.Logger.With("component", "dashboard"),
		browser:  query.NewBrowser(opts.PageSize, opts.Now),
		page:     &models.MyPage{},
		inflight: make(map[string]struct{}),
	}
}

func (d *Dashboard) Registry() *schema.Registry {
	return d.registry
}

// Refresh refetches the whole page and reapplies the current filter.
func (d *Dashboard) Refresh(ctx context.Context) error {
	page, err := d.api.MyPage(ctx)
	if err != nil {
		d.logger.Warn("refresh failed", logging.Err(err))
		return err
	}
	d.mu.Lock()
	d.page = page
	d.browser.Load(page)
	d.mu.Unlock()
	return nil
}

func (d *Dashboard) Page() models.Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.page.Page
}

func (d *Dashboard) Filter() query.FilterState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.browser.Filter()
}

// SetFilter changes the shared filter and resets every page cursor.
func (d *Dashboard) SetFilter(f query.FilterState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.browser.SetFilter(f)
}

func (d *Dashboard) SetPage(t models.PublicationType, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.browser.SetPage(t, n)
}

// View returns the current page of collection t.
func (d *Dashboard) View(t models.PublicationType) query.Page[models.Publication] {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.browser.Page(t)
}

// Find returns a copy of a loaded publication.
func (d *Dashboard) Find(t models.PublicationType, id string) (*models.Publication, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.page.Collection(t) {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%s %s: %w", t, id, ErrNotFound)
}

// Actions lists what the current actor may do with p.
func (d *Dashboard) Actions(p *models.Publication) []lifecycle.Action {
	return lifecycle.Actions(d.actor, p)
}

func (d *Dashboard) Busy(t models.PublicationType, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.inflight[key(t, id)]
	return ok
}

func key(t models.PublicationType, id string) string {
	return string(t) + "/" + id
}

func (d *Dashboard) acquire(k string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inflight[k]; ok {
		return nil, ErrBusy
	}
	d.inflight[k] = struct{}{}
	return func() {
		d.mu.Lock()
		delete(d.inflight, k)
		d.mu.Unlock()
	}, nil
}

// NewSession starts a creation form for type t.
func (d *Dashboard) NewSession(t models.PublicationType) (*submission.Session, error) {
	return submission.NewSession(d.registry, t)
}

// EditSession starts an edit form seeded from a loaded publication. It is
// refused when editing is not offered for it.
func (d *Dashboard) EditSession(t models.PublicationType, id string) (*submission.Session, error) {
	p, err := d.Find(t, id)
	if err != nil {
		return nil, err
	}
	if err := check(d.actor, p, lifecycle.ActionEdit, ""); err != nil {
		return nil, err
	}
	return submission.EditSession(d.registry, p)
}

// check refuses actions the lifecycle would not present.
func check(actor lifecycle.Actor, p *models.Publication, action lifecycle.Action, reason string) error {
	if err := lifecycle.Authorize(actor, p, action); err != nil {
		return err
	}
	s := lifecycle.Of(p)
	var err error
	switch action {
	case lifecycle.ActionEdit:
		_, err = lifecycle.Edit(s)
	case lifecycle.ActionApprove:
		_, err = lifecycle.Approve(s)
	case lifecycle.ActionReject:
		_, err = lifecycle.Reject(s, reason)
	case lifecycle.ActionComplete:
		_, err = lifecycle.SetAvailability(s, models.AvailabilityCompleted)
	case lifecycle.ActionReopen:
		_, err = lifecycle.SetAvailability(s, models.AvailabilityAvailable)
	}
	return err
}

// Submit builds the session payload and sends it. Validation and attachment
// errors are returned without any request. On a transport failure the
// session is left untouched so the user can retry. Once the API accepted the
// payload, Submit succeeds even if the page cannot be reloaded.
func (d *Dashboard) Submit(ctx context.Context, s *submission.Session) (*models.Publication, error) {
	k := fmt.Sprintf("%s/new-%p", s.Type, s)
	if s.IsEdit() {
		k = key(s.Type, s.ID)
	}
	release, err := d.acquire(k)
	if err != nil {
		return nil, err
	}
	defer release()

	payload, err := s.Payload(d.builder)
	if err != nil {
		return nil, err
	}

	verb := "created"
	if s.IsEdit() {
		verb = "updated"
	}
	p, err := d.api.Submit(ctx, s.Type, s.ID, payload)
	if err != nil {
		d.fail(s.Type, s.ID, "could not save publication", err)
		return nil, err
	}
	d.notifier.Notify(Notice{Level: LevelSuccess, Type: s.Type, PublicationID: p.ID, Message: "publication " + verb})
	d.refreshAfter(ctx, s.Type, p.ID)
	return p, nil
}

// Delete removes a publication after checking the actor may.
func (d *Dashboard) Delete(ctx context.Context, t models.PublicationType, id string) error {
	return d.mutate(ctx, t, id, lifecycle.ActionDelete, "", "publication deleted", func(ctx context.Context) error {
		return d.api.Delete(ctx, t, id)
	})
}

func (d *Dashboard) Complete(ctx context.Context, t models.PublicationType, id string) error {
	return d.setAvailability(ctx, t, id, lifecycle.ActionComplete, models.AvailabilityCompleted)
}

func (d *Dashboard) Reopen(ctx context.Context, t models.PublicationType, id string) error {
	return d.setAvailability(ctx, t, id, lifecycle.ActionReopen, models.AvailabilityAvailable)
}

func (d *Dashboard) setAvailability(ctx context.Context, t models.PublicationType, id string, action lifecycle.Action, state models.AvailabilityState) error {
	return d.mutate(ctx, t, id, action, "", "availability changed to "+string(state), func(ctx context.Context) error {
		_, err := d.api.SetAvailability(ctx, t, id, state)
		return err
	})
}

func (d *Dashboard) Approve(ctx context.Context, t models.PublicationType, id string) error {
	return d.mutate(ctx, t, id, lifecycle.ActionApprove, "", "publication approved", func(ctx context.Context) error {
		_, err := d.api.SetApprovalStatus(ctx, t, id, models.ApprovalStatusApproved, "")
		return err
	})
}

func (d *Dashboard) Reject(ctx context.Context, t models.PublicationType, id, reason string) error {
	return d.mutate(ctx, t, id, lifecycle.ActionReject, reason, "publication rejected", func(ctx context.Context) error {
		_, err := d.api.SetApprovalStatus(ctx, t, id, models.ApprovalStatusRejected, reason)
		return err
	})
}

// lookup finds a loaded publication. Moderators also act on publications of
// other owners, which are fetched from the API.
func (d *Dashboard) lookup(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error) {
	p, err := d.Find(t, id)
	if err == nil || !d.actor.Admin {
		return p, err
	}
	return d.api.Get(ctx, t, id)
}

func (d *Dashboard) mutate(ctx context.Context, t models.PublicationType, id string, action lifecycle.Action, reason, success string, call func(context.Context) error) error {
	p, err := d.lookup(ctx, t, id)
	if err != nil {
		return err
	}
	if err := check(d.actor, p, action, reason); err != nil {
		return err
	}
	release, err := d.acquire(key(t, id))
	if err != nil {
		return err
	}
	defer release()

	if err := call(ctx); err != nil {
		d.fail(t, id, "could not "+string(action)+" publication", err)
		return err
	}
	d.notifier.Notify(Notice{Level: LevelSuccess, Type: t, PublicationID: id, Message: success})
	d.refreshAfter(ctx, t, id)
	return nil
}

// refreshAfter reloads the page once a mutation has been applied. A failed
// reload is reported but does not fail the mutation, which must not be
// retried.
func (d *Dashboard) refreshAfter(ctx context.Context, t models.PublicationType, id string) {
	if err := d.Refresh(ctx); err != nil {
		d.notifier.Notify(Notice{Level: LevelError, Type: t, PublicationID: id, Message: "saved, but the page could not be reloaded", Err: err})
	}
}

func (d *Dashboard) fail(t models.PublicationType, id, msg string, err error) {
	d.logger.Error(msg, "type", t, "id", id, logging.Err(err))
	d.notifier.Notify(Notice{Level: LevelError, Type: t, PublicationID: id, Message: msg, Err: err})
}
