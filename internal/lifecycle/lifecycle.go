// Package lifecycle governs the approval status and availability state of a
// publication and who may change them. The client consults it to decide
// which affordances to present; the server enforces it.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"solifin/internal/models"
)

type State struct {
	Approval     models.ApprovalStatus
	Availability models.AvailabilityState
}

// Initial is the state of every newly created publication.
func Initial() State {
	return State{Approval: models.ApprovalStatusPending, Availability: models.AvailabilityAvailable}
}

func Of(p *models.Publication) State {
	return State{Approval: p.ApprovalStatus, Availability: p.Availability}
}

func (s State) String() string {
	return fmt.Sprintf("(%s, %s)", s.Approval, s.Availability)
}

type Action string

const (
	ActionEdit     Action = "edit"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionComplete Action = "complete"
	ActionReopen   Action = "reopen"
	ActionDelete   Action = "delete"
)

// Actor is whoever requests a transition.
type Actor struct {
	UserID string
	Admin  bool
}

func (a Actor) Owns(p *models.Publication) bool {
	return a.UserID != "" && a.UserID == p.OwnerID
}

var (
	ErrForbidden      = errors.New("not allowed for this user")
	ErrReasonRequired = errors.New("a rejection reason is required")
	ErrUnknownStatus  = errors.New("unknown approval status")
	ErrUnknownState   = errors.New("unknown availability state")
)

// StateConflictError is returned when an action is not valid in the current
// lifecycle state.
type StateConflictError struct {
	State  State
	Action Action
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("cannot %s a publication in state %s", e.Action, e.State)
}

func conflict(s State, a Action) error {
	return &StateConflictError{State: s, Action: a}
}

// Approve moves a pending publication to approved.
func Approve(s State) (State, error) {
	if s.Approval != models.ApprovalStatusPending {
		return s, conflict(s, ActionApprove)
	}
	s.Approval = models.ApprovalStatusApproved
	return s, nil
}

// Reject moves a pending publication to rejected. The reason is mandatory.
func Reject(s State, reason string) (State, error) {
	if strings.TrimSpace(reason) == "" {
		return s, ErrReasonRequired
	}
	if s.Approval != models.ApprovalStatusPending {
		return s, conflict(s, ActionReject)
	}
	s.Approval = models.ApprovalStatusRejected
	return s, nil
}

// Edit is the owner saving new content. A rejected publication goes back to
// pending review; availability is unchanged.
func Edit(s State) (State, error) {
	switch s.Approval {
	case models.ApprovalStatusPending:
		return s, nil
	case models.ApprovalStatusRejected:
		s.Approval = models.ApprovalStatusPending
		return s, nil
	}
	return s, conflict(s, ActionEdit)
}

// SetAvailability toggles availability. Only approved publications may
// change it.
func SetAvailability(s State, target models.AvailabilityState) (State, error) {
	if !target.Valid() {
		return s, ErrUnknownState
	}
	action := ActionComplete
	if target == models.AvailabilityAvailable {
		action = ActionReopen
	}
	if s.Approval != models.ApprovalStatusApproved || s.Availability == target {
		return s, conflict(s, action)
	}
	s.Availability = target
	return s, nil
}

// SetApproval applies an administrator's status request.
func SetApproval(s State, target models.ApprovalStatus, reason string) (State, error) {
	switch target {
	case models.ApprovalStatusApproved:
		return Approve(s)
	case models.ApprovalStatusRejected:
		return Reject(s, reason)
	case models.ApprovalStatusPending:
		if s.Approval == models.ApprovalStatusPending {
			return s, nil
		}
		return s, conflict(s, ActionEdit)
	}
	return s, ErrUnknownStatus
}

// Authorize checks that actor may attempt action on p. It does not check
// the lifecycle state.
func Authorize(actor Actor, p *models.Publication, action Action) error {
	switch action {
	case ActionApprove, ActionReject:
		if actor.Admin {
			return nil
		}
	case ActionEdit, ActionComplete, ActionReopen:
		if actor.Owns(p) {
			return nil
		}
	case ActionDelete:
		if actor.Admin || actor.Owns(p) {
			return nil
		}
	}
	return ErrForbidden
}

// Allowed reports whether action should be presented to actor for p.
func Allowed(actor Actor, p *models.Publication, action Action) bool {
	if Authorize(actor, p, action) != nil {
		return false
	}
	s := Of(p)
	var err error
	switch action {
	case ActionEdit:
		_, err = Edit(s)
	case ActionApprove:
		_, err = Approve(s)
	case ActionReject:
		if s.Approval != models.ApprovalStatusPending {
			err = conflict(s, action)
		}
	case ActionComplete:
		_, err = SetAvailability(s, models.AvailabilityCompleted)
	case ActionReopen:
		_, err = SetAvailability(s, models.AvailabilityAvailable)
	}
	return err == nil
}

var allActions = []Action{ActionEdit, ActionComplete, ActionReopen, ActionApprove, ActionReject, ActionDelete}

// Actions lists the affordances to present to actor for p.
func Actions(actor Actor, p *models.Publication) []Action {
	var out []Action
	for _, a := range allActions {
		if Allowed(actor, p, a) {
			out = append(out, a)
		}
	}
	return out
}
