// internal/models/publication.go
package models

import (
	"fmt"
	"strings"
	"time"
)

type PublicationType string

const (
	PublicationTypeAdvertisement       PublicationType = "advertisement"
	PublicationTypeJobOffer            PublicationType = "job_offer"
	PublicationTypeBusinessOpportunity PublicationType = "business_opportunity"
)

// PublicationTypes lists the types in display order.
var PublicationTypes = []PublicationType{
	PublicationTypeAdvertisement,
	PublicationTypeJobOffer,
	PublicationTypeBusinessOpportunity,
}

// Resource returns the REST collection path segment for the type.
func (t PublicationType) Resource() string {
	switch t {
	case PublicationTypeAdvertisement:
		return "advertisements"
	case PublicationTypeJobOffer:
		return "job-offers"
	case PublicationTypeBusinessOpportunity:
		return "business-opportunities"
	default:
		return ""
	}
}

func (t PublicationType) Valid() bool {
	return t.Resource() != ""
}

// ParsePublicationType accepts the type name or its resource path.
func ParsePublicationType(s string) (PublicationType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range PublicationTypes {
		if s == string(t) || s == t.Resource() {
			return t, nil
		}
	}
	switch s {
	case "ad", "publicite", "publicité":
		return PublicationTypeAdvertisement, nil
	case "job", "offre_emploi":
		return PublicationTypeJobOffer, nil
	case "opportunity", "opportunite_affaire":
		return PublicationTypeBusinessOpportunity, nil
	}
	return "", fmt.Errorf("unknown publication type %q", s)
}

type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) Valid() bool {
	switch s {
	case ApprovalStatusPending, ApprovalStatusApproved, ApprovalStatusRejected:
		return true
	}
	return false
}

type AvailabilityState string

const (
	AvailabilityAvailable AvailabilityState = "disponible"
	AvailabilityCompleted AvailabilityState = "termine"
)

func (s AvailabilityState) Valid() bool {
	return s == AvailabilityAvailable || s == AvailabilityCompleted
}

// ParseAvailability accepts the wire values and their English aliases.
func ParseAvailability(s string) (AvailabilityState, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disponible", "available":
		return AvailabilityAvailable, nil
	case "termine", "terminé", "completed":
		return AvailabilityCompleted, nil
	}
	return "", fmt.Errorf("unknown availability state %q", s)
}

// Attachment is an asset persisted in one slot of a publication.
type Attachment struct {
	Slot     string `json:"slot"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Key      string `json:"-"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Publication is the common shape of advertisements, job offers and
// business opportunities. Type specific fields live in Attributes.
type Publication struct {
	ID              string            `json:"id"`
	Type            PublicationType   `json:"type"`
	OwnerID         string            `json:"user_id"`
	Title           string            `json:"titre"`
	Description     string            `json:"description"`
	Contacts        string            `json:"contacts,omitempty"`
	ApprovalStatus  ApprovalStatus    `json:"statut"`
	Availability    AvailabilityState `json:"etat"`
	RejectionReason string            `json:"raison_rejet,omitempty"`
	Attributes      map[string]any    `json:"attributes,omitempty"`
	Attachments     []Attachment      `json:"attachments,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Address returns the location-like attribute of the publication, if any.
func (p *Publication) Address() string {
	var key string
	switch p.Type {
	case PublicationTypeAdvertisement:
		key = "adresse"
	case PublicationTypeJobOffer:
		key = "lieu"
	case PublicationTypeBusinessOpportunity:
		key = "localisation"
	}
	if s, ok := p.Attributes[key].(string); ok {
		return s
	}
	return ""
}

// Attachment returns the persisted asset of the slot.
func (p *Publication) Attachment(slot string) (Attachment, bool) {
	for _, a := range p.Attachments {
		if a.Slot == slot {
			return a, true
		}
	}
	return Attachment{}, false
}

// SetAttachment stores a in its slot, replacing any previous asset.
func (p *Publication) SetAttachment(a Attachment) {
	for i := range p.Attachments {
		if p.Attachments[i].Slot == a.Slot {
			p.Attachments[i] = a
			return
		}
	}
	p.Attachments = append(p.Attachments, a)
}

// RemoveAttachment clears the slot and returns what was stored there.
func (p *Publication) RemoveAttachment(slot string) (Attachment, bool) {
	for i, a := range p.Attachments {
		if a.Slot == slot {
			p.Attachments = append(p.Attachments[:i], p.Attachments[i+1:]...)
			return a, true
		}
	}
	return Attachment{}, false
}

type UpdateStatusRequest struct {
	Status ApprovalStatus `json:"statut" validate:"required,oneof=pending approved rejected"`
	Reason string         `json:"raison_rejet,omitempty" validate:"required_if=Status rejected,max=1000"`
}

type UpdateStateRequest struct {
	State string `json:"etat" validate:"required,oneof=disponible termine available completed"`
}
