package models

import "time"

// Page is the owner's public page shown above their publications.
type Page struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"user_id"`
	Subscribers int       `json:"nombre_abonnes"`
	Likes       int       `json:"nombre_likes"`
	CoverPhoto  string    `json:"photo_de_couverture,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// MyPage groups an owner's publications by type.
type MyPage struct {
	Page                  Page          `json:"page"`
	Advertisements        []Publication `json:"advertisements"`
	JobOffers             []Publication `json:"job_offers"`
	BusinessOpportunities []Publication `json:"business_opportunities"`
}

// Collection returns the publications of type t.
func (m *MyPage) Collection(t PublicationType) []Publication {
	switch t {
	case PublicationTypeAdvertisement:
		return m.Advertisements
	case PublicationTypeJobOffer:
		return m.JobOffers
	case PublicationTypeBusinessOpportunity:
		return m.BusinessOpportunities
	}
	return nil
}

// Add appends p to the collection of its type.
func (m *MyPage) Add(p Publication) {
	switch p.Type {
	case PublicationTypeAdvertisement:
		m.Advertisements = append(m.Advertisements, p)
	case PublicationTypeJobOffer:
		m.JobOffers = append(m.JobOffers, p)
	case PublicationTypeBusinessOpportunity:
		m.BusinessOpportunities = append(m.BusinessOpportunities, p)
	}
}
