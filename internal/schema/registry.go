package schema

import (
	"fmt"

	"solifin/internal/attachment"
	"solifin/internal/models"
)

type Schema struct {
	Type   models.PublicationType
	Fields []FieldSpec
}

// Field returns the field with the given name.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// FileFields returns the attachment slots of the type.
func (s Schema) FileFields() []FieldSpec {
	var out []FieldSpec
	for _, f := range s.Fields {
		if f.Kind == KindFile {
			out = append(out, f)
		}
	}
	return out
}

// Visible returns the fields that apply to v, in declaration order.
func (s Schema) Visible(v Values) []FieldSpec {
	out := make([]FieldSpec, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Visible(v) {
			out = append(out, f)
		}
	}
	return out
}

type Registry struct {
	schemas map[models.PublicationType]Schema
}

// NewRegistry returns a registry holding the built-in schemas.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[models.PublicationType]Schema)}
	r.Register(advertisementSchema())
	r.Register(jobOfferSchema())
	r.Register(businessOpportunitySchema())
	return r
}

// Register adds or replaces the schema of s.Type.
func (r *Registry) Register(s Schema) {
	r.schemas[s.Type] = s
}

func (r *Registry) Schema(t models.PublicationType) (Schema, error) {
	s, ok := r.schemas[t]
	if !ok {
		return Schema{}, fmt.Errorf("no schema for publication type %q", t)
	}
	return s, nil
}

// Fields returns the fields of type t visible for the current values.
func (r *Registry) Fields(t models.PublicationType, current Values) ([]FieldSpec, error) {
	s, err := r.Schema(t)
	if err != nil {
		return nil, err
	}
	return s.Visible(current), nil
}

var currencies = []Option{
	{Value: "USD", Label: "Dollar américain"},
	{Value: "EUR", Label: "Euro"},
	{Value: "XOF", Label: "Franc CFA (BCEAO)"},
	{Value: "XAF", Label: "Franc CFA (BEAC)"},
	{Value: "CDF", Label: "Franc congolais"},
}

func imageField(required bool) FieldSpec {
	c, _ := attachment.ConstraintFor(attachment.KindImage)
	return FieldSpec{Name: "image", Label: "Image", Kind: KindFile, Required: required, Slot: attachment.KindImage, Accept: c.Accept()}
}

func advertisementSchema() Schema {
	video, _ := attachment.ConstraintFor(attachment.KindVideo)
	return Schema{
		Type: models.PublicationTypeAdvertisement,
		Fields: []FieldSpec{
			{Name: "categorie", Label: "Catégorie", Kind: KindSelect, Required: true, Options: []Option{
				{Value: "produit", Label: "Produit"},
				{Value: "service", Label: "Service"},
			}},
			{Name: "titre", Label: "Titre", Kind: KindText, Required: true, Rule: "max=255"},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true},
			{Name: "phone", Label: "Téléphone", Kind: KindPhone, Required: true, PayloadKey: "contacts"},
			{Name: "email", Label: "Email", Kind: KindEmail},
			{Name: "adresse", Label: "Adresse", Kind: KindText},
			{Name: "lien", Label: "Lien", Kind: KindURL},
			{Name: "prix_unitaire_vente", Label: "Prix unitaire de vente", Kind: KindNumber, Required: true},
			{Name: "devise", Label: "Devise", Kind: KindSelect, Required: true, Options: currencies},
			{Name: "quantite_disponible", Label: "Quantité disponible", Kind: KindNumber, Required: true,
				VisibleWhen: Equals("categorie", "produit")},
			{Name: "besoin_livreurs", Label: "Besoin de livreurs", Kind: KindSelect, Options: []Option{
				{Value: "OUI", Label: "Oui"},
				{Value: "NON", Label: "Non"},
			}},
			{Name: "conditions_livraison", Label: "Conditions de livraison", Kind: KindList, Required: true,
				VisibleWhen: Equals("besoin_livreurs", "OUI")},
			{Name: "point_vente", Label: "Point de vente", Kind: KindText},
			imageField(false),
			{Name: "video", Label: "Vidéo", Kind: KindFile, Slot: attachment.KindVideo, Accept: video.Accept()},
		},
	}
}

func jobOfferSchema() Schema {
	doc, _ := attachment.ConstraintFor(attachment.KindDocument)
	return Schema{
		Type: models.PublicationTypeJobOffer,
		Fields: []FieldSpec{
			{Name: "reference", Label: "Référence", Kind: KindText, Required: true, Rule: "max=100"},
			{Name: "titre", Label: "Titre", Kind: KindText, Required: true, Rule: "max=255"},
			{Name: "entreprise", Label: "Entreprise", Kind: KindText, Required: true},
			{Name: "lieu", Label: "Lieu", Kind: KindText, Required: true},
			{Name: "type_contrat", Label: "Type de contrat", Kind: KindSelect, Required: true, Options: []Option{
				{Value: "CDI", Label: "CDI"},
				{Value: "CDD", Label: "CDD"},
				{Value: "Stage", Label: "Stage"},
				{Value: "Freelance", Label: "Freelance"},
				{Value: "Temps partiel", Label: "Temps partiel"},
			}},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true},
			{Name: "competences_requises", Label: "Compétences requises", Kind: KindTextarea, Required: true},
			{Name: "phone", Label: "Téléphone", Kind: KindPhone, Required: true, PayloadKey: "contacts"},
			{Name: "experience_requise", Label: "Expérience requise", Kind: KindText, Required: true},
			{Name: "niveau_etudes", Label: "Niveau d'études", Kind: KindText},
			{Name: "salaire", Label: "Salaire", Kind: KindNumber},
			{Name: "devise", Label: "Devise", Kind: KindSelect, Required: true, Options: currencies,
				VisibleWhen: NotEmpty("salaire")},
			{Name: "avantages", Label: "Avantages", Kind: KindTextarea},
			{Name: "date_limite", Label: "Date limite", Kind: KindDate},
			{Name: "email_contact", Label: "Email de contact", Kind: KindEmail, Required: true},
			{Name: "lien", Label: "Lien", Kind: KindURL},
			{Name: "offer_file", Label: "Fichier de l'offre", Kind: KindFile, Slot: attachment.KindDocument, Accept: doc.Accept()},
		},
	}
}

func businessOpportunitySchema() Schema {
	doc, _ := attachment.ConstraintFor(attachment.KindDocument)
	return Schema{
		Type: models.PublicationTypeBusinessOpportunity,
		Fields: []FieldSpec{
			{Name: "titre", Label: "Titre", Kind: KindText, Required: true, Rule: "max=255"},
			{Name: "secteur", Label: "Secteur", Kind: KindText, Required: true},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true},
			{Name: "benefices_attendus", Label: "Bénéfices attendus", Kind: KindTextarea, Required: true},
			{Name: "investissement_requis", Label: "Investissement requis", Kind: KindNumber},
			{Name: "devise", Label: "Devise", Kind: KindSelect, Required: true, Options: currencies,
				VisibleWhen: NotEmpty("investissement_requis")},
			{Name: "duree_retour_investissement", Label: "Durée de retour sur investissement", Kind: KindText},
			{Name: "localisation", Label: "Localisation", Kind: KindText},
			{Name: "conditions_participation", Label: "Conditions de participation", Kind: KindTextarea},
			{Name: "phone", Label: "Téléphone", Kind: KindPhone, PayloadKey: "contacts"},
			{Name: "email", Label: "Email", Kind: KindEmail},
			{Name: "date_limite", Label: "Date limite", Kind: KindDate},
			{Name: "opportunity_file", Label: "Document", Kind: KindFile, Slot: attachment.KindDocument, Accept: doc.Accept()},
			imageField(false),
		},
	}
}
