package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"solifin/internal/interfaces"
	"solifin/internal/models"
)

var columns = []string{"id", "type", "user_id", "titre", "description", "contacts", "statut", "etat", "raison_rejet", "attributes", "attachments", "created_at", "updated_at"}

func TestGetByIDDecodesJSONColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 2, 19, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+publicationColumns+" FROM publications WHERE id = $1 AND type = $2")).
		WithArgs("ad-1", "advertisement").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"ad-1", "advertisement", "u1", "Sac de riz", "25kg", "+225 701234567", "rejected", "disponible",
			"photo floue", []byte(`{"categorie":"produit","conditions_livraison":["Abidjan"]}`),
			[]byte(`[{"slot":"image","url":"https://cdn/ads/ad-1.png","key":"advertisements/ad-1/image.png"}]`),
			created, created,
		))

	repo := NewPublicationRepository(db)
	p, err := repo.GetByID(context.Background(), models.PublicationTypeAdvertisement, "ad-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if p.RejectionReason != "photo floue" || p.ApprovalStatus != models.ApprovalStatusRejected {
		t.Fatalf("unexpected lifecycle fields: %+v", p)
	}
	if p.Attributes["categorie"] != "produit" {
		t.Fatalf("attributes not decoded: %v", p.Attributes)
	}
	a, ok := p.Attachment("image")
	if !ok || a.Key != "advertisements/ad-1/image.png" {
		t.Fatalf("attachment key not decoded: %+v", p.Attachments)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM publications").WillReturnRows(sqlmock.NewRows(columns))

	_, err = NewPublicationRepository(db).GetByID(context.Background(), models.PublicationTypeJobOffer, "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListAppliesFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(
		"FROM publications WHERE type = $1 AND statut = $2 AND (titre ILIKE $3 OR description ILIKE $4 OR contacts ILIKE $5 OR "+
			"COALESCE(attributes->>'adresse', attributes->>'lieu', attributes->>'localisation', '') ILIKE $6) "+
			"ORDER BY created_at DESC LIMIT 6 OFFSET 6")).
		WithArgs("job_offer", "pending", `%50\%%`, `%50\%%`, `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows(columns))

	out, err := NewPublicationRepository(db).List(context.Background(), interfaces.PublicationFilter{
		Type:   models.PublicationTypeJobOffer,
		Status: models.ApprovalStatusPending,
		Search: "50%",
		Limit:  6,
		Offset: 6,
	})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM publications WHERE user_id = $1 AND etat = $2")).
		WithArgs("u1", "termine").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewPublicationRepository(db).Count(context.Background(), interfaces.PublicationFilter{
		OwnerID: "u1",
		State:   models.AvailabilityCompleted,
	})
	if err != nil || n != 3 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO publications").WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Publication{Type: models.PublicationTypeBusinessOpportunity, OwnerID: "u1", Title: "Ferme avicole",
		ApprovalStatus: models.ApprovalStatusPending, Availability: models.AvailabilityAvailable}
	if err := NewPublicationRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamps, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE publications SET attachments = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM publications WHERE id = $1 AND type = $2")).
		WithArgs("ad-9", "advertisement").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPublicationRepository(db)
	err = repo.Update(context.Background(), &models.Publication{ID: "ad-9", Type: models.PublicationTypeAdvertisement})
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
	err = repo.Delete(context.Background(), models.PublicationTypeAdvertisement, "ad-9")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestPageGetOrCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO pages").WithArgs(sqlmock.AnyArg(), "u1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM pages").WithArgs("u1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "user_id", "nombre_abonnes", "nombre_likes", "photo_de_couverture", "created_at"}).
			AddRow("pg-1", "u1", 120, 45, nil, time.Now()))

	page, err := NewPageRepository(db).GetOrCreateByOwner(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetOrCreateByOwner: %v", err)
	}
	if page.Subscribers != 120 || page.Likes != 45 || page.CoverPhoto != "" {
		t.Fatalf("unexpected page %+v", page)
	}
}
