package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"solifin/internal/interfaces"
	"solifin/internal/models"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const publicationColumns = "id, type, user_id, titre, description, contacts, statut, etat, raison_rejet, attributes, attachments, created_at, updated_at"

type publicationRepository struct {
	db *sql.DB
}

func NewPublicationRepository(db *sql.DB) interfaces.PublicationRepository {
	return &publicationRepository{db: db}
}

// storedAttachment is the JSONB shape of an attachment; unlike the API
// shape it keeps the object key.
type storedAttachment struct {
	Slot     string `json:"slot"`
	URL      string `json:"url"`
	Name     string `json:"name,omitempty"`
	Key      string `json:"key,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

func marshalJSONColumns(p *models.Publication) ([]byte, []byte, error) {
	attrs := p.Attributes
	if attrs == nil {
		attrs = map[string]any{}
	}
	attrsJSON, err := json.Marshal(attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal attributes: %w", err)
	}
	stored := make([]storedAttachment, 0, len(p.Attachments))
	for _, a := range p.Attachments {
		stored = append(stored, storedAttachment(a))
	}
	attachmentsJSON, err := json.Marshal(stored)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal attachments: %w", err)
	}
	return attrsJSON, attachmentsJSON, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPublication(row rowScanner) (*models.Publication, error) {
	var p models.Publication
	var reason sql.NullString
	var attrsJSON, attachJSON []byte
	if err := row.Scan(
		&p.ID, &p.Type, &p.OwnerID, &p.Title, &p.Description, &p.Contacts,
		&p.ApprovalStatus, &p.Availability, &reason, &attrsJSON, &attachJSON,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.RejectionReason = reason.String
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &p.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}
	if len(attachJSON) > 0 {
		var stored []storedAttachment
		if err := json.Unmarshal(attachJSON, &stored); err != nil {
			return nil, fmt.Errorf("unmarshal attachments: %w", err)
		}
		for _, a := range stored {
			p.Attachments = append(p.Attachments, models.Attachment(a))
		}
	}
	return &p, nil
}

func (r *publicationRepository) Create(ctx context.Context, p *models.Publication) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	attrsJSON, attachmentsJSON, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}
	query, args, err := psql.Insert("publications").
		Columns("id", "type", "user_id", "titre", "description", "contacts", "statut", "etat", "raison_rejet", "attributes", "attachments", "created_at", "updated_at").
		Values(p.ID, p.Type, p.OwnerID, p.Title, p.Description, p.Contacts, p.ApprovalStatus, p.Availability,
			nullString(p.RejectionReason), attrsJSON, attachmentsJSON, p.CreatedAt, p.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to create publication: %w", err)
	}
	return nil
}

func (r *publicationRepository) GetByID(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error) {
	query, args, err := psql.Select(publicationColumns).From("publications").
		Where(sq.Eq{"id": id, "type": t}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	p, err := scanPublication(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get publication: %w", err)
	}
	return p, nil
}

func applyFilter(b sq.SelectBuilder, f interfaces.PublicationFilter) sq.SelectBuilder {
	if f.Type != "" {
		b = b.Where(sq.Eq{"type": f.Type})
	}
	if f.OwnerID != "" {
		b = b.Where(sq.Eq{"user_id": f.OwnerID})
	}
	if f.Status != "" {
		b = b.Where(sq.Eq{"statut": f.Status})
	}
	if f.State != "" {
		b = b.Where(sq.Eq{"etat": f.State})
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		b = b.Where(sq.Or{
			sq.ILike{"titre": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"contacts": pattern},
			sq.Expr("COALESCE(attributes->>'adresse', attributes->>'lieu', attributes->>'localisation', '') ILIKE ?", pattern),
		})
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *publicationRepository) List(ctx context.Context, f interfaces.PublicationFilter) ([]models.Publication, error) {
	b := applyFilter(psql.Select(publicationColumns).From("publications"), f).
		OrderBy("created_at DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		b = b.Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list publications: %w", err)
	}
	defer rows.Close()

	out := []models.Publication{}
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publication: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *publicationRepository) Count(ctx context.Context, f interfaces.PublicationFilter) (int, error) {
	query, args, err := applyFilter(psql.Select("COUNT(*)").From("publications"), f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count publications: %w", err)
	}
	return count, nil
}

func (r *publicationRepository) Update(ctx context.Context, p *models.Publication) error {
	p.UpdatedAt = time.Now().UTC()
	attrsJSON, attachmentsJSON, err := marshalJSONColumns(p)
	if err != nil {
		return err
	}
	query, args, err := psql.Update("publications").
		SetMap(map[string]any{
			"titre":        p.Title,
			"description":  p.Description,
			"contacts":     p.Contacts,
			"statut":       p.ApprovalStatus,
			"etat":         p.Availability,
			"raison_rejet": nullString(p.RejectionReason),
			"attributes":   attrsJSON,
			"attachments":  attachmentsJSON,
			"updated_at":   p.UpdatedAt,
		}).
		Where(sq.Eq{"id": p.ID, "type": p.Type}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update publication: %w", err)
	}
	return requireAffected(res)
}

func (r *publicationRepository) Delete(ctx context.Context, t models.PublicationType, id string) error {
	query, args, err := psql.Delete("publications").Where(sq.Eq{"id": id, "type": t}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete publication: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
