package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"solifin/internal/interfaces"
	"solifin/internal/logging"
	"solifin/internal/models"
)

var contactEmailKeys = []string{"email", "email_contact"}

// ModerationNotifier mails the publication's contact address after an
// approval or rejection. Without a sender, or without an address, the
// decision is only logged.
type ModerationNotifier struct {
	sender EmailSender
	logger *slog.Logger
}

var _ interfaces.ModerationNotifier = (*ModerationNotifier)(nil)

func NewModerationNotifier(sender EmailSender, logger *slog.Logger) *ModerationNotifier {
	return &ModerationNotifier{sender: sender, logger: logger.With("component", "moderation_notifier")}
}

func contactEmail(p *models.Publication) string {
	for _, k := range contactEmailKeys {
		if s, ok := p.Attributes[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func moderationMessage(p *models.Publication) (string, string) {
	switch p.ApprovalStatus {
	case models.ApprovalStatusApproved:
		return fmt.Sprintf("Votre publication « %s » a été approuvée", p.Title),
			fmt.Sprintf("Bonjour,\n\nVotre publication « %s » est désormais visible.\n", p.Title)
	case models.ApprovalStatusRejected:
		return fmt.Sprintf("Votre publication « %s » a été rejetée", p.Title),
			fmt.Sprintf("Bonjour,\n\nVotre publication « %s » a été rejetée.\nMotif : %s\n\nVous pouvez la modifier puis la soumettre à nouveau.\n", p.Title, p.RejectionReason)
	}
	return "", ""
}

func (n *ModerationNotifier) PublicationModerated(ctx context.Context, p *models.Publication) error {
	subject, body := moderationMessage(p)
	if subject == "" {
		return nil
	}
	attrs := []any{"type", p.Type, "id", p.ID, "owner", p.OwnerID, "statut", p.ApprovalStatus}
	to := contactEmail(p)
	if n.sender == nil || to == "" {
		n.logger.InfoContext(ctx, subject, attrs...)
		return nil
	}
	if err := n.sender.Send(to, subject, body); err != nil {
		n.logger.ErrorContext(ctx, "moderation mail failed", append(attrs, logging.Err(err))...)
		return fmt.Errorf("send moderation mail: %w", err)
	}
	n.logger.InfoContext(ctx, "moderation mail sent", append(attrs, "to", to)...)
	return nil
}
