package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// InvitationRepository manages parent invitation records.
type InvitationRepository struct {
	db *sqlx.DB
}

// NewInvitationRepository constructs an InvitationRepository.
func NewInvitationRepository(db *sqlx.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// Insert stores a pending invitation.
func (r *InvitationRepository) Insert(ctx context.Context, invitation *models.Invitation) error {
	query := `INSERT INTO invitations (id, classroom_id, child_name, parent_email, token, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		invitation.ID, invitation.ClassroomID, invitation.ChildName,
		invitation.ParentEmail, invitation.Token, invitation.Status, invitation.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

// UpdateStatus records the delivery outcome for an invitation.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error {
	query := "UPDATE invitations SET status = $1, sent_at = $2 WHERE id = $3"
	var sentAt *time.Time
	if status == models.InvitationSent {
		now := time.Now().UTC()
		sentAt = &now
	}
	if _, err := r.db.ExecContext(ctx, query, status, sentAt, id); err != nil {
		return fmt.Errorf("update invitation status: %w", err)
	}
	return nil
}

// ListByClassroom returns invitations for a classroom, newest first.
func (r *InvitationRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Invitation, error) {
	query := `SELECT id, classroom_id, child_name, parent_email, token, status, sent_at, created_at
        FROM invitations WHERE classroom_id = $1 ORDER BY created_at DESC`
	var invitations []models.Invitation
	if err := r.db.SelectContext(ctx, &invitations, query, classroomID); err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}
