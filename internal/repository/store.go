// Package repository provides the persistence layer. Two interchangeable
// backends implement the store interfaces: the Postgres repositories in this
// package and the in-memory fallback store, selected at startup via
// configuration.
package repository

import (
	"context"
	"errors"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// ErrVersionConflict signals that an optimistic profile write lost the race
// with a concurrent consolidation; callers re-read and retry.
var ErrVersionConflict = errors.New("profile version conflict")

// ProfileStore is the data source contract for profile aggregates.
type ProfileStore interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Profile, error)
	// SaveAssessment atomically appends the record and writes the profile's
	// recomputed derived fields, guarded by the profile version.
	SaveAssessment(ctx context.Context, profile *models.Profile, record *models.AssessmentRecord) error
}

// UserStore is the data source contract for accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string) error
}

// ClassroomStore is the data source contract for classrooms and risk records.
type ClassroomStore interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	InsertRiskFactor(ctx context.Context, factor *models.RiskFactor) error
	ListRiskFactors(ctx context.Context, classroomID string) ([]models.RiskFactor, error)
}

// InvitationStore is the data source contract for parent invitations.
type InvitationStore interface {
	Insert(ctx context.Context, invitation *models.Invitation) error
	UpdateStatus(ctx context.Context, id string, status models.InvitationStatus) error
	ListByClassroom(ctx context.Context, classroomID string) ([]models.Invitation, error)
}
