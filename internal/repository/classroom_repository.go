package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// ClassroomRepository manages classrooms and manually recorded risk factors.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindByID fetches a classroom.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := "SELECT id, teacher_id, name, grade_band, created_at FROM classrooms WHERE id = $1"
	var classroom models.Classroom
	if err := r.db.GetContext(ctx, &classroom, query, id); err != nil {
		return nil, err
	}
	return &classroom, nil
}

// InsertRiskFactor stores a manually recorded concern.
func (r *ClassroomRepository) InsertRiskFactor(ctx context.Context, factor *models.RiskFactor) error {
	query := `INSERT INTO risk_factors (id, profile_id, classroom_id, factor, severity, notes, recorded_by, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		factor.ID, factor.ProfileID, factor.ClassroomID, factor.Factor,
		factor.Severity, factor.Notes, factor.RecordedBy, factor.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert risk factor: %w", err)
	}
	return nil
}

// ListRiskFactors returns all manual risk factors recorded for a classroom.
func (r *ClassroomRepository) ListRiskFactors(ctx context.Context, classroomID string) ([]models.RiskFactor, error) {
	query := `SELECT id, profile_id, classroom_id, factor, severity, notes, recorded_by, created_at
        FROM risk_factors WHERE classroom_id = $1 ORDER BY created_at DESC`
	var factors []models.RiskFactor
	if err := r.db.SelectContext(ctx, &factors, query, classroomID); err != nil {
		return nil, fmt.Errorf("list risk factors: %w", err)
	}
	return factors, nil
}
