package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// ProfileRepository manages persistence for profiles and their assessment
// records on Postgres.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a ProfileRepository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// profileRow mirrors the profiles table with JSON payload columns.
type profileRow struct {
	ID                 string    `db:"id"`
	ChildName          string    `db:"child_name"`
	GradeLevel         string    `db:"grade_level"`
	ClassroomID        string    `db:"classroom_id"`
	ConsolidatedScores []byte    `db:"consolidated_scores"`
	Confidence         float64   `db:"confidence"`
	Completeness       float64   `db:"completeness"`
	ParentAssessments  int       `db:"parent_assessments"`
	TeacherAssessments int       `db:"teacher_assessments"`
	Version            int       `db:"version"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type assessmentRow struct {
	ID             string    `db:"id"`
	ProfileID      string    `db:"profile_id"`
	QuizType       string    `db:"quiz_type"`
	RespondentType string    `db:"respondent_type"`
	AgeGroup       string    `db:"age_group"`
	AgeGroupMonths int       `db:"age_group_months"`
	Rubric         string    `db:"rubric"`
	Responses      []byte    `db:"responses"`
	Preferences    []byte    `db:"preferences"`
	CreatedAt      time.Time `db:"created_at"`
}

const selectProfileColumns = `id, child_name, grade_level, classroom_id, consolidated_scores, confidence, completeness, parent_assessments, teacher_assessments, version, created_at, updated_at`

// Create inserts a new empty profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	scores, err := json.Marshal(profile.ConsolidatedScores)
	if err != nil {
		return fmt.Errorf("marshal consolidated scores: %w", err)
	}
	query := `INSERT INTO profiles (id, child_name, grade_level, classroom_id, consolidated_scores, confidence, completeness, parent_assessments, teacher_assessments, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = r.db.ExecContext(ctx, query,
		profile.ID, profile.ChildName, profile.GradeLevel, profile.ClassroomID,
		scores, profile.Confidence, profile.Completeness,
		profile.ParentAssessments, profile.TeacherAssessments, profile.Version,
		profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// FindByID fetches a profile with its full assessment record list.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var row profileRow
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE id = $1", selectProfileColumns)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	profile, err := row.toModel()
	if err != nil {
		return nil, err
	}

	var recordRows []assessmentRow
	recordQuery := `SELECT id, profile_id, quiz_type, respondent_type, age_group, age_group_months, rubric, responses, preferences, created_at
        FROM assessments WHERE profile_id = $1 ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &recordRows, recordQuery, id); err != nil {
		return nil, fmt.Errorf("load assessments: %w", err)
	}
	for _, rec := range recordRows {
		record, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		profile.Records = append(profile.Records, *record)
	}
	return profile, nil
}

// ListByClassroom returns profiles (without record lists) for a classroom.
func (r *ProfileRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.Profile, error) {
	var rows []profileRow
	query := fmt.Sprintf("SELECT %s FROM profiles WHERE classroom_id = $1 ORDER BY child_name ASC", selectProfileColumns)
	if err := r.db.SelectContext(ctx, &rows, query, classroomID); err != nil {
		return nil, fmt.Errorf("list classroom profiles: %w", err)
	}
	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		profile, err := row.toModel()
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, nil
}

// SaveAssessment appends the record and writes the recomputed derived fields
// in one transaction. The update is guarded by the version the profile was
// read at; a concurrent consolidation surfaces as ErrVersionConflict.
func (r *ProfileRepository) SaveAssessment(ctx context.Context, profile *models.Profile, record *models.AssessmentRecord) error {
	responses, err := json.Marshal(record.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	preferences, err := json.Marshal(record.Preferences)
	if err != nil {
		return fmt.Errorf("marshal preferences: %w", err)
	}
	scores, err := json.Marshal(profile.ConsolidatedScores)
	if err != nil {
		return fmt.Errorf("marshal consolidated scores: %w", err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save assessment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	insertQuery := `INSERT INTO assessments (id, profile_id, quiz_type, respondent_type, age_group, age_group_months, rubric, responses, preferences, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := tx.ExecContext(ctx, insertQuery,
		record.ID, record.ProfileID, record.QuizType, record.RespondentType,
		record.AgeGroup, record.AgeGroupMonths, record.Rubric,
		responses, preferences, record.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	updateQuery := `UPDATE profiles SET consolidated_scores = $1, confidence = $2, completeness = $3,
        parent_assessments = $4, teacher_assessments = $5, version = version + 1, updated_at = $6
        WHERE id = $7 AND version = $8`
	result, err := tx.ExecContext(ctx, updateQuery,
		scores, profile.Confidence, profile.Completeness,
		profile.ParentAssessments, profile.TeacherAssessments,
		profile.UpdatedAt, profile.ID, profile.Version,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check profile update: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save assessment: %w", err)
	}
	profile.Version++
	return nil
}

func (row profileRow) toModel() (*models.Profile, error) {
	profile := &models.Profile{
		ID:                 row.ID,
		ChildName:          row.ChildName,
		GradeLevel:         row.GradeLevel,
		ClassroomID:        row.ClassroomID,
		Confidence:         row.Confidence,
		Completeness:       row.Completeness,
		ParentAssessments:  row.ParentAssessments,
		TeacherAssessments: row.TeacherAssessments,
		Version:            row.Version,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if len(row.ConsolidatedScores) > 0 {
		if err := json.Unmarshal(row.ConsolidatedScores, &profile.ConsolidatedScores); err != nil {
			return nil, fmt.Errorf("unmarshal consolidated scores: %w", err)
		}
	}
	return profile, nil
}

func (row assessmentRow) toModel() (*models.AssessmentRecord, error) {
	record := &models.AssessmentRecord{
		ID:             row.ID,
		ProfileID:      row.ProfileID,
		QuizType:       models.QuizType(row.QuizType),
		RespondentType: models.RespondentType(row.RespondentType),
		AgeGroup:       row.AgeGroup,
		AgeGroupMonths: row.AgeGroupMonths,
		Rubric:         models.RubricVersion(row.Rubric),
		CreatedAt:      row.CreatedAt,
	}
	if len(row.Responses) > 0 {
		if err := json.Unmarshal(row.Responses, &record.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses: %w", err)
		}
	}
	if len(row.Preferences) > 0 && string(row.Preferences) != "null" {
		if err := json.Unmarshal(row.Preferences, &record.Preferences); err != nil {
			return nil, fmt.Errorf("unmarshal preferences: %w", err)
		}
	}
	return record, nil
}
