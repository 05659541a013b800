package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

func newProfileMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var profileColumns = []string{"id", "child_name", "grade_level", "classroom_id", "consolidated_scores", "confidence", "completeness", "parent_assessments", "teacher_assessments", "version", "created_at", "updated_at"}

func TestProfileRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectExec("INSERT INTO profiles").
		WithArgs("p1", "Ada", "K", "c1", sqlmock.AnyArg(), 0.0, 0.0, 0, 0, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	now := time.Now().UTC()
	err := repo.Create(context.Background(), &models.Profile{
		ID: "p1", ChildName: "Ada", GradeLevel: "K", ClassroomID: "c1",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("p1", "Ada", "K", "c1", []byte(`{"Math":4.5}`), 74.0, 100.0, 1, 1, 2, now, now))

	mock.ExpectQuery("SELECT (.+) FROM assessments WHERE profile_id").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "profile_id", "quiz_type", "respondent_type", "age_group", "age_group_months", "rubric", "responses", "preferences", "created_at"}).
			AddRow("a1", "p1", "parent_home", "parent", "4-5", 54, "v1", []byte(`{"1":4}`), []byte(`null`), now).
			AddRow("a2", "p1", "teacher_classroom", "teacher", "4-5", 54, "clp2", []byte(`{"15":5}`), []byte(`{"seating":"front"}`), now))

	profile, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Ada", profile.ChildName)
	assert.Equal(t, 2, profile.Version)
	assert.InDelta(t, 4.5, profile.ConsolidatedScores[models.CategoryMath], 0.001)
	require.Len(t, profile.Records, 2)
	assert.Equal(t, models.Score(4), profile.Records[0].Responses[models.QuestionID(1)])
	assert.Equal(t, models.RubricCLP2, profile.Records[1].Rubric)
	assert.Equal(t, "front", profile.Records[1].Preferences["seating"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestProfileRepositoryListByClassroom(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE classroom_id = $1 ORDER BY child_name ASC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("p1", "Ada", "K", "c1", []byte(`{}`), 30.0, 50.0, 1, 0, 1, now, now).
			AddRow("p2", "Ben", "K", "c1", []byte(`{}`), 0.0, 0.0, 0, 0, 0, now, now))

	profiles, err := repo.ListByClassroom(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ada", profiles[0].ChildName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositorySaveAssessment(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assessments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE profiles SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	profile := &models.Profile{ID: "p1", Version: 3}
	record := &models.AssessmentRecord{ID: "a1", ProfileID: "p1", QuizType: models.QuizParentHome, RespondentType: models.RespondentParent, Responses: models.ResponseMap{1: 4}}

	err := repo.SaveAssessment(context.Background(), profile, record)
	require.NoError(t, err)
	assert.Equal(t, 4, profile.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositorySaveAssessmentVersionConflict(t *testing.T) {
	db, mock, cleanup := newProfileMock(t)
	defer cleanup()
	repo := NewProfileRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO assessments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE profiles SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	profile := &models.Profile{ID: "p1", Version: 3}
	record := &models.AssessmentRecord{ID: "a1", ProfileID: "p1"}

	err := repo.SaveAssessment(context.Background(), profile, record)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.Equal(t, 3, profile.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
