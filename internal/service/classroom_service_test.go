package service

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/pkg/storage"
)

type fakeClassroomStore struct {
	classrooms map[string]*models.Classroom
	factors    []models.RiskFactor
}

func (f *fakeClassroomStore) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	c, ok := f.classrooms[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeClassroomStore) InsertRiskFactor(ctx context.Context, factor *models.RiskFactor) error {
	f.factors = append(f.factors, *factor)
	return nil
}

func (f *fakeClassroomStore) ListRiskFactors(ctx context.Context, classroomID string) ([]models.RiskFactor, error) {
	var out []models.RiskFactor
	for _, factor := range f.factors {
		if factor.ClassroomID == classroomID {
			out = append(out, factor)
		}
	}
	return out, nil
}

func classroomFixture(t *testing.T) (*ClassroomService, *fakeClassroomStore, *fakeProfileStore) {
	t.Helper()
	classrooms := &fakeClassroomStore{classrooms: map[string]*models.Classroom{
		"c1": {ID: "c1", TeacherID: "u1", Name: "Room 4"},
	}}
	profiles := newFakeProfileStore()

	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report_secret", time.Hour)

	svc := NewClassroomService(classrooms, profiles, nil, files, signer, validator.New(), zap.NewNop(), nil, time.Minute)
	return svc, classrooms, profiles
}

func seedProfile(store *fakeProfileStore, id, name string, scores models.CategoryScores, confidence, completeness float64, parents, teachers int) {
	store.profiles[id] = &models.Profile{
		ID:                 id,
		ChildName:          name,
		ClassroomID:        "c1",
		ConsolidatedScores: scores,
		Confidence:         confidence,
		Completeness:       completeness,
		ParentAssessments:  parents,
		TeacherAssessments: teachers,
	}
}

func TestOverviewAggregatesClassroom(t *testing.T) {
	svc, _, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{models.CategoryMath: 4.0}, 60, 50, 1, 0)
	seedProfile(profiles, "p2", "Ben", models.CategoryScores{models.CategoryMath: 2.0}, 40, 50, 0, 1)
	seedProfile(profiles, "p3", "Cleo", nil, 0, 0, 0, 0)

	res, err := svc.Overview(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 3, res.StudentCount)
	assert.Equal(t, 2, res.AssessedCount)
	assert.Equal(t, 2, res.TotalAssessments)
	assert.InDelta(t, 50.0, res.AvgConfidence, 0.01)
	require.Len(t, res.CategoryAverages, 1)
	assert.Equal(t, models.CategoryMath, res.CategoryAverages[0].Category)
	assert.InDelta(t, 3.0, res.CategoryAverages[0].Average, 0.01)
	assert.Equal(t, 2, res.CategoryAverages[0].Samples)

	// Students sorted by name.
	require.Len(t, res.Students, 3)
	assert.Equal(t, "Ada", res.Students[0].ChildName)
	assert.Equal(t, "Ben", res.Students[1].ChildName)
	assert.Equal(t, "Cleo", res.Students[2].ChildName)
}

func TestOverviewAndAtRiskObserveQueryDuration(t *testing.T) {
	classrooms := &fakeClassroomStore{classrooms: map[string]*models.Classroom{
		"c1": {ID: "c1", TeacherID: "u1", Name: "Room 4"},
	}}
	profiles := newFakeProfileStore()
	metrics := NewMetricsService()
	svc := NewClassroomService(classrooms, profiles, nil, nil, nil, validator.New(), zap.NewNop(), metrics, time.Minute)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{models.CategoryMath: 4.0}, 60, 50, 1, 0)

	_, err := svc.Overview(context.Background(), "c1")
	require.NoError(t, err)
	_, err = svc.AtRisk(context.Background(), "c1")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metrics.Handler().ServeHTTP(w, req)

	body := w.Body.String()
	assert.Contains(t, body, `db_query_duration_seconds_count{query="classroom_overview"} 1`)
	assert.Contains(t, body, `db_query_duration_seconds_count{query="classroom_at_risk"} 1`)
}

func TestOverviewUnknownClassroom(t *testing.T) {
	svc, _, _ := classroomFixture(t)

	_, err := svc.Overview(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestAtRiskFlagsLowScores(t *testing.T) {
	svc, _, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{
		models.CategoryLiteracy: 1.5,
		models.CategoryMath:     2.0,
	}, 25, 40, 1, 0)
	seedProfile(profiles, "p2", "Ben", models.CategoryScores{models.CategoryMath: 4.5}, 80, 100, 1, 1)

	res, err := svc.AtRisk(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 2, res.Evaluated)
	require.Len(t, res.AtRisk, 1)
	flagged := res.AtRisk[0]
	assert.Equal(t, "Ada", flagged.ChildName)
	assert.Equal(t, models.RiskHigh, flagged.Level)
	assert.ElementsMatch(t, []models.SkillCategory{models.CategoryLiteracy, models.CategoryMath}, flagged.Concerns)
	assert.NotEmpty(t, flagged.Recommendation)
}

func TestAtRiskIncludesManualFactors(t *testing.T) {
	svc, classrooms, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{models.CategoryMath: 3.5}, 70, 100, 1, 1)
	classrooms.factors = append(classrooms.factors, models.RiskFactor{
		ID: "f1", ProfileID: "p1", ClassroomID: "c1", Factor: "attendance", Severity: models.RiskHigh,
	})

	res, err := svc.AtRisk(context.Background(), "c1")
	require.NoError(t, err)

	require.Len(t, res.AtRisk, 1)
	assert.Equal(t, models.RiskModerate, res.AtRisk[0].Level)
	require.Len(t, res.AtRisk[0].ManualFactors, 1)
	assert.Equal(t, "attendance", res.AtRisk[0].ManualFactors[0].Factor)
}

func TestAtRiskDeterministicOrdering(t *testing.T) {
	svc, _, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{models.CategoryMath: 1.0, models.CategoryLiteracy: 1.0, models.CategoryContent: 1.0}, 20, 30, 1, 0)
	seedProfile(profiles, "p2", "Ben", models.CategoryScores{models.CategoryMath: 1.0, models.CategoryLiteracy: 1.0}, 20, 30, 1, 0)

	first, err := svc.AtRisk(context.Background(), "c1")
	require.NoError(t, err)
	second, err := svc.AtRisk(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.AtRisk, 2)
	assert.Equal(t, "Ada", first.AtRisk[0].ChildName)
}

func TestRecordRiskFactor(t *testing.T) {
	svc, classrooms, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", nil, 0, 0, 0, 0)

	factor, err := svc.RecordRiskFactor(context.Background(), "c1", "u1", dto.RecordRiskFactorRequest{
		ProfileID: "p1",
		Factor:    "attendance",
		Severity:  models.RiskModerate,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, factor.ID)
	assert.Equal(t, "u1", factor.RecordedBy)
	require.Len(t, classrooms.factors, 1)
}

func TestRecordRiskFactorUnknownProfile(t *testing.T) {
	svc, _, _ := classroomFixture(t)

	_, err := svc.RecordRiskFactor(context.Background(), "c1", "u1", dto.RecordRiskFactorRequest{
		ProfileID: "missing",
		Factor:    "attendance",
		Severity:  models.RiskLow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExportReportCSVRoundTrip(t *testing.T) {
	svc, _, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", models.CategoryScores{models.CategoryMath: 4.0}, 60, 50, 1, 0)

	res, err := svc.ExportReport(context.Background(), "c1", "csv")
	require.NoError(t, err)

	assert.Equal(t, "csv", res.Format)
	assert.NotEmpty(t, res.DownloadToken)

	path, err := svc.ResolveReport(res.DownloadToken)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Ada")
}

func TestExportReportRejectsUnknownFormat(t *testing.T) {
	svc, _, _ := classroomFixture(t)

	_, err := svc.ExportReport(context.Background(), "c1", "xlsx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv or pdf")
}

func TestResolveReportRejectsTamperedToken(t *testing.T) {
	svc, _, profiles := classroomFixture(t)
	seedProfile(profiles, "p1", "Ada", nil, 0, 0, 1, 0)

	res, err := svc.ExportReport(context.Background(), "c1", "csv")
	require.NoError(t, err)

	_, err = svc.ResolveReport(res.DownloadToken + "x")
	require.Error(t, err)
}

func TestEvaluateRiskHealthyProfile(t *testing.T) {
	profile := &models.Profile{
		ID:                 "p1",
		ChildName:          "Ben",
		ConsolidatedScores: models.CategoryScores{models.CategoryMath: 4.0},
		Confidence:         80,
		Completeness:       100,
		ParentAssessments:  1,
		TeacherAssessments: 1,
	}
	assessment := evaluateRisk(profile, nil)

	assert.Equal(t, models.RiskLow, assessment.Level)
	assert.Zero(t, assessment.Score)
	assert.Empty(t, assessment.Concerns)
}
