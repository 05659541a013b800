package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
	"github.com/Suraj757/learning-profile-api/pkg/export"
	"github.com/Suraj757/learning-profile-api/pkg/storage"
)

// At-risk scoring rules. Evaluation is a pure function of the consolidated
// profile plus any manually recorded factors, so repeated runs over unchanged
// data always produce the same report.
const (
	riskCategoryThreshold  = 2.5
	riskCategoryPoints     = 20.0
	riskLowConfidence      = 30.0
	riskLowConfidencePts   = 15.0
	riskLowCompleteness    = 50.0
	riskLowCompletenessPts = 10.0

	riskModerateCutoff = 25.0
	riskHighCutoff     = 50.0
)

var manualFactorPoints = map[models.RiskLevel]float64{
	models.RiskLow:      5,
	models.RiskModerate: 15,
	models.RiskHigh:     25,
}

// ClassroomService aggregates profiles into classroom analytics, at-risk
// reports and downloadable exports.
type ClassroomService struct {
	classrooms repository.ClassroomStore
	profiles   repository.ProfileStore
	cache      *CacheService
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	files      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cacheTTL   time.Duration
}

// NewClassroomService constructs a ClassroomService. metrics may be nil.
func NewClassroomService(
	classrooms repository.ClassroomStore,
	profiles repository.ProfileStore,
	cache *CacheService,
	files *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cacheTTL time.Duration,
) *ClassroomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassroomService{
		classrooms: classrooms,
		profiles:   profiles,
		cache:      cache,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		files:      files,
		signer:     signer,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cacheTTL:   cacheTTL,
	}
}

func overviewCacheKey(classroomID string) string {
	return "classroom:overview:" + classroomID
}

// Overview aggregates every profile in the classroom into counts, averages
// and per-category means. Results are cached per classroom.
func (s *ClassroomService) Overview(ctx context.Context, classroomID string) (*dto.ClassroomOverviewResponse, error) {
	if _, err := s.loadClassroom(ctx, classroomID); err != nil {
		return nil, err
	}

	cached := &dto.ClassroomOverviewResponse{}
	if hit, _ := s.cache.Get(ctx, overviewCacheKey(classroomID), cached); hit {
		return cached, nil
	}

	start := time.Now()
	profiles, err := s.profiles.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classroom profiles")
	}
	s.metrics.ObserveDBQuery("classroom_overview", time.Since(start))

	overview := s.buildOverview(classroomID, profiles)

	if err := s.cache.Set(ctx, overviewCacheKey(classroomID), overview, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache classroom overview", zap.String("classroom_id", classroomID), zap.Error(err))
	}
	return overview, nil
}

// InvalidateOverview drops the cached aggregation after a profile in the
// classroom changes.
func (s *ClassroomService) InvalidateOverview(ctx context.Context, classroomID string) {
	if classroomID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, overviewCacheKey(classroomID)); err != nil {
		s.logger.Warn("failed to invalidate classroom overview", zap.String("classroom_id", classroomID), zap.Error(err))
	}
}

func (s *ClassroomService) buildOverview(classroomID string, profiles []models.Profile) *dto.ClassroomOverviewResponse {
	students := make([]models.ClassroomProfileRow, 0, len(profiles))
	catSums := map[models.SkillCategory]float64{}
	catCounts := map[models.SkillCategory]int{}

	assessed := 0
	totalAssessments := 0
	var confidenceSum, completenessSum float64

	for i := range profiles {
		p := &profiles[i]
		students = append(students, models.ClassroomProfileRow{
			ProfileID:          p.ID,
			ChildName:          p.ChildName,
			Confidence:         p.Confidence,
			Completeness:       p.Completeness,
			ParentAssessments:  p.ParentAssessments,
			TeacherAssessments: p.TeacherAssessments,
		})
		if p.TotalAssessments() == 0 {
			continue
		}
		assessed++
		totalAssessments += p.TotalAssessments()
		confidenceSum += p.Confidence
		completenessSum += p.Completeness
		for cat, score := range p.ConsolidatedScores {
			catSums[cat] += score
			catCounts[cat]++
		}
	}

	averages := make([]models.CategoryAverage, 0, len(catSums))
	for _, cat := range models.AllCategories {
		n := catCounts[cat]
		if n == 0 {
			continue
		}
		averages = append(averages, models.CategoryAverage{
			Category: cat,
			Average:  round1(catSums[cat] / float64(n)),
			Samples:  n,
		})
	}

	sort.Slice(students, func(i, j int) bool { return students[i].ChildName < students[j].ChildName })

	overview := &dto.ClassroomOverviewResponse{
		ClassroomID:      classroomID,
		StudentCount:     len(profiles),
		AssessedCount:    assessed,
		TotalAssessments: totalAssessments,
		CategoryAverages: averages,
		Students:         students,
	}
	if assessed > 0 {
		overview.AvgConfidence = round1(confidenceSum / float64(assessed))
		overview.AvgCompleteness = round1(completenessSum / float64(assessed))
	}
	return overview
}

// AtRisk evaluates every profile in the classroom against fixed scoring
// rules and returns children needing attention, highest score first.
func (s *ClassroomService) AtRisk(ctx context.Context, classroomID string) (*dto.AtRiskResponse, error) {
	if _, err := s.loadClassroom(ctx, classroomID); err != nil {
		return nil, err
	}

	start := time.Now()
	profiles, err := s.profiles.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classroom profiles")
	}
	s.metrics.ObserveDBQuery("classroom_at_risk", time.Since(start))

	factors, err := s.classrooms.ListRiskFactors(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list risk factors")
	}
	factorsByProfile := map[string][]models.RiskFactor{}
	for _, f := range factors {
		factorsByProfile[f.ProfileID] = append(factorsByProfile[f.ProfileID], f)
	}

	atRisk := make([]models.RiskAssessment, 0)
	for i := range profiles {
		assessment := evaluateRisk(&profiles[i], factorsByProfile[profiles[i].ID])
		if assessment.Level == models.RiskLow {
			continue
		}
		atRisk = append(atRisk, assessment)
	}

	sort.Slice(atRisk, func(i, j int) bool {
		if atRisk[i].Score != atRisk[j].Score {
			return atRisk[i].Score > atRisk[j].Score
		}
		return atRisk[i].ChildName < atRisk[j].ChildName
	})

	return &dto.AtRiskResponse{
		ClassroomID: classroomID,
		AtRisk:      atRisk,
		Evaluated:   len(profiles),
	}, nil
}

// evaluateRisk scores one profile. Category concerns come from consolidated
// scores below the threshold; low confidence and completeness add smaller
// amounts; manual factors add per severity.
func evaluateRisk(p *models.Profile, manual []models.RiskFactor) models.RiskAssessment {
	score := 0.0
	var concerns []models.SkillCategory
	for _, cat := range models.AllCategories {
		value, ok := p.ConsolidatedScores[cat]
		if !ok {
			continue
		}
		if value < riskCategoryThreshold {
			concerns = append(concerns, cat)
			score += riskCategoryPoints
		}
	}
	if p.TotalAssessments() > 0 && p.Confidence < riskLowConfidence {
		score += riskLowConfidencePts
	}
	if p.TotalAssessments() > 0 && p.Completeness < riskLowCompleteness {
		score += riskLowCompletenessPts
	}
	for _, f := range manual {
		score += manualFactorPoints[f.Severity]
	}

	level := models.RiskLow
	switch {
	case score >= riskHighCutoff:
		level = models.RiskHigh
	case score >= riskModerateCutoff:
		level = models.RiskModerate
	}

	return models.RiskAssessment{
		ProfileID:      p.ID,
		ChildName:      p.ChildName,
		Level:          level,
		Score:          score,
		Concerns:       concerns,
		ManualFactors:  manual,
		Recommendation: riskRecommendation(level, concerns),
	}
}

func riskRecommendation(level models.RiskLevel, concerns []models.SkillCategory) string {
	switch level {
	case models.RiskHigh:
		if len(concerns) > 0 {
			return fmt.Sprintf("Schedule a family conference and plan targeted support, starting with %s.", concerns[0])
		}
		return "Schedule a family conference and plan targeted support."
	case models.RiskModerate:
		return "Monitor closely and gather a second assessment to firm up the picture."
	default:
		return ""
	}
}

// RecordRiskFactor stores a manually observed concern against a profile.
func (s *ClassroomService) RecordRiskFactor(ctx context.Context, classroomID, recordedBy string, req dto.RecordRiskFactorRequest) (*models.RiskFactor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid risk factor payload")
	}
	if _, err := s.loadClassroom(ctx, classroomID); err != nil {
		return nil, err
	}
	if _, err := s.profiles.FindByID(ctx, req.ProfileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	factor := &models.RiskFactor{
		ID:          uuid.NewString(),
		ProfileID:   req.ProfileID,
		ClassroomID: classroomID,
		Factor:      req.Factor,
		Severity:    req.Severity,
		Notes:       req.Notes,
		RecordedBy:  recordedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.classrooms.InsertRiskFactor(ctx, factor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record risk factor")
	}
	return factor, nil
}

// ExportReport renders the classroom overview as a CSV or PDF file on disk
// and returns a signed download token.
func (s *ClassroomService) ExportReport(ctx context.Context, classroomID, format string) (*dto.ClassroomReportResponse, error) {
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report format must be csv or pdf")
	}
	if s.files == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report export is disabled")
	}

	overview, err := s.Overview(ctx, classroomID)
	if err != nil {
		return nil, err
	}

	dataset := reportDataset(overview)
	var rendered []byte
	switch format {
	case "csv":
		rendered, err = s.csv.Render(dataset)
	case "pdf":
		rendered, err = s.pdf.Render(dataset, "Classroom Learning Profile Report")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	reportID := uuid.NewString()
	filename := fmt.Sprintf("%s/%s.%s", classroomID, reportID, format)
	if _, err := s.files.Save(filename, rendered); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	token, expiresAt, err := s.signer.Generate(reportID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report url")
	}

	return &dto.ClassroomReportResponse{
		ReportID:      reportID,
		ClassroomID:   classroomID,
		Format:        format,
		File:          filename,
		DownloadToken: token,
		ExpiresAt:     expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// ResolveReport validates a download token and returns the stored file path.
func (s *ClassroomService) ResolveReport(token string) (string, error) {
	if s.signer == nil || s.files == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "report export is disabled")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	path := s.files.Path(relPath)
	if path == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid download token")
	}
	return path, nil
}

func reportDataset(overview *dto.ClassroomOverviewResponse) export.Dataset {
	headers := []string{"Child", "Confidence %", "Completeness %", "Parent Assessments", "Teacher Assessments"}
	rows := make([]map[string]string, 0, len(overview.Students))
	for _, student := range overview.Students {
		rows = append(rows, map[string]string{
			"Child":               student.ChildName,
			"Confidence %":        strconv.FormatFloat(student.Confidence, 'f', 1, 64),
			"Completeness %":      strconv.FormatFloat(student.Completeness, 'f', 1, 64),
			"Parent Assessments":  strconv.Itoa(student.ParentAssessments),
			"Teacher Assessments": strconv.Itoa(student.TeacherAssessments),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func (s *ClassroomService) loadClassroom(ctx context.Context, id string) (*models.Classroom, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "classroom id is part of the required fields")
	}
	classroom, err := s.classrooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
