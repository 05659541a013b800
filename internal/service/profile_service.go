package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Suraj757/learning-profile-api/internal/consolidation"
	"github.com/Suraj757/learning-profile-api/internal/dto"
	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/internal/repository"
	appErrors "github.com/Suraj757/learning-profile-api/pkg/errors"
)

// IncompleteDataWarning accompanies accepted but sparse submissions.
const IncompleteDataWarning = "Incomplete assessment data may affect accuracy"

// saveAttempts bounds the optimistic retry loop for concurrent
// consolidations of the same profile.
const saveAttempts = 3

// ProfileService accepts assessment submissions, consolidates them into
// profiles, and renders contextual views.
type ProfileService struct {
	profiles  repository.ProfileStore
	validator *validator.Validate
	logger    *zap.Logger
	weights   consolidation.Weights
	metrics   *MetricsService
}

// NewProfileService constructs a ProfileService. metrics may be nil.
func NewProfileService(profiles repository.ProfileStore, validate *validator.Validate, logger *zap.Logger, weights consolidation.Weights, metrics *MetricsService) *ProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, validator: validate, logger: logger, weights: weights, metrics: metrics}
}

// SubmitAssessment validates and stores one submission, then recomputes the
// profile's consolidated state. Validation runs before any persistence; a
// failed write aborts the whole submission.
func (s *ProfileService) SubmitAssessment(ctx context.Context, req dto.SubmitAssessmentRequest) (*dto.SubmitAssessmentResponse, error) {
	warnings, err := s.validateSubmission(req)
	if err != nil {
		return nil, err
	}

	isNew := req.ExistingProfileID == ""
	var profile *models.Profile
	if isNew {
		now := time.Now().UTC()
		profile = &models.Profile{
			ID:          uuid.NewString(),
			ChildName:   req.ChildName,
			GradeLevel:  req.GradeLevel,
			ClassroomID: req.ClassroomID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create profile")
		}
	} else {
		profile, err = s.loadProfile(ctx, req.ExistingProfileID)
		if err != nil {
			return nil, err
		}
	}

	rubric := models.RubricV1
	if req.UseCLP2Scoring {
		rubric = models.RubricCLP2
	}
	record := &models.AssessmentRecord{
		ID:             uuid.NewString(),
		ProfileID:      profile.ID,
		QuizType:       req.QuizType,
		RespondentType: req.RespondentType,
		Responses:      req.Responses,
		AgeGroup:       req.AgeGroup,
		AgeGroupMonths: req.AgeGroupMonths,
		Rubric:         rubric,
		Preferences:    req.Preferences,
		CreatedAt:      time.Now().UTC(),
	}

	for attempt := 0; ; attempt++ {
		started := time.Now()
		s.applyConsolidation(profile, record)
		s.metrics.ObserveConsolidation(time.Since(started))
		err := s.profiles.SaveAssessment(ctx, profile, record)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save assessment")
		}
		if attempt+1 >= saveAttempts {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "profile was updated concurrently")
		}
		s.logger.Warn("profile version conflict, retrying",
			zap.String("profile_id", profile.ID),
			zap.Int("attempt", attempt+1),
		)
		profile, err = s.loadProfile(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
		record.ProfileID = profile.ID
	}

	s.metrics.RecordSubmission(string(req.QuizType), string(req.RespondentType))

	return &dto.SubmitAssessmentResponse{
		Profile:      profile,
		Assessment:   record,
		IsNewProfile: isNew,
		Warnings:     warnings,
	}, nil
}

// GetProjected loads a profile and renders it for the requested context.
func (s *ProfileService) GetProjected(ctx context.Context, profileID string, viewCtx consolidation.ViewContext) (*dto.ProfileViewResponse, error) {
	if profileID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "profileId is part of the required fields")
	}
	if viewCtx == "" {
		viewCtx = consolidation.ContextConsolidated
	}
	if !viewCtx.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid view context")
	}
	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	view := consolidation.Project(profile, viewCtx)
	return &dto.ProfileViewResponse{Profile: profile, View: view}, nil
}

// Analysis summarises the evidence behind a profile's consolidated scores.
func (s *ProfileService) Analysis(ctx context.Context, profileID string) (*dto.ConsolidationAnalysisResponse, error) {
	if profileID == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "profile_id is part of the required fields")
	}
	profile, err := s.loadProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	summary := consolidation.Consolidate(profile.Records, s.weights)
	return &dto.ConsolidationAnalysisResponse{
		Profile: profile,
		ConsolidationAnalysis: dto.ConsolidationAnalysis{
			CompletenessScore: summary.Completeness,
			DataSources:       summary.DataSources,
			MissingContexts:   summary.MissingContexts,
			ConfidenceLevel:   confidenceLevel(summary.Confidence),
		},
	}, nil
}

// applyConsolidation appends the record and recomputes every derived field
// from the full record set.
func (s *ProfileService) applyConsolidation(profile *models.Profile, record *models.AssessmentRecord) {
	records := append([]models.AssessmentRecord(nil), profile.Records...)
	records = append(records, *record)
	summary := consolidation.Consolidate(records, s.weights)

	profile.Records = records
	profile.ConsolidatedScores = summary.DisplayScores
	profile.Confidence = summary.Confidence
	profile.Completeness = summary.Completeness
	profile.ParentAssessments = summary.ParentCount
	profile.TeacherAssessments = summary.TeacherCount
	profile.UpdatedAt = time.Now().UTC()
}

func (s *ProfileService) loadProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// validateSubmission enforces the structural and semantic rules on a
// submission before anything is persisted. The structural pass runs off the
// request's validate tags; the domain rules stay explicit. Sparse but
// otherwise valid submissions are accepted with a warning.
func (s *ProfileService) validateSubmission(req dto.SubmitAssessmentRequest) ([]string, error) {
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return nil, appErrors.Clone(appErrors.ErrMissingFields, "missing required fields: "+strings.Join(fields, ", "))
		}
		return nil, appErrors.Clone(appErrors.ErrMissingFields, "missing required fields")
	}
	if !req.QuizType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidQuizType, "invalid quiz type: "+string(req.QuizType))
	}
	if !req.RespondentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid respondent type: "+string(req.RespondentType))
	}
	for id, score := range req.Responses {
		if !id.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown question index in responses")
		}
		if !score.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "response values must be between 1 and 5")
		}
	}

	var warnings []string
	if len(req.Responses) < req.QuizType.ExpectedQuestions() {
		warnings = append(warnings, IncompleteDataWarning)
	}
	return warnings, nil
}

func confidenceLevel(confidence float64) string {
	switch {
	case confidence < 40:
		return "low"
	case confidence < 70:
		return "moderate"
	default:
		return "high"
	}
}
