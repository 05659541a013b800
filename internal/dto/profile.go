package dto

import (
	"github.com/Suraj757/learning-profile-api/internal/consolidation"
	"github.com/Suraj757/learning-profile-api/internal/models"
)

// SubmitAssessmentRequest is the POST /profiles/progressive payload.
type SubmitAssessmentRequest struct {
	ChildName         string                `json:"child_name" validate:"required"`
	ExistingProfileID string                `json:"existing_profile_id"`
	GradeLevel        string                `json:"grade_level"`
	ClassroomID       string                `json:"classroom_id"`
	AgeGroup          string                `json:"age_group" validate:"required"`
	AgeGroupMonths    int                   `json:"age_group_months"`
	QuizType          models.QuizType       `json:"quiz_type" validate:"required"`
	RespondentType    models.RespondentType `json:"respondent_type" validate:"required"`
	Responses         models.ResponseMap    `json:"responses" validate:"required,min=1"`
	Preferences       map[string]string     `json:"preferences"`
	UseCLP2Scoring    bool                  `json:"use_clp2_scoring"`
}

// SubmitAssessmentResponse wraps the updated profile and the stored record.
type SubmitAssessmentResponse struct {
	Profile      *models.Profile          `json:"profile"`
	Assessment   *models.AssessmentRecord `json:"assessment"`
	IsNewProfile bool                     `json:"is_new_profile"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

// ProfileViewResponse is the projected GET payload.
type ProfileViewResponse struct {
	Profile *models.Profile    `json:"profile"`
	View    consolidation.View `json:"view"`
}

// ConsolidationAnalysis summarises the evidence behind a profile.
type ConsolidationAnalysis struct {
	CompletenessScore float64  `json:"completeness_score"`
	DataSources       []string `json:"data_sources"`
	MissingContexts   []string `json:"missing_contexts,omitempty"`
	ConfidenceLevel   string   `json:"confidence_level"`
}

// ConsolidationAnalysisResponse is the GET /profiles/clp2-consolidate payload.
type ConsolidationAnalysisResponse struct {
	Profile               *models.Profile       `json:"profile"`
	ConsolidationAnalysis ConsolidationAnalysis `json:"consolidation_analysis"`
}
