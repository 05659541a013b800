package dto

import "github.com/Suraj757/learning-profile-api/internal/models"

// ClassroomOverviewResponse aggregates classroom-wide statistics.
type ClassroomOverviewResponse struct {
	ClassroomID      string                       `json:"classroom_id"`
	StudentCount     int                          `json:"student_count"`
	AssessedCount    int                          `json:"assessed_count"`
	TotalAssessments int                          `json:"total_assessments"`
	AvgConfidence    float64                      `json:"avg_confidence"`
	AvgCompleteness  float64                      `json:"avg_completeness"`
	CategoryAverages []models.CategoryAverage     `json:"category_averages"`
	Students         []models.ClassroomProfileRow `json:"students"`
}

// AtRiskResponse is the deterministic at-risk report for a classroom.
type AtRiskResponse struct {
	ClassroomID string                  `json:"classroom_id"`
	AtRisk      []models.RiskAssessment `json:"at_risk"`
	Evaluated   int                     `json:"evaluated"`
}

// RecordRiskFactorRequest is the POST at-risk payload.
type RecordRiskFactorRequest struct {
	ProfileID string           `json:"profile_id" validate:"required"`
	Factor    string           `json:"factor" validate:"required"`
	Severity  models.RiskLevel `json:"severity" validate:"required,oneof=low moderate high"`
	Notes     string           `json:"notes"`
}

// ClassroomReportResponse points at a freshly rendered classroom export.
type ClassroomReportResponse struct {
	ReportID      string `json:"report_id"`
	ClassroomID   string `json:"classroom_id"`
	Format        string `json:"format"`
	File          string `json:"file"`
	DownloadToken string `json:"download_token"`
	ExpiresAt     string `json:"expires_at"`
}

// BulkInvitationRequest asks for invitation emails to a list of parents.
type BulkInvitationRequest struct {
	ClassroomID string           `json:"classroom_id" validate:"required"`
	Invitations []InvitationItem `json:"invitations" validate:"required,min=1,dive"`
}

// InvitationItem is one parent/child pair within a bulk request.
type InvitationItem struct {
	ChildName   string `json:"child_name" validate:"required"`
	ParentEmail string `json:"parent_email" validate:"required,email"`
}

// BulkInvitationResponse reports queueing results.
type BulkInvitationResponse struct {
	Queued  int `json:"queued"`
	Batches int `json:"batches"`
}
