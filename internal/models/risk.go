package models

import "time"

// RiskLevel buckets an at-risk evaluation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// RiskFactor is a manually recorded concern attached to a profile.
type RiskFactor struct {
	ID          string    `db:"id" json:"id"`
	ProfileID   string    `db:"profile_id" json:"profile_id"`
	ClassroomID string    `db:"classroom_id" json:"classroom_id"`
	Factor      string    `db:"factor" json:"factor"`
	Severity    RiskLevel `db:"severity" json:"severity"`
	Notes       string    `db:"notes" json:"notes,omitempty"`
	RecordedBy  string    `db:"recorded_by" json:"recorded_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RiskAssessment is one child's deterministic at-risk evaluation.
type RiskAssessment struct {
	ProfileID      string          `json:"profile_id"`
	ChildName      string          `json:"child_name"`
	Level          RiskLevel       `json:"level"`
	Score          float64         `json:"score"`
	Concerns       []SkillCategory `json:"concerns,omitempty"`
	ManualFactors  []RiskFactor    `json:"manual_factors,omitempty"`
	Recommendation string          `json:"recommendation,omitempty"`
}
