package models

import "time"

// Classroom groups profiles under a teacher account.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Name      string    `db:"name" json:"name"`
	GradeBand string    `db:"grade_band" json:"grade_band,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassroomProfileRow is the per-child slice of data the overview and
// at-risk aggregations read.
type ClassroomProfileRow struct {
	ProfileID          string  `db:"profile_id" json:"profile_id"`
	ChildName          string  `db:"child_name" json:"child_name"`
	Confidence         float64 `db:"confidence" json:"confidence_percentage"`
	Completeness       float64 `db:"completeness" json:"completeness_percentage"`
	ParentAssessments  int     `db:"parent_assessments" json:"parent_assessments"`
	TeacherAssessments int     `db:"teacher_assessments" json:"teacher_assessments"`
}

// CategoryAverage is one aggregated category row for a classroom.
type CategoryAverage struct {
	Category SkillCategory `json:"category"`
	Average  float64       `json:"average"`
	Samples  int           `json:"samples"`
}
