package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// RubricVersion selects the scoring rubric applied to a submission.
type RubricVersion string

const (
	RubricV1   RubricVersion = "v1"
	RubricCLP2 RubricVersion = "clp2"
)

// ResponseMap is the sparse mapping of question slots to scores.
type ResponseMap map[QuestionID]Score

// MarshalJSON renders the sparse map with integer string keys, matching the
// wire shape the clients submit.
func (m ResponseMap) MarshalJSON() ([]byte, error) {
	out := make(map[string]int, len(m))
	for id, score := range m {
		out[strconv.Itoa(int(id))] = int(score)
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the wire shape {"1": 4, "2": 5, ...}.
func (m *ResponseMap) UnmarshalJSON(data []byte) error {
	raw := map[string]int{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed := make(ResponseMap, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid question id %q", key)
		}
		parsed[QuestionID(id)] = Score(value)
	}
	*m = parsed
	return nil
}

// AssessmentRecord is one immutable submission of scored responses.
type AssessmentRecord struct {
	ID             string            `db:"id" json:"id"`
	ProfileID      string            `db:"profile_id" json:"profile_id"`
	QuizType       QuizType          `db:"quiz_type" json:"quiz_type"`
	RespondentType RespondentType    `db:"respondent_type" json:"respondent_type"`
	Responses      ResponseMap       `db:"-" json:"responses"`
	AgeGroup       string            `db:"age_group" json:"age_group"`
	AgeGroupMonths int               `db:"age_group_months" json:"age_group_months,omitempty"`
	Rubric         RubricVersion     `db:"rubric" json:"rubric"`
	Preferences    map[string]string `db:"-" json:"preferences,omitempty"`
	CreatedAt      time.Time         `db:"created_at" json:"created_at"`
}

// CategoryScores holds consolidated per-category values. Categories with no
// contributing responses are absent.
type CategoryScores map[SkillCategory]float64

// Profile is the accumulating record of a child's assessed learning
// characteristics. Records are append-only; derived fields are recomputed on
// every append and never edited in place.
type Profile struct {
	ID                 string             `db:"id" json:"id"`
	ChildName          string             `db:"child_name" json:"child_name"`
	GradeLevel         string             `db:"grade_level" json:"grade_level,omitempty"`
	ClassroomID        string             `db:"classroom_id" json:"classroom_id,omitempty"`
	Records            []AssessmentRecord `db:"-" json:"assessment_records"`
	ConsolidatedScores CategoryScores     `db:"-" json:"consolidated_scores"`
	Confidence         float64            `db:"confidence" json:"confidence_percentage"`
	Completeness       float64            `db:"completeness" json:"completeness_percentage"`
	ParentAssessments  int                `db:"parent_assessments" json:"parent_assessments"`
	TeacherAssessments int                `db:"teacher_assessments" json:"teacher_assessments"`
	Version            int                `db:"version" json:"-"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// TotalAssessments is always parent + teacher counts, which equals the
// record list length.
func (p *Profile) TotalAssessments() int {
	return p.ParentAssessments + p.TeacherAssessments
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
