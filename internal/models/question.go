package models

// SkillCategory identifies one of the eight assessed skill areas.
type SkillCategory string

const (
	CategoryCommunication    SkillCategory = "Communication"
	CategoryCollaboration    SkillCategory = "Collaboration"
	CategoryContent          SkillCategory = "Content"
	CategoryCriticalThinking SkillCategory = "Critical Thinking"
	CategoryCreative         SkillCategory = "Creative Innovation"
	CategoryConfidence       SkillCategory = "Confidence"
	CategoryLiteracy         SkillCategory = "Literacy"
	CategoryMath             SkillCategory = "Math"
)

// AllCategories lists categories in canonical display order.
var AllCategories = []SkillCategory{
	CategoryCommunication,
	CategoryCollaboration,
	CategoryContent,
	CategoryCriticalThinking,
	CategoryCreative,
	CategoryConfidence,
	CategoryLiteracy,
	CategoryMath,
}

// QuestionID addresses one of the 28 fixed question slots.
type QuestionID int

// QuestionCount is the size of the full question set.
const QuestionCount = 28

// Score is a single response value on the 1..5 scale.
type Score int

const (
	MinScore Score = 1
	MaxScore Score = 5
)

// Valid reports whether the score is on the allowed scale.
func (s Score) Valid() bool {
	return s >= MinScore && s <= MaxScore
}

// Valid reports whether the question id addresses a real slot.
func (q QuestionID) Valid() bool {
	return q >= 1 && q <= QuestionCount
}

// Category returns the skill category the question contributes to.
func (q QuestionID) Category() SkillCategory {
	return questionCategories[q]
}

// questionCategories maps every slot to its category. Slots 1..14 are the
// home-context half of the bank, 15..28 the classroom-context half; both
// halves touch every category.
var questionCategories = map[QuestionID]SkillCategory{
	1: CategoryCommunication, 2: CategoryCommunication,
	3: CategoryCollaboration, 4: CategoryCollaboration,
	5: CategoryContent, 6: CategoryContent,
	7: CategoryCriticalThinking, 8: CategoryCriticalThinking,
	9: CategoryCreative, 10: CategoryCreative,
	11: CategoryConfidence, 12: CategoryConfidence,
	13: CategoryLiteracy,
	14: CategoryMath,
	15: CategoryCommunication, 16: CategoryCommunication,
	17: CategoryCollaboration, 18: CategoryCollaboration,
	19: CategoryContent, 20: CategoryContent,
	21: CategoryCriticalThinking, 22: CategoryCriticalThinking,
	23: CategoryCreative, 24: CategoryCreative,
	25: CategoryConfidence, 26: CategoryConfidence,
	27: CategoryLiteracy,
	28: CategoryMath,
}

// QuizType determines which question slots a submission populates.
type QuizType string

const (
	QuizParentHome       QuizType = "parent_home"
	QuizTeacherClassroom QuizType = "teacher_classroom"
	QuizGeneral          QuizType = "general"
)

// Valid reports whether the quiz type is recognised.
func (q QuizType) Valid() bool {
	switch q {
	case QuizParentHome, QuizTeacherClassroom, QuizGeneral:
		return true
	}
	return false
}

// Slots returns the question ids the quiz type is expected to populate.
func (q QuizType) Slots() []QuestionID {
	var lo, hi QuestionID
	switch q {
	case QuizParentHome:
		lo, hi = 1, 14
	case QuizTeacherClassroom:
		lo, hi = 15, 28
	default:
		lo, hi = 1, QuestionCount
	}
	slots := make([]QuestionID, 0, hi-lo+1)
	for id := lo; id <= hi; id++ {
		slots = append(slots, id)
	}
	return slots
}

// ExpectedQuestions is the answer count a complete submission of this quiz
// type carries.
func (q QuizType) ExpectedQuestions() int {
	return len(q.Slots())
}

// RespondentType identifies who filled in an assessment.
type RespondentType string

const (
	RespondentParent  RespondentType = "parent"
	RespondentTeacher RespondentType = "teacher"
)

// Valid reports whether the respondent type is recognised.
func (r RespondentType) Valid() bool {
	return r == RespondentParent || r == RespondentTeacher
}
