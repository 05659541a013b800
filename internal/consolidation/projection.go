package consolidation

import (
	"sort"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

// ViewContext selects the consumer a profile is rendered for.
type ViewContext string

const (
	ContextParent       ViewContext = "parent"
	ContextTeacher      ViewContext = "teacher"
	ContextConsolidated ViewContext = "consolidated"
)

// Valid reports whether the context is recognised.
func (v ViewContext) Valid() bool {
	switch v {
	case ContextParent, ContextTeacher, ContextConsolidated:
		return true
	}
	return false
}

// Thresholds for recommendation selection.
const (
	growthThreshold   = 3.0
	strengthThreshold = 4.0
)

// Recommendation is one piece of tailored guidance attached to a projection.
type Recommendation struct {
	Category models.SkillCategory `json:"category"`
	Kind     string               `json:"kind"` // "strength" or "growth"
	Text     string               `json:"text"`
}

// View is a context-specific rendering of a consolidated profile.
type View struct {
	Context            ViewContext           `json:"context"`
	ConsolidatedScores models.CategoryScores `json:"consolidated_scores"`
	Confidence         float64               `json:"confidence_percentage"`
	Completeness       float64               `json:"completeness_percentage"`
	ParentAssessments  int                   `json:"parent_assessments"`
	TeacherAssessments int                   `json:"teacher_assessments"`
	TotalAssessments   int                   `json:"total_assessments"`
	GrowthAreas        []models.SkillCategory `json:"growth_areas,omitempty"`
	Strengths          []models.SkillCategory `json:"strengths,omitempty"`
	Recommendations    []Recommendation      `json:"recommendations,omitempty"`
}

// Project renders the profile for the requested context. Output is
// deterministic for a given score set: categories below the growth threshold
// surface support recommendations, categories at or above the strength
// threshold surface leverage recommendations, and the consolidated context
// carries no recommendation filtering at all.
func Project(profile *models.Profile, ctx ViewContext) View {
	view := View{
		Context:            ctx,
		ConsolidatedScores: profile.ConsolidatedScores,
		Confidence:         profile.Confidence,
		Completeness:       profile.Completeness,
		ParentAssessments:  profile.ParentAssessments,
		TeacherAssessments: profile.TeacherAssessments,
		TotalAssessments:   profile.TotalAssessments(),
	}
	if ctx == ContextConsolidated {
		return view
	}

	growth, strengths := splitCategories(profile.ConsolidatedScores)
	view.GrowthAreas = growth
	view.Strengths = strengths

	bank := homeBank
	if ctx == ContextTeacher {
		bank = classroomBank
	}
	for _, cat := range growth {
		view.Recommendations = append(view.Recommendations, Recommendation{
			Category: cat,
			Kind:     "growth",
			Text:     bank[cat].growth,
		})
	}
	for _, cat := range strengths {
		view.Recommendations = append(view.Recommendations, Recommendation{
			Category: cat,
			Kind:     "strength",
			Text:     bank[cat].strength,
		})
	}
	return view
}

// splitCategories orders results lowest-first for growth and highest-first
// for strengths so the most actionable categories lead.
func splitCategories(scores models.CategoryScores) (growth, strengths []models.SkillCategory) {
	for cat, value := range scores {
		if value < growthThreshold {
			growth = append(growth, cat)
		} else if value >= strengthThreshold {
			strengths = append(strengths, cat)
		}
	}
	sort.Slice(growth, func(i, j int) bool {
		if scores[growth[i]] == scores[growth[j]] {
			return growth[i] < growth[j]
		}
		return scores[growth[i]] < scores[growth[j]]
	})
	sort.Slice(strengths, func(i, j int) bool {
		if scores[strengths[i]] == scores[strengths[j]] {
			return strengths[i] < strengths[j]
		}
		return scores[strengths[i]] > scores[strengths[j]]
	})
	return growth, strengths
}

type strategyPair struct {
	growth   string
	strength string
}

// homeBank holds family-oriented strategies surfaced in the parent view.
var homeBank = map[models.SkillCategory]strategyPair{
	models.CategoryCommunication: {
		growth:   "Build in daily conversation time at home: narrate routines, ask open questions at dinner, and give your child time to answer.",
		strength: "Your child expresses ideas well. Keep family storytelling going and let them retell their day in their own words.",
	},
	models.CategoryCollaboration: {
		growth:   "Arrange low-pressure playdates and family games that need turn-taking to support sharing and cooperation.",
		strength: "Your child works well with others. Family projects like cooking together are a great way to leverage this.",
	},
	models.CategoryContent: {
		growth:   "Weave learning into home life: count steps on the stairs, name plants on walks, follow their questions wherever they lead.",
		strength: "Your child soaks up new knowledge. Library visits and topic deep-dives at home will feed that curiosity.",
	},
	models.CategoryCriticalThinking: {
		growth:   "Support reasoning with everyday puzzles: sorting laundry by colour, guessing what happens next in a story.",
		strength: "Your child reasons things through. Give them real household decisions to weigh, like planning a family outing.",
	},
	models.CategoryCreative: {
		growth:   "Keep open-ended creative materials within reach at home and praise the process rather than the product.",
		strength: "Your child is a creative innovator. Unstructured art, building, and pretend play at home will let this flourish.",
	},
	models.CategoryConfidence: {
		growth:   "Offer small, winnable challenges at home and celebrate effort out loud so your child builds belief in themselves.",
		strength: "Your child approaches new things with confidence. Let them teach the family a skill they have mastered.",
	},
	models.CategoryLiteracy: {
		growth:   "Make shared reading a nightly family ritual; let your child hold the book and turn the pages.",
		strength: "Your child loves language. Keep a rotating stack of books at home and try simple word games together.",
	},
	models.CategoryMath: {
		growth:   "Fold counting and comparing into home routines: setting the table, measuring ingredients, sorting toys.",
		strength: "Your child thinks mathematically. Board games with dice and simple cooking measurements build on this at home.",
	},
}

// classroomBank holds the classroom-oriented strategies for the teacher view.
var classroomBank = map[models.SkillCategory]strategyPair{
	models.CategoryCommunication: {
		growth:   "Scaffold expressive language with sentence starters and structured partner shares before whole-group discussion.",
		strength: "Leverage strong communication by assigning discussion-leader and presenter roles.",
	},
	models.CategoryCollaboration: {
		growth:   "Use small, teacher-structured groups with explicit roles to support cooperative work.",
		strength: "This student collaborates well; use them as a peer mentor during group tasks.",
	},
	models.CategoryContent: {
		growth:   "Provide pre-teaching and visual supports before introducing new content units.",
		strength: "Offer extension materials and independent inquiry projects to stretch content mastery.",
	},
	models.CategoryCriticalThinking: {
		growth:   "Model think-alouds and use graphic organizers to scaffold multi-step reasoning.",
		strength: "Pose open-ended problems and ask this student to justify answers to the class.",
	},
	models.CategoryCreative: {
		growth:   "Offer choice-based tasks with multiple valid outcomes to build creative risk-taking.",
		strength: "Channel creative innovation into design challenges and alternative-format responses.",
	},
	models.CategoryConfidence: {
		growth:   "Provide low-stakes practice and private positive feedback before public participation; consider a classroom intervention plan.",
		strength: "Confident learners thrive with leadership moments; rotate them through classroom jobs.",
	},
	models.CategoryLiteracy: {
		growth:   "Schedule targeted small-group reading support and track decoding progress weekly.",
		strength: "Provide above-level texts and author-study extensions.",
	},
	models.CategoryMath: {
		growth:   "Use manipulatives and intervention-block practice to shore up number sense.",
		strength: "Offer enrichment problem sets and math-team style challenges.",
	},
}
