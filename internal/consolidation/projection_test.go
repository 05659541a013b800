package consolidation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Suraj757/learning-profile-api/internal/models"
)

func sampleProfile() *models.Profile {
	return &models.Profile{
		ID:        "p1",
		ChildName: "Ada",
		ConsolidatedScores: models.CategoryScores{
			models.CategoryCommunication: 2.1,
			models.CategoryLiteracy:      2.8,
			models.CategoryMath:          3.5,
			models.CategoryConfidence:    4.2,
			models.CategoryCreative:      4.9,
		},
		Confidence:         70,
		Completeness:       80,
		ParentAssessments:  1,
		TeacherAssessments: 1,
	}
}

func TestProjectConsolidatedCarriesNoRecommendations(t *testing.T) {
	view := Project(sampleProfile(), ContextConsolidated)

	assert.Equal(t, ContextConsolidated, view.Context)
	assert.Empty(t, view.Recommendations)
	assert.Empty(t, view.GrowthAreas)
	assert.Empty(t, view.Strengths)
	assert.Equal(t, 2, view.TotalAssessments)
}

func TestProjectSplitsGrowthAndStrengths(t *testing.T) {
	view := Project(sampleProfile(), ContextParent)

	// Growth lowest first, strengths highest first; mid-range categories appear in neither.
	assert.Equal(t, []models.SkillCategory{models.CategoryCommunication, models.CategoryLiteracy}, view.GrowthAreas)
	assert.Equal(t, []models.SkillCategory{models.CategoryCreative, models.CategoryConfidence}, view.Strengths)
	assert.NotContains(t, view.GrowthAreas, models.CategoryMath)
	assert.NotContains(t, view.Strengths, models.CategoryMath)
}

func TestProjectParentUsesHomeStrategies(t *testing.T) {
	view := Project(sampleProfile(), ContextParent)

	require.NotEmpty(t, view.Recommendations)
	first := view.Recommendations[0]
	assert.Equal(t, models.CategoryCommunication, first.Category)
	assert.Equal(t, "growth", first.Kind)
	assert.Equal(t, homeBank[models.CategoryCommunication].growth, first.Text)
}

func TestProjectTeacherUsesClassroomStrategies(t *testing.T) {
	view := Project(sampleProfile(), ContextTeacher)

	require.NotEmpty(t, view.Recommendations)
	first := view.Recommendations[0]
	assert.Equal(t, classroomBank[models.CategoryCommunication].growth, first.Text)
	assert.NotEqual(t, homeBank[models.CategoryCommunication].growth, first.Text)
}

func TestProjectDeterministicOrdering(t *testing.T) {
	profile := sampleProfile()

	first := Project(profile, ContextTeacher)
	second := Project(profile, ContextTeacher)

	assert.Equal(t, first, second)
}

func TestProjectRecommendationKinds(t *testing.T) {
	view := Project(sampleProfile(), ContextTeacher)

	kinds := map[string]int{}
	for _, rec := range view.Recommendations {
		kinds[rec.Kind]++
	}
	assert.Equal(t, 2, kinds["growth"])
	assert.Equal(t, 2, kinds["strength"])
}

func TestViewContextValid(t *testing.T) {
	assert.True(t, ContextParent.Valid())
	assert.True(t, ContextTeacher.Valid())
	assert.True(t, ContextConsolidated.Valid())
	assert.False(t, ViewContext("principal").Valid())
}

func TestStrategyBanksCoverAllCategories(t *testing.T) {
	for _, cat := range models.AllCategories {
		home, ok := homeBank[cat]
		require.True(t, ok, "home bank missing %s", cat)
		assert.NotEmpty(t, home.growth)
		assert.NotEmpty(t, home.strength)

		classroom, ok := classroomBank[cat]
		require.True(t, ok, "classroom bank missing %s", cat)
		assert.NotEmpty(t, classroom.growth)
		assert.NotEmpty(t, classroom.strength)
	}
}
