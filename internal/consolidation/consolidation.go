// Package consolidation merges assessment submissions into a single scored
// profile. Everything here is pure: callers pass the full record set and the
// weighting parameters, and get derived values back.
package consolidation

import (
	"math"
	"sort"

	"github.com/Suraj757/learning-profile-api/internal/models"
	"github.com/Suraj757/learning-profile-api/pkg/config"
)

// Weights are the tunable parameters of the consolidation function. The exact
// constants are configuration, not algorithm; defaults are calibrated against
// the confidence bands the product defines (see the package tests).
type Weights struct {
	// PerRecord is the confidence contribution of each assessment record,
	// counted up to RecordCap records.
	PerRecord float64
	RecordCap int
	// DiversityBonus is added once when both a parent and a teacher record
	// are present.
	DiversityBonus float64
	// CompletenessWeight scales the completeness percentage into the
	// confidence score.
	CompletenessWeight float64
	// ConsistencyBonus is added when three or more records agree per
	// category within ConsistencyBand points.
	ConsistencyBonus float64
	ConsistencyBand  float64
}

// DefaultWeights returns the calibrated defaults.
func DefaultWeights() Weights {
	return Weights{
		PerRecord:          12,
		RecordCap:          4,
		DiversityBonus:     15,
		CompletenessWeight: 0.35,
		ConsistencyBonus:   6,
		ConsistencyBand:    0.75,
	}
}

// WeightsFromConfig builds Weights from configuration, falling back to the
// defaults for unset values.
func WeightsFromConfig(cfg config.ConsolidationConfig) Weights {
	w := DefaultWeights()
	if cfg.PerRecord > 0 {
		w.PerRecord = cfg.PerRecord
	}
	if cfg.RecordCap > 0 {
		w.RecordCap = cfg.RecordCap
	}
	if cfg.DiversityBonus > 0 {
		w.DiversityBonus = cfg.DiversityBonus
	}
	if cfg.CompletenessWeight > 0 {
		w.CompletenessWeight = cfg.CompletenessWeight
	}
	if cfg.ConsistencyBonus > 0 {
		w.ConsistencyBonus = cfg.ConsistencyBonus
	}
	if cfg.ConsistencyBand > 0 {
		w.ConsistencyBand = cfg.ConsistencyBand
	}
	return w
}

// Summary is the derived state of a profile after consolidating all records.
type Summary struct {
	// Scores keeps full internal precision for further updates.
	Scores models.CategoryScores
	// DisplayScores are the same values rounded to one decimal.
	DisplayScores models.CategoryScores
	Confidence    float64
	Completeness  float64
	ParentCount   int
	TeacherCount  int
	// DataSources lists the distinct quiz types contributing evidence.
	DataSources []string
	// MissingContexts lists quiz types with no submission yet.
	MissingContexts []string
}

// Consolidate merges every record into per-category scores plus the derived
// confidence and completeness percentages.
//
// Category scores are pooled means: every response mapped to a category is
// averaged across all records, so a record answering five questions in a
// category contributes five times the weight of one answering a single
// question. Records scored under the CLP2 rubric double the weight of
// responses in the respondent's own context (parent at home, teacher in the
// classroom), where their observations are most reliable.
func Consolidate(records []models.AssessmentRecord, w Weights) Summary {
	sums := map[models.SkillCategory]float64{}
	weights := map[models.SkillCategory]float64{}
	answered := map[models.QuestionID]struct{}{}
	seenTypes := map[models.QuizType]struct{}{}

	parents, teachers := 0, 0
	for _, rec := range records {
		switch rec.RespondentType {
		case models.RespondentTeacher:
			teachers++
		default:
			parents++
		}
		seenTypes[rec.QuizType] = struct{}{}
		for id, score := range rec.Responses {
			if !id.Valid() || !score.Valid() {
				continue
			}
			answered[id] = struct{}{}
			cat := id.Category()
			weight := responseWeight(rec, id)
			sums[cat] += float64(score) * weight
			weights[cat] += weight
		}
	}

	scores := make(models.CategoryScores, len(sums))
	display := make(models.CategoryScores, len(sums))
	for cat, sum := range sums {
		value := clamp(sum/weights[cat], float64(models.MinScore), float64(models.MaxScore))
		scores[cat] = value
		display[cat] = math.Round(value*10) / 10
	}

	completeness := math.Min(float64(len(answered))/float64(models.QuestionCount)*100, 100)

	confidence := confidenceScore(records, parents, teachers, completeness, w)

	sources := make([]string, 0, len(seenTypes))
	for qt := range seenTypes {
		sources = append(sources, string(qt))
	}
	sort.Strings(sources)

	var missing []string
	for _, qt := range []models.QuizType{models.QuizParentHome, models.QuizTeacherClassroom} {
		if _, ok := seenTypes[qt]; !ok {
			missing = append(missing, string(qt))
		}
	}

	return Summary{
		Scores:          scores,
		DisplayScores:   display,
		Confidence:      confidence,
		Completeness:    completeness,
		ParentCount:     parents,
		TeacherCount:    teachers,
		DataSources:     sources,
		MissingContexts: missing,
	}
}

// responseWeight implements the CLP2 context weighting. Non-CLP2 records
// contribute uniformly.
func responseWeight(rec models.AssessmentRecord, id models.QuestionID) float64 {
	if rec.Rubric != models.RubricCLP2 {
		return 1
	}
	homeSlot := id <= 14
	if (rec.RespondentType == models.RespondentParent && homeSlot) ||
		(rec.RespondentType == models.RespondentTeacher && !homeSlot) {
		return 2
	}
	return 1
}

// confidenceScore is an increasing function of record volume, respondent
// diversity, and completeness, with a bonus when repeated observations agree.
func confidenceScore(records []models.AssessmentRecord, parents, teachers int, completeness float64, w Weights) float64 {
	counted := len(records)
	if counted > w.RecordCap {
		counted = w.RecordCap
	}
	confidence := float64(counted) * w.PerRecord

	if parents > 0 && teachers > 0 {
		confidence += w.DiversityBonus
	}

	confidence += completeness * w.CompletenessWeight

	if len(records) >= 3 && recordsConsistent(records, w.ConsistencyBand) {
		confidence += w.ConsistencyBonus
	}

	return clamp(confidence, 0, 100)
}

// recordsConsistent reports whether every category observed by two or more
// records keeps its per-record means within the allowed band.
func recordsConsistent(records []models.AssessmentRecord, band float64) bool {
	type bounds struct {
		min, max float64
		n        int
	}
	perCategory := map[models.SkillCategory]*bounds{}
	for _, rec := range records {
		sums := map[models.SkillCategory]float64{}
		counts := map[models.SkillCategory]int{}
		for id, score := range rec.Responses {
			if !id.Valid() || !score.Valid() {
				continue
			}
			cat := id.Category()
			sums[cat] += float64(score)
			counts[cat]++
		}
		for cat, sum := range sums {
			mean := sum / float64(counts[cat])
			b, ok := perCategory[cat]
			if !ok {
				perCategory[cat] = &bounds{min: mean, max: mean, n: 1}
				continue
			}
			b.n++
			if mean < b.min {
				b.min = mean
			}
			if mean > b.max {
				b.max = mean
			}
		}
	}
	for _, b := range perCategory {
		if b.n >= 2 && b.max-b.min > band {
			return false
		}
	}
	return true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
