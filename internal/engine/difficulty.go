package engine

import (
	"math"
	"sort"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// DifficultyScorer grades every function tag along the technical, response,
// and knowledge dimensions and classifies it as core, standard, or rare.
type DifficultyScorer struct {
	settings    config.Settings
	adjustments map[string]float64
}

// NewDifficultyScorer constructs a scorer. adjustments maps tag names to
// manual composite-score deltas in [-1, +1]; nil means no adjustments.
func NewDifficultyScorer(settings config.Settings, adjustments map[string]float64) *DifficultyScorer {
	return &DifficultyScorer{settings: settings, adjustments: adjustments}
}

// Score computes the difficulty profile of every tag present in the gated
// cases. Share and coverage denominators come from the raw snapshot: case
// share counts every imported record and coverage every function-tag
// responder, whether or not their rows pass the time gate. Results are
// sorted by composite score descending, ties by tag name.
func (s *DifficultyScorer) Score(cases, raw []models.Case) []models.TagDifficultyResult {
	aggs := AggregateTags(cases)
	totalResponders := s.coverageResponders(raw)
	totalCases := len(raw)

	totalRally := 0
	for _, a := range aggs {
		totalRally += a.RallySum
	}
	if totalRally == 0 {
		totalRally = totalCases
	}

	results := make([]models.TagDifficultyResult, 0, len(aggs))
	for _, a := range aggs {
		results = append(results, s.scoreTag(a, totalResponders, totalRally, totalCases))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CompositeScore != results[j].CompositeScore {
			return results[i].CompositeScore > results[j].CompositeScore
		}
		return results[i].Tag < results[j].Tag
	})
	return results
}

// coverageResponders counts the distinct responders over all function-tag
// rows of the raw snapshot, honoring the OJT exclusion but not the time gate.
func (s *DifficultyScorer) coverageResponders(raw []models.Case) int {
	seen := make(map[string]struct{})
	for _, c := range raw {
		if !models.IsFunctionTag(c.Tag) || c.Responder == "" {
			continue
		}
		if s.settings.ExcludeOJT && c.OJT {
			continue
		}
		seen[c.Responder] = struct{}{}
	}
	return len(seen)
}

func (s *DifficultyScorer) scoreTag(a *TagAggregate, totalResponders, totalRally, totalCases int) models.TagDifficultyResult {
	medianTime := stats.Median(a.Times)
	p25 := stats.Percentile(a.Times, 25)
	p75 := stats.Percentile(a.Times, 75)
	iqr := p75 - p25
	avgRally := stats.Mean(a.Rallies)
	macroRate := a.MacroRate()
	consultRate := a.ConsultRate()
	coverage := stats.SafeRate(float64(len(a.Responders)), float64(totalResponders))

	timeScore := stats.TimeScore(medianTime)
	rallyScore := stats.RallyScore(avgRally)
	covScore := stats.CoverageScore(coverage)
	iqrScore := math.Min(5, iqr/10)
	consultScore := math.Min(5, consultRate/10)

	// Heavy macro usage pulls the technical score down: a tag that macros
	// solve is not technically hard no matter how long it takes.
	macroScore := math.Max(0, 5-macroRate/20)

	technical := timeScore*0.5 + covScore*0.3 + macroScore*0.2
	response := rallyScore*0.5 + consultScore*0.3 + iqrScore*0.2
	knowledge := covScore*0.7 + iqrScore*0.3
	auto := stats.Clamp(technical*0.4+response*0.4+knowledge*0.2, 1, 5)

	composite := auto
	adj := s.adjustments[a.Tag]
	if adj != 0 {
		composite = stats.Clamp(auto+adj, 1, 5)
	}

	rallyShare := stats.SafeRate(float64(a.Rally()), float64(totalRally))
	caseShare := stats.SafeRate(float64(len(a.Cases)), float64(totalCases))
	share := math.Max(rallyShare, caseShare)

	tagType := models.TagStandard
	switch {
	case share >= s.settings.CoreSkillThreshold:
		tagType = models.TagCore
	case share <= s.settings.RareCaseThreshold:
		tagType = models.TagRare
	}

	return models.TagDifficultyResult{
		Tag:       a.Tag,
		CaseCount: len(a.Cases),
		Rally:     a.Rally(),

		AvgResponseTime: stats.Mean(a.Times),
		MedianTime:      medianTime,
		P25Time:         p25,
		P75Time:         p75,
		IQRTime:         iqr,
		AvgRally:        avgRally,
		MacroRate:       macroRate,
		ConsultRate:     consultRate,
		ResponderCount:  len(a.Responders),
		CoverageRate:    coverage,

		TechnicalScore: technical,
		ResponseScore:  response,
		KnowledgeScore: knowledge,
		AutoScore:      auto,
		CompositeScore: composite,

		TechnicalLevel: models.Level(stats.GradeLevel(technical, s.settings.TechnicalThresholds())),
		ResponseLevel:  models.Level(stats.GradeLevel(response, s.settings.ResponseThresholds())),
		KnowledgeLevel: models.Level(stats.GradeLevel(knowledge, s.settings.KnowledgeThresholds())),
		AutoLevel:      models.Level(stats.GradeLevel(auto, s.settings.TechnicalThresholds())),
		Difficulty:     models.Level(stats.GradeLevel(composite, s.settings.TechnicalThresholds())),

		Type:              tagType,
		RallyShare:        rallyShare,
		CaseShare:         caseShare,
		BeginnerFriendly:  macroRate >= 50,
		HighConsultation:  consultRate >= 30,
		AdjustmentApplied: adj,
	}
}
