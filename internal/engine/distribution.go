package engine

import (
	"math"
	"sort"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// DistributionAnalyzer splits each tag's cases into simple, standard, and
// complex bands around the tag's base difficulty. Tags below the minimum
// case count are skipped: percentile cuts on a handful of cases are noise.
type DistributionAnalyzer struct {
	settings config.Settings
}

// NewDistributionAnalyzer constructs the analyzer.
func NewDistributionAnalyzer(settings config.Settings) *DistributionAnalyzer {
	return &DistributionAnalyzer{settings: settings}
}

// Analyze computes the intra-tag distribution for every tag that has a
// difficulty result and enough cases. Results are sorted by case count
// descending, ties by tag name.
func (d *DistributionAnalyzer) Analyze(cases []models.Case, difficulties []models.TagDifficultyResult) []models.TagDistributionResult {
	baseLevels := make(map[string]models.Level, len(difficulties))
	for _, r := range difficulties {
		baseLevels[r.Tag] = r.Difficulty
	}

	aggs := AggregateTags(cases)

	results := make([]models.TagDistributionResult, 0, len(aggs))
	for tag, a := range aggs {
		if len(a.Cases) < d.settings.MinCaseCount {
			continue
		}
		results = append(results, d.analyzeTag(tag, a, baseLevels[tag]))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CaseCount != results[j].CaseCount {
			return results[i].CaseCount > results[j].CaseCount
		}
		return results[i].Tag < results[j].Tag
	})
	return results
}

func (d *DistributionAnalyzer) analyzeTag(tag string, a *TagAggregate, base models.Level) models.TagDistributionResult {
	complexities := make([]float64, len(a.Cases))
	for i, c := range a.Cases {
		complexities[i] = stats.CaseComplexity(
			stats.TimeScore(c.ResponseTime),
			stats.RallyScore(float64(c.RallyCount)),
			c.MacroUsed,
			c.HasConsultation(),
		)
	}

	p25 := stats.Percentile(complexities, 25)
	p75 := stats.Percentile(complexities, 75)

	simpleLv, standardLv, complexLv := base.Shift()

	res := models.TagDistributionResult{
		Tag:           tag,
		BaseLevel:     base,
		CaseCount:     len(a.Cases),
		SimpleLevel:   simpleLv,
		StandardLevel: standardLv,
		ComplexLevel:  complexLv,
		P25Complexity: p25,
		P75Complexity: p75,
	}
	res.Simple = models.LevelBucket{Level: simpleLv}
	res.Standard = models.LevelBucket{Level: standardLv}
	res.Complex = models.LevelBucket{Level: complexLv}

	var simpleT, simpleR, stdT, stdR, cplxT, cplxR float64
	for i, c := range a.Cases {
		switch bucket := ClassifyCase(complexities[i], p25, p75); bucket {
		case models.CaseSimple:
			res.Simple.CaseCount++
			simpleT += c.ResponseTime
			simpleR += float64(c.RallyCount)
		case models.CaseComplex:
			res.Complex.CaseCount++
			cplxT += c.ResponseTime
			cplxR += float64(c.RallyCount)
		default:
			res.Standard.CaseCount++
			stdT += c.ResponseTime
			stdR += float64(c.RallyCount)
		}
	}

	finishBucket(&res.Simple, simpleT, simpleR, len(a.Cases), d.settings.SampleMonths)
	finishBucket(&res.Standard, stdT, stdR, len(a.Cases), d.settings.SampleMonths)
	finishBucket(&res.Complex, cplxT, cplxR, len(a.Cases), d.settings.SampleMonths)
	return res
}

func finishBucket(b *models.LevelBucket, timeSum, rallySum float64, total, sampleMonths int) {
	if b.CaseCount > 0 {
		b.AvgTime = timeSum / float64(b.CaseCount)
		b.AvgRally = rallySum / float64(b.CaseCount)
	}
	b.Share = stats.SafeRate(float64(b.CaseCount), float64(total))
	b.MonthlyCount = int(math.Round(float64(b.CaseCount) / float64(sampleMonths)))
}

// ClassifyCase places a complexity score into one of the three bands: at or
// below the 25th percentile is simple, at or above the 75th is complex.
func ClassifyCase(complexity, p25, p75 float64) models.CaseBand {
	switch {
	case complexity <= p25:
		return models.CaseSimple
	case complexity >= p75:
		return models.CaseComplex
	}
	return models.CaseStandard
}
