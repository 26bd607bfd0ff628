package engine

import (
	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// FilterCases applies the shared qualifying gate: only function tags, only
// plausible response times, optionally dropping OJT rows. Every analysis
// consumes the gated slice so they all agree on the population.
func FilterCases(cases []models.Case, settings config.Settings) []models.Case {
	out := make([]models.Case, 0, len(cases))
	for _, c := range cases {
		if !models.IsFunctionTag(c.Tag) {
			continue
		}
		if !c.ValidResponseTime() {
			continue
		}
		if settings.ExcludeOJT && c.OJT {
			continue
		}
		out = append(out, c)
	}
	return out
}

// TagAggregate accumulates the per-tag raw statistics behind the difficulty
// and distribution analyses.
type TagAggregate struct {
	Tag        string
	Cases      []models.Case
	Times      []float64
	Rallies    []float64
	RallySum   int
	MacroCount int
	ConsultCnt int
	Responders map[string]struct{}
}

// Rally returns the tag's rally volume, falling back to the case count when
// no rally data was recorded.
func (a *TagAggregate) Rally() int {
	if a.RallySum > 0 {
		return a.RallySum
	}
	return len(a.Cases)
}

// AggregateTags groups gated cases by tag.
func AggregateTags(cases []models.Case) map[string]*TagAggregate {
	aggs := make(map[string]*TagAggregate)
	for _, c := range cases {
		a := aggs[c.Tag]
		if a == nil {
			a = &TagAggregate{Tag: c.Tag, Responders: make(map[string]struct{})}
			aggs[c.Tag] = a
		}
		a.Cases = append(a.Cases, c)
		a.Times = append(a.Times, c.ResponseTime)
		a.Rallies = append(a.Rallies, float64(c.RallyCount))
		a.RallySum += c.RallyCount
		if c.MacroUsed {
			a.MacroCount++
		}
		if c.HasConsultation() {
			a.ConsultCnt++
		}
		if c.Responder != "" {
			a.Responders[c.Responder] = struct{}{}
		}
	}
	return aggs
}

// MacroRate is the percent of the tag's cases resolved with a macro.
func (a *TagAggregate) MacroRate() float64 {
	return stats.SafeRate(float64(a.MacroCount), float64(len(a.Cases)))
}

// ConsultRate is the percent of the tag's cases that involved a consultation.
func (a *TagAggregate) ConsultRate() float64 {
	return stats.SafeRate(float64(a.ConsultCnt), float64(len(a.Cases)))
}
