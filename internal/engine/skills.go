package engine

import (
	"sort"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// SkillScorer profiles every responder: how wide and deep their tag coverage
// runs, how productive they are, and which skill type their shape matches.
type SkillScorer struct {
	settings config.Settings
}

// NewSkillScorer constructs the scorer.
func NewSkillScorer(settings config.Settings) *SkillScorer {
	return &SkillScorer{settings: settings}
}

type responderAccum struct {
	name        string
	caseCount   int
	rallySum    int
	totalTime   float64
	macroCount  int
	teamMatches int // cases handled inside own primary or secondary team
	tagCases    map[string]int
	tagBand     map[string]models.CaseBand // highest band reached per tag
}

// Score computes skill profiles for every responder appearing in the gated
// cases. Results are sorted by total score descending, ties by name.
func (s *SkillScorer) Score(cases []models.Case, roster models.Roster, difficulties []models.TagDifficultyResult, distributions []models.TagDistributionResult) []models.ResponderSkillResult {
	diffByTag := make(map[string]models.TagDifficultyResult, len(difficulties))
	for _, d := range difficulties {
		diffByTag[d.Tag] = d
	}
	distByTag := make(map[string]models.TagDistributionResult, len(distributions))
	for _, d := range distributions {
		distByTag[d.Tag] = d
	}

	totalTags := len(AggregateTags(cases))
	tagTeams := dominantAreaByTag(cases)

	// One pass over the cases builds every index: per-responder workload,
	// question and advice counts, and the consultation total. Advice counts
	// even when no asker was recorded, as long as the adviser is someone else.
	accums := make(map[string]*responderAccum)
	questionCounts := make(map[string]int)
	adviceCounts := make(map[string]int)
	totalConsultations := 0

	for _, c := range cases {
		if c.Asker != "" {
			totalConsultations++
			questionCounts[c.Asker]++
		}
		if c.Adviser != "" && c.Adviser != c.Asker {
			adviceCounts[c.Adviser]++
		}

		if c.Responder == "" {
			continue
		}
		a := accums[c.Responder]
		if a == nil {
			a = &responderAccum{
				name:     c.Responder,
				tagCases: make(map[string]int),
				tagBand:  make(map[string]models.CaseBand),
			}
			accums[c.Responder] = a
		}
		a.caseCount++
		a.rallySum += c.RallyCount
		a.totalTime += c.ResponseTime
		if c.MacroUsed {
			a.macroCount++
		}
		a.tagCases[c.Tag]++

		if member, ok := roster[c.Responder]; ok {
			if team := caseTeam(c, tagTeams); team != "" &&
				(member.PrimaryTeam == team || member.InSecondary(team)) {
				a.teamMatches++
			}
		}

		band := models.CaseStandard
		if dist, ok := distByTag[c.Tag]; ok {
			complexity := stats.CaseComplexity(
				stats.TimeScore(c.ResponseTime),
				stats.RallyScore(float64(c.RallyCount)),
				c.MacroUsed,
				c.HasConsultation(),
			)
			band = ClassifyCase(complexity, dist.P25Complexity, dist.P75Complexity)
		}
		if prev, ok := a.tagBand[c.Tag]; !ok || band > prev {
			a.tagBand[c.Tag] = band
		}
	}

	results := make([]models.ResponderSkillResult, 0, len(accums))
	for _, a := range accums {
		results = append(results, s.scoreResponder(a, roster, diffByTag, distByTag, totalTags, questionCounts[a.name], adviceCounts[a.name], totalConsultations))
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].TotalScore != results[j].TotalScore {
			return results[i].TotalScore > results[j].TotalScore
		}
		return results[i].Name < results[j].Name
	})
	return results
}

func (s *SkillScorer) scoreResponder(
	a *responderAccum,
	roster models.Roster,
	diffByTag map[string]models.TagDifficultyResult,
	distByTag map[string]models.TagDistributionResult,
	totalTags, questionCount, adviceCount, totalConsultations int,
) models.ResponderSkillResult {
	tagLevels := make(map[string]models.Level, len(a.tagCases))
	complexTags := 0
	highLevelTags := 0
	var levelTagCounts [5]int

	for tag := range a.tagCases {
		level := s.tagLevel(tag, a.tagBand[tag], diffByTag, distByTag)
		if dist, ok := distByTag[tag]; ok && a.tagBand[tag] == models.CaseComplex && dist.ComplexLevel != models.LevelUnknown {
			complexTags++
		}
		if d, ok := diffByTag[tag]; ok && d.TechnicalLevel >= models.L4 {
			highLevelTags++
		}
		tagLevels[tag] = level
		if level >= models.L1 && level <= models.L5 {
			levelTagCounts[int(level)-1]++
		}
	}

	width := stats.SafeRate(float64(len(a.tagCases)), float64(totalTags))

	// Depth weights each level by the number of tags reached at that level,
	// so one busy tag cannot dominate the score.
	var depthNum, depthDen float64
	for i, n := range levelTagCounts {
		depthNum += float64(i+1) * float64(n)
		depthDen += float64(n)
	}
	depth := 0.0
	if depthDen > 0 {
		depth = depthNum / depthDen
	}

	productivity := 0.0
	if a.totalTime > 0 {
		productivity = float64(a.rallySum) / a.totalTime * 60
	}

	res := models.ResponderSkillResult{
		Name:       a.name,
		CaseCount:  a.caseCount,
		RallyCount: a.rallySum,
		TagCount:   len(a.tagCases),

		Width: width,
		Depth: depth,

		Productivity:  productivity,
		MacroRate:     stats.SafeRate(float64(a.macroCount), float64(a.caseCount)),
		QuestionCount: questionCount,
		QuestionRate:  stats.SafeRate(float64(questionCount), float64(a.caseCount)),
		AdviceCount:   adviceCount,
		AdviserRate:   stats.SafeRate(float64(adviceCount), float64(totalConsultations)),
		TeamMatchRate: stats.SafeRate(float64(a.teamMatches), float64(a.caseCount)),

		ComplexCaseTags: complexTags,
		HighLevelTags:   highLevelTags,
		LevelTagCounts:  levelTagCounts,
		TagLevels:       tagLevels,
	}

	if member, ok := roster[a.name]; ok {
		res.OrgType = member.OrgType
		res.Team = member.PrimaryTeam
		res.Category = models.Categorize(member, member.PrimaryTeam)
		res.WorkTimeRatio = member.WorkTimeRatio
	}
	if res.WorkTimeRatio == 0 {
		res.WorkTimeRatio = s.defaultWorkRatio(res.OrgType)
	}

	res.EffectiveProductivity = stats.EffectiveProductivity(
		productivity, res.QuestionRate, res.AdviserRate,
		s.settings.QuestionCostFactor, s.settings.ConsultationCostFactor,
	)
	res.Type = s.classify(res)
	res.TotalScore = width*0.3 + depth*20*0.3 + productivity*3*0.4
	return res
}

// tagLevel resolves the level a responder reached on one tag: the band level
// from the tag's distribution when one exists, otherwise the tag's overall
// difficulty, otherwise L3.
func (s *SkillScorer) tagLevel(tag string, band models.CaseBand, diffByTag map[string]models.TagDifficultyResult, distByTag map[string]models.TagDistributionResult) models.Level {
	if dist, ok := distByTag[tag]; ok {
		switch band {
		case models.CaseComplex:
			return dist.ComplexLevel
		case models.CaseSimple:
			return dist.SimpleLevel
		}
		return dist.StandardLevel
	}
	if d, ok := diffByTag[tag]; ok && d.Difficulty != models.LevelUnknown {
		return d.Difficulty
	}
	return models.L3
}

func (s *SkillScorer) classify(r models.ResponderSkillResult) models.SkillType {
	switch {
	case r.Width >= s.settings.HyperWidth && r.Productivity >= s.settings.HyperProductivity:
		return models.SkillHighPerformer
	// A broad specialist additionally needs three tags at L4 or above.
	case r.Depth >= s.settings.SpecialistDepth &&
		r.ComplexCaseTags >= s.settings.SpecialistComplex &&
		(r.Width < 50 || r.HighLevelTags >= 3):
		return models.SkillSpecialist
	case r.Width >= s.settings.AllrounderWidth:
		return models.SkillAllRounder
	}
	return models.SkillStandard
}

func (s *SkillScorer) defaultWorkRatio(org models.OrgType) float64 {
	hours := s.settings.IHDefaultHours
	if org == models.OrgExternal {
		hours = s.settings.PTDefaultHours
	}
	if s.settings.HoursPerDay <= 0 {
		return 1
	}
	return hours / s.settings.HoursPerDay
}
