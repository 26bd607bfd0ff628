package engine

import (
	"sort"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// TeamAreaAggregator builds the workforce view: per-team productivity with
// the headcount model, and per-area tag coverage.
type TeamAreaAggregator struct {
	settings config.Settings
}

// NewTeamAreaAggregator constructs the aggregator.
func NewTeamAreaAggregator(settings config.Settings) *TeamAreaAggregator {
	return &TeamAreaAggregator{settings: settings}
}

type categoryAccum struct {
	caseCount  int
	rallySum   int
	totalTime  float64
	responders map[string]struct{}
	questions  int
	advices    int
}

type memberAccum struct {
	name      string
	org       models.OrgType
	rallySum  int
	totalTime float64
	questions int
	advices   int
}

// groupAccum holds the raw tallies behind one team or area.
type groupAccum struct {
	caseCount int
	rallySum  int
	consults  int
	accums    [4]categoryAccum
	members   map[string]*memberAccum
}

func newGroupAccum() *groupAccum {
	g := &groupAccum{members: make(map[string]*memberAccum)}
	for i := range g.accums {
		g.accums[i].responders = make(map[string]struct{})
	}
	return g
}

// caseTeam resolves the team owning a case: its recorded area, or the area
// most of its tag's cases carry.
func caseTeam(c models.Case, tagTeams map[string]string) string {
	if c.Area != "" {
		return c.Area
	}
	return tagTeams[c.Tag]
}

// memberCategory buckets a rostered responder relative to a team. A member
// with no membership in the team still counts, under the secondary bucket of
// their organization type.
func memberCategory(m models.Responder, team string) models.ResponderCategory {
	if cat := models.Categorize(m, team); cat != models.CategoryUnknown {
		return cat
	}
	if m.OrgType == models.OrgInternal {
		return models.InternalSecondary
	}
	return models.ExternalSecondary
}

// responderCategory buckets a case responder relative to the handling team,
// falling back to the org type recorded on the case when the roster does not
// know the person.
func responderCategory(roster models.Roster, name string, org models.OrgType, team string) models.ResponderCategory {
	if member, ok := roster[name]; ok {
		return memberCategory(member, team)
	}
	if org == models.OrgInternal {
		return models.InternalSecondary
	}
	return models.ExternalSecondary
}

// Teams computes the category breakdown and headcount model for every primary
// team in the roster. A case counts toward the team owning its area, not the
// responder's home team; responders from outside the team land in the
// secondary bucket of their organization type.
func (t *TeamAreaAggregator) Teams(cases []models.Case, roster models.Roster) []models.TeamProductivityResult {
	teams := roster.Teams()
	sort.Strings(teams)

	tagTeams := dominantAreaByTag(cases)
	groups := make(map[string]*groupAccum, len(teams))
	for _, team := range teams {
		groups[team] = newGroupAccum()
	}
	for name, m := range roster {
		if g := groups[m.PrimaryTeam]; g != nil {
			g.members[name] = &memberAccum{name: name, org: m.OrgType}
		}
		for _, sec := range m.SecondaryTeams {
			if g := groups[sec]; g != nil && g.members[name] == nil {
				g.members[name] = &memberAccum{name: name, org: m.OrgType}
			}
		}
	}

	for _, c := range cases {
		team := caseTeam(c, tagTeams)
		g := groups[team]
		if g == nil {
			continue
		}
		g.caseCount++
		g.rallySum += c.RallyCount

		a := &g.accums[categoryIndex(responderCategory(roster, c.Responder, c.OrgType, team))]
		a.caseCount++
		a.rallySum += c.RallyCount
		a.totalTime += c.ResponseTime
		if c.Responder != "" {
			a.responders[c.Responder] = struct{}{}
			if m := g.members[c.Responder]; m != nil {
				m.rallySum += c.RallyCount
				m.totalTime += c.ResponseTime
			}
		}
	}

	// A consultation needs both parties recorded. Question tallies follow the
	// asker's bucket, advice tallies the adviser's.
	for _, c := range cases {
		if c.Asker == "" || c.Adviser == "" {
			continue
		}
		team := caseTeam(c, tagTeams)
		g := groups[team]
		if g == nil {
			continue
		}
		g.consults++
		if member, ok := roster[c.Asker]; ok {
			g.accums[categoryIndex(memberCategory(member, team))].questions++
		}
		if member, ok := roster[c.Adviser]; ok {
			g.accums[categoryIndex(memberCategory(member, team))].advices++
		}
		if m := g.members[c.Asker]; m != nil {
			m.questions++
		}
		if m := g.members[c.Adviser]; m != nil {
			m.advices++
		}
	}

	results := make([]models.TeamProductivityResult, 0, len(teams))
	for _, team := range teams {
		results = append(results, t.finishTeam(team, groups[team], roster))
	}
	return results
}

func (t *TeamAreaAggregator) finishTeam(team string, g *groupAccum, roster models.Roster) models.TeamProductivityResult {
	res := models.TeamProductivityResult{
		Team:       team,
		CaseCount:  g.caseCount,
		RallyCount: g.rallySum,
	}

	memberCounts := t.memberCounts(team, roster)
	res.Categories = t.categoryStats(g, memberCounts)
	res.Members = t.rankMembers(g)

	res.CompletionRate = res.Categories[0].RallyRate
	res.TeamQuestionRate = stats.SafeRate(float64(g.consults), float64(g.rallySum))

	res.PrimaryMembers = memberCounts[0]
	res.IdealHeadcount, res.AdjustedHeadcount = t.headcountModel(g.rallySum, res.TeamQuestionRate)
	res.HeadcountGap = float64(res.PrimaryMembers) - res.IdealHeadcount
	res.Status = headcountStatus(res.HeadcountGap)
	return res
}

func (t *TeamAreaAggregator) categoryStats(g *groupAccum, members [4]int) [4]models.CategoryStats {
	targets := t.categoryTargets()
	var out [4]models.CategoryStats
	for i, cat := range models.AllCategories() {
		a := g.accums[i]
		cs := models.CategoryStats{
			Category:   cat,
			Members:    members[i],
			CaseCount:  a.caseCount,
			RallyCount: a.rallySum,
			TotalTime:  a.totalTime,

			RallyRate:    stats.SafeRate(float64(a.rallySum), float64(g.rallySum)),
			QuestionRate: stats.SafeRate(float64(a.questions), float64(a.rallySum)),
			AdviceRate:   stats.SafeRate(float64(a.advices), float64(g.consults)),

			TargetRallyRate:    targets[i].rallyRate,
			TargetProductivity: targets[i].productivity,
		}
		if a.totalTime > 0 {
			cs.Productivity = float64(a.rallySum) / a.totalTime * 60
		}
		cs.EffectiveProductivity = stats.EffectiveProductivity(
			cs.Productivity, cs.QuestionRate, cs.AdviceRate,
			t.settings.QuestionCostFactor, t.settings.ConsultationCostFactor,
		)
		out[i] = cs
	}
	return out
}

// rankMembers builds the team's productivity ranking over rally-active
// rostered members, descending.
func (t *TeamAreaAggregator) rankMembers(g *groupAccum) []models.TeamMemberStats {
	members := make([]models.TeamMemberStats, 0, len(g.members))
	for _, m := range g.members {
		if m.rallySum == 0 {
			continue
		}
		ms := models.TeamMemberStats{
			Name:          m.name,
			OrgType:       m.org,
			RallyCount:    m.rallySum,
			QuestionCount: m.questions,
			AdviceCount:   m.advices,

			QuestionRate:     stats.SafeRate(float64(m.questions), float64(m.rallySum)),
			AdviceRate:       stats.SafeRate(float64(m.advices), float64(g.consults)),
			ContributionRate: stats.SafeRate(float64(m.rallySum), float64(g.rallySum)),
		}
		if m.totalTime > 0 {
			ms.Productivity = float64(m.rallySum) / m.totalTime * 60
		}
		ms.EffectiveProductivity = stats.EffectiveProductivity(
			ms.Productivity, ms.QuestionRate, ms.AdviceRate,
			t.settings.QuestionCostFactor, t.settings.ConsultationCostFactor,
		)
		members = append(members, ms)
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Productivity != members[j].Productivity {
			return members[i].Productivity > members[j].Productivity
		}
		return members[i].Name < members[j].Name
	})
	return members
}

func (t *TeamAreaAggregator) headcountModel(rallySum int, questionRate float64) (ideal, adjusted float64) {
	monthlyRally := float64(rallySum) / float64(t.settings.SampleMonths)
	ideal = monthlyRally * t.settings.TargetCompletionRate / 100 /
		(t.settings.TargetRallyPerHour * t.settings.MonthlyWorkHours())
	adjusted = ideal * (1 + t.settings.ConsultationCostFactor*questionRate/100)
	return ideal, adjusted
}

func (t *TeamAreaAggregator) memberCounts(team string, roster models.Roster) [4]int {
	var counts [4]int
	for _, m := range roster {
		if cat := models.Categorize(m, team); cat != models.CategoryUnknown {
			counts[categoryIndex(cat)]++
		}
	}
	return counts
}

type categoryTarget struct {
	rallyRate    float64
	productivity float64
}

func (t *TeamAreaAggregator) categoryTargets() [4]categoryTarget {
	return [4]categoryTarget{
		{t.settings.TargetRallyRateIHPrimary, t.settings.TargetProdIHPrimary},
		{t.settings.TargetRallyRateIHSecondary, t.settings.TargetProdIHSecondary},
		{t.settings.TargetRallyRatePTPrimary, t.settings.TargetProdPTPrimary},
		{t.settings.TargetRallyRatePTSecondary, t.settings.TargetProdPTSecondary},
	}
}

func categoryIndex(cat models.ResponderCategory) int {
	for i, c := range models.AllCategories() {
		if c == cat {
			return i
		}
	}
	return 0
}

func headcountStatus(gap float64) models.HeadcountStatus {
	switch {
	case gap >= 2:
		return models.HeadcountSurplus
	case gap >= -1:
		return models.HeadcountBalanced
	case gap >= -3:
		return models.HeadcountTight
	}
	return models.HeadcountShort
}

// Areas computes coverage per functional area (the case's owning op team),
// with the same category breakdown and headcount model the team view uses.
// Results are sorted by case count descending, ties by area name.
func (t *TeamAreaAggregator) Areas(cases []models.Case, roster models.Roster, difficulties []models.TagDifficultyResult) []models.AreaCoverageResult {
	diffByTag := make(map[string]models.TagDifficultyResult, len(difficulties))
	for _, d := range difficulties {
		diffByTag[d.Tag] = d
	}
	tagTeams := dominantAreaByTag(cases)

	type areaAccum struct {
		group    *groupAccum
		tags     map[string]struct{}
		details  map[string]*models.ResponderAreaDetail
		respTime map[string]float64
		respTags map[string]map[string]struct{}
	}
	areas := make(map[string]*areaAccum)
	get := func(name string) *areaAccum {
		a := areas[name]
		if a == nil {
			a = &areaAccum{
				group:    newGroupAccum(),
				tags:     make(map[string]struct{}),
				details:  make(map[string]*models.ResponderAreaDetail),
				respTime: make(map[string]float64),
				respTags: make(map[string]map[string]struct{}),
			}
			areas[name] = a
		}
		return a
	}

	for _, c := range cases {
		name := caseTeam(c, tagTeams)
		if name == "" {
			continue
		}
		a := get(name)
		a.tags[c.Tag] = struct{}{}
		a.group.caseCount++
		a.group.rallySum += c.RallyCount

		cat := responderCategory(roster, c.Responder, c.OrgType, name)
		ca := &a.group.accums[categoryIndex(cat)]
		ca.caseCount++
		ca.rallySum += c.RallyCount
		ca.totalTime += c.ResponseTime

		if c.Responder == "" {
			continue
		}
		ca.responders[c.Responder] = struct{}{}

		d := a.details[c.Responder]
		if d == nil {
			d = &models.ResponderAreaDetail{Name: c.Responder, Category: cat}
			a.details[c.Responder] = d
		}
		d.CaseCount++
		d.RallyCount += c.RallyCount
		a.respTime[c.Responder] += c.ResponseTime

		set := a.respTags[c.Responder]
		if set == nil {
			set = make(map[string]struct{})
			a.respTags[c.Responder] = set
		}
		set[c.Tag] = struct{}{}
	}

	for _, c := range cases {
		if c.Asker == "" || c.Adviser == "" {
			continue
		}
		name := caseTeam(c, tagTeams)
		a := areas[name]
		if a == nil {
			continue
		}
		a.group.consults++
		if member, ok := roster[c.Asker]; ok {
			a.group.accums[categoryIndex(memberCategory(member, name))].questions++
		}
		if member, ok := roster[c.Adviser]; ok {
			a.group.accums[categoryIndex(memberCategory(member, name))].advices++
		}
	}

	results := make([]models.AreaCoverageResult, 0, len(areas))
	for name, a := range areas {
		res := models.AreaCoverageResult{
			Area:              name,
			TagCount:          len(a.tags),
			CaseCount:         a.group.caseCount,
			RallyCount:        a.group.rallySum,
			ConsultationCount: a.group.consults,
		}

		for tag := range a.tags {
			if d, ok := diffByTag[tag]; ok && d.Difficulty >= models.L4 {
				res.HighLevelTags++
			}
		}

		// Area categories report responder counts, not roster membership.
		var responderCounts [4]int
		for i := range a.group.accums {
			responderCounts[i] = len(a.group.accums[i].responders)
		}
		res.Categories = t.categoryStats(a.group, responderCounts)

		res.CompletionRate = res.Categories[0].RallyRate
		res.AreaQuestionRate = stats.SafeRate(float64(a.group.consults), float64(a.group.rallySum))
		res.MemberCoverage = stats.SafeRate(float64(responderCounts[0]), float64(res.TagCount))
		res.IdealHeadcount, res.AdjustedHeadcount = t.headcountModel(a.group.rallySum, res.AreaQuestionRate)

		for respName, d := range a.details {
			d.TagCount = len(a.respTags[respName])
			if total := a.respTime[respName]; total > 0 {
				d.Productivity = float64(d.RallyCount) / total * 60
			}
			res.Responders = append(res.Responders, *d)
		}
		sort.Slice(res.Responders, func(i, j int) bool {
			if res.Responders[i].RallyCount != res.Responders[j].RallyCount {
				return res.Responders[i].RallyCount > res.Responders[j].RallyCount
			}
			return res.Responders[i].Name < res.Responders[j].Name
		})
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CaseCount != results[j].CaseCount {
			return results[i].CaseCount > results[j].CaseCount
		}
		return results[i].Area < results[j].Area
	})
	return results
}
