package engine

import (
	"sort"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/stats"
)

// ConsultationAnalyzer maps who asks whom inside each team: the category
// matrix, the per-tag dominant direction, and recurring asker-adviser pairs.
type ConsultationAnalyzer struct {
	settings config.Settings
}

// NewConsultationAnalyzer constructs the analyzer.
func NewConsultationAnalyzer(settings config.Settings) *ConsultationAnalyzer {
	return &ConsultationAnalyzer{settings: settings}
}

type flowAccum struct {
	count     int
	rally     int
	respTime  float64
	solveTime float64
}

type pairAccum struct {
	asker   string
	adviser string
	count   int
	rally   int
	solve   float64
	tags    map[string]struct{}
}

// Analyze computes consultation flows per team. A case joins the analysis
// only when both asker and adviser are known. Cases with no owning area fall
// back to the area most of their tag's cases belong to.
func (ca *ConsultationAnalyzer) Analyze(cases []models.Case, roster models.Roster) []models.TeamConsultationResult {
	tagTeams := dominantAreaByTag(cases)

	teamCases := make(map[string]int)
	for _, c := range cases {
		if team := caseTeam(c, tagTeams); team != "" {
			teamCases[team]++
		}
	}

	type teamAccum struct {
		consultations int
		solveSum      float64
		solveN        int
		matrix        [4][4]flowAccum
		tagAskers     map[string]*[4]int
		tagAdvisers   map[string]*[4]int
		tagCounts     map[string]int
		pairs         map[string]*pairAccum
	}
	teams := make(map[string]*teamAccum)

	for _, c := range cases {
		if c.Asker == "" || c.Adviser == "" {
			continue
		}
		team := caseTeam(c, tagTeams)
		if team == "" {
			continue
		}
		t := teams[team]
		if t == nil {
			t = &teamAccum{
				tagAskers:   make(map[string]*[4]int),
				tagAdvisers: make(map[string]*[4]int),
				tagCounts:   make(map[string]int),
				pairs:       make(map[string]*pairAccum),
			}
			teams[team] = t
		}

		t.consultations++
		if c.SolveDuration > 0 {
			t.solveSum += c.SolveDuration
			t.solveN++
		}

		askerCat := categorizeIn(roster, c.Asker, team)
		adviserCat := categorizeIn(roster, c.Adviser, team)
		if askerCat != models.CategoryUnknown && adviserCat != models.CategoryUnknown {
			cell := &t.matrix[categoryIndex(askerCat)][categoryIndex(adviserCat)]
			cell.count++
			cell.rally += c.RallyCount
			cell.respTime += c.ResponseTime
			cell.solveTime += c.SolveDuration

			bumpCategory(t.tagAskers, c.Tag, askerCat)
			bumpCategory(t.tagAdvisers, c.Tag, adviserCat)
			t.tagCounts[c.Tag]++
		}

		key := c.Asker + "\x00" + c.Adviser
		p := t.pairs[key]
		if p == nil {
			p = &pairAccum{asker: c.Asker, adviser: c.Adviser, tags: make(map[string]struct{})}
			t.pairs[key] = p
		}
		p.count++
		p.rally += c.RallyCount
		p.solve += c.SolveDuration
		p.tags[c.Tag] = struct{}{}
	}

	results := make([]models.TeamConsultationResult, 0, len(teams))
	for name, t := range teams {
		res := models.TeamConsultationResult{
			Team:              name,
			ConsultationCount: t.consultations,
			ConsultationShare: stats.SafeRate(float64(t.consultations), float64(teamCases[name])),
		}
		if t.solveN > 0 {
			res.AvgSolveTime = t.solveSum / float64(t.solveN)
		}

		for i := range t.matrix {
			for j := range t.matrix[i] {
				cell := t.matrix[i][j]
				fs := models.FlowStats{Count: cell.count, Rally: cell.rally}
				if cell.count > 0 {
					fs.AvgResponseTime = cell.respTime / float64(cell.count)
					fs.AvgSolveTime = cell.solveTime / float64(cell.count)
				}
				res.Matrix[i][j] = fs
			}
		}

		res.TagFlows = buildTagFlows(t.tagCounts, t.tagAskers, t.tagAdvisers)
		res.Pairs = buildPairs(t.pairs)

		res.Points = ca.priorityPoints(res)
		res.Priority = priorityFromPoints(res.Points)
		res.Actions = ca.suggestActions(res)
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Points != results[j].Points {
			return results[i].Points > results[j].Points
		}
		return results[i].Team < results[j].Team
	})
	return results
}

// dominantAreaByTag maps each tag to the area owning most of its cases.
func dominantAreaByTag(cases []models.Case) map[string]string {
	counts := make(map[string]map[string]int)
	for _, c := range cases {
		if c.Area == "" {
			continue
		}
		m := counts[c.Tag]
		if m == nil {
			m = make(map[string]int)
			counts[c.Tag] = m
		}
		m[c.Area]++
	}
	out := make(map[string]string, len(counts))
	for tag, areas := range counts {
		best, bestN := "", 0
		for area, n := range areas {
			if n > bestN || (n == bestN && area < best) {
				best, bestN = area, n
			}
		}
		out[tag] = best
	}
	return out
}

func categorizeIn(roster models.Roster, name, team string) models.ResponderCategory {
	member, ok := roster[name]
	if !ok {
		return models.CategoryUnknown
	}
	return models.Categorize(member, team)
}

func bumpCategory(m map[string]*[4]int, tag string, cat models.ResponderCategory) {
	hist := m[tag]
	if hist == nil {
		hist = &[4]int{}
		m[tag] = hist
	}
	hist[categoryIndex(cat)]++
}

func buildTagFlows(counts map[string]int, askers, advisers map[string]*[4]int) []models.TagFlowProfile {
	flows := make([]models.TagFlowProfile, 0, len(counts))
	for tag, n := range counts {
		flows = append(flows, models.TagFlowProfile{
			Tag:             tag,
			Count:           n,
			DominantAsker:   dominantCategory(askers[tag]),
			DominantAdviser: dominantCategory(advisers[tag]),
		})
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Count != flows[j].Count {
			return flows[i].Count > flows[j].Count
		}
		return flows[i].Tag < flows[j].Tag
	})
	return flows
}

func dominantCategory(hist *[4]int) models.ResponderCategory {
	if hist == nil {
		return models.CategoryUnknown
	}
	best, bestN := -1, 0
	for i, n := range hist {
		if n > bestN {
			best, bestN = i, n
		}
	}
	if best < 0 {
		return models.CategoryUnknown
	}
	return models.AllCategories()[best]
}

func buildPairs(pairs map[string]*pairAccum) []models.PairFlow {
	out := make([]models.PairFlow, 0, len(pairs))
	for _, p := range pairs {
		pf := models.PairFlow{
			Asker:   p.asker,
			Adviser: p.adviser,
			Count:   p.count,
			Rally:   p.rally,
		}
		if p.count > 0 {
			pf.AvgSolveTime = p.solve / float64(p.count)
		}
		if p.solve > 0 {
			pf.PairProductivity = float64(p.rally) / p.solve * 60
		}
		pf.Tags = make([]string, 0, len(p.tags))
		for tag := range p.tags {
			pf.Tags = append(pf.Tags, tag)
		}
		sort.Strings(pf.Tags)
		out = append(out, pf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Asker != out[j].Asker {
			return out[i].Asker < out[j].Asker
		}
		return out[i].Adviser < out[j].Adviser
	})
	return out
}

func (ca *ConsultationAnalyzer) priorityPoints(r models.TeamConsultationResult) int {
	points := 0
	switch {
	case r.ConsultationShare > 15:
		points += 3
	case r.ConsultationShare > 5:
		points++
	}
	switch {
	case r.AvgSolveTime > 15:
		points += 2
	case r.AvgSolveTime > 5:
		points++
	}
	switch {
	case r.ConsultationCount > 20:
		points += 3
	case r.ConsultationCount > 5:
		points++
	}
	return points
}

func priorityFromPoints(points int) models.FlowPriority {
	switch {
	case points >= 6:
		return models.PriorityHigh
	case points >= 3:
		return models.PriorityMedium
	case points > 0:
		return models.PriorityLow
	}
	return models.PriorityNone
}

func (ca *ConsultationAnalyzer) suggestActions(r models.TeamConsultationResult) []string {
	var actions []string
	if r.ConsultationShare > 15 {
		actions = append(actions, "頻出相談のナレッジ記事を作成する")
	}
	if r.AvgSolveTime > 15 {
		actions = append(actions, "有識者から担当者へのスキルトランスファーを計画する")
	}
	if r.ConsultationCount > 20 {
		actions = append(actions, "相談の多いタグのFAQを整備する")
	}
	if r.Priority == models.PriorityHigh {
		actions = append(actions, "対象タグの研修を実施する")
	}
	return actions
}
