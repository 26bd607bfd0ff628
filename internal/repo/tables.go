package repo

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

// WriteResultTables writes one CSV per analysis into dir, creating it if
// needed. Returns the paths written.
func WriteResultTables(dir string, result models.Result) ([]string, error) {
	const op = "repo.write_results"

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, utils.NewAppError(op, fmt.Sprintf("create output dir %s", dir), err)
	}

	writers := []struct {
		name  string
		write func(*csv.Writer) error
	}{
		{"tag_difficulty.csv", func(w *csv.Writer) error { return writeDifficulty(w, result.Difficulties) }},
		{"tag_distribution.csv", func(w *csv.Writer) error { return writeDistribution(w, result.Distributions) }},
		{"responder_skills.csv", func(w *csv.Writer) error { return writeSkills(w, result.Skills) }},
		{"team_productivity.csv", func(w *csv.Writer) error { return writeTeams(w, result.Teams) }},
		{"team_members.csv", func(w *csv.Writer) error { return writeTeamMembers(w, result.Teams) }},
		{"area_coverage.csv", func(w *csv.Writer) error { return writeAreas(w, result.Areas) }},
		{"consultation_flows.csv", func(w *csv.Writer) error { return writeConsultations(w, result.Consultations) }},
		{"consultation_pairs.csv", func(w *csv.Writer) error { return writePairs(w, result.Consultations) }},
	}

	paths := make([]string, 0, len(writers))
	for _, t := range writers {
		path := filepath.Join(dir, t.name)
		if err := writeCSV(path, t.write); err != nil {
			return paths, utils.NewAppError(op, fmt.Sprintf("write %s", t.name), err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSV(path string, fn func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fn(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeDifficulty(w *csv.Writer, results []models.TagDifficultyResult) error {
	header := []string{
		"tag_name", "case_count", "rally_count", "avg_response_time", "median_response_time",
		"p25_response_time", "p75_response_time", "iqr_response_time", "avg_rally",
		"macro_rate", "consult_rate", "responder_count", "coverage_rate",
		"technical_score", "response_score", "knowledge_score", "auto_score", "composite_score",
		"technical_level", "response_level", "knowledge_level", "auto_level", "difficulty",
		"tag_type", "rally_share", "case_share", "beginner_friendly", "high_consultation",
		"adjustment",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Tag, itoa(r.CaseCount), itoa(r.Rally), ftoa(r.AvgResponseTime), ftoa(r.MedianTime),
			ftoa(r.P25Time), ftoa(r.P75Time), ftoa(r.IQRTime), ftoa(r.AvgRally),
			ftoa(r.MacroRate), ftoa(r.ConsultRate), itoa(r.ResponderCount), ftoa(r.CoverageRate),
			ftoa(r.TechnicalScore), ftoa(r.ResponseScore), ftoa(r.KnowledgeScore), ftoa(r.AutoScore), ftoa(r.CompositeScore),
			r.TechnicalLevel.String(), r.ResponseLevel.String(), r.KnowledgeLevel.String(), r.AutoLevel.String(), r.Difficulty.String(),
			string(r.Type), ftoa(r.RallyShare), ftoa(r.CaseShare), btoa(r.BeginnerFriendly), btoa(r.HighConsultation),
			ftoa(r.AdjustmentApplied),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeDistribution(w *csv.Writer, results []models.TagDistributionResult) error {
	header := []string{
		"tag_name", "base_level", "case_count",
		"simple_level", "simple_count", "simple_monthly", "simple_share", "simple_avg_time", "simple_avg_rally",
		"standard_level", "standard_count", "standard_monthly", "standard_share", "standard_avg_time", "standard_avg_rally",
		"complex_level", "complex_count", "complex_monthly", "complex_share", "complex_avg_time", "complex_avg_rally",
		"p25_complexity", "p75_complexity",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	bucket := func(b models.LevelBucket) []string {
		return []string{
			b.Level.String(), itoa(b.CaseCount), itoa(b.MonthlyCount),
			ftoa(b.Share), ftoa(b.AvgTime), ftoa(b.AvgRally),
		}
	}
	for _, r := range results {
		record := []string{r.Tag, r.BaseLevel.String(), itoa(r.CaseCount)}
		record = append(record, bucket(r.Simple)...)
		record = append(record, bucket(r.Standard)...)
		record = append(record, bucket(r.Complex)...)
		record = append(record, ftoa(r.P25Complexity), ftoa(r.P75Complexity))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeSkills(w *csv.Writer, results []models.ResponderSkillResult) error {
	header := []string{
		"user_name", "ih_pt", "team", "category", "case_count", "rally_count", "tag_count",
		"width", "depth", "productivity", "effective_productivity", "macro_rate",
		"question_count", "question_rate", "advice_count", "adviser_rate", "team_match_rate", "work_time_ratio",
		"complex_case_tags", "high_level_tags",
		"l1_tags", "l2_tags", "l3_tags", "l4_tags", "l5_tags",
		"skill_type", "total_score",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.Name, string(r.OrgType), r.Team, r.Category.String(),
			itoa(r.CaseCount), itoa(r.RallyCount), itoa(r.TagCount),
			ftoa(r.Width), ftoa(r.Depth), ftoa(r.Productivity), ftoa(r.EffectiveProductivity), ftoa(r.MacroRate),
			itoa(r.QuestionCount), ftoa(r.QuestionRate), itoa(r.AdviceCount), ftoa(r.AdviserRate), ftoa(r.TeamMatchRate), ftoa(r.WorkTimeRatio),
			itoa(r.ComplexCaseTags), itoa(r.HighLevelTags),
			itoa(r.LevelTagCounts[0]), itoa(r.LevelTagCounts[1]), itoa(r.LevelTagCounts[2]),
			itoa(r.LevelTagCounts[3]), itoa(r.LevelTagCounts[4]),
			string(r.Type), ftoa(r.TotalScore),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func writeTeams(w *csv.Writer, results []models.TeamProductivityResult) error {
	header := []string{
		"team", "category", "members", "case_count", "rally_count",
		"productivity", "effective_productivity", "rally_rate", "question_rate", "advice_rate",
		"target_rally_rate", "target_productivity",
		"completion_rate", "team_question_rate",
		"primary_members", "ideal_headcount", "adjusted_headcount", "headcount_gap", "status",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, team := range results {
		for _, c := range team.Categories {
			record := []string{
				team.Team, c.Category.String(), itoa(c.Members), itoa(c.CaseCount), itoa(c.RallyCount),
				ftoa(c.Productivity), ftoa(c.EffectiveProductivity), ftoa(c.RallyRate), ftoa(c.QuestionRate), ftoa(c.AdviceRate),
				ftoa(c.TargetRallyRate), ftoa(c.TargetProductivity),
				ftoa(team.CompletionRate), ftoa(team.TeamQuestionRate),
				itoa(team.PrimaryMembers), ftoa(team.IdealHeadcount), ftoa(team.AdjustedHeadcount),
				ftoa(team.HeadcountGap), string(team.Status),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeTeamMembers(w *csv.Writer, results []models.TeamProductivityResult) error {
	header := []string{
		"team", "user_name", "ih_pt", "rally_count",
		"productivity", "effective_productivity",
		"question_count", "question_rate", "advice_count", "advice_rate",
		"contribution_rate",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, team := range results {
		for _, m := range team.Members {
			record := []string{
				team.Team, m.Name, string(m.OrgType), itoa(m.RallyCount),
				ftoa(m.Productivity), ftoa(m.EffectiveProductivity),
				itoa(m.QuestionCount), ftoa(m.QuestionRate), itoa(m.AdviceCount), ftoa(m.AdviceRate),
				ftoa(m.ContributionRate),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeAreas(w *csv.Writer, results []models.AreaCoverageResult) error {
	header := []string{
		"op_name", "user_name", "category", "tag_count", "case_count", "rally_count",
		"productivity", "area_tag_count", "area_case_count", "area_rally_count",
		"high_level_tags", "member_coverage",
		"completion_rate", "question_rate", "consultations",
		"ih_primary_rally_rate", "ih_secondary_rally_rate", "pt_primary_rally_rate", "pt_secondary_rally_rate",
		"ideal_headcount", "adjusted_headcount",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, area := range results {
		for _, r := range area.Responders {
			record := []string{
				area.Area, r.Name, r.Category.String(), itoa(r.TagCount), itoa(r.CaseCount), itoa(r.RallyCount),
				ftoa(r.Productivity), itoa(area.TagCount), itoa(area.CaseCount), itoa(area.RallyCount),
				itoa(area.HighLevelTags), ftoa(area.MemberCoverage),
				ftoa(area.CompletionRate), ftoa(area.AreaQuestionRate), itoa(area.ConsultationCount),
				ftoa(area.Categories[0].RallyRate), ftoa(area.Categories[1].RallyRate),
				ftoa(area.Categories[2].RallyRate), ftoa(area.Categories[3].RallyRate),
				ftoa(area.IdealHeadcount), ftoa(area.AdjustedHeadcount),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeConsultations(w *csv.Writer, results []models.TeamConsultationResult) error {
	header := []string{
		"team", "asker_category", "adviser_category", "count", "rally_count",
		"avg_response_time", "avg_solve_time",
		"consultation_count", "consultation_share", "team_avg_solve_time",
		"priority", "points", "actions",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	cats := models.AllCategories()
	for _, team := range results {
		for i, asker := range cats {
			for j, adviser := range cats {
				cell := team.Matrix[i][j]
				if cell.Count == 0 {
					continue
				}
				record := []string{
					team.Team, asker.String(), adviser.String(), itoa(cell.Count), itoa(cell.Rally),
					ftoa(cell.AvgResponseTime), ftoa(cell.AvgSolveTime),
					itoa(team.ConsultationCount), ftoa(team.ConsultationShare), ftoa(team.AvgSolveTime),
					string(team.Priority), itoa(team.Points), strings.Join(team.Actions, " / "),
				}
				if err := w.Write(record); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func writePairs(w *csv.Writer, results []models.TeamConsultationResult) error {
	header := []string{
		"team", "asker", "adviser", "count", "rally_count",
		"avg_solve_time", "pair_productivity", "tags",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, team := range results {
		for _, p := range team.Pairs {
			record := []string{
				team.Team, p.Asker, p.Adviser, itoa(p.Count), itoa(p.Rally),
				ftoa(p.AvgSolveTime), ftoa(p.PairProductivity), strings.Join(p.Tags, ","),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteRosterSkeleton derives a starter roster from the distinct responders
// in the case table. Team and work-time columns come out blank or defaulted
// for manual completion.
func WriteRosterSkeleton(path string, cases []models.Case, settings config.Settings) (int, error) {
	const op = "repo.write_roster_skeleton"

	type seenResponder struct {
		name string
		org  models.OrgType
	}
	seen := make(map[string]models.OrgType)
	for _, c := range cases {
		if c.Responder == "" {
			continue
		}
		if _, ok := seen[c.Responder]; !ok || c.OrgType != "" {
			seen[c.Responder] = c.OrgType
		}
	}

	responders := make([]seenResponder, 0, len(seen))
	for name, org := range seen {
		responders = append(responders, seenResponder{name: name, org: org})
	}
	sort.Slice(responders, func(i, j int) bool { return responders[i].name < responders[j].name })

	err := writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{colRosterName, colRosterOrgType, colRosterPrimary, colRosterSecondary, colRosterRatio}); err != nil {
			return err
		}
		for _, r := range responders {
			org := r.org
			if org == "" {
				org = models.OrgInternal
			}
			hours := settings.IHDefaultHours
			if org == models.OrgExternal {
				hours = settings.PTDefaultHours
			}
			ratio := 0.0
			if settings.HoursPerDay > 0 {
				ratio = hours / settings.HoursPerDay
			}
			if err := w.Write([]string{r.name, string(org), "", "", ftoa(ratio)}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, utils.NewAppError(op, fmt.Sprintf("write %s", path), err)
	}
	return len(responders), nil
}

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func btoa(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
