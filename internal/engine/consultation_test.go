package engine

import (
	"testing"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
)

func consultationFixture() ([]models.Case, models.Roster) {
	cases := []models.Case{
		{Tag: "機能_x", Area: "T1", Responder: "alice", ResponseTime: 20, RallyCount: 4},
		{Tag: "機能_x", Area: "T1", Responder: "bob", ResponseTime: 10, RallyCount: 2,
			Asker: "bob", Adviser: "alice", SolveDuration: 30},
		{Tag: "機能_x", Area: "T1", Responder: "carol", ResponseTime: 15, RallyCount: 1,
			Asker: "carol", Adviser: "alice", SolveDuration: 10},
	}
	roster := models.Roster{
		"alice": {Name: "alice", OrgType: models.OrgInternal, PrimaryTeam: "T1"},
		"bob":   {Name: "bob", OrgType: models.OrgExternal, PrimaryTeam: "T1"},
		"carol": {Name: "carol", OrgType: models.OrgInternal, PrimaryTeam: "T2", SecondaryTeams: []string{"T1"}},
	}
	return cases, roster
}

func TestConsultationFlows(t *testing.T) {
	cases, roster := consultationFixture()
	analyzer := NewConsultationAnalyzer(config.Default())
	results := analyzer.Analyze(cases, roster)

	if len(results) != 1 {
		t.Fatalf("expected 1 team, got %d", len(results))
	}
	res := results[0]
	if res.Team != "T1" || res.ConsultationCount != 2 {
		t.Fatalf("team = %s with %d consultations, want T1 with 2", res.Team, res.ConsultationCount)
	}
	if !almostEqual(res.ConsultationShare, 200.0/3) {
		t.Fatalf("share = %g, want %g", res.ConsultationShare, 200.0/3)
	}
	if !almostEqual(res.AvgSolveTime, 20) {
		t.Fatalf("avg solve time = %g, want 20", res.AvgSolveTime)
	}

	// bob (PT primary, index 2) asked alice (IH primary, index 0)
	if res.Matrix[2][0].Count != 1 {
		t.Fatalf("PT primary -> IH primary count = %d, want 1", res.Matrix[2][0].Count)
	}
	// carol (IH secondary, index 1) asked alice
	if res.Matrix[1][0].Count != 1 {
		t.Fatalf("IH secondary -> IH primary count = %d, want 1", res.Matrix[1][0].Count)
	}
	if !almostEqual(res.Matrix[2][0].AvgSolveTime, 30) {
		t.Fatalf("PT primary -> IH primary avg solve = %g, want 30", res.Matrix[2][0].AvgSolveTime)
	}

	if len(res.TagFlows) != 1 {
		t.Fatalf("expected 1 tag flow, got %d", len(res.TagFlows))
	}
	flow := res.TagFlows[0]
	if flow.Tag != "機能_x" || flow.Count != 2 {
		t.Fatalf("tag flow = %s x%d, want 機能_x x2", flow.Tag, flow.Count)
	}
	if flow.DominantAdviser != models.InternalPrimary {
		t.Fatalf("dominant adviser = %v, want internal primary", flow.DominantAdviser)
	}

	if len(res.Pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(res.Pairs))
	}
	// ties on count sort by asker name
	if res.Pairs[0].Asker != "bob" || res.Pairs[0].Adviser != "alice" {
		t.Fatalf("first pair = %s -> %s, want bob -> alice", res.Pairs[0].Asker, res.Pairs[0].Adviser)
	}
	// 2 rallies over 30 solve minutes
	if !almostEqual(res.Pairs[0].PairProductivity, 4) {
		t.Fatalf("pair productivity = %g, want 4", res.Pairs[0].PairProductivity)
	}

	// share > 15 gives 3 points, avg solve 20 > 15 gives 2: medium priority
	if res.Points != 5 || res.Priority != models.PriorityMedium {
		t.Fatalf("priority = %d points / %v, want 5 / medium", res.Points, res.Priority)
	}
	if len(res.Actions) != 2 {
		t.Fatalf("expected 2 suggested actions, got %d: %v", len(res.Actions), res.Actions)
	}
}

func TestConsultationAreaFallback(t *testing.T) {
	cases, roster := consultationFixture()
	// a consultation with no owning area follows its tag's dominant area
	cases = append(cases, models.Case{
		Tag: "機能_x", Responder: "bob", ResponseTime: 5, RallyCount: 1,
		Asker: "bob", Adviser: "alice", SolveDuration: 5,
	})

	analyzer := NewConsultationAnalyzer(config.Default())
	results := analyzer.Analyze(cases, roster)

	if len(results) != 1 {
		t.Fatalf("expected 1 team, got %d", len(results))
	}
	if results[0].ConsultationCount != 3 {
		t.Fatalf("consultations = %d, want 3 including the fallback case", results[0].ConsultationCount)
	}
}

func TestConsultationNeedsBothParties(t *testing.T) {
	roster := models.Roster{
		"alice": {Name: "alice", OrgType: models.OrgInternal, PrimaryTeam: "T1"},
	}
	cases := []models.Case{
		// asker without adviser does not form a flow
		{Tag: "機能_x", Area: "T1", Responder: "alice", ResponseTime: 10, RallyCount: 1, Asker: "alice"},
	}

	analyzer := NewConsultationAnalyzer(config.Default())
	if results := analyzer.Analyze(cases, roster); len(results) != 0 {
		t.Fatalf("expected no teams, got %d", len(results))
	}
}
