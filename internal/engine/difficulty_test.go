package engine

import (
	"math"
	"testing"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func easyHardCases() []models.Case {
	cases := make([]models.Case, 0, 8)
	for _, r := range []string{"alice", "bob", "carol", "dave"} {
		cases = append(cases, models.Case{
			Tag: "機能_easy", Responder: r,
			ResponseTime: 4, RallyCount: 1, MacroUsed: true,
		})
	}
	for i := 0; i < 4; i++ {
		cases = append(cases, models.Case{
			Tag: "機能_hard", Responder: "alice",
			ResponseTime: 90, RallyCount: 6, Asker: "bob",
		})
	}
	return cases
}

func findDifficulty(t *testing.T, results []models.TagDifficultyResult, tag string) models.TagDifficultyResult {
	t.Helper()
	for _, r := range results {
		if r.Tag == tag {
			return r
		}
	}
	t.Fatalf("tag %s not found in results", tag)
	return models.TagDifficultyResult{}
}

func TestFilterCases(t *testing.T) {
	settings := config.Default()
	cases := []models.Case{
		{Tag: "機能_ok", ResponseTime: 10, RallyCount: 1},
		{Tag: "koban_ok", ResponseTime: 10, RallyCount: 1},
		{Tag: "status_open", ResponseTime: 10, RallyCount: 1}, // not a function tag
		{Tag: "機能_zero", ResponseTime: 0, RallyCount: 1},     // invalid time
		{Tag: "機能_day", ResponseTime: 1440, RallyCount: 1},   // sentinel time
		{Tag: "機能_ojt", ResponseTime: 10, RallyCount: 1, OJT: true},
	}

	got := FilterCases(cases, settings)
	if len(got) != 3 {
		t.Fatalf("expected 3 qualifying cases, got %d", len(got))
	}

	settings.ExcludeOJT = true
	got = FilterCases(cases, settings)
	if len(got) != 2 {
		t.Fatalf("expected 2 qualifying cases with OJT excluded, got %d", len(got))
	}
}

func TestDifficultyScoring(t *testing.T) {
	scorer := NewDifficultyScorer(config.Default(), nil)
	cases := easyHardCases()
	results := scorer.Score(cases, cases)

	if len(results) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(results))
	}
	// hard tag carries the higher composite, so it sorts first
	if results[0].Tag != "機能_hard" {
		t.Fatalf("expected 機能_hard first, got %s", results[0].Tag)
	}

	easy := findDifficulty(t, results, "機能_easy")
	// full coverage, instant macro answers, single rally: everything bottoms out
	if !almostEqual(easy.TechnicalScore, 0.8) {
		t.Fatalf("easy technical score = %g, want 0.8", easy.TechnicalScore)
	}
	// raw weighted sum is 0.66, the composite floor pulls it up to 1
	if !almostEqual(easy.CompositeScore, 1) {
		t.Fatalf("easy composite score = %g, want 1", easy.CompositeScore)
	}
	if easy.Difficulty != models.L1 {
		t.Fatalf("easy difficulty = %v, want L1", easy.Difficulty)
	}
	if !easy.BeginnerFriendly {
		t.Fatal("easy tag with 100%% macro usage should be beginner friendly")
	}
	if easy.Type != models.TagCore {
		t.Fatalf("easy tag holds half the cases, want core, got %v", easy.Type)
	}

	hard := findDifficulty(t, results, "機能_hard")
	if !almostEqual(hard.TechnicalScore, 4.7) {
		t.Fatalf("hard technical score = %g, want 4.7", hard.TechnicalScore)
	}
	if !almostEqual(hard.ResponseScore, 4.0) {
		t.Fatalf("hard response score = %g, want 4.0", hard.ResponseScore)
	}
	if !almostEqual(hard.KnowledgeScore, 2.8) {
		t.Fatalf("hard knowledge score = %g, want 2.8", hard.KnowledgeScore)
	}
	if !almostEqual(hard.CompositeScore, 4.04) {
		t.Fatalf("hard composite score = %g, want 4.04", hard.CompositeScore)
	}
	if hard.TechnicalLevel != models.L5 || hard.ResponseLevel != models.L4 || hard.KnowledgeLevel != models.L3 {
		t.Fatalf("hard dimension levels = %v/%v/%v, want L5/L4/L3",
			hard.TechnicalLevel, hard.ResponseLevel, hard.KnowledgeLevel)
	}
	if hard.Difficulty != models.L4 {
		t.Fatalf("hard difficulty = %v, want L4", hard.Difficulty)
	}
	if !hard.HighConsultation {
		t.Fatal("hard tag with 100%% consultations should flag high consultation")
	}
}

func TestDifficultyAdjustment(t *testing.T) {
	scorer := NewDifficultyScorer(config.Default(), map[string]float64{"機能_hard": 1})
	cases := easyHardCases()
	results := scorer.Score(cases, cases)

	hard := findDifficulty(t, results, "機能_hard")
	// 4.04 + 1 clamps to 5 and crosses into L5
	if !almostEqual(hard.CompositeScore, 5) {
		t.Fatalf("adjusted composite = %g, want 5", hard.CompositeScore)
	}
	if hard.Difficulty != models.L5 {
		t.Fatalf("adjusted difficulty = %v, want L5", hard.Difficulty)
	}
	// the unadjusted score and level survive alongside
	if !almostEqual(hard.AutoScore, 4.04) || hard.AutoLevel != models.L4 {
		t.Fatalf("auto score/level = %g/%v, want 4.04/L4", hard.AutoScore, hard.AutoLevel)
	}
	if !almostEqual(hard.AdjustmentApplied, 1) {
		t.Fatalf("adjustment applied = %g, want 1", hard.AdjustmentApplied)
	}
}

func TestRallyFallsBackToCaseCount(t *testing.T) {
	cases := []models.Case{
		{Tag: "機能_a", Responder: "alice", ResponseTime: 10},
		{Tag: "機能_a", Responder: "alice", ResponseTime: 10},
	}
	scorer := NewDifficultyScorer(config.Default(), nil)
	results := scorer.Score(cases, cases)

	a := findDifficulty(t, results, "機能_a")
	if a.Rally != 2 {
		t.Fatalf("rally = %d, want fallback to case count 2", a.Rally)
	}
	if !almostEqual(a.RallyShare, 100) {
		t.Fatalf("rally share = %g, want 100", a.RallyShare)
	}
}

func TestShareAndCoverageUseRawDenominators(t *testing.T) {
	gated := []models.Case{
		{Tag: "機能_a", Responder: "alice", ResponseTime: 10},
	}
	// a non-function tag, a zero time, and a sentinel time: none survive
	// the gate, but all stay in the raw snapshot
	raw := append([]models.Case{
		{Tag: "status_open", Responder: "zoe", ResponseTime: 10},
		{Tag: "機能_a", Responder: "bob", ResponseTime: 0},
		{Tag: "機能_b", Responder: "carol", ResponseTime: 2000},
	}, gated...)

	scorer := NewDifficultyScorer(config.Default(), nil)
	results := scorer.Score(gated, raw)
	a := findDifficulty(t, results, "機能_a")

	// one gated case over four raw records
	if !almostEqual(a.CaseShare, 25) {
		t.Fatalf("case share = %g, want 25", a.CaseShare)
	}
	// alice, bob, and carol all touched function tags in the raw snapshot
	if !almostEqual(a.CoverageRate, 100.0/3) {
		t.Fatalf("coverage rate = %g, want %g", a.CoverageRate, 100.0/3)
	}
}
