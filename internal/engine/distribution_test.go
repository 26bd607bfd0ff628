package engine

import (
	"testing"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
)

func distributionFixture() []models.Case {
	cases := []models.Case{
		{Tag: "機能_t", Responder: "a", ResponseTime: 4, RallyCount: 1, MacroUsed: true},
		{Tag: "機能_t", Responder: "a", ResponseTime: 4, RallyCount: 1, MacroUsed: true},
		{Tag: "機能_t", Responder: "b", ResponseTime: 20, RallyCount: 2},
		{Tag: "機能_t", Responder: "b", ResponseTime: 20, RallyCount: 2},
		{Tag: "機能_t", Responder: "b", ResponseTime: 20, RallyCount: 2},
		{Tag: "機能_t", Responder: "b", ResponseTime: 20, RallyCount: 2},
		{Tag: "機能_t", Responder: "c", ResponseTime: 90, RallyCount: 6, Asker: "b"},
		{Tag: "機能_t", Responder: "c", ResponseTime: 90, RallyCount: 6, Asker: "b"},
	}
	return cases
}

func TestDistributionBands(t *testing.T) {
	analyzer := NewDistributionAnalyzer(config.Default())
	difficulties := []models.TagDifficultyResult{{Tag: "機能_t", Difficulty: models.L3}}

	results := analyzer.Analyze(distributionFixture(), difficulties)
	if len(results) != 1 {
		t.Fatalf("expected 1 distribution, got %d", len(results))
	}
	d := results[0]

	// complexities are 1.0 x2, 2.5 x4, 4.6 x2: P25 = 1.75, P75 = 3.55
	if !almostEqual(d.P25Complexity, 1.75) || !almostEqual(d.P75Complexity, 3.55) {
		t.Fatalf("percentiles = %g/%g, want 1.75/3.55", d.P25Complexity, d.P75Complexity)
	}

	if d.SimpleLevel != models.L2 || d.StandardLevel != models.L3 || d.ComplexLevel != models.L4 {
		t.Fatalf("band levels = %v/%v/%v, want L2/L3/L4", d.SimpleLevel, d.StandardLevel, d.ComplexLevel)
	}

	if d.Simple.CaseCount != 2 || d.Standard.CaseCount != 4 || d.Complex.CaseCount != 2 {
		t.Fatalf("band counts = %d/%d/%d, want 2/4/2",
			d.Simple.CaseCount, d.Standard.CaseCount, d.Complex.CaseCount)
	}
	if !almostEqual(d.Simple.Share, 25) || !almostEqual(d.Standard.Share, 50) {
		t.Fatalf("band shares = %g/%g, want 25/50", d.Simple.Share, d.Standard.Share)
	}
	if !almostEqual(d.Complex.AvgTime, 90) || !almostEqual(d.Complex.AvgRally, 6) {
		t.Fatalf("complex band averages = %g/%g, want 90/6", d.Complex.AvgTime, d.Complex.AvgRally)
	}

	// 2 cases over a 3-month sample rounds to 1 per month
	if d.Simple.MonthlyCount != 1 || d.Standard.MonthlyCount != 1 || d.Complex.MonthlyCount != 1 {
		t.Fatalf("monthly counts = %d/%d/%d, want 1/1/1",
			d.Simple.MonthlyCount, d.Standard.MonthlyCount, d.Complex.MonthlyCount)
	}
}

func TestDistributionSkipsThinTags(t *testing.T) {
	analyzer := NewDistributionAnalyzer(config.Default())
	cases := []models.Case{
		{Tag: "機能_thin", Responder: "a", ResponseTime: 10, RallyCount: 1},
		{Tag: "機能_thin", Responder: "a", ResponseTime: 12, RallyCount: 1},
	}

	results := analyzer.Analyze(cases, nil)
	if len(results) != 0 {
		t.Fatalf("tag below the minimum case count should be skipped, got %d results", len(results))
	}
}

func TestDistributionUnknownBaseLevel(t *testing.T) {
	analyzer := NewDistributionAnalyzer(config.Default())

	// no difficulty result for the tag: bands spread around L3
	results := analyzer.Analyze(distributionFixture(), nil)
	if len(results) != 1 {
		t.Fatalf("expected 1 distribution, got %d", len(results))
	}
	d := results[0]
	if d.SimpleLevel != models.L2 || d.StandardLevel != models.L3 || d.ComplexLevel != models.L4 {
		t.Fatalf("unknown base should spread around L3, got %v/%v/%v",
			d.SimpleLevel, d.StandardLevel, d.ComplexLevel)
	}
}

func TestDistributionSortOrder(t *testing.T) {
	analyzer := NewDistributionAnalyzer(config.Default())

	cases := distributionFixture()
	for i := 0; i < 5; i++ {
		cases = append(cases, models.Case{Tag: "機能_big", Responder: "a", ResponseTime: 10, RallyCount: 1})
	}
	for i := 0; i < 6; i++ {
		cases = append(cases, models.Case{Tag: "機能_bigger", Responder: "a", ResponseTime: 10, RallyCount: 1})
	}

	results := analyzer.Analyze(cases, nil)
	if len(results) != 3 {
		t.Fatalf("expected 3 distributions, got %d", len(results))
	}
	if results[0].Tag != "機能_t" || results[1].Tag != "機能_bigger" || results[2].Tag != "機能_big" {
		t.Fatalf("results not sorted by case count: %s, %s, %s",
			results[0].Tag, results[1].Tag, results[2].Tag)
	}
}
