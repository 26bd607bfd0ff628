package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

func TestPipelineRun(t *testing.T) {
	cases, roster := teamFixture()
	// pad the tag past the minimum case count so a distribution appears
	for i := 0; i < 4; i++ {
		cases = append(cases, models.Case{
			Tag: "機能_x", Area: "T1", Responder: "alice", ResponseTime: 10, RallyCount: 1,
		})
	}

	p := NewPipeline(nil, config.Default())
	result, err := p.Run(context.Background(), Input{Cases: cases, Roster: roster})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(result.Difficulties) != 1 {
		t.Fatalf("difficulties = %d, want 1", len(result.Difficulties))
	}
	if len(result.Distributions) != 1 {
		t.Fatalf("distributions = %d, want 1", len(result.Distributions))
	}
	if len(result.Skills) != 3 {
		t.Fatalf("skills = %d, want 3", len(result.Skills))
	}
	if len(result.Teams) != 2 {
		t.Fatalf("teams = %d, want 2", len(result.Teams))
	}
	if len(result.Areas) != 1 {
		t.Fatalf("areas = %d, want 1", len(result.Areas))
	}
	if len(result.Consultations) != 1 {
		t.Fatalf("consultations = %d, want 1", len(result.Consultations))
	}
}

func TestPipelineRejectsEmptyDataset(t *testing.T) {
	p := NewPipeline(nil, config.Default())

	cases := []models.Case{
		{Tag: "status_open", ResponseTime: 10, RallyCount: 1}, // filtered out
	}
	_, err := p.Run(context.Background(), Input{Cases: cases})
	if err == nil {
		t.Fatal("expected error for a dataset with no qualifying cases")
	}
	if !errors.Is(err, utils.ErrInsufficientData) {
		t.Fatalf("error = %v, want insufficient data", err)
	}
}

func TestPipelineAppliesAdjustments(t *testing.T) {
	cases, roster := teamFixture()
	p := NewPipeline(nil, config.Default())

	base, err := p.Run(context.Background(), Input{Cases: cases, Roster: roster})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	adjusted, err := p.Run(context.Background(), Input{
		Cases:       cases,
		Roster:      roster,
		Adjustments: map[string]float64{"機能_x": 0.5},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if adjusted.Difficulties[0].CompositeScore <= base.Difficulties[0].CompositeScore {
		t.Fatalf("positive adjustment should raise the composite: %g vs %g",
			adjusted.Difficulties[0].CompositeScore, base.Difficulties[0].CompositeScore)
	}
}
