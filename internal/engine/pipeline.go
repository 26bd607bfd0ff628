package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/metrics"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

// Input is one full dataset snapshot handed to the pipeline.
type Input struct {
	Cases       []models.Case
	Roster      models.Roster
	Adjustments map[string]float64
}

// Pipeline runs the six analyses in dependency order: tag difficulty feeds
// the distributions, both feed the individual skill profiles, and the roster
// views come last. A failing analysis is logged and skipped; the run keeps
// whatever results the remaining analyses can still produce.
type Pipeline struct {
	logger   *slog.Logger
	settings config.Settings
}

// NewPipeline constructs an analysis pipeline.
func NewPipeline(logger *slog.Logger, settings config.Settings) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, settings: settings}
}

// Run executes the full analysis flow over the input snapshot.
func (p *Pipeline) Run(ctx context.Context, in Input) (models.Result, error) {
	var result models.Result

	cases := FilterCases(in.Cases, p.settings)
	p.logger.Info("case gate applied",
		slog.Int("raw", len(in.Cases)),
		slog.Int("qualified", len(cases)),
	)
	if len(cases) == 0 {
		return result, utils.NewAppError("pipeline.run", "no qualifying cases in dataset", utils.ErrInsufficientData)
	}

	p.stage(ctx, "difficulty", func() error {
		scorer := NewDifficultyScorer(p.settings, in.Adjustments)
		result.Difficulties = scorer.Score(cases, in.Cases)
		p.logger.Info("tag difficulty scored", slog.Int("tags", len(result.Difficulties)))
		return nil
	})

	p.stage(ctx, "distribution", func() error {
		analyzer := NewDistributionAnalyzer(p.settings)
		result.Distributions = analyzer.Analyze(cases, result.Difficulties)
		p.logger.Info("tag distributions computed", slog.Int("tags", len(result.Distributions)))
		return nil
	})

	p.stage(ctx, "skills", func() error {
		scorer := NewSkillScorer(p.settings)
		result.Skills = scorer.Score(cases, in.Roster, result.Difficulties, result.Distributions)
		p.logger.Info("responder skills scored", slog.Int("responders", len(result.Skills)))
		return nil
	})

	p.stage(ctx, "teams", func() error {
		if len(in.Roster) == 0 {
			return utils.NewAppError("pipeline.teams", "roster is empty", utils.ErrInsufficientData)
		}
		agg := NewTeamAreaAggregator(p.settings)
		result.Teams = agg.Teams(cases, in.Roster)
		p.logger.Info("team productivity computed", slog.Int("teams", len(result.Teams)))
		return nil
	})

	p.stage(ctx, "areas", func() error {
		agg := NewTeamAreaAggregator(p.settings)
		result.Areas = agg.Areas(cases, in.Roster, result.Difficulties)
		p.logger.Info("area coverage computed", slog.Int("areas", len(result.Areas)))
		return nil
	})

	p.stage(ctx, "consultation", func() error {
		analyzer := NewConsultationAnalyzer(p.settings)
		result.Consultations = analyzer.Analyze(cases, in.Roster)
		p.logger.Info("consultation flows computed", slog.Int("teams", len(result.Consultations)))
		return nil
	})

	return result, nil
}

func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) {
	if ctx.Err() != nil {
		p.logger.Warn("analysis skipped", slog.String("analysis", name), slog.Any("error", ctx.Err()))
		metrics.ObserveAnalysis(name, 0, metrics.OutcomeError)
		return
	}

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if err != nil {
		p.logger.Error("analysis failed", slog.String("analysis", name), slog.Any("error", err))
		metrics.ObserveAnalysis(name, elapsed, metrics.OutcomeError)
		return
	}
	metrics.ObserveAnalysis(name, elapsed, metrics.OutcomeSuccess)
}
