// Package services wires the dataset boundary, the adjustment store, and the
// analysis pipeline into one run facade for the CLI.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/engine"
	"github.com/opsinsight/skillmap-engine/internal/models"
	"github.com/opsinsight/skillmap-engine/internal/repo"
	"github.com/opsinsight/skillmap-engine/internal/store"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

// RunRequest names the inputs and outputs of one analysis run.
type RunRequest struct {
	CasesPath       string
	RosterPath      string // optional; roster-backed analyses degrade without it
	AdjustmentsPath string // optional; no adjustments when empty
	OutputDir       string
}

// RunReport summarises a finished run for the console layer.
type RunReport struct {
	Result      models.Result
	CaseCount   int
	RosterCount int
	Adjustments int
	OutputPaths []string
	Duration    time.Duration
}

// AnalysisService executes full analysis runs.
type AnalysisService struct {
	logger   *slog.Logger
	settings config.Settings
	pipeline *engine.Pipeline
}

// NewAnalysisService constructs the run facade.
func NewAnalysisService(logger *slog.Logger, settings config.Settings) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:   logger,
		settings: settings,
		pipeline: engine.NewPipeline(logger, settings),
	}
}

// Run loads the dataset, executes the pipeline, reseeds the adjustment
// store, and writes the result tables.
func (s *AnalysisService) Run(ctx context.Context, req RunRequest) (RunReport, error) {
	const op = "services.run"
	start := time.Now()
	var report RunReport

	cases, err := repo.LoadCases(req.CasesPath)
	if err != nil {
		return report, err
	}
	report.CaseCount = len(cases)
	s.logger.Info("cases loaded", slog.String("path", req.CasesPath), slog.Int("count", len(cases)))

	var roster models.Roster
	if req.RosterPath != "" {
		roster, err = repo.LoadRoster(req.RosterPath)
		if err != nil {
			return report, err
		}
		report.RosterCount = len(roster)
		s.logger.Info("roster loaded", slog.String("path", req.RosterPath), slog.Int("count", len(roster)))
	} else {
		s.logger.Warn("no roster supplied, team and area analyses will be skipped")
	}

	var adjustments map[string]float64
	var adjStore *store.AdjustmentStore
	if req.AdjustmentsPath != "" {
		adjStore, err = store.Open(req.AdjustmentsPath)
		if err != nil {
			return report, err
		}
		defer adjStore.Close()

		adjustments, err = adjStore.Load()
		if err != nil {
			return report, err
		}
		report.Adjustments = len(adjustments)
		s.logger.Info("adjustments loaded", slog.Int("count", len(adjustments)))
	}

	result, err := s.pipeline.Run(ctx, engine.Input{
		Cases:       cases,
		Roster:      roster,
		Adjustments: adjustments,
	})
	if err != nil {
		return report, err
	}
	report.Result = result

	if adjStore != nil {
		tags := make([]string, 0, len(result.Difficulties))
		for _, d := range result.Difficulties {
			tags = append(tags, d.Tag)
		}
		if err := adjStore.Reseed(tags); err != nil {
			// the analysis itself succeeded, keep going
			s.logger.Error("adjustment reseed failed", slog.Any("error", err))
		}
	}

	paths, err := repo.WriteResultTables(req.OutputDir, result)
	if err != nil {
		return report, utils.NewAppError(op, "write result tables", err)
	}
	report.OutputPaths = paths
	report.Duration = time.Since(start)

	s.logger.Info("analysis run finished",
		slog.Int("tags", len(result.Difficulties)),
		slog.Int("responders", len(result.Skills)),
		slog.Int("teams", len(result.Teams)),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// InitRoster derives a skeleton roster from the case table for manual
// completion.
func (s *AnalysisService) InitRoster(casesPath, rosterPath string) (int, error) {
	cases, err := repo.LoadCases(casesPath)
	if err != nil {
		return 0, err
	}
	n, err := repo.WriteRosterSkeleton(rosterPath, cases, s.settings)
	if err != nil {
		return 0, err
	}
	s.logger.Info("roster skeleton written",
		slog.String("path", rosterPath),
		slog.Int("responders", n),
	)
	return n, nil
}
