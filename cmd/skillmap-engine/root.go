package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/opsinsight/skillmap-engine/internal/config"
	"github.com/opsinsight/skillmap-engine/internal/metrics"
	"github.com/opsinsight/skillmap-engine/internal/output"
	"github.com/opsinsight/skillmap-engine/internal/services"
	"github.com/opsinsight/skillmap-engine/internal/utils"
)

var (
	flagConfig   string
	flagLogLevel string
	flagLogJSON  bool

	flagCases       string
	flagRoster      string
	flagOutputDir   string
	flagAdjustments string
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "skillmap-engine",
	Short: "Scores support-ticket difficulty and responder skills from case data",
	Long: `skillmap-engine analyzes a support team's case history: it grades the
difficulty of every function tag, splits each tag's cases into complexity
bands, profiles each responder's skill width and depth, models team
productivity and headcount, and maps consultation flows between member
categories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full analysis over a case table",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := setup()
		if err != nil {
			return err
		}

		if flagMetricsAddr != "" {
			if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
				return fmt.Errorf("register metrics: %w", err)
			}
			go serveMetrics(logger, flagMetricsAddr)
		}

		svc := services.NewAnalysisService(logger, settings)
		report, err := svc.Run(cmd.Context(), services.RunRequest{
			CasesPath:       flagCases,
			RosterPath:      flagRoster,
			AdjustmentsPath: flagAdjustments,
			OutputDir:       flagOutputDir,
		})
		if err != nil {
			logger.Error("analysis run failed", slog.Any("error", err))
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), output.RenderSummary(report))
		return nil
	},
}

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Roster file helpers",
}

var rosterInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Derive a skeleton roster from the responders in a case table",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, logger, err := setup()
		if err != nil {
			return err
		}

		svc := services.NewAnalysisService(logger, settings)
		n, err := svc.InitRoster(flagCases, flagRoster)
		if err != nil {
			logger.Error("roster init failed", slog.Any("error", err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d responders to %s, fill in teams before analyzing\n", n, flagRoster)
		return nil
	},
}

func setup() (config.Settings, *slog.Logger, error) {
	settings, err := config.Load(flagConfig)
	if err != nil {
		return settings, nil, err
	}
	logger := utils.NewLogger(flagLogLevel, flagLogJSON)
	slog.SetDefault(logger)
	return settings, logger, nil
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics listener started", slog.String("address", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics listener failed", slog.Any("error", err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to the settings YAML (defaults to SKILLMAP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log verbosity: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&flagLogJSON, "log-json", false, "emit logs as JSON")

	analyzeCmd.Flags().StringVar(&flagCases, "cases", "data/cases.csv", "path to the case table CSV")
	analyzeCmd.Flags().StringVar(&flagRoster, "roster", "", "path to the roster CSV (team analyses need it)")
	analyzeCmd.Flags().StringVarP(&flagOutputDir, "output", "o", "output", "directory for the result tables")
	analyzeCmd.Flags().StringVar(&flagAdjustments, "adjustments", "", "path to the sqlite adjustment store")
	analyzeCmd.Flags().StringVar(&flagMetricsAddr, "metrics-address", "", "expose prometheus metrics on this address during the run")

	rosterInitCmd.Flags().StringVar(&flagCases, "cases", "data/cases.csv", "path to the case table CSV")
	rosterInitCmd.Flags().StringVar(&flagRoster, "roster", "data/roster.csv", "path to write the skeleton roster")

	rosterCmd.AddCommand(rosterInitCmd)
	rootCmd.AddCommand(analyzeCmd, rosterCmd)

	rootCmd.SetErrPrefix("skillmap-engine:")
}
