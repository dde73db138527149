package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aitechneut/autovandezaakofprive/internal/config"
	"github.com/aitechneut/autovandezaakofprive/internal/costs"
	"github.com/aitechneut/autovandezaakofprive/internal/engine"
	"github.com/aitechneut/autovandezaakofprive/internal/registry"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

var RootCmd = &cobra.Command{
	Use:   "autovandezaakofprive",
	Short: "Compare a business car with a privately owned car",
	Long: `autovandezaakofprive calculates the Dutch benefit in kind (bijtelling) for a
vehicle and compares the net monthly cost of a business car with owning it
privately. Run "serve" for the HTTP API or "calc" for a single request.`,
	SilenceUsage: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(CalcCmd)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}

// build assembles the engine and registry client from configuration.
func build(cfg *config.Config, logger *slog.Logger) (*engine.Engine, *registry.Client, error) {
	table, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, nil, err
	}
	e, err := engine.New(table,
		engine.WithCapStrategy(cfg.CapStrategy()),
		engine.WithTaxBrackets(cfg.TaxBrackets()),
		engine.WithResidualRatio(cfg.ResidualRatio),
		engine.WithProjection(cfg.ProjectionYears, cfg.InflationRate),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	if cfg.ResidualRatio != costs.DefaultResidualRatio {
		logger.Info("using non-default residual ratio", "ratio", cfg.ResidualRatio)
	}
	vehicles := registry.New(cfg.RDWBaseURL, cfg.RDWTimeout, cfg.RDWCacheTTL, registry.WithLogger(logger))
	return e, vehicles, nil
}
