package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/moznion/go-optional"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/quantpulse-lab/quantpulse/internal/backtest"
	"github.com/quantpulse-lab/quantpulse/internal/backtest/datasource"
	"github.com/quantpulse-lab/quantpulse/internal/logger"
	"github.com/quantpulse-lab/quantpulse/internal/marketdata"
	"github.com/quantpulse-lab/quantpulse/internal/strategy"
	"github.com/quantpulse-lab/quantpulse/internal/types"
	"github.com/quantpulse-lab/quantpulse/internal/version"
)

// RunConfig is the YAML layout of a run file passed to `backtest run`.
type RunConfig struct {
	Backtest types.BacktestConfig `yaml:"backtest"`
	Strategy types.StrategyConfig `yaml:"strategy"`
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	signalsPath := cmd.String("signals")
	outputDir := cmd.String("output")

	content, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read run config: %w", err)
	}

	runConfig := RunConfig{
		Backtest: types.DefaultBacktestConfig(),
		Strategy: types.StrategyConfig{},
	}
	if err := yaml.Unmarshal(content, &runConfig); err != nil {
		return fmt.Errorf("failed to parse run config: %w", err)
	}

	appLogger, err := logger.NewLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	bars, err := loadBars(cmd, appLogger)
	if err != nil {
		return err
	}

	engine, err := buildEngine(runConfig, signalsPath, cmd.Float("confidence"), appLogger)
	if err != nil {
		return err
	}

	engine.SetData(bars)

	bar := progressbar.New(len(bars))
	onProgress := optional.Some[backtest.ProgressCallback](func(current, total int) error {
		return bar.Set(current)
	})

	result, err := engine.Run(ctx, onProgress)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	if err := writeResult(result, outputDir, appLogger); err != nil {
		return err
	}

	fmt.Printf("\nRun %s finished: %d trades, return %.2f%%, max drawdown %.2f%%, sharpe %.2f\n",
		result.RunID,
		result.Performance.TotalTrades,
		result.TotalReturnPercent,
		result.Performance.MaxDrawdownPercent,
		result.Performance.SharpeRatio,
	)

	return nil
}

// loadBars resolves the bar series from a data file or the synthetic
// generator, in that order of preference.
func loadBars(cmd *cli.Command, appLogger *logger.Logger) ([]types.MarketBar, error) {
	dataPath := cmd.String("data")

	if dataPath != "" {
		source, err := datasource.NewBarSource(appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create bar source: %w", err)
		}
		defer source.Close()

		if err := source.Load(dataPath); err != nil {
			return nil, fmt.Errorf("failed to load data: %w", err)
		}

		bars, err := source.ReadAll(optional.None[time.Time](), optional.None[time.Time]())
		if err != nil {
			return nil, fmt.Errorf("failed to read data: %w", err)
		}

		return bars, nil
	}

	if !cmd.Bool("generate") {
		return nil, fmt.Errorf("no data source: pass --data or --generate")
	}

	days := int(cmd.Int("days"))
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -days)

	bars := marketdata.Generate(marketdata.GeneratorConfig{
		Symbol:            cmd.String("symbol"),
		StartTime:         start,
		EndTime:           start.AddDate(0, 0, days-1),
		Interval:          24 * time.Hour,
		StartPrice:        cmd.Float("start-price"),
		DriftPercent:      0.05,
		VolatilityPercent: 1.5,
		Seed:              cmd.Int("seed"),
	})

	appLogger.Info("Generated synthetic bars",
		zap.String("symbol", cmd.String("symbol")),
		zap.Int("bars", len(bars)),
	)

	return bars, nil
}

// buildEngine constructs either a strategy-driven engine from the run config
// or a signal-feed engine from an external signals file.
func buildEngine(runConfig RunConfig, signalsPath string, confidence float64, appLogger *logger.Logger) (*backtest.Engine, error) {
	risk := runConfig.Strategy.RiskManagement
	if risk == (types.RiskManagement{}) {
		risk = types.DefaultRiskManagement()
	}

	if signalsPath != "" {
		content, err := os.ReadFile(signalsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read signals file: %w", err)
		}

		var records []types.AISignal
		if err := yaml.Unmarshal(content, &records); err != nil {
			return nil, fmt.Errorf("failed to parse signals file: %w", err)
		}

		feed := backtest.NewSignalFeed(records, confidence)
		appLogger.Info("Loaded external signal feed",
			zap.Int("records", len(records)),
			zap.Int("accepted", feed.Len()),
			zap.Float64("confidence_threshold", confidence),
		)

		return backtest.NewSignalFeedEngine(feed, risk, runConfig.Backtest, appLogger)
	}

	registry := strategy.NewRegistry()

	strat, err := registry.Build(runConfig.Strategy)
	if err != nil {
		return nil, fmt.Errorf("failed to build strategy: %w", err)
	}

	return backtest.NewEngine(strat, risk, runConfig.Backtest, appLogger)
}

func writeResult(result types.BacktestResult, outputDir string, appLogger *logger.Logger) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := types.WriteResult(filepath.Join(outputDir, "result.yaml"), result); err != nil {
		return err
	}

	store, err := datasource.NewResultStore(appLogger)
	if err != nil {
		return fmt.Errorf("failed to create result store: %w", err)
	}
	defer store.Close()

	if err := store.Append(result); err != nil {
		return fmt.Errorf("failed to stage result: %w", err)
	}

	return store.Write(outputDir)
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := types.DefaultBacktestConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	fmt.Println(schemaJSON)

	return nil
}

func strategiesAction(ctx context.Context, cmd *cli.Command) error {
	registry := strategy.NewRegistry()

	listing, err := yaml.Marshal(registry.List())
	if err != nil {
		return fmt.Errorf("failed to marshal strategy listing: %w", err)
	}

	fmt.Print(string(listing))

	return nil
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:    "backtest",
		Usage:   "Replay a historical price series through a trading strategy",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest from a YAML run config",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the YAML run config",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "data",
						Aliases: []string{"d"},
						Usage:   "Path to a CSV or Parquet bar file",
					},
					&cli.StringFlag{
						Name:  "signals",
						Usage: "Path to an external signal feed YAML file (replaces the strategy)",
					},
					&cli.FloatFlag{
						Name:  "confidence",
						Usage: "Minimum confidence for external signals",
						Value: 0.7,
					},
					&cli.BoolFlag{
						Name:  "generate",
						Usage: "Generate a synthetic bar series instead of reading a file",
					},
					&cli.StringFlag{
						Name:  "symbol",
						Usage: "Symbol for generated bars",
						Value: "AAPL",
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "Number of generated daily bars",
						Value: 250,
					},
					&cli.FloatFlag{
						Name:  "start-price",
						Usage: "Starting price for generated bars",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "seed",
						Usage: "Random seed for generated bars (0 uses current time)",
						Value: 42,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Results output directory",
						Value:   "results",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the backtest config",
				Action: schemaAction,
			},
			{
				Name:   "strategies",
				Usage:  "List built-in strategies and their parameter schemas",
				Action: strategiesAction,
			},
		},
	}
}

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
