// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/yourusername/invest-tracker/internal/backtest"
	"github.com/yourusername/invest-tracker/internal/config"
	"github.com/yourusername/invest-tracker/internal/datasource"
	"github.com/yourusername/invest-tracker/internal/logger"
	"github.com/yourusername/invest-tracker/internal/rules"
)

var (
	configFile string
	envFile    string
	logLevel   string

	cfg    *config.Config
	appLog *logrus.Logger
)

type runOptions struct {
	start             int
	end               int
	source            string
	dataPath          string
	seed              int64
	format            string
	output            string
	monteCarlo        int
	walkForwardWindow int
	walkForwardStep   int
}

var runOpts runOptions

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	runCmd.Flags().IntVar(&runOpts.start, "start", 0, "First tick index of the window (inclusive)")
	runCmd.Flags().IntVar(&runOpts.end, "end", -1, "Last tick index of the window (inclusive); -1 means the end of the data")
	runCmd.Flags().StringVar(&runOpts.source, "source", "", "Override the price source (static, simulated, remote)")
	runCmd.Flags().StringVar(&runOpts.dataPath, "data", "", "Override the directory of bundled series")
	runCmd.Flags().Int64Var(&runOpts.seed, "seed", 0, "Override the simulation seed")
	runCmd.Flags().StringVarP(&runOpts.format, "format", "f", "console", "Output format: console, csv, json")
	runCmd.Flags().StringVarP(&runOpts.output, "output", "o", "", "Write csv or json output to this file instead of stdout")
	runCmd.Flags().IntVar(&runOpts.monteCarlo, "monte-carlo", 0, "Bootstrap iterations over realized trades (0 disables)")
	runCmd.Flags().IntVar(&runOpts.walkForwardWindow, "walk-forward-window", 0, "Walk-forward window size in ticks (0 disables)")
	runCmd.Flags().IntVar(&runOpts.walkForwardStep, "walk-forward-step", 0, "Walk-forward step in ticks")

	rootCmd.AddCommand(parseCmd, runCmd)
}

var rootCmd = &cobra.Command{
	Use:           "backtest",
	Short:         "Parse and backtest trading rules",
	Long:          `Validates rule files and replays them over historical or simulated price series.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		loaded, err := config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		level := cfg.App.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		appLog = logger.NewLogger(level)
		appLog.SetOutput(os.Stderr)
		return nil
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <rules-file>",
	Short: "Validate a rule file and print it in canonical form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readRules(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		rs, err := rules.ParseRules(text, rules.NewAllowList(cfg.Market.Symbols...))
		if err != nil {
			return describeParseError(args[0], err)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, rs.String())
		fmt.Fprintf(out, "# %d rules over %v\n", len(rs), rs.Symbols())
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run <rules-file>",
	Short: "Backtest a rule file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readRules(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}
		applyOverrides(cfg, runOpts)
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return runBacktest(cmd.Context(), cmd.OutOrStdout(), args[0], text, runOpts)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// readRules reads a rule file, or stdin when path is "-"
func readRules(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read rules from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rules file: %w", err)
	}
	return string(data), nil
}

func describeParseError(path string, err error) error {
	var synErr *rules.SyntaxError
	if errors.As(err, &synErr) {
		return fmt.Errorf("%s:%d: %s", filepath.Base(path), synErr.Line, synErr.Message)
	}
	return err
}

func applyOverrides(cfg *config.Config, opts runOptions) {
	if opts.source != "" {
		cfg.Market.Source = opts.source
	}
	if opts.dataPath != "" {
		cfg.Market.DataPath = opts.dataPath
	}
	if opts.seed != 0 {
		cfg.Market.SimulationSeed = opts.seed
	}
	// a one-shot run never persists
	cfg.Backtest.PersistResults = false
}

func runBacktest(ctx context.Context, out io.Writer, path, text string, opts runOptions) error {
	provider, err := datasource.NewFactory(cfg, appLog).NewSeriesProvider()
	if err != nil {
		return err
	}
	btCfg, err := backtest.FromConfig(&cfg.Backtest)
	if err != nil {
		return fmt.Errorf("invalid backtest config: %w", err)
	}
	engine, err := backtest.NewEngine(btCfg, rules.NewAllowList(cfg.Market.Symbols...), provider, nil, appLog)
	if err != nil {
		return err
	}

	rs, err := engine.Parse(text)
	if err != nil {
		return describeParseError(path, err)
	}
	series, err := engine.LoadSeries(ctx, rs.Symbols())
	if err != nil {
		return err
	}
	end := opts.end
	if end < 0 {
		end = backtest.LastIndex(series)
	}

	report, err := engine.EvaluateSeries(ctx, rs, series, opts.start, end)
	if err != nil {
		return err
	}

	btLog := logger.NewBacktestLogger(appLog)
	if opts.monteCarlo > 0 {
		mc, err := backtest.RunMonteCarlo(report.Result, backtest.MonteCarloConfig{Iterations: opts.monteCarlo, Seed: btCfg.MonteCarloSeed})
		if err != nil {
			return err
		}
		btLog.LogMonteCarlo(report.ID.String(), mc.Iterations, mc.MeanProfit, mc.ProbabilityOfProfit)
		if opts.format == "console" {
			fmt.Fprintf(out, "Monte Carlo (%d iterations): mean %.2f, P(profit) %.1f%%\n", mc.Iterations, mc.MeanProfit, mc.ProbabilityOfProfit*100)
		}
	}
	if opts.walkForwardWindow > 0 {
		wf, err := backtest.RunWalkForward(rs, series, opts.start, end, backtest.WalkForwardConfig{
			WindowSize: opts.walkForwardWindow,
			StepSize:   opts.walkForwardStep,
		})
		if err != nil {
			return err
		}
		btLog.LogWalkForward(report.ID.String(), len(wf.Windows), wf.MeanProfit, wf.ConsistencyScore)
		if opts.format == "console" {
			fmt.Fprintf(out, "Walk-forward (%d windows): mean %.2f, consistency %.1f%%\n", len(wf.Windows), wf.MeanProfit, wf.ConsistencyScore*100)
		}
	}

	return writeReport(out, report, opts)
}

func writeReport(out io.Writer, report *backtest.Report, opts runOptions) error {
	switch opts.format {
	case "console":
		_, err := io.WriteString(out, backtest.GenerateConsoleReport(report))
		return err
	case "csv":
		if opts.output != "" {
			return backtest.ExportTransactionsCSV(report, opts.output)
		}
		return backtest.WriteTransactionsCSV(report, out)
	case "json":
		path := opts.output
		if path == "" {
			path = filepath.Join(cfg.Backtest.OutputPath, report.ID.String()+".json")
		}
		if err := backtest.ExportJSON(report, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", path)
		return nil
	default:
		return fmt.Errorf("unsupported format %q", opts.format)
	}
}
