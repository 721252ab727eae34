// Package cli implements the cutemlx command-line interface using Cobra.
// Each subcommand maps to one user-facing capability (chat, ask, models,
// pull).
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/johnmai-dev/CuteMLX/internal/config"
	"github.com/johnmai-dev/CuteMLX/internal/logx"
)

var (
	flagConfig    string
	flagModelsDir string
	flagModel     string
	flagLogLevel  string
	flagLogFormat string
	flagDebugAddr string

	genMaxTokens    int
	genTemperature  float64
	genThinking     bool
	genSeed         int64
	genSystemPrompt string

	cfg config.Config
	lg  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cutemlx",
	Short: "cutemlx — chat with local GGUF models",
	Long: `cutemlx runs GGUF language models fully locally.
Point it at a models directory, then chat interactively or ask one-shot
questions. Nothing ever leaves your machine.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = setup
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file (.yaml, .json or .toml)")
	pf.StringVar(&flagModelsDir, "models-dir", "", "directory scanned for *.gguf weights")
	pf.StringVar(&flagModel, "model", "", "model ID or path to serve")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&flagDebugAddr, "debug-addr", "", "localhost address for the debug listener (empty = off)")
}

// setup resolves the configuration: defaults, then config file, then
// CUTEMLX_* environment, then flags.
func setup(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	var err error
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Default()
	}
	if err := config.FromEnv(&cfg); err != nil {
		return fmt.Errorf("environment config: %w", err)
	}

	pf := rootCmd.PersistentFlags()
	if pf.Changed("models-dir") {
		cfg.ModelsDir = flagModelsDir
	}
	if pf.Changed("model") {
		cfg.Model = flagModel
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if pf.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if pf.Changed("debug-addr") {
		cfg.DebugAddr = flagDebugAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lg = logx.New(cfg.LogLevel, cfg.LogFormat)
	return nil
}

// addGenerateFlags registers the per-run sampling flags shared by chat and
// ask. Zero values defer to the resolved config.
func addGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&genMaxTokens, "max-tokens", 0, "max tokens per reply (0 = config default)")
	f.Float64Var(&genTemperature, "temperature", 0, "sampling temperature (0 = config default)")
	f.BoolVar(&genThinking, "thinking", false, "enable the model's thinking mode")
	f.Int64Var(&genSeed, "seed", 0, "fixed sampling seed (0 = fresh per run)")
	f.StringVar(&genSystemPrompt, "system-prompt", "", "override the system prompt")
}

func applyGenerateFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	if f.Changed("max-tokens") {
		cfg.MaxTokens = genMaxTokens
	}
	if f.Changed("temperature") {
		cfg.Temperature = genTemperature
	}
	if f.Changed("thinking") {
		cfg.Thinking = genThinking
	}
	if f.Changed("seed") {
		cfg.Seed = genSeed
	}
	if f.Changed("system-prompt") {
		cfg.SystemPrompt = genSystemPrompt
	}
	return cfg.Validate()
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
