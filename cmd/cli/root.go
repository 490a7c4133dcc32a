package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/compliance/internal/bootstrap"
	"github.com/turtacn/compliance/internal/config"
	"github.com/turtacn/compliance/internal/infrastructure/monitoring"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	configFile string
	jsonOutput bool
	verbose    bool
}

// NewRootCommand builds the `compliance-admin` command tree.
// NewRootCommand 构建 `compliance-admin` 命令树。
func NewRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "compliance-admin",
		Short: "Administer the SACCO compliance scoring and alerting service",
		Long: `compliance-admin operates directly on the compliance store: it calculates
scores, manages rules and thresholds, evaluates tenants, schedules audits
and prints the worst-first triage report.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "path to the config file (default: ./config.yaml or /etc/compliance/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "output results as JSON (machine-readable)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at the configured level instead of warn")

	rootCmd.AddCommand(
		newScoreCmd(opts),
		newRulesCmd(opts),
		newEvaluateCmd(opts),
		newAlertsCmd(opts),
		newAuditCmd(opts),
		newThresholdsCmd(opts),
		newSweepCmd(opts),
		newMigrateCmd(opts),
		newReportCmd(opts),
		newEventsCmd(opts),
	)
	return rootCmd
}

// Execute is the main entry point for the CLI application.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config and builds a logger that writes to stderr, keeping stdout for results.
func (o *options) loadConfig() (*config.Config, logger.Logger, error) {
	bootLog := logger.NewLogger(constants.LogLevelWarn, os.Stderr)
	cfg, err := config.NewLoader(bootLog, o.configFile).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logCfg := cfg.Log
	logCfg.OutputPath = "stderr"
	logCfg.Format = "console"
	if !o.verbose {
		logCfg.Level = "warn"
	}
	log, err := monitoring.NewZapLogger(&logCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, log, nil
}

// withContainer runs fn against a fully wired container and releases it afterwards.
func (o *options) withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, log, err := o.loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	c, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

// emitJSON writes v as indented JSON.
func emitJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
