package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tracelens/internal/config"
	"tracelens/internal/observ"
	"tracelens/internal/report"
)

type envKey struct{}

// cliEnv is the state shared by every command, built once from the
// persistent flags.
type cliEnv struct {
	cfg      config.Config
	cfgPath  string
	log      *slog.Logger
	color    bool
	quiet    bool
	timings  bool
	maxDiags int
	timer    *observ.Timer
}

func prepareEnv(cmd *cobra.Command, _ []string) error {
	root := cmd.Root()

	colorMode, err := root.PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	quiet, err := root.PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	timings, err := root.PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	cfgFlag, err := root.PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	maxDiags, err := root.PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	useColor, err := readColorMode(colorMode)
	if err != nil {
		return err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return fmt.Errorf("invalid --log-level value %q: %w", levelStr, err)
	}
	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, cfgPath, err := config.Resolve(cfgFlag, ".")
	if err != nil {
		return err
	}
	if cfgPath != "" {
		log.Debug("config loaded", "path", cfgPath)
	}

	if err := startProfiling(cmd); err != nil {
		return err
	}

	env := &cliEnv{
		cfg:      cfg,
		cfgPath:  cfgPath,
		log:      log,
		color:    useColor,
		quiet:    quiet,
		timings:  timings,
		maxDiags: maxDiags,
	}
	if timings {
		env.timer = observ.NewTimer()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, envKey{}, env))
	return nil
}

func envFrom(cmd *cobra.Command) *cliEnv {
	if env, ok := cmd.Context().Value(envKey{}).(*cliEnv); ok {
		return env
	}
	return &cliEnv{cfg: config.Default(), log: slog.New(slog.DiscardHandler)}
}

func readColorMode(value string) (bool, error) {
	mode, err := readTriState("color", value)
	if err != nil {
		return false, err
	}
	if mode == modeAuto && color.NoColor {
		return false, nil
	}
	return mode.enabled(os.Stdout), nil
}

func (e *cliEnv) printer(cmd *cobra.Command) *report.Printer {
	return report.NewPrinter(cmd.OutOrStdout(), e.color)
}

// finish prints the timings table when --timings is set.
func (e *cliEnv) finish(cmd *cobra.Command) {
	if e.timings && e.timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), e.timer.Summary())
	}
}

func formatFlag(cmd *cobra.Command) (report.Format, error) {
	s, err := cmd.Flags().GetString("format")
	if err != nil {
		return report.FormatText, fmt.Errorf("failed to get format flag: %w", err)
	}
	return report.ParseFormat(s)
}
