package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/cache"
	"tracelens/internal/config"
	"tracelens/internal/report"
	"tracelens/internal/version"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <dir>",
	Short: "Run every analysis and print a summary",
	Long: `Analyze validates both artifacts, builds every derived view and prints a
digest: relation statistics, depth-limit counts, hotspot summary and findings.
The command exits with status 1 when a finding is an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	analyzeCmd.Flags().String("ui", "auto", "show progress UI (auto|on|off)")
	analyzeCmd.Flags().Bool("disk-cache", false, "reuse summaries stored on disk for identical inputs")
	analyzeCmd.Flags().Int("top", 0, "slowest files listed (default from config)")
	analyzeCmd.Flags().Bool("with-notes", false, "include finding notes in text output")
	analyzeCmd.Flags().Bool("clear-cache", false, "drop every stored summary before running")
}

func openDiskCache(cfg config.CacheConfig) (*cache.DiskCache, error) {
	if cfg.Dir != "" {
		return cache.OpenDir(cfg.Dir)
	}
	return cache.Open(version.Tool)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	clearCache, err := cmd.Flags().GetBool("clear-cache")
	if err != nil {
		return fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	mode, err := readTriState("ui", uiFlag)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("top") {
		top = env.cfg.Hotspots.Top
	}
	if !cmd.Flags().Changed("disk-cache") {
		useDiskCache = env.cfg.Cache.Enabled
	}

	if clearCache {
		dc, err := openDiskCache(env.cfg.Cache)
		if err != nil {
			return err
		}
		if err := dc.DropAll(); err != nil {
			return fmt.Errorf("failed to clear cache %s: %w", dc.Dir(), err)
		}
		env.log.Info("disk cache cleared", "dir", dc.Dir())
	}

	traceData, typesData, err := loadDir(env, args[0])
	if err != nil {
		return err
	}
	opts := env.analysisOptions()

	var (
		dc  *cache.DiskCache
		key cache.Digest
	)
	if useDiskCache {
		dc, err = openDiskCache(env.cfg.Cache)
		if err != nil {
			// кэш не обязателен
			env.log.Warn("disk cache unavailable", "err", err)
			dc = nil
		}
		fp, err := analysis.Fingerprint(opts, top)
		if err != nil {
			return err
		}
		key = cache.Key(traceData, typesData, fp, []byte(version.SchemaVersion))
	}

	var summary analysis.Summary
	hit, err := dc.Get(key, &summary)
	if err != nil {
		env.log.Warn("disk cache read failed", "key", key.String(), "err", err)
		hit = false
	}
	if hit {
		env.log.Debug("disk cache hit", "key", key.String(), "run", summary.RunID)
	} else {
		var res *analysis.Result
		if mode.enabled(os.Stderr) && !env.quiet {
			res, err = runAnalysisWithUI(cmd.Context(), "analyze "+filepath.Base(args[0]), traceData, typesData, opts)
		} else {
			res, err = analysis.Run(cmd.Context(), traceData, typesData, opts)
		}
		if err != nil {
			return err
		}
		summary = res.Summarize(top)
		if err := dc.Put(key, summary); err != nil {
			env.log.Warn("disk cache write failed", "key", key.String(), "err", err)
		}
	}
	defer env.finish(cmd)

	if summary.HasErrors() {
		exitCode = 1
	}
	if format != report.FormatText {
		return report.Encode(cmd.OutOrStdout(), format, summary)
	}
	env.printer(cmd).Summary(&summary, withNotes)
	return nil
}
