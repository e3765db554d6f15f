package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/hotspot"
	"tracelens/internal/report"
	"tracelens/internal/stats"
)

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots [flags] <dir>",
	Short: "Break file check time down by directory",
	Long: `Hotspots attributes every checkSourceFile span to the file and each of its
ancestor directories and summarises the per-file durations.`,
	Args: cobra.ExactArgs(1),
	RunE: runHotspots,
}

func init() {
	hotspotsCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	hotspotsCmd.Flags().Int("depth", 3, "tree levels shown below the root (0 = all)")
	hotspotsCmd.Flags().Int("top", 0, "slowest files listed (default from config)")
	hotspotsCmd.Flags().StringSlice("exclude", nil, "additional doublestar pattern of paths to skip (repeatable)")
}

type hotspotsJSON struct {
	Total    int64               `json:"total"`
	Excluded int                 `json:"excluded"`
	Stats    stats.Summary       `json:"stats"`
	Top      []analysis.FileTime `json:"top"`
	Tree     *hotspot.Node       `json:"tree"`
}

func runHotspots(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	depth, err := cmd.Flags().GetInt("depth")
	if err != nil {
		return fmt.Errorf("failed to get depth flag: %w", err)
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}
	exclude, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return fmt.Errorf("failed to get exclude flag: %w", err)
	}
	if !cmd.Flags().Changed("top") {
		top = env.cfg.Hotspots.Top
	}
	if bad, ok := hotspot.ValidatePatterns(exclude); !ok {
		return fmt.Errorf("invalid --exclude pattern %q", bad)
	}

	opts := env.analysisOptions()
	opts.Hotspots.Exclude = append(append([]string(nil), opts.Hotspots.Exclude...), exclude...)
	res, err := runDir(cmd, env, args[0], opts)
	if err != nil {
		return err
	}
	defer env.finish(cmd)

	summary := res.Summarize(top)
	if format != report.FormatText {
		return report.Encode(cmd.OutOrStdout(), format, hotspotsJSON{
			Total:    res.Hotspots.Total(),
			Excluded: res.Hotspots.Excluded(),
			Stats:    res.FileStats,
			Top:      summary.Hotspots.Top,
			Tree:     hotspot.Prune(res.Hotspots.Root(), treeLevels(depth)),
		})
	}

	p := env.printer(cmd)
	p.Tree(res.Hotspots, depth)
	fmt.Fprintln(cmd.OutOrStdout())
	p.Stats(res.FileStats)
	p.Files(summary.Hotspots.Top)
	if n := res.Hotspots.Excluded(); n > 0 && !env.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "%d spans excluded\n", n)
	}
	return nil
}

// treeLevels converts the --depth flag, which counts levels below the root,
// into a Prune depth.
func treeLevels(depth int) int {
	if depth <= 0 {
		return 0
	}
	return depth + 1
}
