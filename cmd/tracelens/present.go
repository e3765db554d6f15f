package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tracelens/internal/present"
	"tracelens/internal/relgraph"
	"tracelens/internal/report"
	"tracelens/internal/types"
)

var presentCmd = &cobra.Command{
	Use:   "present [flags] <dir|types.json> <typeId>",
	Short: "Print a bounded tree view of one type",
	Long: `Present walks the relations of a type depth first. Self references are not
followed, unknown targets are shown as unresolved, and the walk stops with a
truncation marker at the depth bound.`,
	Args: cobra.ExactArgs(2),
	RunE: runPresent,
}

func init() {
	presentCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	presentCmd.Flags().Int("max-depth", 0, "depth bound (default from config)")
}

func runPresent(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	maxDepth, err := cmd.Flags().GetInt("max-depth")
	if err != nil {
		return fmt.Errorf("failed to get max-depth flag: %w", err)
	}
	id, err := strconv.ParseInt(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid type id %q: %w", args[1], err)
	}

	paths, err := resolveArtifacts(args[0], env.cfg)
	if err != nil {
		return err
	}
	if paths.types == "" {
		return fmt.Errorf("%s is not a %s artifact", args[0], env.cfg.Artifacts.Types)
	}
	data, err := readFile(paths.types)
	if err != nil {
		return err
	}

	idx := env.timer.Begin("types")
	catalog, err := types.Decode(data)
	env.timer.End(idx, "")
	if err != nil {
		return err
	}
	idx = env.timer.Begin("graph")
	graph := relgraph.Build(catalog.Types())
	env.timer.End(idx, "")

	p, err := present.New(graph, catalog, present.Options{
		MaxDepth:  env.cfg.Presenter.MaxDepth,
		CacheSize: env.cfg.Presenter.CacheSize,
	})
	if err != nil {
		return err
	}
	idx = env.timer.Begin("present")
	root, err := p.Present(types.TypeID(id), maxDepth)
	env.timer.End(idx, "")
	if err != nil {
		return err
	}
	defer env.finish(cmd)

	env.log.Debug("presented type", "id", id, "depth", present.Depth(root))
	if format != report.FormatText {
		return report.Encode(cmd.OutOrStdout(), format, root)
	}
	env.printer(cmd).Present(root)
	return nil
}
