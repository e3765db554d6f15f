package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/relgraph"
	"tracelens/internal/report"
	"tracelens/internal/types"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flags] <dir>",
	Short: "Show type relation statistics",
	Long: `Graph builds the relation multigraph of types.json and prints per-kind edge
counts and the most connected types. With --id it prints the forward and
inverse edges of one type.`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func init() {
	graphCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	graphCmd.Flags().String("kind", "", "restrict to one relation kind (e.g. unionTypes)")
	graphCmd.Flags().Int32("id", 0, "show the edges of one type")
	graphCmd.Flags().Int("top", 10, "number of ranked types per metric (0 = none)")
	graphCmd.Flags().String("flag", "", "rank only types carrying this flag (e.g. Union)")
}

// topWithFlag ranks like Graph.TopK, keeping only types that carry flag.
func topWithFlag(res *analysis.Result, m relgraph.Metric, top int, flag string) []relgraph.Ranked {
	if flag == "" {
		return res.Graph.TopK(m, top)
	}
	out := []relgraph.Ranked{}
	for _, r := range res.Graph.TopK(m, 0) {
		t, ok := res.Catalog.Lookup(r.ID)
		if !ok || !t.HasFlag(flag) {
			continue
		}
		out = append(out, r)
		if len(out) == top {
			break
		}
	}
	return out
}

type rankingJSON struct {
	Metric string            `json:"metric"`
	Max    int               `json:"max"`
	Top    []relgraph.Ranked `json:"top"`
}

type edgeJSON struct {
	Kind   string       `json:"kind"`
	Source types.TypeID `json:"source"`
	Target types.TypeID `json:"target"`
}

type graphJSON struct {
	Relations []analysis.RelationSummary `json:"relations,omitempty"`
	Rankings  []rankingJSON              `json:"rankings,omitempty"`
	Outgoing  []edgeJSON                 `json:"outgoing,omitempty"`
	Incoming  []edgeJSON                 `json:"incoming,omitempty"`
}

func toEdgeJSON(edges []relgraph.Edge) []edgeJSON {
	out := make([]edgeJSON, 0, len(edges))
	for _, e := range edges {
		out = append(out, edgeJSON{Kind: e.Kind.String(), Source: e.Source, Target: e.Target})
	}
	return out
}

func filterKind(edges []relgraph.Edge, kind *types.RelationKind) []relgraph.Edge {
	if kind == nil {
		return edges
	}
	out := edges[:0:0]
	for _, e := range edges {
		if e.Kind == *kind {
			out = append(out, e)
		}
	}
	return out
}

func runGraph(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	kindStr, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	id, err := cmd.Flags().GetInt32("id")
	if err != nil {
		return fmt.Errorf("failed to get id flag: %w", err)
	}
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return fmt.Errorf("failed to get top flag: %w", err)
	}
	flag, err := cmd.Flags().GetString("flag")
	if err != nil {
		return fmt.Errorf("failed to get flag flag: %w", err)
	}
	if flag != "" && !types.IsKnownFlag(flag) {
		return fmt.Errorf("unknown type flag %q", flag)
	}

	var kind *types.RelationKind
	if kindStr != "" {
		k, err := types.ParseRelationKind(kindStr)
		if err != nil {
			return err
		}
		kind = &k
	}

	res, err := runDir(cmd, env, args[0], env.analysisOptions())
	if err != nil {
		return err
	}
	defer env.finish(cmd)

	g := res.Graph
	var out graphJSON
	if cmd.Flags().Changed("id") {
		tid := types.TypeID(id)
		if !g.Has(tid) {
			return fmt.Errorf("type #%d is not in the catalog", id)
		}
		outgoing := filterKind(g.Outgoing(tid), kind)
		incoming := filterKind(g.Incoming(tid), kind)
		if format == report.FormatText {
			env.printer(cmd).Edges(tid, outgoing, incoming)
			return nil
		}
		out.Outgoing = toEdgeJSON(outgoing)
		out.Incoming = toEdgeJSON(incoming)
		return report.Encode(cmd.OutOrStdout(), format, out)
	}

	summary := res.Summarize(0)
	for _, r := range summary.Relations {
		if kind == nil || r.Kind == kind.String() {
			out.Relations = append(out.Relations, r)
		}
	}
	if top > 0 {
		for _, m := range relgraph.Metrics() {
			if kind != nil && m.Relation() != *kind {
				continue
			}
			out.Rankings = append(out.Rankings, rankingJSON{
				Metric: m.String(),
				Max:    g.NodeMetric(m).Max,
				Top:    topWithFlag(res, m, top, flag),
			})
		}
	}

	if format != report.FormatText {
		return report.Encode(cmd.OutOrStdout(), format, out)
	}
	p := env.printer(cmd)
	p.Relations(out.Relations)
	name := func(id types.TypeID) string {
		if t, ok := res.Catalog.Lookup(id); ok {
			return t.Name()
		}
		return ""
	}
	for _, m := range relgraph.Metrics() {
		if kind != nil && m.Relation() != *kind {
			continue
		}
		if top > 0 {
			fmt.Fprintln(cmd.OutOrStdout())
			p.Ranking(m, topWithFlag(res, m, top, flag), name)
		}
	}
	return nil
}
