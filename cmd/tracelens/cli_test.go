package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/analysis"
	"tracelens/internal/config"
	"tracelens/internal/relgraph"
)

// resetFlags restores every flag to its default so runs do not leak into
// each other through the shared command tree.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join("testdata", "tracelens.toml"), "--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidateDirectory(t *testing.T) {
	out, _, err := execute(t, "validate", "--format", "text", filepath.Join("testdata", "run"))
	require.NoError(t, err)
	assert.Contains(t, out, "trace.json: 6 records ok")
	assert.Contains(t, out, "types.json: 3 records ok")
}

func TestValidateReportsFirstViolation(t *testing.T) {
	_, stderr, err := execute(t, "validate", "--format", "text", filepath.Join("testdata", "bad", "types.json"))
	require.Error(t, err)
	assert.Contains(t, stderr, "error SCH1002 types[1]")
	assert.Contains(t, stderr, "unknown-field")
}

func TestAnalyzeJSON(t *testing.T) {
	out, _, err := execute(t, "analyze", "--format", "json", "--ui", "off", filepath.Join("testdata", "run"))
	require.NoError(t, err)

	var s analysis.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 6, s.Events)
	assert.Equal(t, 3, s.Types)
	assert.Equal(t, int64(4000), s.Hotspots.Total)
	assert.Equal(t, 1, s.Limits[1].Hits)
	assert.False(t, s.HasErrors())
}

func TestPresentElidesSelfReference(t *testing.T) {
	out, _, err := execute(t, "present", "--format", "text", filepath.Join("testdata", "run"), "3")
	require.NoError(t, err)
	assert.Contains(t, out, "#3 Box [Object]\n")
	assert.Contains(t, out, "  self: instantiatedType\n")
	assert.Contains(t, out, "  typeArguments: #1 string [String]\n")
}

func TestGraphRanksOnlyFlaggedTypes(t *testing.T) {
	out, _, err := execute(t, "graph", "--format", "json", "--flag", "Object", filepath.Join("testdata", "run"))
	require.NoError(t, err)

	var g graphJSON
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	tops := map[string][]relgraph.Ranked{}
	for _, r := range g.Rankings {
		tops[r.Metric] = r.Top
	}
	assert.Empty(t, tops["unionTypes"], "#2 is a Union")
	assert.Equal(t, []relgraph.Ranked{{ID: 3, Value: 1}}, tops["typeArguments"])

	_, _, err = execute(t, "graph", "--flag", "Bogus", filepath.Join("testdata", "run"))
	assert.EqualError(t, err, `unknown type flag "Bogus"`)
}

func TestLimitsStrictFailsOnWarnings(t *testing.T) {
	dir := filepath.Join("testdata", "warn")
	t.Cleanup(func() { exitCode = 0 })

	exitCode = 0
	_, _, err := execute(t, "limits", "--format", "json", dir)
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode, "a warning alone passes")

	out, _, err := execute(t, "limits", "--format", "json", "--strict", dir)
	require.NoError(t, err)
	assert.Equal(t, 1, exitCode)
	assert.Contains(t, out, `"kind": "recursiveTypeRelatedTo"`)
}

func TestAnalyzeClearCache(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfgPath := filepath.Join(dir, "tracelens.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf("[cache]\nenabled = true\ndir = %q\n", cacheDir)), 0o600))
	run := filepath.Join("testdata", "run")

	_, _, err := execute(t, "--config", cfgPath, "analyze", "--format", "json", "--ui", "off", run)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(cacheDir, "runs"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, _, err = execute(t, "--config", cfgPath, "analyze", "--format", "json", "--ui", "off", "--clear-cache", "--disk-cache=false", run)
	require.NoError(t, err)
	entries, err = os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveArtifacts(t *testing.T) {
	cfg := config.Default()
	dir := filepath.Join("testdata", "run")

	p, err := resolveArtifacts(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "trace.json"), p.trace)
	assert.Equal(t, filepath.Join(dir, "types.json"), p.types)

	p, err = resolveArtifacts(filepath.Join(dir, "types.json"), cfg)
	require.NoError(t, err)
	assert.Empty(t, p.trace)

	_, err = resolveArtifacts(filepath.Join(dir, "missing.json"), cfg)
	assert.Error(t, err)
}

func TestReadTriState(t *testing.T) {
	m, err := readTriState("ui", " ON ")
	require.NoError(t, err)
	assert.True(t, m.enabled(nil))

	m, err = readTriState("ui", "")
	require.NoError(t, err)
	assert.Equal(t, modeAuto, m)

	_, err = readTriState("color", "sometimes")
	assert.EqualError(t, err, `invalid --color value "sometimes" (expected auto|on|off)`)
}

func TestTreeLevels(t *testing.T) {
	assert.Equal(t, 0, treeLevels(0))
	assert.Equal(t, 4, treeLevels(3))
}
