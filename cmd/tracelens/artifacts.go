package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/config"
	"tracelens/internal/hotspot"
)

type artifactPaths struct {
	trace string
	types string
}

// resolveArtifacts maps a command argument to artifact paths. A directory
// yields both artifacts under the configured names; a file yields only the
// artifact its name matches, falling back to the trace.
func resolveArtifacts(arg string, cfg config.Config) (artifactPaths, error) {
	st, err := os.Stat(arg)
	if err != nil {
		return artifactPaths{}, fmt.Errorf("failed to stat %q: %w", arg, err)
	}
	if st.IsDir() {
		return artifactPaths{
			trace: filepath.Join(arg, cfg.Artifacts.Trace),
			types: filepath.Join(arg, cfg.Artifacts.Types),
		}, nil
	}
	if filepath.Base(arg) == cfg.Artifacts.Types {
		return artifactPaths{types: arg}, nil
	}
	return artifactPaths{trace: arg}, nil
}

func readFile(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readArtifacts(p artifactPaths) (traceData, typesData []byte, err error) {
	if traceData, err = readFile(p.trace); err != nil {
		return nil, nil, err
	}
	if typesData, err = readFile(p.types); err != nil {
		return nil, nil, err
	}
	return traceData, typesData, nil
}

// analysisOptions builds run options from the config and the environment.
func (e *cliEnv) analysisOptions() analysis.Options {
	policy := e.cfg.Policy()
	return analysis.Options{
		Policy:    &policy,
		Hotspots:  hotspot.Options{Exclude: e.cfg.Hotspots.Exclude},
		DiagLimit: e.maxDiags,
		Logger:    e.log,
		Timer:     e.timer,
	}
}

// loadDir reads both artifacts of dir.
func loadDir(env *cliEnv, dir string) (traceData, typesData []byte, err error) {
	paths, err := resolveArtifacts(dir, env.cfg)
	if err != nil {
		return nil, nil, err
	}
	if paths.trace == "" || paths.types == "" {
		return nil, nil, errors.New("expected a directory containing both artifacts")
	}
	idx := env.timer.Begin("read")
	traceData, typesData, err = readArtifacts(paths)
	env.timer.End(idx, fmt.Sprintf("%d bytes", len(traceData)+len(typesData)))
	return traceData, typesData, err
}

// runDir performs a full analysis of the artifacts in dir.
func runDir(cmd *cobra.Command, env *cliEnv, dir string, opts analysis.Options) (*analysis.Result, error) {
	traceData, typesData, err := loadDir(env, dir)
	if err != nil {
		return nil, err
	}
	return analysis.Run(cmd.Context(), traceData, typesData, opts)
}
