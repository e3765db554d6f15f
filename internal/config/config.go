// Package config loads tracelens.toml.
//
// The file is optional. It is looked up from the working directory upwards,
// the way a project manifest is, and every key it leaves out keeps its
// default. Unknown keys are rejected.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"tracelens/internal/hotspot"
	"tracelens/internal/limits"
	"tracelens/internal/present"
)

// FileName is the name of the configuration file.
const FileName = "tracelens.toml"

type Config struct {
	Artifacts ArtifactsConfig        `toml:"artifacts"`
	Presenter PresenterConfig        `toml:"presenter"`
	Limits    map[string]limits.Rule `toml:"limits" validate:"dive,keys,depthlimit,endkeys"`
	Hotspots  HotspotsConfig         `toml:"hotspots"`
	Cache     CacheConfig            `toml:"cache"`
}

// ArtifactsConfig names the files looked up inside an analysis directory.
type ArtifactsConfig struct {
	Trace string `toml:"trace" validate:"required"`
	Types string `toml:"types" validate:"required"`
}

type PresenterConfig struct {
	MaxDepth  int `toml:"max_depth" validate:"gte=1,lte=64"`
	CacheSize int `toml:"cache_size" validate:"gte=0"`
}

type HotspotsConfig struct {
	Exclude []string `toml:"exclude" validate:"dive,glob"`
	Top     int      `toml:"top" validate:"gte=0"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("depthlimit", func(fl validator.FieldLevel) bool {
		_, err := limits.ParseKind(fl.Field().String())
		return err == nil
	})
	_ = configValidate.RegisterValidation("glob", func(fl validator.FieldLevel) bool {
		_, ok := hotspot.ValidatePatterns([]string{fl.Field().String()})
		return ok
	})
}

// Default returns the configuration used when no file is found.
func Default() Config {
	cfg := Config{
		Artifacts: ArtifactsConfig{Trace: "trace.json", Types: "types.json"},
		Presenter: PresenterConfig{MaxDepth: present.DefaultMaxDepth},
		Limits:    make(map[string]limits.Rule, limits.NumKinds),
		Hotspots:  HotspotsConfig{Top: 10},
	}
	policy := limits.DefaultPolicy()
	for _, k := range limits.Kinds() {
		cfg.Limits[k.String()] = policy.Rule(k)
	}
	return cfg
}

// Validate checks value ranges and names.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q on value %v", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag(), fe.Value())
		}
		return err
	}
	return nil
}

// Policy converts the [limits] tables into a classifier policy. Kinds
// without a table keep the default rule.
func (c *Config) Policy() limits.Policy {
	p := limits.DefaultPolicy()
	for _, k := range limits.Kinds() {
		if rule, ok := c.Limits[k.String()]; ok {
			p = p.With(k, rule)
		}
	}
	return p
}

// Find walks up from startDir to locate tracelens.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes the file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	defaults := cfg.Limits
	cfg.Limits = nil

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	// [limits] accepts the event tag as a key too; every table is folded
	// onto the kind's short name, and keys it omits keep the default
	names := make([]string, 0, len(cfg.Limits))
	for name := range cfg.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	merged := defaults
	seen := make(map[limits.Kind]string, len(names))
	for _, name := range names {
		k, err := limits.ParseKind(name)
		if err != nil {
			return Config{}, fmt.Errorf("%s: invalid Limits[%s]: %w", path, name, err)
		}
		if prev, dup := seen[k]; dup {
			return Config{}, fmt.Errorf("%s: [limits.%s] and [limits.%s] configure the same limit", path, prev, name)
		}
		seen[k] = name

		rule, def := cfg.Limits[name], defaults[k.String()]
		if !meta.IsDefined("limits", name, "threshold") {
			rule.Threshold = def.Threshold
		}
		if !meta.IsDefined("limits", name, "count_threshold") {
			rule.CountThreshold = def.CountThreshold
		}
		if !meta.IsDefined("limits", name, "hard_error") {
			rule.HardError = def.HardError
		}
		merged[k.String()] = rule
	}
	cfg.Limits = merged

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads explicit when set, otherwise the nearest tracelens.toml
// above startDir, otherwise the defaults. The returned path is empty when
// no file was used.
func Resolve(explicit, startDir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}
