// Package config loads .cpstrc.yaml, the per-project override file
// described in spec.md §2.2: a CPS-call prefix, the suffix inserted
// before a transformed file's extension, and a list of glob patterns
// the driver expands when no explicit paths are given on the command
// line.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const FileName = ".cpstrc.yaml"

// Config is the parsed contents of a .cpstrc.yaml file. Zero values
// mean "not set"; Load fills in defaults and Merge applies CLI overrides.
type Config struct {
	Prefix  string   `yaml:"prefix"`
	Suffix  string   `yaml:"suffix"`
	Globs   []string `yaml:"globs"`
	Trampoline bool  `yaml:"trampoline"`
}

// Defaults are the values a Config falls back to when neither the
// config file nor a CLI flag sets them.
func Defaults() Config {
	return Config{
		Prefix: "cps_",
		Suffix: "cps",
		Globs:  []string{"**/*.cpst"},
	}
}

// Load reads dir/.cpstrc.yaml. A missing file is not an error: it
// returns Defaults() unchanged, since a project is free to rely on
// CLI flags alone (spec.md §2.2: "missing config is non-fatal").
// A present-but-malformed file is a fatal startup error.
func Load(dir string) (Config, error) {
	cfg := Defaults()

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	var overrides Config
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}

	if overrides.Prefix != "" {
		cfg.Prefix = overrides.Prefix
	}
	if overrides.Suffix != "" {
		cfg.Suffix = overrides.Suffix
	}
	if len(overrides.Globs) > 0 {
		cfg.Globs = overrides.Globs
	}
	cfg.Trampoline = overrides.Trampoline

	return cfg, nil
}

// Merge applies CLI flag values onto cfg, a flag value winning over
// whatever the config file set whenever the flag was explicitly
// passed (spec.md §2.2: "CLI flags take precedence over the config
// file").
func (c Config) Merge(prefix, suffix string, trampoline bool, prefixSet, suffixSet, trampolineSet bool) Config {
	out := c
	if prefixSet {
		out.Prefix = prefix
	}
	if suffixSet {
		out.Suffix = suffix
	}
	if trampolineSet {
		out.Trampoline = trampoline
	}
	return out
}
