package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names, in lookup order.
const (
	ConfigFileName    = "snowduck.yaml"
	ConfigFileNameAlt = "snowduck.yml"
)

// maxUpwardSearchLevels limits how far up the directory tree the project
// root search goes.
const maxUpwardSearchLevels = 10

// EnvPrefix is the prefix for environment variable overrides, e.g.
// SNOWDUCK_MODELS_DIR overrides models_dir.
const EnvPrefix = "SNOWDUCK_"

// findConfigFile returns the config file to use. An explicit path wins;
// otherwise the directory is searched for snowduck.yaml then snowduck.yml.
func findConfigFile(explicit, dir string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// FindProjectRoot searches upward from startDir for a directory holding a
// snowduck config file. Returns empty string if none is found.
func FindProjectRoot(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if findConfigFile("", dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// Load reads configuration with the precedence flags > env vars > config
// file > defaults. cfgFile may be empty, in which case the project root
// is found by searching upward from the working directory.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// Defaults first, so every later layer overrides them.
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"models_dir":    DefaultModelsDir,
		"seeds_dir":     DefaultSeedsDir,
		"snapshots_dir": DefaultSnapshotsDir,
		"tests_dir":     DefaultTestsDir,
		"state_path":    DefaultStateFile,
		"environment":   DefaultEnvironment,
		"verbose":       false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	projectRoot := resolveProjectRoot(cfgFile)

	configFile := findConfigFile(cfgFile, projectRoot)
	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	}

	// SNOWDUCK_MODELS_DIR -> models_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// kebab-case flags map to snake_case config keys.
			key := strings.ReplaceAll(f.Name, "-", "_")
			switch key {
			case "state":
				key = "state_path"
			case "target":
				// --target selects the environment; the target block
				// itself is file-only.
				key = "environment"
			case "vars":
				// --vars is a YAML string parsed by the command layer.
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	ApplyDefaults(&cfg)

	cfg.ProjectRoot = projectRoot
	cfg.ModelsDir = resolvePathRelativeTo(cfg.ModelsDir, projectRoot)
	cfg.SeedsDir = resolvePathRelativeTo(cfg.SeedsDir, projectRoot)
	cfg.SnapshotsDir = resolvePathRelativeTo(cfg.SnapshotsDir, projectRoot)
	cfg.TestsDir = resolvePathRelativeTo(cfg.TestsDir, projectRoot)
	if cfg.StatePath != ":memory:" {
		cfg.StatePath = resolvePathRelativeTo(cfg.StatePath, projectRoot)
	}

	target := cfg.ActiveTarget()
	expandTargetEnvVars(target)
	if err := target.Validate(); err != nil {
		return nil, fmt.Errorf("invalid target configuration: %w", err)
	}
	if target.Path != "" && target.Path != ":memory:" {
		target.Path = resolvePathRelativeTo(target.Path, projectRoot)
	}
	cfg.Target = target

	return &cfg, nil
}

// resolveProjectRoot determines the project root: the explicit config
// file's directory, else the nearest ancestor with a config file, else
// the working directory.
func resolveProjectRoot(cfgFile string) string {
	if cfgFile != "" {
		if abs, err := filepath.Abs(cfgFile); err == nil {
			return filepath.Dir(abs)
		}
		return filepath.Dir(cfgFile)
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := FindProjectRoot(cwd); root != "" {
		return root
	}
	return cwd
}

// resolvePathRelativeTo joins path onto baseDir unless it is empty or
// already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable
// values, leaving unset variables untouched.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands ${VAR} references in target fields that
// commonly hold secrets or per-machine paths.
func expandTargetEnvVars(t *TargetConfig) {
	if t == nil {
		return
	}
	t.Path = expandEnvVars(t.Path)
	t.Database = expandEnvVars(t.Database)
	t.Warehouse = expandEnvVars(t.Warehouse)
	t.Role = expandEnvVars(t.Role)
}
