// Package config loads the apollo configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chmouel/apollo/internal/models"
	"github.com/chmouel/apollo/internal/theme"
	"gopkg.in/yaml.v3"
)

// Run policies applied when a run is requested for a project that is
// already running.
const (
	RunPolicyReject  = "reject"
	RunPolicyRestart = "restart"
)

const (
	defaultAlertTimeout  = 5 * time.Second
	defaultWatchDebounce = 750 * time.Millisecond
	overridePrefix       = "apollo."
)

// AppConfig defines the global apollo configuration options.
type AppConfig struct {
	Theme         string
	DebugLog      string
	CargoPath     string         // cargo binary, looked up in PATH when not absolute
	RunArgs       models.RunArgs // Initial run settings
	RunPolicy     string         // "reject" or "restart"
	AlertTimeout  time.Duration  // Lifetime of timed alerts
	AutoRun       bool           // Re-run tests when project sources change
	WatchDebounce time.Duration
	Decorations   bool   // Draw apollo's own outer frame
	StateFile     string // Overrides the open projects file location
	Concurrency   int    // Parallel projects for `apollo run`
}

// DefaultConfig returns the default configuration values.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Theme:         theme.ApolloName,
		CargoPath:     "cargo",
		RunArgs:       models.DefaultRunArgs(),
		RunPolicy:     RunPolicyReject,
		AlertTimeout:  defaultAlertTimeout,
		WatchDebounce: defaultWatchDebounce,
		Concurrency:   2,
	}
}

func coerceBool(value any, defaultVal bool) bool {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return defaultVal
}

func coerceInt(value any, defaultVal int) int {
	if value == nil {
		return defaultVal
	}

	switch v := value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return defaultVal
}

// coerceMillis reads a duration given as milliseconds or as a Go duration string.
func coerceMillis(value any, defaultVal time.Duration) time.Duration {
	if s, ok := value.(string); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d
		}
	}
	ms := coerceInt(value, -1)
	if ms < 0 {
		return defaultVal
	}
	return time.Duration(ms) * time.Millisecond
}

func trimmedString(data map[string]any, key string) (string, bool) {
	s, ok := data[key].(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func applyRunArgs(args *models.RunArgs, data map[string]any) {
	args.Lib = coerceBool(data["lib"], args.Lib)
	args.Bin = coerceBool(data["bin"], args.Bin)
	args.Docs = coerceBool(data["docs"], args.Docs)
	args.Workspace = coerceBool(data["workspace"], args.Workspace)
	args.NoFailFast = coerceBool(data["no_fail_fast"], args.NoFailFast)
}

// apply merges data into cfg, keeping the current value for every missing
// or malformed key.
func apply(cfg *AppConfig, data map[string]any) {
	if name, ok := trimmedString(data, "theme"); ok {
		name = strings.ToLower(name)
		if theme.Exists(name) {
			cfg.Theme = name
		}
	}
	if debugLog, ok := trimmedString(data, "debug_log"); ok {
		cfg.DebugLog = debugLog
	}
	if cargoPath, ok := trimmedString(data, "cargo_path"); ok {
		cfg.CargoPath = cargoPath
	}
	if stateFile, ok := trimmedString(data, "state_file"); ok {
		cfg.StateFile = stateFile
	}
	if policy, ok := trimmedString(data, "run_policy"); ok {
		policy = strings.ToLower(policy)
		if policy == RunPolicyReject || policy == RunPolicyRestart {
			cfg.RunPolicy = policy
		}
	}
	if raw, ok := data["run_args"].(map[string]any); ok {
		applyRunArgs(&cfg.RunArgs, raw)
	}

	cfg.AlertTimeout = coerceMillis(data["alert_timeout"], cfg.AlertTimeout)
	cfg.WatchDebounce = coerceMillis(data["watch_debounce"], cfg.WatchDebounce)
	cfg.AutoRun = coerceBool(data["auto_run"], cfg.AutoRun)
	cfg.Decorations = coerceBool(data["decorations"], cfg.Decorations)
	cfg.Concurrency = coerceInt(data["concurrency"], cfg.Concurrency)

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
}

func parseConfig(data map[string]any) *AppConfig {
	cfg := DefaultConfig()
	apply(cfg, data)
	return cfg
}

// Dir returns the per-user apollo config directory.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, models.ConfigDirName)
}

// StatePath returns the open projects file used by cfg.
func (c *AppConfig) StatePath() string {
	if c.StateFile != "" {
		if expanded, err := ExpandPath(c.StateFile); err == nil {
			return expanded
		}
		return c.StateFile
	}
	return filepath.Join(Dir(), models.StateFilename)
}

// LoadConfig reads the configuration. An empty configPath looks for
// config.yaml then config.yml in Dir(). A missing file is not an error.
func LoadConfig(configPath string) (*AppConfig, error) {
	base := filepath.Clean(Dir())

	var paths []string
	if configPath != "" {
		expanded, err := ExpandPath(configPath)
		if err != nil {
			return DefaultConfig(), err
		}
		absPath, err := filepath.Abs(expanded)
		if err != nil {
			return DefaultConfig(), err
		}
		if !isPathWithin(base, absPath) {
			return DefaultConfig(), fmt.Errorf("config path must reside inside %s", base)
		}
		paths = []string{absPath}
	} else {
		paths = []string{
			filepath.Join(base, "config.yaml"),
			filepath.Join(base, "config.yml"),
		}
	}

	for _, path := range paths {
		// #nosec G304 -- path is constrained to the config directory
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var yamlData map[string]any
		if err := yaml.Unmarshal(data, &yamlData); err != nil {
			return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return parseConfig(yamlData), nil
	}
	return DefaultConfig(), nil
}

// ApplyCLIOverrides applies --config=apollo.key=value overrides on top of
// the loaded configuration. Nested keys use dots: apollo.run_args.lib=true.
func (c *AppConfig) ApplyCLIOverrides(overrides []string) error {
	data, err := parseCLIConfigOverrides(overrides)
	if err != nil {
		return err
	}
	apply(c, data)
	return nil
}

func parseCLIConfigOverrides(overrides []string) (map[string]any, error) {
	result := make(map[string]any)
	for _, override := range overrides {
		fullKey, value, ok := strings.Cut(override, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config override %q, expected %skey=value", override, overridePrefix)
		}
		if !strings.HasPrefix(fullKey, overridePrefix) {
			return nil, fmt.Errorf("config override key must start with %q: %q", overridePrefix, fullKey)
		}
		key := strings.TrimPrefix(fullKey, overridePrefix)
		if key == "" {
			return nil, fmt.Errorf("empty config key in override %q", override)
		}

		parts := strings.Split(key, ".")
		node := result
		for _, part := range parts[:len(parts)-1] {
			child, ok := node[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[part] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = value
	}
	return result, nil
}

// ExpandPath expands a leading ~ and environment variables.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, path[1:])
	}
	return os.ExpandEnv(path), nil
}

func isPathWithin(base, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(target))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
