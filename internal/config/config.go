package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"

	"github.com/dotcommander/modcycle/internal/cue"
	"github.com/dotcommander/modcycle/internal/cycle"
	"github.com/dotcommander/modcycle/internal/project"
	"github.com/dotcommander/modcycle/internal/resolve"
	"github.com/dotcommander/modcycle/internal/strategy"
)

// FileNames are the configuration files looked up in the working directory, in order.
var FileNames = []string{".modcyclerc.json", ".modcyclerc.yaml", ".modcyclerc.yml"}

// Config represents the modcycle configuration
type Config struct {
	Root           string   `mapstructure:"root" json:"root,omitempty"`
	Include        []string `mapstructure:"include" json:"include,omitempty"`
	Exclude        []string `mapstructure:"exclude" json:"exclude,omitempty"`
	FollowSymlinks bool     `mapstructure:"followSymlinks" json:"followSymlinks"`
	Format         string   `mapstructure:"format" json:"format"`
	Output         string   `mapstructure:"output" json:"output,omitempty"`
	FailOn         string   `mapstructure:"failOn" json:"failOn"`
	Quiet          bool     `mapstructure:"quiet" json:"quiet"`
	Verbose        bool     `mapstructure:"verbose" json:"verbose"`

	MaxDepth        int           `mapstructure:"maxDepth" json:"maxDepth"`
	ReportAllCycles bool          `mapstructure:"reportAllCycles" json:"reportAllCycles"`
	Strategy        string        `mapstructure:"strategy" json:"strategy"`
	Naming          string        `mapstructure:"naming" json:"naming"`
	CacheSize       int           `mapstructure:"cacheSize" json:"cacheSize"`
	Resolve         ResolveConfig `mapstructure:"resolve" json:"resolve"`
}

// ResolveConfig controls how specifiers map to files
type ResolveConfig struct {
	Extensions  []string `mapstructure:"extensions" json:"extensions,omitempty"`
	IndexFiles  []string `mapstructure:"indexFiles" json:"indexFiles,omitempty"`
	Aggregators []string `mapstructure:"aggregators" json:"aggregators,omitempty"`
	Aliases     []Alias  `mapstructure:"aliases" json:"aliases,omitempty"`
}

// Alias substitutes Prefix with Path at the start of a specifier
type Alias struct {
	Prefix string `mapstructure:"prefix" json:"prefix"`
	Path   string `mapstructure:"path" json:"path"`
}

// SetDefaults registers default values on viper
func SetDefaults() {
	viper.SetDefault("root", "")
	viper.SetDefault("output", "")
	viper.SetDefault("include", []string{"**/*.{ts,tsx,js,jsx,mjs,cjs}"})
	viper.SetDefault("exclude", []string{"**/node_modules/**", "**/dist/**"})
	viper.SetDefault("followSymlinks", false)
	viper.SetDefault("format", "console")
	viper.SetDefault("failOn", "cycle")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("maxDepth", 10)
	viper.SetDefault("reportAllCycles", false)
	viper.SetDefault("strategy", string(strategy.Auto))
	viper.SetDefault("naming", string(strategy.Semantic))
	viper.SetDefault("cacheSize", 4096)
	viper.SetDefault("resolve.extensions", []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"})
	viper.SetDefault("resolve.indexFiles", []string{"index"})
	viper.SetDefault("resolve.aggregators", []string{"index.ts", "index.tsx", "index.js", "index.jsx", "index.mjs"})
}

// LoadConfig loads configuration from various sources
func LoadConfig(rootPath string) (*Config, error) {
	SetDefaults()

	for _, path := range FileNames {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
		break
	}

	// Environment variables
	viper.SetEnvPrefix("MODCYCLE")
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Override root if provided
	if rootPath != "" {
		config.Root = rootPath
	}
	if config.Root == "" {
		root, err := project.FindProjectRoot(".")
		if err != nil {
			return nil, fmt.Errorf("error finding project root: %w", err)
		}
		config.Root = root
	}
	absRoot, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("invalid root %q: %w", config.Root, err)
	}
	config.Root = absRoot

	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration against the embedded schema, then
// applies the checks a schema cannot express. It must pass before any
// traversal starts.
func Validate(config *Config) error {
	validator := cue.NewValidator()
	if err := validator.LoadSchemas(); err != nil {
		return err
	}
	violations, err := validator.Validate("config", config)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return violations[0]
	}

	return validateConfig(config)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative, got %d", config.MaxDepth)
	}

	if _, err := strategy.Parse(config.Strategy); err != nil {
		return err
	}
	if _, err := strategy.ParseNaming(config.Naming); err != nil {
		return err
	}

	switch config.Format {
	case "console", "json", "markdown", "yaml":
	default:
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', 'markdown', or 'yaml'", config.Format)
	}

	if config.FailOn != "cycle" && config.FailOn != "never" {
		return fmt.Errorf("invalid fail-on level: %s. Must be 'cycle' or 'never'", config.FailOn)
	}

	for _, pattern := range append(append([]string{}, config.Include...), config.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern: %q", pattern)
		}
	}

	for _, ext := range config.Resolve.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}

	for _, a := range config.Resolve.Aliases {
		if a.Prefix == "" {
			return fmt.Errorf("alias for %q has an empty prefix", a.Path)
		}
	}

	return nil
}

// ResolverOptions returns the module resolver settings
func (c *Config) ResolverOptions() resolve.Options {
	aliases := make([]resolve.Alias, 0, len(c.Resolve.Aliases))
	for _, a := range c.Resolve.Aliases {
		aliases = append(aliases, resolve.Alias{Prefix: a.Prefix, Path: a.Path})
	}
	return resolve.Options{
		Extensions: c.Resolve.Extensions,
		IndexFiles: c.Resolve.IndexFiles,
		Aliases:    aliases,
		BaseDir:    c.Root,
		CacheSize:  c.CacheSize,
	}
}

// DetectorOptions returns the traversal settings
func (c *Config) DetectorOptions() cycle.Options {
	return cycle.Options{
		MaxDepth:  c.MaxDepth,
		ReportAll: c.ReportAllCycles,
		Ignore:    c.Exclude,
		Root:      c.Root,
	}
}

// StrategyOptions returns the strategy selection settings. Validate must
// have passed.
func (c *Config) StrategyOptions() strategy.Options {
	fixed, _ := strategy.Parse(c.Strategy)
	naming, _ := strategy.ParseNaming(c.Naming)
	return strategy.Options{
		Fixed:       fixed,
		Naming:      naming,
		Aggregators: c.Resolve.Aggregators,
	}
}

// SaveConfig saves the current configuration to a file
func SaveConfig(config *Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
