package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/lexandro/storycheck/ignore"
	"github.com/lexandro/storycheck/locator"
	"github.com/lexandro/storycheck/naming"
	"github.com/lexandro/storycheck/stories"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = ".storycheck.yaml"

// Config represents storycheck configuration options
type Config struct {
	// Root is the source tree to scan, relative to the working directory
	Root string `yaml:"root"`

	// ContainerName is the directory name that marks a component container
	ContainerName string `yaml:"container_name"`

	// StoriesDir is the story subdirectory inside each container
	StoriesDir string `yaml:"stories_dir"`

	// ComponentExtensions are the extensions that make a file a component
	ComponentExtensions []string `yaml:"component_extensions"`

	// StoryExtensions are probed in order when resolving a story
	StoryExtensions []string `yaml:"story_extensions"`

	// Exclude holds doublestar patterns for directories to skip
	Exclude []string `yaml:"exclude"`

	// RespectGitignore skips directories ignored by the root .gitignore
	RespectGitignore bool `yaml:"respect_gitignore"`

	// SkipDefaultDirs skips .git, .svn, .hg and node_modules directories
	SkipDefaultDirs bool `yaml:"skip_default_dirs"`

	// SkipStoriesDirs stops the walk from descending into stories directories
	SkipStoriesDirs bool `yaml:"skip_stories_dirs"`

	// Hints enables near-miss story suggestions
	Hints bool `yaml:"hints"`

	// MaxHints caps suggestions per missing component
	MaxHints int `yaml:"max_hints"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Root:                "src",
		ContainerName:       locator.DefaultContainerName,
		StoriesDir:          stories.DefaultDirName,
		ComponentExtensions: append([]string(nil), naming.DefaultComponentExtensions...),
		StoryExtensions:     append([]string(nil), stories.DefaultExtensions...),
		RespectGitignore:    false,
		SkipDefaultDirs:     false,
		SkipStoriesDirs:     false,
		Hints:               true,
		MaxHints:            3,
		LogLevel:            "warn",
	}
}

// LoadConfig loads configuration from a YAML file.
// A missing file yields the defaults. Values present in the file override defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Pointer fields tell "unset" apart from an explicit false or zero.
	type yamlConfig struct {
		Root                string   `yaml:"root"`
		ContainerName       string   `yaml:"container_name"`
		StoriesDir          string   `yaml:"stories_dir"`
		ComponentExtensions []string `yaml:"component_extensions"`
		StoryExtensions     []string `yaml:"story_extensions"`
		Exclude             []string `yaml:"exclude"`
		RespectGitignore    *bool    `yaml:"respect_gitignore"`
		SkipDefaultDirs     *bool    `yaml:"skip_default_dirs"`
		SkipStoriesDirs     *bool    `yaml:"skip_stories_dirs"`
		Hints               *bool    `yaml:"hints"`
		MaxHints            *int     `yaml:"max_hints"`
		LogLevel            string   `yaml:"log_level"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.Root != "" {
		cfg.Root = yamlCfg.Root
	}
	if yamlCfg.ContainerName != "" {
		cfg.ContainerName = yamlCfg.ContainerName
	}
	if yamlCfg.StoriesDir != "" {
		cfg.StoriesDir = yamlCfg.StoriesDir
	}
	if len(yamlCfg.ComponentExtensions) > 0 {
		cfg.ComponentExtensions = yamlCfg.ComponentExtensions
	}
	if len(yamlCfg.StoryExtensions) > 0 {
		cfg.StoryExtensions = yamlCfg.StoryExtensions
	}
	if len(yamlCfg.Exclude) > 0 {
		cfg.Exclude = yamlCfg.Exclude
	}
	if yamlCfg.RespectGitignore != nil {
		cfg.RespectGitignore = *yamlCfg.RespectGitignore
	}
	if yamlCfg.SkipDefaultDirs != nil {
		cfg.SkipDefaultDirs = *yamlCfg.SkipDefaultDirs
	}
	if yamlCfg.SkipStoriesDirs != nil {
		cfg.SkipStoriesDirs = *yamlCfg.SkipStoriesDirs
	}
	if yamlCfg.Hints != nil {
		cfg.Hints = *yamlCfg.Hints
	}
	if yamlCfg.MaxHints != nil {
		cfg.MaxHints = *yamlCfg.MaxHints
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Flags carries CLI overrides. Nil fields were not set on the command line.
type Flags struct {
	Root            *string
	Exclude         []string
	SkipStoriesDirs *bool
	SkipDefaultDirs *bool
	NoHints         *bool
	LogLevel        *string
}

// MergeWithFlags merges CLI flags into the configuration.
// Flags take precedence over config file settings; excludes are appended.
func (c *Config) MergeWithFlags(flags Flags) {
	if flags.Root != nil {
		c.Root = *flags.Root
	}
	c.Exclude = append(c.Exclude, flags.Exclude...)
	if flags.SkipStoriesDirs != nil {
		c.SkipStoriesDirs = *flags.SkipStoriesDirs
	}
	if flags.SkipDefaultDirs != nil {
		c.SkipDefaultDirs = *flags.SkipDefaultDirs
	}
	if flags.NoHints != nil && *flags.NoHints {
		c.Hints = false
	}
	if flags.LogLevel != nil {
		c.LogLevel = *flags.LogLevel
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Root == "" {
		return fmt.Errorf("root must not be empty")
	}
	if strings.ContainsAny(c.ContainerName, `/\`) || c.ContainerName == "" {
		return fmt.Errorf("container_name must be a single directory name, got %q", c.ContainerName)
	}
	if strings.ContainsAny(c.StoriesDir, `/\`) || c.StoriesDir == "" {
		return fmt.Errorf("stories_dir must be a single directory name, got %q", c.StoriesDir)
	}
	for _, ext := range append(append([]string(nil), c.ComponentExtensions...), c.StoryExtensions...) {
		if strings.TrimPrefix(ext, ".") == "" {
			return fmt.Errorf("empty extension in config")
		}
	}
	if bad, ok := ignore.ValidatePatterns(c.Exclude); !ok {
		return fmt.Errorf("invalid exclude pattern %q", bad)
	}
	if c.MaxHints < 0 {
		return fmt.Errorf("max_hints must be >= 0, got %d", c.MaxHints)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (must be debug, info, warn, or error)", c.LogLevel)
	}
	return nil
}

// NormalizedStoryExtensions returns the story extensions with a leading dot.
func (c *Config) NormalizedStoryExtensions() []string {
	result := make([]string, 0, len(c.StoryExtensions))
	for _, ext := range c.StoryExtensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		result = append(result, ext)
	}
	return result
}
