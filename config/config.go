package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/masmgr/declmine/internal/git"
	"github.com/masmgr/declmine/internal/mining"
	"github.com/masmgr/declmine/internal/output"
)

// CutoffLayout is the date format of Config.Cutoff.
const CutoffLayout = "2006-01-02"

// Config is the root configuration structure.
type Config struct {
	Repositories []string     `json:"repositories" toml:"repositories"`
	Cutoff       string       `json:"cutoff" toml:"cutoff"`       // Default: 2018-03-20
	Extension    string       `json:"extension" toml:"extension"` // Default: java
	CacheDir     string       `json:"cacheDir" toml:"cacheDir"`
	OutputDir    string       `json:"outputDir" toml:"outputDir"`
	Output       OutputConfig `json:"output" toml:"output"`
	Filters      FilterConfig `json:"filters" toml:"filters"`
	Walk         WalkConfig   `json:"walk" toml:"walk"`
}

// OutputConfig holds output stream options.
type OutputConfig struct {
	Format      string `json:"format" toml:"format"`           // csv or ndjson
	Compression string `json:"compression" toml:"compression"` // none, gzip or zstd
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `json:"include" toml:"include"`
	Exclude []string `json:"exclude" toml:"exclude"`
}

// WalkConfig holds revision walk options.
type WalkConfig struct {
	// StrictResolution aborts a repository's walk on the first commit that
	// cannot be resolved instead of skipping it.
	StrictResolution bool `json:"strictResolution" toml:"strictResolution"`
}

// DefaultRepositories are the projects mined when none are configured.
var DefaultRepositories = []string{
	"https://github.com/dropwizard/dropwizard",
	"https://github.com/hibernate/hibernate-orm",
	"https://github.com/sofastack/sofa-jraft",
	"https://github.com/SeleniumHQ/selenium",
	"https://github.com/open-telemetry/opentelemetry-java",
	"https://github.com/vsilaev/tascalate-javaflow",
	"https://github.com/shopizer-ecommerce/shopizer",
	"https://github.com/eclipse/eclipse.jdt.ls",
	"https://github.com/elastic/elasticsearch",
	"https://github.com/gradle/gradle",
	"https://github.com/spring-projects/spring-framework",
	"https://github.com/google/error-prone",
	"https://github.com/apache/tomcat",
	"https://github.com/networknt/light-4j",
	"https://github.com/INRIA/spoon",
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Repositories: append([]string(nil), DefaultRepositories...),
		Cutoff:       "2018-03-20",
		Extension:    "java",
		CacheDir:     ".",
		OutputDir:    ".",
		Output: OutputConfig{
			Format:      string(output.FormatCSV),
			Compression: "none",
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
	}
}

// CutoffTime parses Cutoff as midnight UTC.
func (c *Config) CutoffTime() (time.Time, error) {
	t, err := time.Parse(CutoffLayout, c.Cutoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff date: %s (expected YYYY-MM-DD)", c.Cutoff)
	}
	return t, nil
}

// RunConfig converts the configuration into the immutable run configuration
// and validates it.
func (c *Config) RunConfig() (mining.RunConfig, error) {
	cutoff, err := c.CutoffTime()
	if err != nil {
		return mining.RunConfig{}, err
	}
	format, err := output.ParseFormat(c.Output.Format)
	if err != nil {
		return mining.RunConfig{}, err
	}
	compression, err := output.ParseCompression(c.Output.Compression)
	if err != nil {
		return mining.RunConfig{}, err
	}

	run := mining.RunConfig{
		Sources:   append([]string(nil), c.Repositories...),
		Cutoff:    cutoff,
		Extension: c.Extension,
		Filter: git.PathFilter{
			Include: append([]string(nil), c.Filters.Include...),
			Exclude: append([]string(nil), c.Filters.Exclude...),
		},
		CacheDir: c.CacheDir,
		Output: output.OutputOptions{
			Format:      format,
			Dir:         c.OutputDir,
			Compression: compression,
		},
		StrictResolution: c.Walk.StrictResolution,
	}
	if err := run.Validate(); err != nil {
		return mining.RunConfig{}, err
	}
	return run, nil
}

// defaultFileNames are tried in order in the working directory, then in the
// home directory.
var defaultFileNames = []string{".declmine.json", ".declmine.toml"}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if isTOML(path) {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range defaultFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Marshal encodes cfg as TOML when path ends in .toml and as indented JSON
// otherwise.
func Marshal(cfg *Config, path string) ([]byte, error) {
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
