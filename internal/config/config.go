// Package config loads driver configuration from an HCL file, a .env file
// and GENTLE_* environment variables, in increasing order of precedence.
//
// Expressions in the file may reference the process environment:
//
//	proto_langdir = "${env.GENTLE_HOME}/exp/langdir"
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/huangruizhe/gentle/language"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"
)

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `hcl:"level,optional"`
	Format string `hcl:"format,optional"`
}

// Config holds everything the alignment driver needs to make graphs.
type Config struct {
	ProtoLangDir string   `hcl:"proto_langdir,optional"`
	Compiler     string   `hcl:"mkgraph,optional"`
	Vocabulary   string   `hcl:"vocabulary,optional"` // words.txt; "" = no OOV mapping
	Strategy     string   `hcl:"strategy,optional"`
	Conservative bool     `hcl:"conservative,optional"`
	Disfluency   bool     `hcl:"disfluency,optional"`
	Disfluencies []string `hcl:"disfluencies,optional"`
	Output       string   `hcl:"output,optional"`
	Workers      int      `hcl:"workers,optional"`

	Log *LogConfig `hcl:"log,block"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		ProtoLangDir: "exp/langdir",
		Compiler:     "ext/m3",
		Strategy:     language.StrategyBigram,
		Disfluencies: append([]string(nil), language.DefaultDisfluencies...),
		Output:       "out",
		Workers:      min(runtime.NumCPU(), 8),
		Log:          &LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds a configuration from defaults, the HCL file at path (skipped
// when path is empty), a .env file in the working directory if present, and
// GENTLE_* environment variables.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	defaults := c.Log
	c.Log = nil
	diags = gohcl.DecodeBody(file.Body, envContext(), c)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	// Attributes missing from the log block keep their defaults.
	if c.Log == nil {
		c.Log = defaults
		return nil
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Format
	}
	return nil
}

// envContext exposes the process environment to HCL expressions as "env".
func envContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

func (c *Config) applyEnv() {
	c.ProtoLangDir = getEnv("GENTLE_PROTO_LANGDIR", c.ProtoLangDir)
	c.Compiler = getEnv("GENTLE_MKGRAPH", c.Compiler)
	c.Vocabulary = getEnv("GENTLE_VOCABULARY", c.Vocabulary)
	c.Strategy = getEnv("GENTLE_STRATEGY", c.Strategy)
	c.Conservative = getEnvBool("GENTLE_CONSERVATIVE", c.Conservative)
	c.Disfluency = getEnvBool("GENTLE_DISFLUENCY", c.Disfluency)
	c.Disfluencies = getEnvList("GENTLE_DISFLUENCIES", c.Disfluencies)
	c.Output = getEnv("GENTLE_OUTPUT", c.Output)
	c.Workers = getEnvInt("GENTLE_WORKERS", c.Workers)
	c.Log.Level = getEnv("GENTLE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("GENTLE_LOG_FORMAT", c.Log.Format)
}

// Validate reports the first invalid or missing setting.
func (c *Config) Validate() error {
	if c.ProtoLangDir == "" {
		return errors.New("proto_langdir is required")
	}
	if c.Compiler == "" {
		return errors.New("mkgraph is required")
	}
	if !slices.Contains(language.Strategies(), c.Strategy) {
		return fmt.Errorf("invalid strategy %q: must be one of %v", c.Strategy, language.Strategies())
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.Log.Format)
	}
	return nil
}

// GraphOptions returns the grammar options selected by the configuration.
func (c *Config) GraphOptions() language.Options {
	return language.Options{
		Conservative: c.Conservative,
		Disfluency:   c.Disfluency,
		Disfluencies: c.Disfluencies,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList reads a comma-separated list, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
