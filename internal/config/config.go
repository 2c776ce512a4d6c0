package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"crosswarped.com/checkerboard"
	"crosswarped.com/checkerboard/internal/dictionary"
)

// WordsEnv names the environment variable that overrides Dictionary.WordsFile.
const WordsEnv = "CHECKERBOARD_WORDS"

// Config is the settings file shared by the CLI and the batch runner.
type Config struct {
	Solver     SolverConfig     `yaml:"solver"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SolverConfig holds the search limits. Zero values fall back to the solver's defaults.
type SolverConfig struct {
	Ceiling      int `yaml:"ceiling"`
	AnagramLimit int `yaml:"anagram_limit"`
	MaxNarrowed  int `yaml:"max_narrowed"`

	MaxKeywordLength int `yaml:"max_keyword_length"`
	MaxLeadingGap    int `yaml:"max_leading_gap"`
	LateAlphabetRank int `yaml:"late_alphabet_rank"`

	MinCoverage float64 `yaml:"min_coverage"`
}

// DictionaryConfig points at word lists, one word per line with an optional count. An empty
// WordsFile uses the built-in English list.
type DictionaryConfig struct {
	WordsFile    string `yaml:"words_file"`
	ObscureFile  string `yaml:"obscure_file"`
	ExcludedFile string `yaml:"excluded_file"`

	MinWordLength int `yaml:"min_word_length"`
	MaxWordLength int `yaml:"max_word_length"`
	CacheSize     int `yaml:"cache_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func DefaultConfig() *Config {
	return &Config{
		Solver: SolverConfig{
			Ceiling:          25,
			AnagramLimit:     12,
			MaxNarrowed:      3,
			MaxKeywordLength: 15,
			MaxLeadingGap:    4,
			LateAlphabetRank: 20,
			MinCoverage:      0.6,
		},
		Dictionary: DictionaryConfig{
			MinWordLength: 1,
			MaxWordLength: 20,
			CacheSize:     4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML config over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(WordsEnv); path != "" {
		c.Dictionary.WordsFile = path
	}
}

// SolverParams converts the solver section for NewSolver.
func (c *Config) SolverParams(logger *zap.Logger) checkerboard.SolverParams {
	return checkerboard.SolverParams{
		Ceiling:          c.Solver.Ceiling,
		AnagramLimit:     c.Solver.AnagramLimit,
		MaxNarrowed:      c.Solver.MaxNarrowed,
		MaxKeywordLength: c.Solver.MaxKeywordLength,
		MaxLeadingGap:    c.Solver.MaxLeadingGap,
		LateAlphabetRank: c.Solver.LateAlphabetRank,
		MinCoverage:      c.Solver.MinCoverage,
		Logger:           logger,
	}
}

// DictionaryParams converts the length and cache limits of the dictionary section. The word
// files are read by dictionary.FromFiles.
func (c *Config) DictionaryParams() dictionary.Params {
	p := dictionary.Params{CacheSize: c.Dictionary.CacheSize}
	if c.Dictionary.MinWordLength > 0 {
		n := c.Dictionary.MinWordLength
		p.MinWordLength = &n
	}
	if c.Dictionary.MaxWordLength > 0 {
		n := c.Dictionary.MaxWordLength
		p.MaxWordLength = &n
	}
	return p
}

// Logger builds a zap logger for the logging section. verbose forces debug output.
func (c *Config) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Logging.Format != "" {
		zc.Encoding = c.Logging.Format
	}
	if c.Logging.Level != "" {
		level, err := zap.ParseAtomicLevel(c.Logging.Level)
		if err != nil {
			return nil, fmt.Errorf("logging level: %w", err)
		}
		zc.Level = level
	}
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
