package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned by Load when ~/.courserec/config.yaml does not exist.
var ErrNotFound = errors.New("config file not found")

// IndexConfig holds the vectorizer and skill expansion knobs.
type IndexConfig struct {
	MinDF          int     `yaml:"min_df" validate:"gte=1"`
	MaxDF          float64 `yaml:"max_df" validate:"gt=0,lte=1"`
	MaxFeatures    int     `yaml:"max_features" validate:"gte=1"`
	NgramMax       int     `yaml:"ngram_max" validate:"gte=1,lte=3"`
	SynonymsPerTag int     `yaml:"synonyms_per_tag" validate:"gte=0"`
}

// RankingConfig holds the query-time knobs.
type RankingConfig struct {
	TopN             int     `yaml:"top_n" validate:"gte=1"`
	Oversample       int     `yaml:"oversample" validate:"gte=1"`
	MinSimilarity    float64 `yaml:"min_similarity" validate:"gte=0,lte=1"`
	DescriptionLimit int     `yaml:"description_limit" validate:"gte=1"`
}

// Config is the in-memory representation of ~/.courserec/config.yaml.
type Config struct {
	CatalogPath string        `yaml:"catalog_path"`
	IndexDir    string        `yaml:"index_dir" validate:"required"`
	ListenAddr  string        `yaml:"listen_addr" validate:"required"`
	LogLevel    string        `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	LogFormat   string        `yaml:"log_format" validate:"omitempty,oneof=json console"`
	Index       IndexConfig   `yaml:"index"`
	Ranking     RankingConfig `yaml:"ranking"`
}

var validate = validator.New()

// AppDir returns the absolute path to ~/.courserec/.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".courserec"), nil
}

// ConfigPath returns the absolute path to ~/.courserec/config.yaml.
func ConfigPath() (string, error) {
	dir, err := AppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the Config written on first courserec init.
func DefaultConfig() (*Config, error) {
	dir, err := AppDir()
	if err != nil {
		return nil, err
	}
	return &Config{
		CatalogPath: "",
		IndexDir:    filepath.Join(dir, "index"),
		ListenAddr:  "127.0.0.1:8080",
		LogLevel:    "warn",
		LogFormat:   "console",
		Index: IndexConfig{
			MinDF:          2,
			MaxDF:          0.8,
			MaxFeatures:    5000,
			NgramMax:       2,
			SynonymsPerTag: 2,
		},
		Ranking: RankingConfig{
			TopN:             5,
			Oversample:       2,
			MinSimilarity:    0,
			DescriptionLimit: 150,
		},
	}, nil
}

// Load reads and parses ~/.courserec/config.yaml on top of the defaults, then
// applies environment overrides. It returns ErrNotFound when the file is absent.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile returns the defaults overlaid with config.yaml only, without
// environment overrides or path expansion. Use it to edit and Save the file.
func LoadFile() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to DefaultConfig (plus
// environment overrides) when no config file exists yet.
func LoadOrDefault() (*Config, error) {
	cfg, err := Load()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	cfg, err = DefaultConfig()
	if err != nil {
		return nil, err
	}
	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finish(cfg *Config) error {
	if err := applyEnv(cfg); err != nil {
		return err
	}
	var err error
	if cfg.CatalogPath, err = ExpandPath(cfg.CatalogPath); err != nil {
		return err
	}
	if cfg.IndexDir, err = ExpandPath(cfg.IndexDir); err != nil {
		return err
	}
	return cfg.Validate()
}

// applyEnv overrides file values with COURSEREC_* keys from the process
// environment or ~/.courserec/.env.
func applyEnv(cfg *Config) error {
	overrides := []struct {
		key string
		dst *string
	}{
		{"COURSEREC_CATALOG", &cfg.CatalogPath},
		{"COURSEREC_INDEX_DIR", &cfg.IndexDir},
		{"COURSEREC_LISTEN_ADDR", &cfg.ListenAddr},
		{"COURSEREC_LOG_LEVEL", &cfg.LogLevel},
		{"COURSEREC_LOG_FORMAT", &cfg.LogFormat},
	}
	for _, o := range overrides {
		v, err := GetConfigValue(o.key)
		if err != nil {
			return err
		}
		if v = strings.TrimSpace(v); v != "" {
			*o.dst = v
		}
	}
	return nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save marshals cfg and writes it to ~/.courserec/config.yaml.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}
