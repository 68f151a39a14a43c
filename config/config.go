package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/poiesic/educaia/ai"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "EDUCAIA"

// Config holds process-level settings.
// Precedence: defaults, then the YAML file, then EDUCAIA_* environment variables.
type Config struct {
	KnowledgeBase  string  `yaml:"knowledge_base" envconfig:"KNOWLEDGE_BASE"`
	Threshold      float64 `yaml:"threshold" envconfig:"THRESHOLD"`
	DBPath         string  `yaml:"db_path" envconfig:"DB_PATH"`
	Listen         string  `yaml:"listen" envconfig:"LISTEN"`
	Backend        string  `yaml:"backend" envconfig:"BACKEND"`
	EmbeddingHost  string  `yaml:"embedding_host" envconfig:"EMBEDDING_HOST"`
	EmbeddingModel string  `yaml:"embedding_model" envconfig:"EMBEDDING_MODEL"`
	APIToken       string  `yaml:"api_token" envconfig:"API_TOKEN"`
	CacheSize      int     `yaml:"cache_size" envconfig:"CACHE_SIZE"`
	Watch          bool    `yaml:"watch" envconfig:"WATCH"`
	LogLevel       string  `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns the built-in settings.
func Default() *Config {
	aiCfg := ai.DefaultConfig()
	return &Config{
		KnowledgeBase:  "dados_faculdade.txt",
		Threshold:      0.35,
		DBPath:         "educaia.db",
		Listen:         ":8080",
		Backend:        aiCfg.Backend,
		EmbeddingHost:  aiCfg.EmbeddingHost,
		EmbeddingModel: aiCfg.EmbeddingModel,
		APIToken:       aiCfg.APIToken,
		CacheSize:      aiCfg.CacheSize,
		LogLevel:       "info",
	}
}

// Load builds a Config from the defaults, the optional YAML file at path and the
// environment. A .env file in the working directory is loaded if present.
// An empty path skips the file; a missing file at a non-empty path is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0, 1], got %v", c.Threshold)
	}
	if c.CacheSize < 0 {
		return errors.New("cache_size cannot be negative")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return c.AIConfig().Validate()
}

// AIConfig returns the embedding provider settings.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithBackend(c.Backend),
		ai.WithEmbeddingHost(c.EmbeddingHost),
		ai.WithEmbeddingModel(c.EmbeddingModel),
		ai.WithAPIToken(c.APIToken),
		ai.WithCacheSize(c.CacheSize),
	)
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", name)
	}
}
