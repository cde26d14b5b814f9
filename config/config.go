package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the FAQ bot.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Match     MatchConfig     `yaml:"match"`
	Memory    MemoryConfig    `yaml:"memory"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig describes where the FAQ table lives.
type CorpusConfig struct {
	Includes       []string `yaml:"includes"`
	Excludes       []string `yaml:"excludes"`
	QuestionColumn string   `yaml:"question_column"`
	AnswerColumn   string   `yaml:"answer_column"`
}

// Replacement is a literal substring rewrite applied after normalization.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// NormalizeConfig holds text normalization configuration.
type NormalizeConfig struct {
	Replacements []Replacement `yaml:"replacements"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`    // "hashing", "openai", "ollama"
	Model      string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv  string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL    string `yaml:"base_url"`
	Dimension  int    `yaml:"dimension"`
	BatchSize  int    `yaml:"batch_size"`
	Workers    int    `yaml:"workers"`
	MaxRetries int    `yaml:"max_retries"`
}

// MatchConfig holds the decision policy.
type MatchConfig struct {
	HighThreshold float64 `yaml:"high_threshold"`
	LowThreshold  float64 `yaml:"low_threshold"`
	Suggestions   int     `yaml:"suggestions"`
	CacheSize     int     `yaml:"cache_size"` // 0 disables the ranker cache
}

// MemoryConfig holds conversation memory configuration.
type MemoryConfig struct {
	Backend     string        `yaml:"backend"` // "memory" or "redis"
	MaxRecent   int           `yaml:"max_recent"`
	MaxSessions int           `yaml:"max_sessions"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	Redis       RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	DB          int    `yaml:"db"`
	KeyPrefix   string `yaml:"key_prefix"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr          string        `yaml:"addr"`
	StaticDir     string        `yaml:"static_dir"`
	SessionCookie string        `yaml:"session_cookie"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
}

// LogConfig holds the interaction log configuration.
type LogConfig struct {
	Interactions string `yaml:"interactions"` // CSV path, empty disables
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Includes:       []string{"data/**/*.csv"},
			Excludes:       []string{"**/.faqbot/**", "**/node_modules/**"},
			QuestionColumn: "question",
			AnswerColumn:   "answer",
		},
		Normalize: NormalizeConfig{
			Replacements: []Replacement{
				{From: "log in", To: "login"},
				{From: "log-in", To: "login"},
				{From: "mits ", To: "MITS "},
				{From: "m.i.t.s", To: "MITS"},
				{From: "moodle ", To: "moodle "},
				{From: "ims ", To: "IMS "},
			},
		},
		Embedding: EmbeddingConfig{
			Provider:   "hashing",
			Model:      "hashing-v1",
			APIKeyEnv:  "OPENAI_API_KEY",
			Dimension:  384,
			BatchSize:  32,
			Workers:    4,
			MaxRetries: 3,
		},
		Match: MatchConfig{
			HighThreshold: 0.60,
			LowThreshold:  0.40,
			Suggestions:   3,
			CacheSize:     256,
		},
		Memory: MemoryConfig{
			Backend:     "memory",
			MaxRecent:   3,
			MaxSessions: 10000,
			SessionTTL:  30 * time.Minute,
			Redis: RedisConfig{
				Addr:        "localhost:6379",
				PasswordEnv: "REDIS_PASSWORD",
				KeyPrefix:   "faqbot:session",
			},
		},
		Server: ServerConfig{
			Addr:          ":8080",
			SessionCookie: "faqbot_session",
			ReadTimeout:   10 * time.Second,
			WriteTimeout:  30 * time.Second,
		},
		Log: LogConfig{
			Interactions: "chat_log.csv",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for faqbot.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "faqbot.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".faqbot", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	m := c.Match
	if m.LowThreshold < 0 || m.HighThreshold > 1 || m.LowThreshold > m.HighThreshold {
		return fmt.Errorf("thresholds must satisfy 0 <= low <= high <= 1, got low=%.2f high=%.2f",
			m.LowThreshold, m.HighThreshold)
	}
	if m.Suggestions < 1 {
		return errors.New("match.suggestions must be at least 1")
	}
	if c.Memory.MaxRecent < 1 {
		return errors.New("memory.max_recent must be at least 1")
	}
	switch c.Memory.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported memory backend: %s", c.Memory.Backend)
	}
	if c.Embedding.Dimension <= 0 && c.Embedding.Provider == "hashing" {
		return errors.New("embedding.dimension must be positive for the hashing provider")
	}
	if c.Corpus.QuestionColumn == "" || c.Corpus.AnswerColumn == "" {
		return errors.New("corpus question and answer columns must be set")
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// IndexDBPath returns the path to the built index.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".faqbot", "index.db")
}

// EnsureDataDir ensures the .faqbot directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".faqbot"), 0755)
}
