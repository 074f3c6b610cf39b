package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model.
// It captures gateway endpoints, session storage, and interaction tuning.
type Config struct {
	Backend     BackendConfig     `yaml:"backend"`
	Profanity   ProfanityConfig   `yaml:"profanity"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Session     SessionConfig     `yaml:"session"`
	Voting      VotingConfig      `yaml:"voting"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Submission  SubmissionConfig  `yaml:"submission"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

type BackendConfig struct {
	// If empty, read from env HOTTAKES_BACKEND_URL
	BaseURL       string        `yaml:"baseURL"`
	Timeout       time.Duration `yaml:"timeout"`
	RPS           float64       `yaml:"rps"`
	Burst         int           `yaml:"burst"`
	MaxAttempts   int           `yaml:"maxAttempts"`
	BaseBackoffMS int           `yaml:"baseBackoffMs"`
}

type ProfanityConfig struct {
	BaseURL string `yaml:"baseURL"`
	// If empty, read from env PROFANITY_API_KEY
	APIKey string `yaml:"apiKey"`
}

// CredentialsConfig is only used by non-interactive commands.
type CredentialsConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SessionConfig struct {
	// SQLite DSN for the token store. ":memory:" keeps it to this process.
	DSN        string        `yaml:"dsn"`
	StaleAfter time.Duration `yaml:"staleAfter"`
}

type VotingConfig struct {
	SwipeThreshold float64       `yaml:"swipeThreshold"`
	ExitDuration   time.Duration `yaml:"exitDuration"`
	// Device-independent units per terminal cell for mouse drags.
	CellWidth float64 `yaml:"cellWidth"`
}

type LeaderboardConfig struct {
	Limit int    `yaml:"limit"`
	Type  string `yaml:"type"` // "top" or "new"
}

type SubmissionConfig struct {
	MaxChars int `yaml:"maxChars"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File to append JSON logs to; "-" means stderr.
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:       "https://hot-takes-backend-tcxr.onrender.com",
			Timeout:       15 * time.Second,
			RPS:           5,
			Burst:         10,
			MaxAttempts:   3,
			BaseBackoffMS: 300,
		},
		Profanity:   ProfanityConfig{BaseURL: "https://api.api-ninjas.com"},
		Session:     SessionConfig{DSN: ":memory:", StaleAfter: time.Minute},
		Voting:      VotingConfig{SwipeThreshold: 100, ExitDuration: 300 * time.Millisecond, CellWidth: 8},
		Leaderboard: LeaderboardConfig{Limit: 10, Type: "top"},
		Submission:  SubmissionConfig{MaxChars: 280},
		Log:         LogConfig{Level: "info", Path: "./hottakes.log"},
	}
}

// ResolveEnv fills in config fields from environment variables if not set.
func (c *Config) ResolveEnv() {
	if v := os.Getenv("HOTTAKES_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if c.Profanity.APIKey == "" {
		c.Profanity.APIKey = os.Getenv("PROFANITY_API_KEY")
	}
	if c.Credentials.Username == "" {
		c.Credentials.Username = os.Getenv("HOTTAKES_USERNAME")
	}
	if c.Credentials.Password == "" {
		c.Credentials.Password = os.Getenv("HOTTAKES_PASSWORD")
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = os.Getenv("METRICS_ADDR")
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	c.Profanity.BaseURL = strings.TrimRight(c.Profanity.BaseURL, "/")
}

// Load reads YAML config from path on top of Default. A missing file is not
// an error; a local .env is loaded first when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	}
	cfg.ResolveEnv()
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
