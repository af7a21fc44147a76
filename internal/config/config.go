// Package config loads client settings from a YAML file, INTERVIEW_*
// environment variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/vishalnotfound/AI-Interview-Agent/internal/api"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/daemon"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/db"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/session"
	"github.com/vishalnotfound/AI-Interview-Agent/internal/speech"
)

const (
	// App is the config file base name and env prefix source.
	App       = "interview-agent"
	envPrefix = "INTERVIEW"
)

type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Interview InterviewConfig `mapstructure:"interview"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type APIConfig struct {
	BaseURL string `mapstructure:"base-url"`
}

type SpeechConfig struct {
	Socket  string        `mapstructure:"socket"`
	Locale  string        `mapstructure:"locale"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type InterviewConfig struct {
	TotalQuestions   int           `mapstructure:"total-questions"`
	MaxRecordSeconds int           `mapstructure:"max-record-seconds"`
	CompletionDelay  time.Duration `mapstructure:"completion-delay"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Debug bool   `mapstructure:"debug"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	// Addr enables the metrics endpoint when set, e.g. "127.0.0.1:9464".
	Addr string `mapstructure:"addr"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base-url", api.DefaultBaseURL)
	// The steno daemon's macOS socket; set speech.socket on other platforms.
	v.SetDefault("speech.socket", daemon.SocketPath())
	v.SetDefault("speech.locale", speech.DefaultLocale)
	v.SetDefault("speech.timeout", daemon.DefaultTimeout)
	v.SetDefault("interview.total-questions", session.DefaultTotalQuestions)
	v.SetDefault("interview.max-record-seconds", session.DefaultMaxRecordSeconds)
	v.SetDefault("interview.completion-delay", session.DefaultCompletionDelay)
	v.SetDefault("store.path", db.DefaultDBPath())
	v.SetDefault("log.file", filepath.Join(db.DataDir(), App+".log"))
	v.SetDefault("log.debug", false)
	v.SetDefault("log.json", false)
	v.SetDefault("metrics.addr", "")
}

// Load reads configuration into v and returns it validated. file is an
// explicit config path; when empty, interview-agent.yaml in the working
// directory is used if present. A .env file in the working directory is
// loaded first without overriding the real environment.
func Load(v *viper.Viper, file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	SetDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(App)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base-url must be set")
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base-url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.Interview.TotalQuestions <= 0 {
		return fmt.Errorf("interview.total-questions must be positive, got %d", c.Interview.TotalQuestions)
	}
	if c.Interview.MaxRecordSeconds <= 0 {
		return fmt.Errorf("interview.max-record-seconds must be positive, got %d", c.Interview.MaxRecordSeconds)
	}
	if c.Interview.CompletionDelay <= 0 {
		return fmt.Errorf("interview.completion-delay must be positive, got %s", c.Interview.CompletionDelay)
	}
	if c.Store.Path == "" {
		return errors.New("store.path must be set")
	}
	return nil
}
