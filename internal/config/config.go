package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type FilesConfig struct {
	FontPath string `yaml:"font_path"`
}

type UpstreamConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Token         string        `yaml:"token"`
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retry_attempts"`
}

// SchedulerConfig tunes the scheduler page.
type SchedulerConfig struct {
	Timezone            string `yaml:"timezone"`
	TransitionPolicy    string `yaml:"transition_policy"` // permissive | strict
	OverdueLookbackDays int    `yaml:"overdue_lookback_days"`
	AllHorizonYears     int    `yaml:"all_horizon_years"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"auth"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Email     struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Notifications struct {
		Recipients []Recipient `yaml:"recipients"`
	} `yaml:"notifications"`
	Files FilesConfig `yaml:"files"`
}

// Recipient gets the daily digest. Either channel may be empty.
type Recipient struct {
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	TelegramChatID int64  `yaml:"telegram_chat_id"`
	AssignedTo     string `yaml:"assigned_to"` // empty = everyone's items
}

func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = 10 * time.Second
	}
	if c.Upstream.RetryAttempts == 0 {
		c.Upstream.RetryAttempts = 3
	}
	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "Local"
	}
	if c.Scheduler.TransitionPolicy == "" {
		c.Scheduler.TransitionPolicy = "permissive"
	}
	if c.Scheduler.OverdueLookbackDays == 0 {
		c.Scheduler.OverdueLookbackDays = 30
	}
	if c.Scheduler.AllHorizonYears == 0 {
		c.Scheduler.AllHorizonYears = 5
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Upstream.BaseURL == "" && c.Database.DSN == "" {
		return fmt.Errorf("config: one of upstream.base_url or database.url is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("config: auth.jwt_secret is required")
	}
	switch c.Scheduler.TransitionPolicy {
	case "permissive", "strict":
	default:
		return fmt.Errorf("config: scheduler.transition_policy %q is not permissive or strict", c.Scheduler.TransitionPolicy)
	}
	if c.Scheduler.OverdueLookbackDays < 0 || c.Scheduler.AllHorizonYears < 0 {
		return fmt.Errorf("config: scheduler lookback and horizon must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves scheduler.timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: scheduler.timezone: %w", err)
	}
	return loc, nil
}
