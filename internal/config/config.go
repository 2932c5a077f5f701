package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	API      APIConfig      `yaml:"api"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

func (s ServerConfig) Addr() string {
	return ":" + strconv.Itoa(s.Port)
}

// RabbitMQConfig configures favorite event publishing. Publishing is off
// unless URL is set.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

// DatabaseConfig accepts either a connection URL or discrete fields.
// URL wins when both are present.
type DatabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"dbname"`
	SSLMode    string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.urlDSN()
	}

	password := d.Password
	if password == "" {
		password = d.ServiceKey
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, password, d.DBName, d.SSLMode,
	)
}

// urlDSN injects the service key as the password when the URL carries none.
func (d DatabaseConfig) urlDSN() string {
	if d.ServiceKey == "" {
		return d.URL
	}

	u, err := url.Parse(d.URL)
	if err != nil || u.Scheme == "" {
		if strings.Contains(d.URL, "password=") {
			return d.URL
		}
		return d.URL + " password=" + d.ServiceKey
	}

	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			return d.URL
		}
		u.User = url.UserPassword(u.User.Username(), d.ServiceKey)
	} else {
		u.User = url.UserPassword("postgres", d.ServiceKey)
	}
	return u.String()
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
	Breaker BreakerConfig `yaml:"breaker"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type BreakerConfig struct {
	Enabled          bool          `yaml:"enabled"`
	FailureThreshold uint32        `yaml:"failure_threshold"`
	MaxRequests      uint32        `yaml:"max_requests"`
	Interval         time.Duration `yaml:"interval"`
	Timeout          time.Duration `yaml:"timeout"`
}

// Load reads the YAML file at path, expanding ${VAR} references, then
// applies environment overrides and defaults. When required is false a
// missing file yields a config built from the environment alone.
func Load(path string, required bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DATABASE_SERVICE_KEY"); v != "" {
		c.Database.ServiceKey = v
	}
	if v := os.Getenv("REPORTS_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		c.RabbitMQ.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "report_explorer"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "favorites"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "favorite_events"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "https://www.thereportoftheweekapi.com/api/v1/reports/"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.Retry.MaxAttempts == 0 {
		c.API.Retry.MaxAttempts = 1
	}
	if c.API.Retry.InitialBackoff == 0 {
		c.API.Retry.InitialBackoff = 1 * time.Second
	}
	if c.API.Retry.MaxBackoff == 0 {
		c.API.Retry.MaxBackoff = 30 * time.Second
	}
	if c.API.Breaker.FailureThreshold == 0 {
		c.API.Breaker.FailureThreshold = 5
	}
	if c.API.Breaker.MaxRequests == 0 {
		c.API.Breaker.MaxRequests = 1
	}
	if c.API.Breaker.Timeout == 0 {
		c.API.Breaker.Timeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
