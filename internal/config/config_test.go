package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "DATABASE_SERVICE_KEY",
		"REPORTS_API_URL", "RABBITMQ_URL", "LOG_LEVEL",
	} {
		s.T().Setenv(key, "")
	}
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) write(content string) string {
	path := filepath.Join(s.dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestLoad_Defaults() {
	cfg, err := Load(filepath.Join(s.dir, "missing.yaml"), false)
	s.Require().NoError(err)

	s.Equal(3000, cfg.Server.Port)
	s.Equal(":3000", cfg.Server.Addr())
	s.Equal(15*time.Second, cfg.Server.ReadTimeout)
	s.Equal(60*time.Second, cfg.Server.WriteTimeout)
	s.Equal(10*time.Second, cfg.Server.ShutdownTimeout)
	s.Equal("https://www.thereportoftheweekapi.com/api/v1/reports/", cfg.API.BaseURL)
	s.Equal(30*time.Second, cfg.API.Timeout)
	s.Equal(1, cfg.API.Retry.MaxAttempts)
	s.False(cfg.API.Breaker.Enabled)
	s.False(cfg.RabbitMQ.Enabled())
	s.Equal("info", cfg.LogLevel)
}

func (s *ConfigTestSuite) TestLoad_MissingRequiredFile() {
	_, err := Load(filepath.Join(s.dir, "missing.yaml"), true)
	s.Error(err)
}

func (s *ConfigTestSuite) TestLoad_FileWithExpansion() {
	s.T().Setenv("TEST_DB_PASSWORD", "s3cret")
	path := s.write(`
server:
  port: 8080
  shutdown_timeout: 5s
database:
  host: db
  port: 6543
  user: app
  password: ${TEST_DB_PASSWORD}
  dbname: reports
api:
  timeout: 2s
  retry:
    max_attempts: 3
  breaker:
    enabled: true
    failure_threshold: 2
log_level: debug
`)

	cfg, err := Load(path, true)
	s.Require().NoError(err)

	s.Equal(8080, cfg.Server.Port)
	s.Equal(5*time.Second, cfg.Server.ShutdownTimeout)
	s.Equal("s3cret", cfg.Database.Password)
	s.Equal("host=db port=6543 user=app password=s3cret dbname=reports sslmode=disable", cfg.Database.DSN())
	s.Equal(2*time.Second, cfg.API.Timeout)
	s.Equal(3, cfg.API.Retry.MaxAttempts)
	s.True(cfg.API.Breaker.Enabled)
	s.Equal(uint32(2), cfg.API.Breaker.FailureThreshold)
	s.Equal("debug", cfg.LogLevel)
}

func (s *ConfigTestSuite) TestLoad_EnvOverridesFile() {
	path := s.write("server:\n  port: 8080\nlog_level: warn\n")
	s.T().Setenv("PORT", "9090")
	s.T().Setenv("LOG_LEVEL", "error")
	s.T().Setenv("REPORTS_API_URL", "http://upstream.test/reports")
	s.T().Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")

	cfg, err := Load(path, true)
	s.Require().NoError(err)

	s.Equal(9090, cfg.Server.Port)
	s.Equal("error", cfg.LogLevel)
	s.Equal("http://upstream.test/reports", cfg.API.BaseURL)
	s.True(cfg.RabbitMQ.Enabled())
}

func (s *ConfigTestSuite) TestLoad_InvalidPort() {
	s.T().Setenv("PORT", "eighty")

	_, err := Load(filepath.Join(s.dir, "missing.yaml"), false)
	s.Error(err)
}

func (s *ConfigTestSuite) TestLoad_InvalidYAML() {
	path := s.write("server: [")

	_, err := Load(path, true)
	s.Error(err)
}

func (s *ConfigTestSuite) TestDSN_ServiceKeyInjection() {
	tests := []struct {
		name string
		db   DatabaseConfig
		want string
	}{
		{
			name: "url without key is untouched",
			db:   DatabaseConfig{URL: "postgres://app@db:5432/reports"},
			want: "postgres://app@db:5432/reports",
		},
		{
			name: "key fills missing password",
			db:   DatabaseConfig{URL: "postgres://app@db:5432/reports", ServiceKey: "k"},
			want: "postgres://app:k@db:5432/reports",
		},
		{
			name: "existing password wins",
			db:   DatabaseConfig{URL: "postgres://app:pw@db:5432/reports", ServiceKey: "k"},
			want: "postgres://app:pw@db:5432/reports",
		},
		{
			name: "no user defaults to postgres",
			db:   DatabaseConfig{URL: "postgres://db:5432/reports", ServiceKey: "k"},
			want: "postgres://postgres:k@db:5432/reports",
		},
		{
			name: "keyword form gets password appended",
			db:   DatabaseConfig{URL: "host=db dbname=reports", ServiceKey: "k"},
			want: "host=db dbname=reports password=k",
		},
		{
			name: "discrete fields fall back to key",
			db:   DatabaseConfig{Host: "db", Port: 5432, User: "app", DBName: "reports", SSLMode: "disable", ServiceKey: "k"},
			want: "host=db port=5432 user=app password=k dbname=reports sslmode=disable",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.Equal(tt.want, tt.db.DSN())
		})
	}
}
