package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"report_explorer/internal/explorer"
)

type Config struct {
	APIURL  string        `mapstructure:"api_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// loadConfig resolves settings from flags, EXPLORER_* environment variables
// and an optional ~/.report-explorer/config.yaml, in that order.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*Config, error) {
	v.SetDefault("api_url", explorer.DefaultBaseURL)
	v.SetDefault("timeout", 30*time.Second)

	// Environment variable overrides
	v.SetEnvPrefix("EXPLORER")
	v.AutomaticEnv()
	_ = v.BindEnv("api_url", "EXPLORER_API_URL")
	_ = v.BindEnv("timeout", "EXPLORER_TIMEOUT")

	if f := flags.Lookup("api-url"); f != nil {
		_ = v.BindPFlag("api_url", f)
	}
	if f := flags.Lookup("timeout"); f != nil {
		_ = v.BindPFlag("timeout", f)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".report-explorer"))
	}

	// Read config file if exists (ignore error if not found)
	_ = v.ReadInConfig()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
