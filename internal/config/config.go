// Package config loads the service configuration from an optional YAML file
// and ADMINQUERY_ prefixed environment variables.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/theplant/adminquery/internal/db"
)

const EnvPrefix = "ADMINQUERY"

type Config struct {
	HTTP     HTTPConfig    `mapstructure:"http"`
	Database db.Config     `mapstructure:"database"`
	Log      LogConfig     `mapstructure:"log"`
	List     ListConfig    `mapstructure:"list"`
	Filters  FiltersConfig `mapstructure:"filters"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ListConfig bounds list requests. MaxLimit 0 disables the cap.
type ListConfig struct {
	DefaultLimit int `mapstructure:"default_limit"`
	MaxLimit     int `mapstructure:"max_limit"`
}

// FiltersConfig points at an optional YAML file whose entities replace the
// embedded filter tables.
type FiltersConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.cors_origins", []string{"*"})
	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 15*time.Second)
	v.SetDefault("http.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("list.default_limit", 10)
	v.SetDefault("list.max_limit", 100)

	v.SetDefault("filters.path", "")
}

// Load reads path when given. Without a path, config.yaml in the working
// directory is used if present. Environment variables win over the file,
// e.g. ADMINQUERY_DATABASE_DSN sets database.dsn.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.List.DefaultLimit < 0 {
		return errors.New("list.default_limit cannot be negative")
	}
	if c.List.MaxLimit < 0 {
		return errors.New("list.max_limit cannot be negative")
	}
	if c.List.MaxLimit > 0 && c.List.DefaultLimit > c.List.MaxLimit {
		return errors.Errorf("list.default_limit %d exceeds list.max_limit %d", c.List.DefaultLimit, c.List.MaxLimit)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errors.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
