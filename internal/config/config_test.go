package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	require.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Equal(t, 200*time.Millisecond, cfg.Database.SlowThreshold)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, 10, cfg.List.DefaultLimit)
	require.Equal(t, 100, cfg.List.MaxLimit)
	require.Empty(t, cfg.Filters.Path)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adminquery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
  shutdown_timeout: 3s
database:
  dsn: postgres://file
  slow_threshold: 1s
log:
  level: debug
  format: console
list:
  default_limit: 20
`), 0o600))

	t.Setenv("ADMINQUERY_DATABASE_DSN", "postgres://env")
	t.Setenv("ADMINQUERY_LIST_MAX_LIMIT", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	require.Equal(t, "postgres://env", cfg.Database.DSN)
	require.Equal(t, time.Second, cfg.Database.SlowThreshold)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, 20, cfg.List.DefaultLimit)
	require.Equal(t, 50, cfg.List.MaxLimit)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")

	t.Setenv("ADMINQUERY_LIST_DEFAULT_LIMIT", "500")
	_, err = Load("")
	require.ErrorContains(t, err, "list.default_limit 500 exceeds list.max_limit 100")
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Log: LogConfig{Format: "json"}, List: ListConfig{DefaultLimit: 10, MaxLimit: 100}},
		},
		{
			name: "max limit disabled",
			cfg:  Config{Log: LogConfig{Format: "console"}, List: ListConfig{DefaultLimit: 1000}},
		},
		{
			name:    "negative default limit",
			cfg:     Config{Log: LogConfig{Format: "json"}, List: ListConfig{DefaultLimit: -1}},
			wantErr: "list.default_limit cannot be negative",
		},
		{
			name:    "negative max limit",
			cfg:     Config{Log: LogConfig{Format: "json"}, List: ListConfig{MaxLimit: -1}},
			wantErr: "list.max_limit cannot be negative",
		},
		{
			name:    "unknown format",
			cfg:     Config{Log: LogConfig{Format: "xml"}},
			wantErr: `unknown log.format "xml"`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
