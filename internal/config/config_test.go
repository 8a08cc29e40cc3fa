package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mathgym.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func load(t *testing.T, configFile string) (*Config, error) {
	t.Helper()
	loader, err := NewConfigLoader(configFile)
	require.NoError(t, err)
	return loader.Load()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:5000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			MaxOpenConns: 10,
		},
		Auth: AuthConfig{
			TokenTTL:      24 * time.Hour,
			BcryptCost:    10,
			AdminUsername: "Developer",
			AdminPassword: "devpassword",
			AdminStars:    9999,
		},
		Scores: ScoresConfig{
			Policy:           "last-write",
			LeaderboardLimit: 50,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "mathgym",
		},
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name:          "empty file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "custom values",
			configContent: `server:
  addr: 0.0.0.0:8080
  read_timeout: 3s
  cors_origins: ["http://localhost:3000"]
database:
  driver: postgres
  dsn: postgres://mathgym@localhost/mathgym
auth:
  token_secret: 0123456789abcdef0123
  token_ttl: 1h
scores:
  policy: monotonic
  leaderboard_limit: 10
telemetry:
  endpoint: localhost:4318
  insecure: true
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Server.Addr = "0.0.0.0:8080"
				cfg.Server.ReadTimeout = 3 * time.Second
				cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
				cfg.Database.Driver = "postgres"
				cfg.Database.DSN = "postgres://mathgym@localhost/mathgym"
				cfg.Auth.TokenSecret = "0123456789abcdef0123"
				cfg.Auth.TokenTTL = time.Hour
				cfg.Scores.Policy = "monotonic"
				cfg.Scores.LeaderboardLimit = 10
				cfg.Telemetry.Endpoint = "localhost:4318"
				cfg.Telemetry.Insecure = true
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  addr: [[[
`,
			wantErrorContains: []string{
				"configuration file found but could not be read",
			},
		},
		{
			name: "unknown policy",
			configContent: `scores:
  policy: highest
`,
			wantErrorContains: []string{"invalid configuration", "policy"},
		},
		{
			name: "server database needs dsn",
			configContent: `database:
  driver: mysql
`,
			wantErrorContains: []string{"invalid configuration", "dsn"},
		},
		{
			name: "short token secret",
			configContent: `auth:
  token_secret: short
`,
			wantErrorContains: []string{"token_secret"},
		},
		{
			name: "bad address",
			configContent: `server:
  addr: not an address
`,
			wantErrorContains: []string{"server.addr must be a host:port address"},
		},
		{
			name:              "admin password longer than bcrypt allows",
			configContent:     "auth:\n  admin_password: " + strings.Repeat("a", 73) + "\n",
			wantErrorContains: []string{"auth.admin_password must be at most 72 bytes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(t, writeConfig(t, tt.configContent))
			if len(tt.wantErrorContains) > 0 {
				require.Error(t, err)
				for _, s := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), s)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestLoadWithoutConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MATHGYM_CONFIG", "")

	got, err := load(t, "")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), got)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MATHGYM_SERVER_ADDR", "localhost:9000")
	t.Setenv("MATHGYM_SCORES_POLICY", "monotonic")
	t.Setenv("MATHGYM_AUTH_ADMIN_STARS", "5")

	got, err := load(t, writeConfig(t, "server:\n  addr: localhost:7000\n"))
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", got.Server.Addr, "env wins over file")
	assert.Equal(t, "monotonic", got.Scores.Policy)
	assert.Equal(t, int64(5), got.Auth.AdminStars)
}

func TestLoadConfigFromEnvPath(t *testing.T) {
	path := writeConfig(t, "scores:\n  leaderboard_limit: 7\n")
	t.Setenv("MATHGYM_CONFIG", path)

	got, err := load(t, "")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Scores.LeaderboardLimit)
}
