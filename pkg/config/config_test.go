package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/teamspeak-exporter/pkg/config"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	def := config.NewDefaultConfig()

	cmd := &cobra.Command{Use: "teamspeak-exporter-test"}
	f := cmd.Flags()
	f.StringP("config", "c", "", "config file")
	f.String("ts3host", def.TeamSpeak.Host, "")
	f.Int("ts3port", def.TeamSpeak.Port, "")
	f.String("ts3username", def.TeamSpeak.Username, "")
	f.String("ts3password", def.TeamSpeak.Password, "")
	f.Duration("ts3timeout", def.TeamSpeak.Timeout, "")
	f.Int("metricsport", def.Server.Port, "")
	f.Duration("monitor.interval", def.Monitor.Interval, "")
	f.Bool("collectors.host.enable", def.Monitor.Collectors.Host.Enable, "")
	f.String("log.path", t.TempDir(), "")

	require.NoError(t, f.Parse(args))
	return cmd
}

func TestLoadConfigWithCli_Defaults(t *testing.T) {
	cfg, err := config.LoadConfigWithCli(newTestCommand(t))
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.TeamSpeak.Host)
	assert.Equal(t, 10011, cfg.TeamSpeak.Port)
	assert.Equal(t, "serveradmin", cfg.TeamSpeak.Username)
	assert.Equal(t, "", cfg.TeamSpeak.Password)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, ":8000", cfg.Server.Addr())
	assert.Equal(t, "localhost:10011", cfg.TeamSpeak.Address())
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval)
	assert.False(t, cfg.TeamSpeak.ShowPassword)
}

func TestLoadConfigWithCli_FlagsOverrideDefaults(t *testing.T) {
	cmd := newTestCommand(t,
		"--ts3host=b.example",
		"--ts3port=10022",
		"--ts3username=monitor",
		"--ts3password=secret",
		"--metricsport=9100",
		"--monitor.interval=30s",
		"--collectors.host.enable",
	)

	cfg, err := config.LoadConfigWithCli(cmd)
	require.NoError(t, err)

	assert.Equal(t, "b.example", cfg.TeamSpeak.Host)
	assert.Equal(t, 10022, cfg.TeamSpeak.Port)
	assert.Equal(t, "monitor", cfg.TeamSpeak.Username)
	assert.Equal(t, "secret", cfg.TeamSpeak.Password)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.True(t, cfg.Monitor.Collectors.Host.Enable)
}

func TestLoadConfigWithCli_EnvOverridesFlags(t *testing.T) {
	t.Setenv("TEAMSPEAK_HOST", "a.example")
	t.Setenv("TEAMSPEAK_PORT", "10033")
	t.Setenv("TEAMSPEAK_USERNAME", "env-user")
	t.Setenv("TEAMSPEAK_PASSWORD", "env-pass")
	t.Setenv("METRICS_PORT", "9200")

	cmd := newTestCommand(t,
		"--ts3host=b.example",
		"--ts3port=10022",
		"--ts3username=flag-user",
		"--ts3password=flag-pass",
		"--metricsport=9100",
	)

	cfg, err := config.LoadConfigWithCli(cmd)
	require.NoError(t, err)

	assert.Equal(t, "a.example", cfg.TeamSpeak.Host)
	assert.Equal(t, 10033, cfg.TeamSpeak.Port)
	assert.Equal(t, "env-user", cfg.TeamSpeak.Username)
	assert.Equal(t, "env-pass", cfg.TeamSpeak.Password)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoadConfigWithCli_EmptyPasswordEnvIsHonoured(t *testing.T) {
	t.Setenv("TEAMSPEAK_PASSWORD", "")

	cfg, err := config.LoadConfigWithCli(newTestCommand(t, "--ts3password=flag-pass"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.TeamSpeak.Password)
}

func TestLoadConfigWithCli_InvalidPort(t *testing.T) {
	tests := map[string]struct {
		env  string
		args []string
	}{
		"non numeric METRICS_PORT": {env: "not-a-port"},
		"METRICS_PORT out of range": {env: "70000"},
		"zero metricsport flag":     {args: []string{"--metricsport=0"}},
		"ts3port out of range":      {args: []string{"--ts3port=65536"}},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			if test.env != "" {
				t.Setenv("METRICS_PORT", test.env)
			}
			_, err := config.LoadConfigWithCli(newTestCommand(t, test.args...))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigWithCli_IntervalOutOfRange(t *testing.T) {
	_, err := config.LoadConfigWithCli(newTestCommand(t, "--monitor.interval=500ms"))
	assert.Error(t, err)
}

func TestLoadConfigWithCli_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := `
teamspeak:
  host: file.example
  timeout: 3s
monitor:
  interval: 20s
log:
  level: debug
  path: ` + dir + `
`
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := config.LoadConfigWithCli(newTestCommand(t, "-c", file))
		require.NoError(t, err)

		assert.Equal(t, "file.example", cfg.TeamSpeak.Host)
		assert.Equal(t, 3*time.Second, cfg.TeamSpeak.Timeout)
		assert.Equal(t, 20*time.Second, cfg.Monitor.Interval)
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("flag overrides file", func(t *testing.T) {
		cfg, err := config.LoadConfigWithCli(newTestCommand(t, "-c", file, "--ts3host=b.example"))
		require.NoError(t, err)

		assert.Equal(t, "b.example", cfg.TeamSpeak.Host)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadConfigWithCli(newTestCommand(t, "-c", filepath.Join(dir, "absent.yaml")))
		assert.Error(t, err)
	})
}

func TestFlagKey(t *testing.T) {
	assert.Equal(t, "teamspeak.host", config.FlagKey("ts3host"))
	assert.Equal(t, "server.port", config.FlagKey("metricsport"))
	assert.Equal(t, "server.read_timeout", config.FlagKey("server.read-timeout"))
	assert.Equal(t, "monitor.collectors.host.collect_per_core", config.FlagKey("collectors.host.per-core"))
	assert.Equal(t, "log.max_size", config.FlagKey("log.max-size"))
}

func TestZapLogConfig_ZapLevel(t *testing.T) {
	tests := map[string]struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		"debug":      {level: "debug", want: zapcore.DebugLevel},
		"upper case": {level: "WARN", want: zapcore.WarnLevel},
		"error":      {level: "error", want: zapcore.ErrorLevel},
		"fatal":      {level: "fatal", wantErr: true},
		"unknown":    {level: "verbose", wantErr: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.ZapLogConfig{Level: test.level}
			got, err := cfg.ZapLevel()
			if test.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.want, got)
		})
	}
}
