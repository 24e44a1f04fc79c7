package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Dispatch.RecoverPanics)
	assert.Equal(t, "error", cfg.Dispatch.OnDuplicate)
	assert.Equal(t, 256, cfg.Devtools.HistorySize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"queue", func(c *Config) { c.Dispatch.QueueCapacity = -1 }, "dispatch.queue_capacity"},
		{"duplicate", func(c *Config) { c.Dispatch.OnDuplicate = "merge" }, "dispatch.on_duplicate"},
		{"script", func(c *Config) { c.Middleware.Scripts = []string{" "} }, "middleware.scripts"},
		{"history", func(c *Config) { c.Devtools.HistorySize = -5 }, "devtools.history_size"},
		{"telemetry", func(c *Config) {
			c.Telemetry.Enabled = true
			c.Telemetry.ServiceName = ""
		}, "telemetry.service_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.ErrorIs(t, err, ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestValidate_JoinsAllFailures(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, 2, strings.Count(err.Error(), "must be"))
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"), WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("", WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "purdah.toml", `
[log]
level = "debug"
format = "json"

[dispatch]
recover_panics = false
queue_capacity = 64
on_duplicate = "replace"

[middleware]
logging = false
scripts = ["a.lua", "b.lua"]

[devtools]
record = true
history_size = 10
`)

	cfg, err := Load(path, WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.Dispatch.RecoverPanics)
	assert.Equal(t, 64, cfg.Dispatch.QueueCapacity)
	assert.Equal(t, "replace", cfg.Dispatch.OnDuplicate)
	assert.False(t, cfg.Middleware.Logging)
	assert.Equal(t, []string{"a.lua", "b.lua"}, cfg.Middleware.Scripts)
	assert.True(t, cfg.Devtools.Record)
	assert.Equal(t, 10, cfg.Devtools.HistorySize)
	assert.Equal(t, "purdah", cfg.Telemetry.ServiceName, "unset keys keep defaults")
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "purdah.yaml", `
log:
  level: warn
dispatch:
  queue_capacity: 8
telemetry:
  enabled: true
  endpoint: collector:4318
  service_name: demo
`)

	cfg, err := Load(path, WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Dispatch.QueueCapacity)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
	assert.Equal(t, "demo", cfg.Telemetry.ServiceName)
}

func TestLoad_EmptyYAML(t *testing.T) {
	path := writeFile(t, "purdah.yml", "")
	cfg, err := Load(path, WithoutEnv())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ParseErrors(t *testing.T) {
	var perr *ParseError

	path := writeFile(t, "bad.toml", "[log\nlevel=")
	_, err := Load(path, WithoutEnv())
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, path, perr.Path)

	path = writeFile(t, "unknown.toml", "[log]\ncolour = \"red\"\n")
	_, err = Load(path, WithoutEnv())
	assert.ErrorAs(t, err, &perr)

	path = writeFile(t, "unknown.yaml", "log:\n  colour: red\n")
	_, err = Load(path, WithoutEnv())
	assert.ErrorAs(t, err, &perr)

	path = writeFile(t, "purdah.json", "{}")
	_, err = Load(path, WithoutEnv())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := writeFile(t, "purdah.toml", "[log]\nlevel = \"chatty\"\n")
	_, err := Load(path, WithoutEnv())
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "purdah.toml", "[log]\nlevel = \"debug\"\n")

	cfg, err := Load(path, WithEnvironment(map[string]string{
		"PURDAH_LOG_LEVEL":               "error",
		"PURDAH_DISPATCH_QUEUE_CAPACITY": "32",
		"PURDAH_DISPATCH_RECOVER_PANICS": "false",
		"PURDAH_MIDDLEWARE_SCRIPTS":      "x.lua,y.lua",
		"PURDAH_DEVTOOLS_RECORD":         "true",
		"UNRELATED":                      "1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, 32, cfg.Dispatch.QueueCapacity)
	assert.False(t, cfg.Dispatch.RecoverPanics)
	assert.Equal(t, []string{"x.lua", "y.lua"}, cfg.Middleware.Scripts)
	assert.True(t, cfg.Devtools.Record)
}

func TestLoad_BadEnv(t *testing.T) {
	_, err := Load("", WithEnvironment(map[string]string{
		"PURDAH_DISPATCH_QUEUE_CAPACITY": "lots",
	}))
	assert.ErrorContains(t, err, "parse env")
}
