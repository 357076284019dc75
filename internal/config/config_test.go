package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"index": { "capacity": 8, "spaceResolution": 0.25 },
		"db": { "type": "postgres", "host": "10.0.0.1", "port": "5433" }
	}`)

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 8, viper.GetInt("index.capacity"))
	assert.Equal(t, 0.25, viper.GetFloat64("index.spaceResolution"))
	assert.Equal(t, "postgres", viper.GetString("db.type"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, 64, viper.GetInt("index.capacity"))
	assert.Equal(t, 0.1, viper.GetFloat64("index.spaceResolution"))
	assert.Equal(t, "1s", viper.GetString("index.timeResolution"))
	assert.Equal(t, false, viper.GetBool("index.autoStep"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("metrics.enabled"))
	assert.Equal(t, ":9464", viper.GetString("metrics.listen"))
	assert.Equal(t, "sqlite", viper.GetString("db.type"))
	assert.Equal(t, "spacetime", viper.GetString("db.database"))
	assert.Equal(t, "index_stats", viper.GetString("influx.bucket"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")

	// defaults are registered even without a file
	assert.Equal(t, 64, GetIndexConfig().Capacity)
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetIndexConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetIndexConfig()
	assert.Equal(t, 64, cfg.Capacity)
	assert.Equal(t, 0.1, cfg.SpaceResolution)
	assert.Equal(t, time.Second, cfg.TimeResolution)
	assert.False(t, cfg.AutoStep)
}

func TestGetIndexConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"index": {
			"capacity": 3,
			"spaceResolution": 1,
			"timeResolution": "250ms",
			"autoStep": true
		}
	}`)))

	cfg := GetIndexConfig()
	assert.Equal(t, 3, cfg.Capacity)
	assert.Equal(t, 1.0, cfg.SpaceResolution)
	assert.Equal(t, 250*time.Millisecond, cfg.TimeResolution)
	assert.True(t, cfg.AutoStep)
}

func TestGetLoggingConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"logLevel": "warn",
		"graylog": { "enabled": true, "address": "graylog:12201" }
	}`)))

	cfg := GetLoggingConfig()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, "./logs", cfg.Dir)
	assert.True(t, cfg.GraylogEnabled)
	assert.Equal(t, "graylog:12201", cfg.GraylogAddress)
}

func TestGetOTelConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	cfg := GetOTelConfig()
	assert.Equal(t, false, cfg.Enabled)
	assert.Equal(t, "spacetime", cfg.ServiceName)
	assert.Equal(t, 5*time.Second, cfg.BatchTimeout)
	assert.Equal(t, "", cfg.Endpoint)
	assert.Equal(t, true, cfg.Insecure)
}

func TestGetOTelConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"otel": {
			"enabled": true,
			"serviceName": "my-service",
			"batchTimeout": "30s",
			"endpoint": "localhost:4317",
			"insecure": false
		}
	}`)))

	oc := GetOTelConfig()
	assert.Equal(t, true, oc.Enabled)
	assert.Equal(t, "my-service", oc.ServiceName)
	assert.Equal(t, 30*time.Second, oc.BatchTimeout)
	assert.Equal(t, "localhost:4317", oc.Endpoint)
	assert.Equal(t, false, oc.Insecure)
}

func TestGetMonitorConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"monitor": { "enabled": true, "interval": "2s" }
	}`)))

	cfg := GetMonitorConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestGetDatabaseConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"db": { "path": "/tmp/stats.db" }
	}`)))

	cfg := GetDatabaseConfig()
	assert.Equal(t, "sqlite", cfg.Type)
	assert.Equal(t, "/tmp/stats.db", cfg.Path)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "spacetime", cfg.Database)
}

func TestGetInfluxAndMetricsConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{
		"influx": { "enabled": true, "token": "secret" },
		"metrics": { "enabled": true, "listen": "127.0.0.1:9000" }
	}`)))

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "secret", ic.Token)
	assert.Equal(t, "http", ic.Protocol)
	assert.Equal(t, "8086", ic.Port)
	assert.Equal(t, "spacetime", ic.Org)
	assert.Equal(t, "index_stats", ic.Bucket)

	mc := GetMetricsConfig()
	assert.True(t, mc.Enabled)
	assert.Equal(t, "127.0.0.1:9000", mc.Listen)
}

func TestGetShellConfig(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))
	assert.Equal(t, 0, GetShellConfig().AsyncWrites)

	require.NoError(t, Load(writeConfig(t, `{ "shell": { "asyncWrites": 16 } }`)))
	assert.Equal(t, 16, GetShellConfig().AsyncWrites)
}
