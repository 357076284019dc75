package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the name of the JSON config file looked up in the config directory.
const FileName = "spacetime.cfg.json"

// IndexConfig holds the construction parameters of the spatio-temporal index
type IndexConfig struct {
	Capacity        int           `json:"capacity" mapstructure:"capacity"`
	SpaceResolution float64       `json:"spaceResolution" mapstructure:"spaceResolution"`
	TimeResolution  time.Duration `json:"timeResolution" mapstructure:"timeResolution"`
	AutoStep        bool          `json:"autoStep" mapstructure:"autoStep"`
}

// LoggingConfig holds log level, log directory and remote log sink settings
type LoggingConfig struct {
	Level          string
	Dir            string
	GraylogEnabled bool
	GraylogAddress string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Listen  string `json:"listen" mapstructure:"listen"`
}

// MonitorConfig holds the periodic index sampling settings
type MonitorConfig struct {
	Enabled   bool          `json:"enabled" mapstructure:"enabled"`
	Interval  time.Duration `json:"interval" mapstructure:"interval"`
	BatchSize int           `json:"batchSize" mapstructure:"batchSize"`
}

// DatabaseConfig holds the sample store connection settings
type DatabaseConfig struct {
	Type     string `json:"type" mapstructure:"type"` // "sqlite" or "postgres"
	Path     string `json:"path" mapstructure:"path"` // sqlite file, empty for in-memory
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// ShellConfig holds the interactive shell settings
type ShellConfig struct {
	AsyncWrites int `json:"asyncWrites" mapstructure:"asyncWrites"` // write queue size, 0 runs writes inline
}

// SetDefaults registers default values for every known key.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("index.capacity", 64)
	viper.SetDefault("index.spaceResolution", 0.1)
	viper.SetDefault("index.timeResolution", "1s")
	viper.SetDefault("index.autoStep", false)

	viper.SetDefault("shell.asyncWrites", 0)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "spacetime")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", ":9464")

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.interval", "10s")
	viper.SetDefault("monitor.batchSize", 50)

	viper.SetDefault("db.type", "sqlite")
	viper.SetDefault("db.path", "")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "spacetime")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "spacetime")
	viper.SetDefault("influx.bucket", "index_stats")
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetIndexConfig returns the index configuration.
func GetIndexConfig() IndexConfig {
	return IndexConfig{
		Capacity:        viper.GetInt("index.capacity"),
		SpaceResolution: viper.GetFloat64("index.spaceResolution"),
		TimeResolution:  viper.GetDuration("index.timeResolution"),
		AutoStep:        viper.GetBool("index.autoStep"),
	}
}

// GetLoggingConfig returns the logging configuration.
func GetLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level:          viper.GetString("logLevel"),
		Dir:            viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetMetricsConfig returns the Prometheus endpoint configuration.
func GetMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled: viper.GetBool("metrics.enabled"),
		Listen:  viper.GetString("metrics.listen"),
	}
}

// GetMonitorConfig returns the index monitor configuration.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:   viper.GetBool("monitor.enabled"),
		Interval:  viper.GetDuration("monitor.interval"),
		BatchSize: viper.GetInt("monitor.batchSize"),
	}
}

// GetDatabaseConfig returns the sample store configuration.
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Type:     viper.GetString("db.type"),
		Path:     viper.GetString("db.path"),
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetShellConfig returns the interactive shell configuration.
func GetShellConfig() ShellConfig {
	return ShellConfig{
		AsyncWrites: viper.GetInt("shell.asyncWrites"),
	}
}
