// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"device-configurator/internal/protocol"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// DEVICE_CONFIGURATOR_SERIAL_PORT=/dev/ttyACM0
const EnvPrefix = "DEVICE_CONFIGURATOR"

// Config represents the application configuration
type Config struct {
	Serial   SerialConfig   `mapstructure:"serial"`
	Timing   TimingConfig   `mapstructure:"timing"`
	Spec     SpecConfig     `mapstructure:"spec"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	App      AppConfig      `mapstructure:"app"`
}

// SerialConfig represents the serial link to the device
type SerialConfig struct {
	Port     string        `mapstructure:"port"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TimingConfig represents the delays of the reset handshake and of each
// command exchange
type TimingConfig struct {
	ResetPreDelay time.Duration `mapstructure:"reset_pre_delay"`
	ResetPulse    time.Duration `mapstructure:"reset_pulse"`
	ResetSettle   time.Duration `mapstructure:"reset_settle"`
	BootWait      time.Duration `mapstructure:"boot_wait"`
	PreCommand    time.Duration `mapstructure:"pre_command"`
	PostCommand   time.Duration `mapstructure:"post_command"`
}

// SpecConfig selects the device specification file; empty uses the
// built-in definitions
type SpecConfig struct {
	File string `mapstructure:"file"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	DBName       string        `mapstructure:"dbname"`
	SSLMode      string        `mapstructure:"sslmode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	MaxLifetime  time.Duration `mapstructure:"max_lifetime"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables. An empty
// path searches the default locations; a missing file there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/device-configurator")
	}

	// Environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	timing := protocol.DefaultTiming()

	// Serial defaults
	v.SetDefault("serial.port", "")
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "none")
	v.SetDefault("serial.timeout", timing.ReadTimeout.String())

	// Timing defaults
	v.SetDefault("timing.reset_pre_delay", timing.ResetPreDelay.String())
	v.SetDefault("timing.reset_pulse", timing.ResetPulse.String())
	v.SetDefault("timing.reset_settle", timing.ResetSettle.String())
	v.SetDefault("timing.boot_wait", timing.BootWait.String())
	v.SetDefault("timing.pre_command", timing.PreCommand.String())
	v.SetDefault("timing.post_command", timing.PostCommand.String())

	v.SetDefault("spec.file", "")

	// Server defaults
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8084")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.allowed_origins", []string{})

	// Database defaults
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "device_configurator")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_lifetime", "5m")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// App defaults
	v.SetDefault("app.name", "device-configurator")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive")
	}
	switch config.Serial.DataBits {
	case 5, 6, 7, 8:
	default:
		return fmt.Errorf("serial.data_bits must be one of 5, 6, 7, 8")
	}
	switch config.Serial.StopBits {
	case 1, 2:
	default:
		return fmt.Errorf("serial.stop_bits must be 1 or 2")
	}
	if !contains([]string{"none", "odd", "even", "mark", "space"}, strings.ToLower(config.Serial.Parity)) {
		return fmt.Errorf("serial.parity must be one of: none, odd, even, mark, space")
	}

	if config.Server.Enabled && config.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if config.Database.Enabled && config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}

	validEnvs := []string{"development", "staging", "production", "test"}
	if !contains(validEnvs, config.App.Environment) {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	if !contains(validLevels, config.Logging.Level) {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// ProtocolTiming returns the handshake and command delays
func (c *Config) ProtocolTiming() protocol.Timing {
	return protocol.Timing{
		ResetPreDelay: c.Timing.ResetPreDelay,
		ResetPulse:    c.Timing.ResetPulse,
		ResetSettle:   c.Timing.ResetSettle,
		BootWait:      c.Timing.BootWait,
		PreCommand:    c.Timing.PreCommand,
		PostCommand:   c.Timing.PostCommand,
		ReadTimeout:   c.Serial.Timeout,
	}
}

// SerialFor returns the serial settings for the given port, falling back to
// the configured port when name is empty
func (c *Config) SerialFor(name string) protocol.SerialConfig {
	if name == "" {
		name = c.Serial.Port
	}
	return protocol.SerialConfig{
		Port:     name,
		BaudRate: c.Serial.BaudRate,
		DataBits: c.Serial.DataBits,
		StopBits: c.Serial.StopBits,
		Parity:   c.Serial.Parity,
		Timeout:  c.Serial.Timeout,
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.App.Environment == "development"
}
