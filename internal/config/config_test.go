package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"device-configurator/internal/protocol"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.Serial.BaudRate)
	assert.Equal(t, 8, cfg.Serial.DataBits)
	assert.Equal(t, "none", cfg.Serial.Parity)
	assert.False(t, cfg.Server.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, protocol.DefaultTiming(), cfg.ProtocolTiming())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB3
  baud_rate: 9600
  timeout: 500ms
timing:
  boot_wait: 3s
server:
  enabled: true
  port: "9000"
app:
  environment: test
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB3", cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 3*time.Second, cfg.ProtocolTiming().BootWait)
	assert.Equal(t, 500*time.Millisecond, cfg.ProtocolTiming().ReadTimeout)
	assert.Equal(t, protocol.DefaultResetPulse, cfg.ProtocolTiming().ResetPulse)
	assert.Equal(t, "127.0.0.1:9000", cfg.GetServerAddr())
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("DEVICE_CONFIGURATOR_SERIAL_PORT", "/dev/ttyACM0")
	t.Setenv("DEVICE_CONFIGURATOR_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"data bits":   "serial:\n  data_bits: 9\n",
		"stop bits":   "serial:\n  stop_bits: 3\n",
		"parity":      "serial:\n  parity: sometimes\n",
		"baud rate":   "serial:\n  baud_rate: 0\n",
		"environment": "app:\n  environment: moon\n",
		"log level":   "logging:\n  level: loud\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSerialFor(t *testing.T) {
	cfg := &Config{Serial: SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 115200, DataBits: 8, StopBits: 1}}

	assert.Equal(t, "/dev/ttyUSB0", cfg.SerialFor("").Port)
	assert.Equal(t, "/dev/ttyS1", cfg.SerialFor("/dev/ttyS1").Port)
	assert.Equal(t, 115200, cfg.SerialFor("/dev/ttyS1").BaudRate)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "cfg", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=cfg sslmode=disable", db.DSN())
}
