package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Agrid-Dev/thermoprops/internal/telemetry"
)

// EnvPrefix marks environment variables that override the config file.
const EnvPrefix = "THERMOPROPS_"

type Config struct {
	InstanceID  string              `koanf:"instance_id"`
	Service     ServiceConfig       `koanf:"service"`
	Controllers ControllersConfig   `koanf:"controllers"`
	Log         telemetry.LogConfig `koanf:"log"`
	Metrics     MetricsConfig       `koanf:"metrics"`
}

type ServiceConfig struct {
	Title   string `koanf:"title"`
	Version string `koanf:"version"`
}

type ControllersConfig struct {
	HTTP   HTTPConfig   `koanf:"http"`
	MQTT   MQTTConfig   `koanf:"mqtt"`
	MODBUS ModbusConfig `koanf:"modbus"`
}

type HTTPConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Addr              string        `koanf:"addr"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

type MQTTConfig struct {
	Enabled   bool   `koanf:"enabled"`
	BrokerURL string `koanf:"broker_url"`
	ClientID  string `koanf:"client_id"`
	BaseTopic string `koanf:"base_topic"`
	QoS       byte   `koanf:"qos"`
	Username  string `koanf:"username"`
	Password  string `koanf:"password"`
}

type ModbusConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
	UnitID  byte   `koanf:"unit_id"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

func Default() Config {
	return Config{
		InstanceID: "default",
		Service: ServiceConfig{
			Title:   "Thermo API",
			Version: "1.0.0",
		},
		Controllers: ControllersConfig{
			HTTP: HTTPConfig{
				Enabled:           true,
				Addr:              ":8000",
				ReadHeaderTimeout: 5 * time.Second,
				ShutdownTimeout:   5 * time.Second,
			},
			MQTT: MQTTConfig{
				BrokerURL: "tcp://localhost:1883",
			},
			MODBUS: ModbusConfig{
				Addr:   "127.0.0.1:1502",
				UnitID: 1,
			},
		},
		Log: telemetry.LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// LoadConfig layers defaults, the config file and THERMOPROPS_* environment
// variables, in that order. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := loadFile(k, path); err != nil {
			return Config{}, err
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return envKeyTransform(strings.TrimPrefix(key, EnvPrefix)), value
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Config file missing → use defaults
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var parser koanf.Parser
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config extension %q", ext)
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("parse %s: %w", ext, err)
	}
	return nil
}

// Sections whose keys are one level deep: LOG_LEVEL → log.level.
var flatSections = map[string]bool{
	"service": true,
	"log":     true,
	"metrics": true,
}

// envKeyTransform maps an unprefixed environment variable name onto a
// koanf key path. Controller keys are three levels deep
// (CONTROLLERS_HTTP_ADDR → controllers.http.addr); anything else that does
// not name a known section is only lowercased.
func envKeyTransform(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "_")

	switch {
	case parts[0] == "controllers" && len(parts) >= 3:
		return parts[0] + "." + parts[1] + "." + strings.Join(parts[2:], "_")
	case flatSections[parts[0]] && len(parts) >= 2:
		return parts[0] + "." + strings.Join(parts[1:], "_")
	default:
		return s
	}
}

// ApplyEnvOverrides honours PORT (common in containers) unless the HTTP
// address was set explicitly.
func ApplyEnvOverrides(cfg *Config) {
	if os.Getenv(EnvPrefix+"CONTROLLERS_HTTP_ADDR") != "" {
		return
	}
	if v := os.Getenv("PORT"); v != "" {
		// listen on all interfaces on that port
		cfg.Controllers.HTTP.Addr = ":" + v
	}
}

func (c Config) Validate() error {
	var errs []error
	ctrl := c.Controllers
	if !ctrl.HTTP.Enabled && !ctrl.MQTT.Enabled && !ctrl.MODBUS.Enabled {
		errs = append(errs, errors.New("at least one controller must be enabled"))
	}
	if ctrl.HTTP.Enabled && ctrl.HTTP.Addr == "" {
		errs = append(errs, errors.New("controllers.http.addr is required"))
	}
	if ctrl.MQTT.Enabled && c.InstanceID == "" {
		errs = append(errs, errors.New("instance_id is required by the mqtt controller"))
	}
	if ctrl.MQTT.QoS > 1 {
		errs = append(errs, fmt.Errorf("controllers.mqtt.qos must be 0 or 1, got %d", ctrl.MQTT.QoS))
	}
	if ctrl.MODBUS.Enabled && (ctrl.MODBUS.UnitID == 0 || ctrl.MODBUS.UnitID > 247) {
		errs = append(errs, fmt.Errorf("controllers.modbus.unit_id must be in 1..247, got %d", ctrl.MODBUS.UnitID))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/', got %q", c.Metrics.Path))
	}
	return errors.Join(errs...)
}
