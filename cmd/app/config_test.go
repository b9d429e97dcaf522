package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvKeyTransform_TopLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"INSTANCE_ID", "instance_id"},
		{"CONTROLLER", "controller"},
		{"ADDR", "addr"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_Controllers(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"CONTROLLERS_HTTP_ADDR", "controllers.http.addr"},
		{"CONTROLLERS_HTTP_READ_HEADER_TIMEOUT", "controllers.http.read_header_timeout"},
		{"CONTROLLERS_MODBUS_UNIT_ID", "controllers.modbus.unit_id"},
		{"CONTROLLERS_MQTT_BROKER_URL", "controllers.mqtt.broker_url"},
		{"CONTROLLERS_HTTP", "controllers_http"},   // not enough parts -> fallback
		{"CONTROLLERS__ADDR", "controllers..addr"}, // edge case
		{"controllers_HTTP_addr", "controllers.http.addr"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnvKeyTransform_FlatSections(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SERVICE_TITLE", "service.title"},
		{"LOG_LEVEL", "log.level"},
		{"LOG_FORMAT", "log.format"},
		{"METRICS_ENABLED", "metrics.enabled"},
		{"METRICS", "metrics"}, // not enough parts -> passthrough
		{"LOG", "log"},
	}

	for _, tt := range tests {
		got := envKeyTransform(tt.in)
		if got != tt.want {
			t.Fatalf("envKeyTransform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	def := Default()
	if cfg.Controllers.HTTP != def.Controllers.HTTP || cfg.Service != def.Service || cfg.Log != def.Log {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	p := writeFile(t, "config.yaml", `
instance_id: lab7
service:
  title: Steam tables
controllers:
  http:
    addr: ":9090"
    shutdown_timeout: 2s
  mqtt:
    enabled: true
    qos: 1
  modbus:
    enabled: true
    unit_id: 17
log:
  level: debug
`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.InstanceID != "lab7" || cfg.Service.Title != "Steam tables" {
		t.Fatalf("unexpected identity %+v", cfg)
	}
	if cfg.Service.Version != "1.0.0" {
		t.Fatalf("default version lost: %q", cfg.Service.Version)
	}
	h := cfg.Controllers.HTTP
	if !h.Enabled || h.Addr != ":9090" || h.ShutdownTimeout != 2*time.Second || h.ReadHeaderTimeout != 5*time.Second {
		t.Fatalf("unexpected http config %+v", h)
	}
	if !cfg.Controllers.MQTT.Enabled || cfg.Controllers.MQTT.QoS != 1 || cfg.Controllers.MQTT.BrokerURL != "tcp://localhost:1883" {
		t.Fatalf("unexpected mqtt config %+v", cfg.Controllers.MQTT)
	}
	if cfg.Controllers.MODBUS.UnitID != 17 {
		t.Fatalf("unexpected modbus config %+v", cfg.Controllers.MODBUS)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected log config %+v", cfg.Log)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	p := writeFile(t, "config.json", `{"metrics": {"enabled": false}, "controllers": {"http": {"addr": "127.0.0.1:8001"}}}`)
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Metrics.Enabled || cfg.Controllers.HTTP.Addr != "127.0.0.1:8001" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(writeFile(t, "config.toml", "x = 1")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
	if _, err := LoadConfig(writeFile(t, "config.yaml", "controllers: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	p := writeFile(t, "config.yaml", "controllers:\n  http:\n    addr: \":9090\"\n")
	t.Setenv("THERMOPROPS_CONTROLLERS_HTTP_ADDR", ":7070")
	t.Setenv("THERMOPROPS_CONTROLLERS_MODBUS_UNIT_ID", "9")
	t.Setenv("THERMOPROPS_LOG_FORMAT", "text")
	t.Setenv("THERMOPROPS_CONTROLLERS_HTTP_READ_HEADER_TIMEOUT", "750ms")

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Controllers.HTTP.Addr != ":7070" {
		t.Fatalf("addr=%q want :7070", cfg.Controllers.HTTP.Addr)
	}
	if cfg.Controllers.MODBUS.UnitID != 9 {
		t.Fatalf("unit id=%d want 9", cfg.Controllers.MODBUS.UnitID)
	}
	if cfg.Log.Format != "text" {
		t.Fatalf("log format=%q want text", cfg.Log.Format)
	}
	if cfg.Controllers.HTTP.ReadHeaderTimeout != 750*time.Millisecond {
		t.Fatalf("read header timeout=%v", cfg.Controllers.HTTP.ReadHeaderTimeout)
	}
}

func TestApplyEnvOverrides_Port(t *testing.T) {
	cfg := Default()
	t.Setenv("PORT", "3000")
	ApplyEnvOverrides(&cfg)
	if cfg.Controllers.HTTP.Addr != ":3000" {
		t.Fatalf("addr=%q want :3000", cfg.Controllers.HTTP.Addr)
	}

	cfg = Default()
	t.Setenv("THERMOPROPS_CONTROLLERS_HTTP_ADDR", ":1234")
	ApplyEnvOverrides(&cfg)
	if cfg.Controllers.HTTP.Addr != ":8000" {
		t.Fatalf("explicit addr must win over PORT, got %q", cfg.Controllers.HTTP.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no controller", func(c *Config) { c.Controllers.HTTP.Enabled = false }},
		{"qos", func(c *Config) { c.Controllers.MQTT.QoS = 2 }},
		{"unit id zero", func(c *Config) { c.Controllers.MODBUS.Enabled = true; c.Controllers.MODBUS.UnitID = 0 }},
		{"unit id high", func(c *Config) { c.Controllers.MODBUS.Enabled = true; c.Controllers.MODBUS.UnitID = 248 }},
		{"mqtt without instance", func(c *Config) { c.Controllers.MQTT.Enabled = true; c.InstanceID = "" }},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
