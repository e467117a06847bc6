package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"

	"github.com/vango-dev/dnd/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "dnd.json"

	// TOMLConfigFileName is the alternative TOML configuration file.
	TOMLConfigFileName = "dnd.toml"

	// DefaultPort is the default server port.
	DefaultPort = 3100

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultPath is the WebSocket endpoint path.
	DefaultPath = "/dnd"

	// DefaultPayloadFormat is the data transfer key the payload is stored under.
	DefaultPayloadFormat = "Text"

	// DefaultEffectAllowed is used when no effect-allowed expression is bound.
	DefaultEffectAllowed = "move"

	// DefaultDraggingClass is added synchronously at dragstart.
	DefaultDraggingClass = "dragging"

	// DefaultDraggingSourceClass is added one turn after dragstart.
	DefaultDraggingSourceClass = "dragging-source"

	// DefaultEventRate is the per-session event rate limit.
	DefaultEventRate = 200

	// DefaultEventBurst is the per-session event burst.
	DefaultEventBurst = 100
)

// effectAllowedValues is the platform's effectAllowed enumeration.
var effectAllowedValues = map[string]bool{
	"none": true, "copy": true, "copyLink": true, "copyMove": true,
	"link": true, "linkMove": true, "move": true, "all": true,
	"uninitialized": true,
}

// Config represents the complete dnd.json configuration.
type Config struct {
	// Server contains WebSocket server settings.
	Server ServerConfig `json:"server,omitempty" toml:"server,omitempty"`

	// Drag contains drag source defaults.
	Drag DragConfig `json:"drag,omitempty" toml:"drag,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" toml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty" toml:"tracing,omitempty"`

	configPath string
}

// ServerConfig contains WebSocket server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" toml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" toml:"port,omitempty"`

	// Path is the WebSocket endpoint path.
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	// ReadTimeout is the idle read deadline for a session (e.g. "60s").
	ReadTimeout string `json:"readTimeout,omitempty" toml:"readTimeout,omitempty"`

	// WriteTimeout is the deadline for writing one frame (e.g. "10s").
	WriteTimeout string `json:"writeTimeout,omitempty" toml:"writeTimeout,omitempty"`

	// AllowedOrigins restricts WebSocket upgrades. Empty allows same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" toml:"allowedOrigins,omitempty"`

	// EventRate is the sustained client events per second per session.
	// Negative disables the limit.
	EventRate float64 `json:"eventRate,omitempty" toml:"eventRate,omitempty"`

	// EventBurst is the number of events a session may send at once.
	EventBurst int `json:"eventBurst,omitempty" toml:"eventBurst,omitempty"`
}

// DragConfig contains drag source defaults.
type DragConfig struct {
	// PayloadFormat is the data transfer key for the serialized payload.
	PayloadFormat string `json:"payloadFormat,omitempty" toml:"payloadFormat,omitempty"`

	// EffectAllowed is the default effectAllowed value.
	EffectAllowed string `json:"effectAllowed,omitempty" toml:"effectAllowed,omitempty"`

	// DraggingClass is the class applied while dragging.
	DraggingClass string `json:"draggingClass,omitempty" toml:"draggingClass,omitempty"`

	// DraggingSourceClass is the deferred class applied to the source element.
	DraggingSourceClass string `json:"draggingSourceClass,omitempty" toml:"draggingSourceClass,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled mounts the metrics endpoint.
	Enabled bool `json:"enabled" toml:"enabled"`

	// Path is the metrics endpoint path.
	Path string `json:"path,omitempty" toml:"path,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" toml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the name passed to otel.Tracer.
	TracerName string `json:"tracerName,omitempty" toml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: true},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for dnd.json, then dnd.toml.
func Load(dir string) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLConfigFileName)
	if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); os.IsNotExist(err) {
		if _, err := os.Stat(tomlPath); err == nil {
			return LoadFile(tomlPath)
		}
	}
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").
				WithDetail("No dnd.json found in " + filepath.Dir(path)).
				WithSuggestion("Create dnd.json or run without --config to use defaults")
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := New()
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid TOML")
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that dnd.json is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path, as TOML when the
// path ends in .toml and as JSON otherwise.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isTOML(path) {
		data, err = toml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "60s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.EventRate == 0 {
		c.Server.EventRate = DefaultEventRate
	}
	if c.Server.EventBurst == 0 {
		c.Server.EventBurst = DefaultEventBurst
	}

	// Drag
	if c.Drag.PayloadFormat == "" {
		c.Drag.PayloadFormat = DefaultPayloadFormat
	}
	if c.Drag.EffectAllowed == "" {
		c.Drag.EffectAllowed = DefaultEffectAllowed
	}
	if c.Drag.DraggingClass == "" {
		c.Drag.DraggingClass = DefaultDraggingClass
	}
	if c.Drag.DraggingSourceClass == "" {
		c.Drag.DraggingSourceClass = DefaultDraggingSourceClass
	}

	// Metrics
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "dnd"
	}

	// Tracing
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "dnd"
	}
}

// Validate checks if the configuration is valid. Every problem found is
// reported; use multierr.Errors to list them.
func (c *Config) Validate() error {
	var errs error
	invalid := func(detail string) *errors.DndError {
		return errors.New("E122").WithDetail(detail)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = multierr.Append(errs, invalid("Port must be between 0 and 65535"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = multierr.Append(errs, invalid("server.path must start with '/'"))
	}
	if _, err := time.ParseDuration(c.Server.ReadTimeout); err != nil {
		errs = multierr.Append(errs, invalid("server.readTimeout is not a duration: "+c.Server.ReadTimeout))
	}
	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		errs = multierr.Append(errs, invalid("server.writeTimeout is not a duration: "+c.Server.WriteTimeout))
	}
	if c.Server.EventRate > 0 && c.Server.EventBurst < 1 {
		errs = multierr.Append(errs, invalid("server.eventBurst must be at least 1"))
	}
	if !effectAllowedValues[c.Drag.EffectAllowed] {
		errs = multierr.Append(errs,
			invalid("drag.effectAllowed is not a valid effectAllowed value: "+c.Drag.EffectAllowed).
				WithSuggestion("Use one of none, copy, copyLink, copyMove, link, linkMove, move, all"))
	}
	if c.Drag.DraggingClass == c.Drag.DraggingSourceClass {
		errs = multierr.Append(errs, invalid("drag.draggingClass and drag.draggingSourceClass must differ"))
	}
	return errs
}

// Address returns the listen address for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ReadTimeout returns the parsed read timeout, or 60s when invalid.
func (c *Config) ReadTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, 60*time.Second)
}

// WriteTimeout returns the parsed write timeout, or 10s when invalid.
func (c *Config) WriteTimeout() time.Duration {
	return parseDurationOr(c.Server.WriteTimeout, 10*time.Second)
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
