package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Engine    EngineConfig    `mapstructure:"engine"`
	Log       LogConfig       `mapstructure:"log"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

// EngineConfig configures the external metadata engine.
type EngineConfig struct {
	Candidates []string `mapstructure:"candidates"`
	Timeout    int      `mapstructure:"timeout"` // seconds
}

// TimeoutDuration returns the per-lookup engine timeout.
func (e EngineConfig) TimeoutDuration() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NATSConfig configures lookup event publishing. An empty URL disables it.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

var defaultCandidates = []string{
	`C:\Program Files\Wolfram Research\WolframScript\wolframscript.exe`,
	`C:\Program Files\Wolfram Research\Mathematica\14.0\wolframscript.exe`,
	"/usr/local/bin/wolframscript",
	"/Applications/WolframScript.app/Contents/MacOS/wolframscript",
	"wolframscript",
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("server.allow_origins", "*")
	v.SetDefault("engine.candidates", defaultCandidates)
	v.SetDefault("engine.timeout", 90)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "formhunt.lookup")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: FORMHUNT_ENGINE_TIMEOUT → engine.timeout
	v.SetEnvPrefix("FORMHUNT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Engine.Timeout <= 0 {
		errs = append(errs, "engine.timeout must be positive")
	}
	if c.Server.WriteTimeout > 0 && c.Engine.Timeout >= c.Server.WriteTimeout {
		errs = append(errs, fmt.Sprintf("engine.timeout (%ds) must be below server.write_timeout (%ds)", c.Engine.Timeout, c.Server.WriteTimeout))
	}
	if len(c.Engine.Candidates) == 0 {
		errs = append(errs, "engine.candidates must list at least one path or command")
	}
	if c.Telemetry.Enabled && c.Telemetry.OTLPEndpoint == "" {
		errs = append(errs, "telemetry.otlp_endpoint is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
