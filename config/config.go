// Package config loads the bridge host configuration from a TOML file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig defines the HTTP side of the host. An empty AllowedOrigins
// accepts only same-origin WebSocket upgrades and clients sending no Origin.
type ServerConfig struct {
	Listen         string   `toml:"listen"`
	BridgePath     string   `toml:"bridgePath"`
	MetricsPath    string   `toml:"metricsPath"`
	AllowedOrigins []string `toml:"allowedOrigins"`
}

// AMQPConfig enables a bridge session over a broker when URL is set.
type AMQPConfig struct {
	URL string `toml:"url"`
}

// MessengerConfig tunes every messenger the host creates.
type MessengerConfig struct {
	RequestTimeout    Duration `toml:"requestTimeout"`
	HandlerThroughput uint     `toml:"handlerThroughput"`
}

// WalletConfig is the static wallet state served to dapps.
type WalletConfig struct {
	ChainID  string   `toml:"chainId"`
	Accounts []string `toml:"accounts"`
}

type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type Config struct {
	Name      string          `toml:"name"`
	Server    ServerConfig    `toml:"server"`
	AMQP      AMQPConfig      `toml:"amqp"`
	Messenger MessengerConfig `toml:"messenger"`
	Wallet    WalletConfig    `toml:"wallet"`
	Logging   LoggingConfig   `toml:"logging"`
}

func Default() *Config {
	return &Config{
		Name: "dapp-bridge",
		Server: ServerConfig{
			Listen:      ":8080",
			BridgePath:  "/bridge",
			MetricsPath: "/metrics",
		},
		Wallet: WalletConfig{
			ChainID: "0x1",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path on top of Default. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Name == "" {
		return fmt.Errorf("name required")
	}
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen required")
	}
	if cfg.Server.BridgePath == "" || cfg.Server.BridgePath[0] != '/' {
		return fmt.Errorf("server.bridgePath must start with /")
	}
	if cfg.Server.MetricsPath != "" && cfg.Server.MetricsPath[0] != '/' {
		return fmt.Errorf("server.metricsPath must start with /")
	}
	if cfg.Server.MetricsPath == cfg.Server.BridgePath {
		return fmt.Errorf("server.metricsPath and server.bridgePath must differ")
	}
	if cfg.Messenger.RequestTimeout.Duration < 0 {
		return fmt.Errorf("messenger.requestTimeout must not be negative")
	}
	if cfg.Wallet.ChainID == "" {
		return fmt.Errorf("wallet.chainId required")
	}
	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// Logger builds the zap logger described by the logging section.
func (cfg LoggingConfig) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
