package config

import "time"

// Config is the root configuration for the relay.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Chat     ChatConfig     `yaml:"chat"`
	Liveness LivenessConfig `yaml:"liveness"`
	URLCheck URLCheckConfig `yaml:"url_check"`
}

type ServerConfig struct {
	Host      string `yaml:"host" validate:"required"`
	Port      int    `yaml:"port" validate:"min=1,max=65535"`
	PublicURL string `yaml:"public_url" validate:"omitempty,url"`
	LogLevel  string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=json console"`
	LogFile   string `yaml:"log_file"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// ChatConfig points at the external chat gateway used for deliveries,
// admin warnings and presence.
type ChatConfig struct {
	GatewayURL  string        `yaml:"gateway_url" validate:"required,url"`
	Token       string        `yaml:"token"`
	Admins      []string      `yaml:"admins"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

type LivenessConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type URLCheckConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:      "127.0.0.1",
			Port:      8402,
			LogLevel:  "info",
			LogFormat: "json",
		},
		Database: DatabaseConfig{
			Path: "~/.config/gitops/gitops.db",
		},
		Chat: ChatConfig{
			GatewayURL:  "http://127.0.0.1:8065",
			SendTimeout: 10 * time.Second,
		},
		Liveness: LivenessConfig{
			Interval: 10 * time.Second,
			Timeout:  3 * time.Second,
		},
		URLCheck: URLCheckConfig{
			Timeout: 5 * time.Second,
		},
	}
}
