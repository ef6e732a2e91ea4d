package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"rates_go/internal/domain"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent identifies this client to the rate provider
	DefaultUserAgent = "rates_go/1.0 (+https://api.privatbank.ua)"

	// DefaultPrivatBankURL is the archive endpoint queried per date
	DefaultPrivatBankURL = "https://api.privatbank.ua/p24api/exchange_rates"
)

// Config는 애플리케이션의 모든 설정을 담습니다.
// LoadConfig로 로드된 후에 환경 변수를 통해 덮어씁니다.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Host           string `yaml:"host"`
		Port           int    `yaml:"port"`
		Path           string `yaml:"path"`
		ReadLimitBytes int64  `yaml:"read_limit_bytes"`
		WriteTimeoutMS int    `yaml:"write_timeout_ms"`
	} `yaml:"server"`

	API struct {
		PrivatBank struct {
			URL             string `yaml:"url"`
			FetchTimeoutSec int    `yaml:"fetch_timeout_sec"`
			MaxRetries      int    `yaml:"max_retries"`
			MaxParallel     int    `yaml:"max_parallel"`
		} `yaml:"privatbank"`
	} `yaml:"api"`

	ChatLog struct {
		Path       string `yaml:"path"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		Archive    bool   `yaml:"archive"` // mirror entries into the SQLite archive
	} `yaml:"chat_log"`

	Storage struct {
		Path string `yaml:"path"` // empty: per-OS user config dir
	} `yaml:"storage"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings used when no config file is present.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "rates_go"
	cfg.App.Version = "1.0.0"

	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080
	cfg.Server.Path = "/"
	cfg.Server.ReadLimitBytes = 4096
	cfg.Server.WriteTimeoutMS = 5000

	cfg.API.PrivatBank.URL = DefaultPrivatBankURL
	cfg.API.PrivatBank.FetchTimeoutSec = 10
	cfg.API.PrivatBank.MaxRetries = 2
	cfg.API.PrivatBank.MaxParallel = domain.MaxDays

	cfg.ChatLog.Path = "server-log.log"
	cfg.ChatLog.MaxSizeMB = 10
	cfg.ChatLog.MaxBackups = 3
	cfg.ChatLog.Archive = true

	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig는 설정 파일을 읽고 기본값 위에 파싱합니다.
// A missing file yields the defaults together with an error wrapping domain.ErrConfigNotFound.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		// .env and environment still apply on top of the defaults
		if err := finishConfig(cfg); err != nil {
			return nil, err
		}
		return cfg, fmt.Errorf("%s: %w", path, domain.ErrConfigNotFound)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := finishConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finishConfig(cfg *Config) error {
	// .env is optional; variables already set in the environment win
	_ = godotenv.Load()
	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &domain.ConfigError{Field: "server.port", Err: fmt.Errorf("out of range: %d", c.Server.Port)}
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return &domain.ConfigError{Field: "server.path", Err: fmt.Errorf("must start with /: %q", c.Server.Path)}
	}
	if c.Server.ReadLimitBytes <= 0 {
		return &domain.ConfigError{Field: "server.read_limit_bytes", Err: errors.New("must be positive")}
	}

	pb := c.API.PrivatBank
	if !strings.HasPrefix(pb.URL, "http://") && !strings.HasPrefix(pb.URL, "https://") {
		return &domain.ConfigError{Field: "api.privatbank.url", Err: fmt.Errorf("invalid URL: %s", pb.URL)}
	}
	if pb.FetchTimeoutSec <= 0 {
		return &domain.ConfigError{Field: "api.privatbank.fetch_timeout_sec", Err: errors.New("must be positive")}
	}
	if pb.MaxRetries < 0 {
		return &domain.ConfigError{Field: "api.privatbank.max_retries", Err: errors.New("must not be negative")}
	}
	if pb.MaxParallel <= 0 {
		return &domain.ConfigError{Field: "api.privatbank.max_parallel", Err: errors.New("must be positive")}
	}

	if c.ChatLog.Path == "" {
		return &domain.ConfigError{Field: "chat_log.path", Err: errors.New("required")}
	}
	if c.Metrics.Enabled && c.Metrics.Path == c.Server.Path {
		return &domain.ConfigError{Field: "metrics.path", Err: errors.New("collides with server.path")}
	}

	return nil
}

// Addr returns host:port for the chat listener
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// FetchTimeout returns the per-date fetch bound
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.API.PrivatBank.FetchTimeoutSec) * time.Second
}

// WriteTimeout returns the per-peer send bound
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutMS) * time.Millisecond
}

// overrideWithEnv는 환경 변수가 존재할 경우 설정 값을 덮어씁니다.
func overrideWithEnv(cfg *Config) {
	if host := os.Getenv("RATES_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("RATES_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if url := os.Getenv("RATES_PRIVATBANK_URL"); url != "" {
		cfg.API.PrivatBank.URL = url
	}
	if level := os.Getenv("RATES_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if path := os.Getenv("RATES_CHAT_LOG_PATH"); path != "" {
		cfg.ChatLog.Path = path
	}
}
