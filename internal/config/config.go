package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/hashfuture/pkg/models"
)

// Config holds the application configuration
type Config struct {
	Hashflare     HashflareConfig `yaml:"hashflare"`
	Rates         RatesConfig     `yaml:"rates,omitempty"`
	Products      []string        `yaml:"products,omitempty"` // Default: every known product
	MQTT          MQTTConfig      `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig        `yaml:"home_assistant,omitempty"`
	Server        ServerConfig    `yaml:"server,omitempty"`
	Telegram      TelegramConfig  `yaml:"telegram,omitempty"`
	LogLevel      string          `yaml:"log_level,omitempty"`
}

// HashflareConfig holds the account session used to capture history pages
type HashflareConfig struct {
	Cookies    []Cookie `yaml:"cookies"`
	LoginURL   string   `yaml:"login_url,omitempty"`
	HistoryURL string   `yaml:"history_url,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `yaml:"name"`
	Value    string  `yaml:"value"`
	Domain   string  `yaml:"domain"`
	Path     string  `yaml:"path"`
	Expires  float64 `yaml:"expires,omitempty"`
	HTTPOnly bool    `yaml:"httpOnly,omitempty"`
	Secure   bool    `yaml:"secure,omitempty"`
	SameSite string  `yaml:"sameSite,omitempty"`
}

// RatesConfig selects where exchange rates come from
type RatesConfig struct {
	URL     string             `yaml:"url,omitempty"`
	Timeout time.Duration      `yaml:"timeout,omitempty"`
	Static  map[string]float64 `yaml:"static,omitempty"` // When set, no HTTP fetch is made
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // host:port
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"`
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled      bool   `yaml:"enabled"`
	URL          string `yaml:"url"`   // e.g., "http://homeassistant.local:8123"
	Token        string `yaml:"token"` // Long-lived access token
	EntityPrefix string `yaml:"entity_prefix,omitempty"`
}

// ServerConfig holds the upload API settings
type ServerConfig struct {
	Addr              string        `yaml:"addr,omitempty"`
	MaxUploadBytes    int64         `yaml:"max_upload_bytes,omitempty"`
	SessionTTL        time.Duration `yaml:"session_ttl,omitempty"`
	RequestsPerMinute int           `yaml:"requests_per_minute,omitempty"`
}

// TelegramConfig holds the bot credentials
type TelegramConfig struct {
	Token string `yaml:"token,omitempty"`
	Debug bool   `yaml:"debug,omitempty"`
}

// Load reads the config file, then applies .env and environment overrides
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()

	return cfg, nil
}

// applyEnv lets secrets live outside the config file
func (c *Config) applyEnv() {
	if v := os.Getenv("HASHFUTURE_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("HASHFUTURE_HA_TOKEN"); v != "" {
		c.HomeAssistant.Token = v
	}
	if v := os.Getenv("HASHFUTURE_MQTT_PASSWORD"); v != "" {
		c.MQTT.Password = v
	}
	if v := os.Getenv("HASHFUTURE_RATES_URL"); v != "" {
		c.Rates.URL = v
	}
	if v := os.Getenv("HASHFUTURE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// GetProducts returns the configured products, defaulting to all of them
func (c *Config) GetProducts() ([]models.Product, error) {
	if len(c.Products) == 0 {
		return models.Products, nil
	}
	products := make([]models.Product, 0, len(c.Products))
	for _, name := range c.Products {
		p, ok := models.ParseProduct(name)
		if !ok {
			return nil, fmt.Errorf("unknown product %q in config", name)
		}
		products = append(products, p)
	}
	return products, nil
}

// GetLoginURL returns the account login page
func (c *Config) GetLoginURL() string {
	if c.Hashflare.LoginURL == "" {
		return "https://hashflare.io/login"
	}
	return c.Hashflare.LoginURL
}

// GetHistoryURL returns the page holding the transaction and ledger tables
func (c *Config) GetHistoryURL() string {
	if c.Hashflare.HistoryURL == "" {
		return "https://hashflare.io/panel/history"
	}
	return c.Hashflare.HistoryURL
}

// GetRatesTimeout returns the rate fetch timeout with a default of 10s
func (c *Config) GetRatesTimeout() time.Duration {
	if c.Rates.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Rates.Timeout
}

// GetServerAddr returns the listen address for the upload API
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return ":8080"
	}
	return c.Server.Addr
}

// GetMaxUploadBytes returns the upload cap with a default of 1 MiB
func (c *Config) GetMaxUploadBytes() int64 {
	if c.Server.MaxUploadBytes <= 0 {
		return 1 << 20
	}
	return c.Server.MaxUploadBytes
}

// GetSessionTTL returns how long an uploaded report is kept
func (c *Config) GetSessionTTL() time.Duration {
	if c.Server.SessionTTL <= 0 {
		return 30 * time.Minute
	}
	return c.Server.SessionTTL
}

// GetRequestsPerMinute returns the per-user request budget
func (c *Config) GetRequestsPerMinute() int {
	if c.Server.RequestsPerMinute <= 0 {
		return 30
	}
	return c.Server.RequestsPerMinute
}

// GetTopicPrefix returns the MQTT topic prefix
func (c *Config) GetTopicPrefix() string {
	if c.MQTT.TopicPrefix == "" {
		return "hashfuture"
	}
	return strings.TrimSuffix(c.MQTT.TopicPrefix, "/")
}

// GetEntityPrefix returns the Home Assistant entity prefix
func (c *Config) GetEntityPrefix() string {
	if c.HomeAssistant.EntityPrefix == "" {
		return "sensor.hashflare"
	}
	return c.HomeAssistant.EntityPrefix
}
