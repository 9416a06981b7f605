package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	App    AppConfig
	Status StatusConfig
	Access AccessConfig
	Store  StoreConfig
	Cache  CacheConfig
	Static StaticConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"mc-console-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// StatusConfig holds liveness-probe settings for the status checker.
type StatusConfig struct {
	LookupURL    string        `envconfig:"STATUS_LOOKUP_URL" default:"http://localhost:3000/v1/lookup/"`
	APIKey       string        `envconfig:"STATUS_API_KEY" default:""`
	PollInterval time.Duration `envconfig:"STATUS_POLL_INTERVAL" default:"10s"`
	ProbeTimeout time.Duration `envconfig:"STATUS_PROBE_TIMEOUT" default:"12s"`
}

// AccessConfig holds PIN-gate settings.
type AccessConfig struct {
	PIN        string        `envconfig:"ACCESS_PIN" default:"1234"`
	SessionTTL time.Duration `envconfig:"ACCESS_SESSION_TTL" default:"24h"`
}

// StoreConfig holds snapshot persistence settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"bolt"` // bolt, sqlite, or mysql
	// Bolt settings
	BoltPath string `envconfig:"STORE_BOLT_PATH" default:"./data/console.db"`
	// SQLite settings
	SQLitePath string `envconfig:"STORE_SQLITE_PATH" default:"./data/console.sqlite"`
	// MySQL settings
	MySQLHost     string `envconfig:"STORE_MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"STORE_MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"STORE_MYSQL_NAME" default:"mc_console"`
	MySQLUser     string `envconfig:"STORE_MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"STORE_MYSQL_PASS" default:""`
}

// CacheConfig holds session-cache settings.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// StaticConfig holds settings for serving the console bundle.
type StaticConfig struct {
	Dir      string `envconfig:"STATIC_DIR" default:"./dist"`
	BasePath string `envconfig:"BASE_PATH" default:"/index"`
}

// NormalizedBasePath returns the base path with a leading slash and no
// trailing slash, e.g. "index/" becomes "/index".
func (s *StaticConfig) NormalizedBasePath() string {
	p := s.BasePath
	if p == "" || p == "/" {
		return ""
	}
	if p[0] != '/' {
		p = "/" + p
	}
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MySQLDSN returns the MySQL data source name for the snapshot store.
func (s *StoreConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPassword, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
