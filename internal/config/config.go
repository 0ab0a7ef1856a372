package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables; "__" separates nested keys,
// e.g. LECTURE_JWT__SECRET sets jwt.secret
const EnvPrefix = "LECTURE_"

const (
	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"

	EventsDriverGoChannel = "gochannel"
	EventsDriverKafka     = "kafka"
)

type Config struct {
	Environment string `koanf:"environment"`
	Port        string `koanf:"port"`
	LogLevel    string `koanf:"log_level"`

	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	JWT      JWTConfig      `koanf:"jwt"`
	Storage  StorageConfig  `koanf:"storage"`
	Analysis AnalysisConfig `koanf:"analysis"`
	Events   EventsConfig   `koanf:"events"`
	Casdoor  CasdoorConfig  `koanf:"casdoor"`
	CORS     CORSConfig     `koanf:"cors"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Seed     SeedConfig     `koanf:"seed"`
}

type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	LogLevel        string        `koanf:"log_level"` // silent, error, warn, info
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL      string        `koanf:"url"`
	StatsTTL time.Duration `koanf:"stats_ttl"`
}

type JWTConfig struct {
	Secret      string        `koanf:"secret"`
	ExpireHours int           `koanf:"expire_hours"`
	Leeway      time.Duration `koanf:"leeway"`
	Issuer      string        `koanf:"issuer"`
}

type StorageConfig struct {
	Driver             string `koanf:"driver"` // local, gcs
	LocalDir           string `koanf:"local_dir"`
	GCSBucket          string `koanf:"gcs_bucket"`
	GCSCredentialsFile string `koanf:"gcs_credentials_file"`
	MaxUploadBytes     int64  `koanf:"max_upload_bytes"`
}

type AnalysisConfig struct {
	BaseURL string        `koanf:"base_url"`
	Path    string        `koanf:"path"`
	Timeout time.Duration `koanf:"timeout"`
}

type EventsConfig struct {
	Driver  string   `koanf:"driver"` // gochannel, kafka
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

type CasdoorConfig struct {
	Endpoint     string `koanf:"endpoint"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	Cert         string `koanf:"certificate"`
	Organization string `koanf:"organization"`
	Application  string `koanf:"application"`
}

// Enabled reports whether single sign-on through Casdoor is configured
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != "" && c.ClientID != ""
}

type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type TracingConfig struct {
	Enabled      bool   `koanf:"enabled"`
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	ServiceName  string `koanf:"service_name"`
}

type SeedConfig struct {
	Enabled            bool   `koanf:"enabled"`
	SuperAdminPassword string `koanf:"super_admin_password"`
	Samples            bool   `koanf:"samples"`
}

// Default returns the configuration used when neither file nor environment set a key
func Default() Config {
	return Config{
		Environment: "development",
		Port:        "8080",
		LogLevel:    "info",
		Database: DatabaseConfig{
			DSN:             "host=localhost user=postgres password=postgres dbname=lectures port=5432 sslmode=disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			LogLevel:        "warn",
			AutoMigrate:     true,
		},
		Redis: RedisConfig{
			StatsTTL: 5 * time.Minute,
		},
		JWT: JWTConfig{
			ExpireHours: 10,
			Issuer:      "lecture-service",
		},
		Storage: StorageConfig{
			Driver:         StorageDriverLocal,
			LocalDir:       "uploads",
			MaxUploadBytes: 200 << 20,
		},
		Analysis: AnalysisConfig{
			BaseURL: "http://localhost:8000",
			Path:    "/audio-to-document",
			Timeout: 120 * time.Second,
		},
		Events: EventsConfig{
			Driver: EventsDriverGoChannel,
			Topic:  "lectures",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Tracing: TracingConfig{
			ServiceName: "lecture-service",
		},
		Seed: SeedConfig{
			Enabled:            true,
			SuperAdminPassword: "superadmin123",
		},
	}
}

// LoadConfig loads .env, the optional YAML file named by CONFIG_FILE and LECTURE_* variables, in that order
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

// Load reads configuration from the given YAML file (skipped when missing) and the environment
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// envValue maps a variable to its key; list-valued keys take comma separated values
func envValue(key, value string) (string, interface{}) {
	key = envKey(key)
	if _, ok := listKeys[key]; ok {
		return key, splitList(value)
	}
	return key, value
}

var listKeys = map[string]struct{}{
	"events.brokers":       {},
	"cors.allowed_origins": {},
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate rejects configurations the service cannot start with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret is required")
	}
	if c.JWT.ExpireHours <= 0 {
		return fmt.Errorf("jwt.expire_hours must be positive, got %d", c.JWT.ExpireHours)
	}
	switch c.Storage.Driver {
	case StorageDriverLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir is required for the local driver")
		}
	case StorageDriverGCS:
		if c.Storage.GCSBucket == "" {
			return errors.New("storage.gcs_bucket is required for the gcs driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Events.Driver {
	case EventsDriverGoChannel:
	case EventsDriverKafka:
		if len(c.Events.Brokers) == 0 {
			return errors.New("events.brokers is required for the kafka driver")
		}
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	if c.Analysis.Timeout <= 0 {
		return errors.New("analysis.timeout must be positive")
	}
	return nil
}

// SlogLevel converts the configured log level to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// TokenTTL returns the lifetime of issued tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpireHours) * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
