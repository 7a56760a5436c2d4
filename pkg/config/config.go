package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

// Backend names.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// envPrefix prefixes every environment override, e.g. PODCAST_CATALOG_BACKEND.
const envPrefix = "PODCAST_CATALOG_"

type Config struct {
	Backend  string         `toml:"backend"`
	SeedFile string         `toml:"seed_file"`
	Mongo    MongoConfig    `toml:"mongo"`
	Postgres PostgresConfig `toml:"postgres"`
	Supabase SupabaseConfig `toml:"supabase"`
	Log      LogConfig      `toml:"log"`
	Ingest   IngestConfig   `toml:"ingest"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type PostgresConfig struct {
	DSN          string   `toml:"dsn"`
	MaxOpenConns int      `toml:"max_open_conns"`
	MaxIdleConns int      `toml:"max_idle_conns"`
	ConnMaxIdle  Duration `toml:"conn_max_idle"`
	ConnMaxLife  Duration `toml:"conn_max_life"`
}

type SupabaseConfig struct {
	URL              string `toml:"url"`
	Key              string `toml:"key"`
	Password         string `toml:"password"`
	ConnectionString string `toml:"connection_string"`
}

type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type IngestConfig struct {
	Workers         int      `toml:"workers"`
	Timeout         Duration `toml:"timeout"`
	Client          string   `toml:"client"`
	PageTranscripts bool     `toml:"page_transcripts"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func GetDefaultConfig() *Config {
	return &Config{
		Backend:  BackendMemory,
		SeedFile: "catalog.json",
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "podcast_catalog",
		},
		Log: LogConfig{
			File:  "/tmp/podcast-catalog.log",
			Level: "info",
		},
		Ingest: IngestConfig{
			Workers: 8,
			Timeout: Duration{30 * time.Second},
			Client:  "browser",
		},
	}
}

// LoadConfig reads configPath (a missing file means defaults), then applies
// PODCAST_CATALOG_* environment overrides and validates the result.
func LoadConfig(configPath string) (*Config, error) {
	config := GetDefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("unmarshaling config: %w", err)
			}
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	c.Backend = getEnv("BACKEND", c.Backend)
	c.SeedFile = getEnv("SEED_FILE", c.SeedFile)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)
	c.Postgres.DSN = getEnv("POSTGRES_DSN", c.Postgres.DSN)
	c.Supabase.URL = getEnv("SUPABASE_URL", c.Supabase.URL)
	c.Supabase.Key = getEnv("SUPABASE_KEY", c.Supabase.Key)
	c.Supabase.Password = getEnv("SUPABASE_PASSWORD", c.Supabase.Password)
	c.Supabase.ConnectionString = getEnv("SUPABASE_CONNECTION_STRING", c.Supabase.ConnectionString)
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Ingest.Client = getEnv("INGEST_CLIENT", c.Ingest.Client)

	if v := getEnv("INGEST_WORKERS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sINGEST_WORKERS: %w", envPrefix, err)
		}
		c.Ingest.Workers = n
	}
	if v := getEnv("INGEST_TIMEOUT", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sINGEST_TIMEOUT: %w", envPrefix, err)
		}
		c.Ingest.Timeout = Duration{d}
	}
	return nil
}

// Validate checks that the selected backend has what it needs to connect.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendMemory:
	case BackendMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("mongo backend requires uri and database")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("postgres backend requires dsn")
		}
	case BackendSupabase:
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return fmt.Errorf("supabase backend requires url and key")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// LogLevel parses Log.Level; unknown values mean info.
func (c *Config) LogLevel() slog.Level {
	return parseLogLevel(c.Log.Level)
}

// Template returns the commented sample configuration.
func Template() string {
	return configTemplate
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(envPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
