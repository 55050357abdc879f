package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Storage drivers accepted in storage.driver.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Gameplay GameplayConfig `yaml:"gameplay"`
	Events   EventsConfig   `yaml:"events"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            string   `yaml:"port" env:"PORT"`
	BasePath        string   `yaml:"base_path" env:"ECOCLICK_BASE_PATH"`
	ReadTimeout     string   `yaml:"read_timeout" env:"ECOCLICK_READ_TIMEOUT"`
	WriteTimeout    string   `yaml:"write_timeout" env:"ECOCLICK_WRITE_TIMEOUT"`
	ShutdownTimeout string   `yaml:"shutdown_timeout" env:"ECOCLICK_SHUTDOWN_TIMEOUT"`
	CORSOrigins     []string `yaml:"cors_origins" env:"ECOCLICK_CORS_ORIGINS" envSeparator:","`
	StaticDir       string   `yaml:"static_dir" env:"ECOCLICK_STATIC_DIR"`
}

type StorageConfig struct {
	Driver  string `yaml:"driver" env:"ECOCLICK_STORAGE_DRIVER"`
	DataDir string `yaml:"data_dir" env:"ECOCLICK_DATA_DIR"`
	Seed    bool   `yaml:"seed" env:"ECOCLICK_SEED"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX"`
}

type PostgresConfig struct {
	URL string `yaml:"url" env:"DATABASE_URL"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI"`
	Database string `yaml:"database" env:"MONGO_DATABASE"`
}

type QuizConfig struct {
	TTL   string `yaml:"ttl" env:"ECOCLICK_QUIZ_TTL"`
	Cache string `yaml:"cache" env:"ECOCLICK_QUIZ_CACHE"`
}

type GameplayConfig struct {
	PersistAnswers bool `yaml:"persist_answers" env:"ECOCLICK_PERSIST_ANSWERS"`
}

type EventsConfig struct {
	AMQPURL  string `yaml:"amqp_url" env:"AMQP_URL"`
	Exchange string `yaml:"exchange" env:"ECOCLICK_EVENTS_EXCHANGE"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "4000",
			BasePath:        "/api",
			ReadTimeout:     "15s",
			WriteTimeout:    "15s",
			ShutdownTimeout: "5s",
		},
		Storage:  StorageConfig{Driver: DriverFile, DataDir: "data"},
		Redis:    RedisConfig{Prefix: "ecoclick:"},
		SQLite:   SQLiteConfig{Path: "data/ecoclick.db"},
		Mongo:    MongoConfig{Database: "ecoclick"},
		Quiz:     QuizConfig{TTL: "10m"},
		Gameplay: GameplayConfig{PersistAnswers: true},
		Events:   EventsConfig{Exchange: "ecoclick.events"},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads YAML config from path on top of the defaults, then applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	return cfg, cfg.Validate()
}

// Validate checks that the selected driver has what it needs.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverFile:
		if c.Storage.DataDir == "" {
			return errors.New("storage.data_dir is required for the file driver")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis driver")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres.url is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for the sqlite driver")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("mongo.uri is required for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Quiz.Cache == "redis" && c.Redis.Addr == "" {
		return errors.New("redis.addr is required for the redis quiz cache")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
