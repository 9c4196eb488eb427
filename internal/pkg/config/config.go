package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

type Config struct {
	Host          string `env:"SV_HOST,         default=0.0.0.0"`
	Port          string `env:"SV_PORT,         default=3000"`
	Env           string `env:"ENV,             default=development"`
	LogLevel      string `env:"LOG_LEVEL,       default=info"`
	StorageDriver string `env:"STORAGE_DRIVER,  default=postgres"`
	SeedUsersPath string `env:"SEED_USERS_PATH"`
	Swagger       bool   `env:"SWAGGER_ENABLED, default=true"`

	JWT      JWTConfig
	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

// JWTConfig lifetimes are whole seconds.
type JWTConfig struct {
	AccessSecret   string `env:"JWT_TOKEN_ACCESS_SECRET,      required"`
	AccessSeconds  int64  `env:"JWT_TOKEN_ACCESS_EXPIRES_IN,  default=900"`
	RefreshSecret  string `env:"JWT_TOKEN_REFRESH_SECRET,     required"`
	RefreshSeconds int64  `env:"JWT_TOKEN_REFRESH_EXPIRES_IN, default=604800"`
}

func (c JWTConfig) AccessTTL() time.Duration  { return time.Duration(c.AccessSeconds) * time.Second }
func (c JWTConfig) RefreshTTL() time.Duration { return time.Duration(c.RefreshSeconds) * time.Second }

type PostgresConfig struct {
	Host           string        `env:"STORAGE_PG_HOST,            default=localhost"`
	Port           int           `env:"STORAGE_PG_PORT,            default=5432"`
	User           string        `env:"STORAGE_PG_USER,            default=postgres"`
	Password       string        `env:"STORAGE_PG_PASS"`
	Database       string        `env:"STORAGE_PG_NAME,            default=accounts"`
	SSLMode        string        `env:"STORAGE_PG_SSLMODE,         default=disable"`
	MaxConns       int32         `env:"STORAGE_PG_MAX_CONNS,       default=20"`
	MaxConnIdle    time.Duration `env:"STORAGE_PG_MAX_IDLE,        default=30s"`
	ConnectTimeout time.Duration `env:"STORAGE_PG_CONNECT_TIMEOUT, default=2s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=accounts"`
}

type RedisConfig struct {
	Enabled   bool          `env:"REDIS_ENABLED,         default=false"`
	Addr      string        `env:"REDIS_ADDR,            default=localhost:6379"`
	Password  string        `env:"REDIS_PASSWORD"`
	DB        int           `env:"REDIS_DB,              default=0"`
	StatusTTL time.Duration `env:"USER_STATUS_CACHE_TTL, default=30s"`
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects configurations the service cannot run safely with.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case DriverPostgres, DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("config: JWT_TOKEN_ACCESS_SECRET and JWT_TOKEN_REFRESH_SECRET must differ")
	}
	if c.JWT.AccessSeconds <= 0 || c.JWT.RefreshSeconds <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	return nil
}

// Load reads a .env file when present, then the environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context) *Config {
	cfg, err := Load(ctx)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
