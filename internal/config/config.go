package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

var globalConfig *Config

func Global() *Config {
	return globalConfig
}

func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-required:"true"`
	HTTP     HTTPConfig     `yaml:"http"`
	JWT      JWTConfig      `yaml:"jwt"`
	Identity IdentityConfig `yaml:"identity"`
	Storage  StorageConfig  `yaml:"storage"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Monitor  MonitorConfig  `yaml:"monitor"`
	Alerts   AlertsConfig   `yaml:"alerts"`
}

type HTTPConfig struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type JWTConfig struct {
	Issuer         string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"todo-reminders"`
	SigningKey     string        `yaml:"signing_key" env:"JWT_SIGNING_KEY"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TOKEN_TTL" env-default:"168h"`
}

type IdentityConfig struct {
	Username     string `yaml:"username" env:"AUTH_USERNAME"`
	Password     string `yaml:"password" env:"AUTH_PASSWORD"`
	PasswordHash string `yaml:"password_hash" env:"AUTH_PASSWORD_HASH"`
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
}

type PostgresConfig struct {
	Host           string        `yaml:"host" env:"POSTGRES_HOST"`
	Port           int           `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	Username       string        `yaml:"username" env:"POSTGRES_USERNAME"`
	Password       string        `yaml:"password" env:"POSTGRES_PASSWORD"`
	Database       string        `yaml:"database" env:"POSTGRES_DATABASE"`
	SSLMode        string        `yaml:"ssl_mode" env:"POSTGRES_SSL_MODE" env-default:"disable"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"POSTGRES_CONNECT_TIMEOUT" env-default:"10s"`
	PingTimeout    time.Duration `yaml:"ping_timeout" env:"POSTGRES_PING_TIMEOUT" env-default:"10s"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"todo"`
	Collection     string        `yaml:"collection" env:"MONGO_COLLECTION" env-default:"todos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

type SQLiteConfig struct {
	Path string `yaml:"path" env:"SQLITE_PATH" env-default:"todo.db"`
}

type MonitorConfig struct {
	Interval time.Duration `yaml:"interval" env:"MONITOR_INTERVAL" env-default:"30s"`
	// Timezone is an IANA name. Due dates and times are compared as wall
	// clock values in this location.
	Timezone string `yaml:"timezone" env:"MONITOR_TIMEZONE" env-default:"Local"`
}

type AlertsConfig struct {
	FeedCapacity int `yaml:"feed_capacity" env:"ALERTS_FEED_CAPACITY" env-default:"100"`
}

// Default identity for local runs only.
const (
	localUsername   = "admin123"
	localPassword   = "admin@123"
	localSigningKey = "local-signing-key"
)

// Validate fills in the local defaults and checks the settings that depend
// on each other, which struct tags alone can't express.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDev, EnvProd, EnvLocal:
	default:
		return fmt.Errorf("unknown env: %s", c.Env)
	}

	if c.Env == EnvLocal {
		if c.Identity.Username == "" {
			c.Identity.Username = localUsername
		}
		if c.Identity.Password == "" && c.Identity.PasswordHash == "" {
			c.Identity.Password = localPassword
		}
		if c.JWT.SigningKey == "" {
			c.JWT.SigningKey = localSigningKey
		}
	}

	var errs []error
	if c.JWT.SigningKey == "" {
		errs = append(errs, errors.New("JWT_SIGNING_KEY is required"))
	}
	if c.JWT.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("JWT_ACCESS_TOKEN_TTL must be positive"))
	}
	if c.Identity.Username == "" {
		errs = append(errs, errors.New("AUTH_USERNAME is required"))
	}
	if c.Identity.Password == "" && c.Identity.PasswordHash == "" {
		errs = append(errs, errors.New("AUTH_PASSWORD or AUTH_PASSWORD_HASH is required"))
	}
	if c.Monitor.Interval <= 0 {
		errs = append(errs, errors.New("MONITOR_INTERVAL must be positive"))
	}

	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.Username == "" || c.Postgres.Database == "" {
			errs = append(errs, errors.New("POSTGRES_HOST, POSTGRES_USERNAME and POSTGRES_DATABASE are required"))
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("MONGO_URI is required"))
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver: %s", c.Storage.Driver))
	}

	return errors.Join(errs...)
}
