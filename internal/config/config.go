package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the server and the CLI.
// Values come from Default, then an optional TOML file, then the environment.
type Config struct {
	Port     string         `toml:"port"`
	LoginURL string         `toml:"login_url"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Cache    CacheConfig    `toml:"cache"`
	Media    MediaConfig    `toml:"media"`
	Log      LogConfig      `toml:"log"`
}

// DatabaseConfig uses a tagged union: Driver selects which fields apply.
type DatabaseConfig struct {
	Driver   string `toml:"driver"` // "postgres" (default) or "sqlite"
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`

	SQLitePath string `toml:"sqlite_path,omitempty"` // only used for driver=sqlite
}

type AuthConfig struct {
	JWTSecret string        `toml:"jwt_secret"`
	TokenTTL  time.Duration `toml:"token_ttl"`
}

// CacheConfig configures the global feed page cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // "memory" (default) or "redis"
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr,omitempty"`
	RedisPassword string        `toml:"redis_password,omitempty"`
	RedisDB       int           `toml:"redis_db,omitempty"`
}

// MediaConfig configures where uploaded post images are stored.
type MediaConfig struct {
	Backend string `toml:"backend"` // "local" (default) or "s3"
	Dir     string `toml:"dir"`
	URL     string `toml:"url"`

	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`
	S3PublicURL       string `toml:"s3_public_url,omitempty"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "text" or "json"
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		Port:     "8080",
		LoginURL: "/auth/login/",
		Database: DatabaseConfig{
			Driver:     "postgres",
			Host:       "localhost",
			Port:       "5432",
			SSLMode:    "disable",
			SQLitePath: "blogfeed.db",
		},
		Auth: AuthConfig{
			TokenTTL: 72 * time.Hour,
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     20 * time.Second,
		},
		Media: MediaConfig{
			Backend: "local",
			Dir:     "media",
			URL:     "/media/",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Read decodes a TOML document on top of the receiver.
func (c *Config) Read(r io.Reader) error {
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	return nil
}

// Load builds a Config. path may be empty, in which case only defaults and
// the environment (including a .env file, if present) are used.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if err := cfg.Read(f); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("PORT", &c.Port)
	str("LOGIN_URL", &c.LoginURL)

	str("DB_DRIVER", &c.Database.Driver)
	str("DB_HOST", &c.Database.Host)
	str("DB_PORT", &c.Database.Port)
	str("DB_USER", &c.Database.User)
	str("DB_PASSWORD", &c.Database.Password)
	str("DB_NAME", &c.Database.Name)
	str("DB_SSLMODE", &c.Database.SSLMode)
	str("SQLITE_PATH", &c.Database.SQLitePath)

	str("JWT_SECRET", &c.Auth.JWTSecret)

	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_ADDR", &c.Cache.RedisAddr)
	str("REDIS_PASSWORD", &c.Cache.RedisPassword)

	str("MEDIA_BACKEND", &c.Media.Backend)
	str("MEDIA_DIR", &c.Media.Dir)
	str("MEDIA_URL", &c.Media.URL)
	str("S3_BUCKET", &c.Media.S3Bucket)
	str("S3_PREFIX", &c.Media.S3Prefix)
	str("S3_REGION", &c.Media.S3Region)
	str("S3_ACCESS_KEY_ID", &c.Media.S3AccessKeyID)
	str("S3_SECRET_ACCESS_KEY", &c.Media.S3SecretAccessKey)
	str("S3_PUBLIC_URL", &c.Media.S3PublicURL)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	durations := map[string]*time.Duration{
		"JWT_TTL":   &c.Auth.TokenTTL,
		"CACHE_TTL": &c.Cache.TTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, v, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup("REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		c.Cache.RedisDB = n
	}

	return nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	switch c.Media.Backend {
	case "local":
	case "s3":
		if c.Media.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET must be set for the s3 media backend")
		}
	default:
		return fmt.Errorf("unknown media backend %q", c.Media.Backend)
	}
	return nil
}

// PostgresDSN renders the connection string for gorm's postgres driver.
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}
