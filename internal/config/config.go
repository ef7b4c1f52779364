package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment names accepted in IDEASPARK_ENV.
const (
	EnvDev  = "dev"
	EnvProd = "prod"
	EnvTest = "test"
)

const insecureSecretKey = "insecure-dev-secret-key-change-in-production"

// Config is built once at start-up and shared read-only by pointer.
type Config struct {
	Env          string
	Debug        bool
	AppPort      string
	SecretKey    string
	AllowedHosts []string
	LogLevel     string
	PageSize     int

	Database Database
	Redis    Redis
	RabbitMQ RabbitMQ
	Mail     Mail
	JWT      JWT
	CORS     CORS
	Throttle Throttle
	Jobs     Jobs
}

// Database holds the connection parameters for GORM.
type Database struct {
	Engine         string // postgres or sqlite
	Name           string
	User           string
	Password       string
	Host           string
	Port           string
	ConnMaxAge     time.Duration
	ConnectTimeout time.Duration
}

// DSN returns the driver specific connection string.
func (d Database) DSN() string {
	if d.Engine == "sqlite" {
		return d.Name
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable connect_timeout=%d",
		d.Host, d.User, d.Password, d.Name, d.Port, int(d.ConnectTimeout.Seconds()))
}

type Redis struct {
	URL string // empty disables redis
}

type RabbitMQ struct {
	URL string // empty disables the broker
}

type Mail struct {
	Host     string
	Port     int
	UseTLS   bool
	User     string
	Password string
	From     string
}

type JWT struct {
	AccessLifetime  time.Duration
	RefreshLifetime time.Duration
}

type CORS struct {
	AllowAll       bool
	AllowedOrigins []string
}

// Throttle rates use the "<count>/<period>" form, e.g. "100/day".
type Throttle struct {
	Enabled bool
	Anon    string
	User    string
}

type Jobs struct {
	StatsCron string // empty disables the statistics job
}

// Load reads configuration for the environment named by IDEASPARK_ENV
// (default dev) from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("IDEASPARK_ENV", EnvDev)
	v.AutomaticEnv()

	env := strings.ToLower(v.GetString("IDEASPARK_ENV"))
	if env == EnvDev {
		// A missing .env file is fine.
		_ = godotenv.Load()
	}
	return LoadWith(v, env)
}

// LoadWith builds a Config for env from an existing viper instance.
func LoadWith(v *viper.Viper, env string) (*Config, error) {
	setBaseDefaults(v)
	switch env {
	case EnvDev:
		setDevDefaults(v)
	case EnvProd:
		setProdDefaults(v)
	case EnvTest:
		setTestDefaults(v)
	default:
		return nil, fmt.Errorf("unknown environment %q", env)
	}
	v.AutomaticEnv()

	cfg := &Config{
		Env:          env,
		Debug:        v.GetBool("DEBUG"),
		AppPort:      v.GetString("APP_PORT"),
		SecretKey:    v.GetString("SECRET_KEY"),
		AllowedHosts: splitList(v.GetString("ALLOWED_HOSTS")),
		LogLevel:     v.GetString("LOG_LEVEL"),
		PageSize:     v.GetInt("PAGE_SIZE"),
		Database: Database{
			Engine:         v.GetString("DB_ENGINE"),
			Name:           v.GetString("DB_NAME"),
			User:           v.GetString("DB_USER"),
			Password:       v.GetString("DB_PASSWORD"),
			Host:           v.GetString("DB_HOST"),
			Port:           v.GetString("DB_PORT"),
			ConnMaxAge:     v.GetDuration("DB_CONN_MAX_AGE"),
			ConnectTimeout: v.GetDuration("DB_CONNECT_TIMEOUT"),
		},
		Redis:    Redis{URL: v.GetString("REDIS_URL")},
		RabbitMQ: RabbitMQ{URL: v.GetString("RABBITMQ_URL")},
		Mail: Mail{
			Host:     v.GetString("EMAIL_HOST"),
			Port:     v.GetInt("EMAIL_PORT"),
			UseTLS:   v.GetBool("EMAIL_USE_TLS"),
			User:     v.GetString("EMAIL_HOST_USER"),
			Password: v.GetString("EMAIL_HOST_PASSWORD"),
			From:     v.GetString("DEFAULT_FROM_EMAIL"),
		},
		JWT: JWT{
			AccessLifetime:  v.GetDuration("JWT_ACCESS_LIFETIME"),
			RefreshLifetime: v.GetDuration("JWT_REFRESH_LIFETIME"),
		},
		CORS: CORS{
			AllowAll:       v.GetBool("CORS_ALLOW_ALL"),
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Throttle: Throttle{
			Enabled: v.GetBool("THROTTLE_ENABLED"),
			Anon:    v.GetString("THROTTLE_ANON"),
			User:    v.GetString("THROTTLE_USER"),
		},
		Jobs: Jobs{StatsCron: v.GetString("STATS_CRON")},
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.User
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Env == EnvProd && (c.SecretKey == "" || c.SecretKey == insecureSecretKey) {
		return errors.New("SECRET_KEY must be set in production")
	}
	if c.Database.Engine != "postgres" && c.Database.Engine != "sqlite" {
		return fmt.Errorf("unsupported DB_ENGINE %q", c.Database.Engine)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.JWT.AccessLifetime <= 0 || c.JWT.RefreshLifetime <= 0 {
		return errors.New("JWT lifetimes must be positive")
	}
	return nil
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProd
}

func setBaseDefaults(v *viper.Viper) {
	v.SetDefault("DEBUG", false)
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("SECRET_KEY", insecureSecretKey)
	v.SetDefault("ALLOWED_HOSTS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PAGE_SIZE", 20)
	v.SetDefault("DB_ENGINE", "postgres")
	v.SetDefault("DB_NAME", "ideaspark")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_CONN_MAX_AGE", 60*time.Second)
	v.SetDefault("DB_CONNECT_TIMEOUT", 10*time.Second)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EMAIL_HOST", "smtp.gmail.com")
	v.SetDefault("EMAIL_PORT", 587)
	v.SetDefault("EMAIL_USE_TLS", true)
	v.SetDefault("JWT_ACCESS_LIFETIME", 60*time.Minute)
	v.SetDefault("JWT_REFRESH_LIFETIME", 7*24*time.Hour)
	v.SetDefault("CORS_ALLOW_ALL", true)
	v.SetDefault("THROTTLE_ENABLED", false)
	v.SetDefault("THROTTLE_ANON", "100/day")
	v.SetDefault("THROTTLE_USER", "1000/day")
	v.SetDefault("STATS_CRON", "@hourly")
}

func setDevDefaults(v *viper.Viper) {
	v.SetDefault("DEBUG", true)
	v.SetDefault("ALLOWED_HOSTS", "*")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("DB_ENGINE", "sqlite")
	v.SetDefault("DB_NAME", "ideaspark.db")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8080,http://127.0.0.1:8080")
}

func setProdDefaults(v *viper.Viper) {
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ALLOWED_HOSTS", "localhost,127.0.0.1")
	v.SetDefault("CORS_ALLOW_ALL", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("THROTTLE_ENABLED", true)
	v.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/1")
}

func setTestDefaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "error")
	v.SetDefault("DB_ENGINE", "sqlite")
	v.SetDefault("DB_NAME", "file::memory:?cache=shared")
	v.SetDefault("STATS_CRON", "")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
