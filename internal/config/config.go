package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/jwalitptl/barber-api/pkg/messaging/redis"
	"github.com/jwalitptl/barber-api/pkg/worker"
)

type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Outbox       OutboxConfig       `mapstructure:"outbox"`
	Worker       WorkerConfig       `mapstructure:"worker"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	CORS         CORSConfig         `mapstructure:"cors"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Tenant       TenantConfig       `mapstructure:"tenant"`
	Appointments AppointmentsConfig `mapstructure:"appointments"`
	Spots        SpotsConfig        `mapstructure:"spots"`
	Reports      ReportsConfig      `mapstructure:"reports"`
	Invite       InviteConfig       `mapstructure:"invite"`
	SMTP         SMTPConfig         `mapstructure:"smtp"`
	Admin        AdminConfig        `mapstructure:"admin"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	Expiry     time.Duration `mapstructure:"expiry"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type OutboxConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	RetryAttempts   int           `mapstructure:"retry_attempts"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
	Retention       time.Duration `mapstructure:"retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type WorkerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	IdleTTL           time.Duration `mapstructure:"idle_ttl"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type TenantConfig struct {
	DefaultCompanyName string `mapstructure:"default_company_name"`
	DefaultUnitName    string `mapstructure:"default_unit_name"`
	TrialMonthlyPrice  string `mapstructure:"trial_monthly_price"`
}

// TrialPrice parses TrialMonthlyPrice.
func (c TenantConfig) TrialPrice() (decimal.Decimal, error) {
	return decimal.NewFromString(c.TrialMonthlyPrice)
}

type AppointmentsConfig struct {
	LateCancellationThreshold time.Duration `mapstructure:"late_cancellation_threshold"`
}

type SpotsConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type ReportsConfig struct {
	Timezone    string `mapstructure:"timezone"`
	DefaultDays int    `mapstructure:"default_days"`
	MaxDays     int    `mapstructure:"max_days"`
}

type InviteConfig struct {
	DefaultRedirectURL string `mapstructure:"default_redirect_url"`
	TokenCost          int    `mapstructure:"token_cost"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type AdminConfig struct {
	SuperAdminEmails []string `mapstructure:"super_admin_emails"`
}

// Secrets are read from BARBER_* environment variables and override the file.
type Secrets struct {
	DatabasePassword string `envconfig:"DB_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

const envPrefix = "BARBER"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "barber")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.expiry", time.Hour)
	v.SetDefault("jwt.session_ttl", 30*time.Minute)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", 2*time.Second)
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", 500*time.Millisecond)
	v.SetDefault("outbox.retention", 7*24*time.Hour)
	v.SetDefault("outbox.cleanup_interval", time.Hour)
	v.SetDefault("worker.health_port", 8081)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 5)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("logging.level", "info")

	v.SetDefault("tenant.default_company_name", "Minha Barbearia")
	v.SetDefault("tenant.default_unit_name", "Unidade Principal")
	v.SetDefault("tenant.trial_monthly_price", "0")

	v.SetDefault("appointments.late_cancellation_threshold", 2*time.Hour)
	v.SetDefault("spots.cache_ttl", 30*time.Second)

	v.SetDefault("reports.timezone", "UTC")
	v.SetDefault("reports.default_days", 30)
	v.SetDefault("reports.max_days", 365)

	v.SetDefault("invite.token_cost", 10)
	v.SetDefault("smtp.port", 587)
}

// LoadConfig reads config.yaml from the given directories (default "." and
// "./config"), applies defaults and environment overrides. A missing file is not an error.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var secrets Secrets
	if err := envconfig.Process(envPrefix, &secrets); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	config.applySecrets(secrets)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applySecrets(s Secrets) {
	if s.DatabasePassword != "" {
		c.Database.Password = s.DatabasePassword
	}
	if s.JWTSecret != "" {
		c.JWT.Secret = s.JWTSecret
	}
	if s.SMTPPassword != "" {
		c.SMTP.Password = s.SMTPPassword
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
}

func (c *Config) Validate() error {
	if c.Appointments.LateCancellationThreshold <= 0 {
		return fmt.Errorf("appointments.late_cancellation_threshold must be positive")
	}
	if _, err := c.Tenant.TrialPrice(); err != nil {
		return fmt.Errorf("invalid tenant.trial_monthly_price: %w", err)
	}
	if c.Reports.DefaultDays <= 0 || c.Reports.DefaultDays > c.Reports.MaxDays {
		return fmt.Errorf("reports.default_days must be between 1 and reports.max_days")
	}
	return nil
}

// IsSuperAdmin reports whether email belongs to the back-office allow list.
func (c AdminConfig) IsSuperAdmin(email string) bool {
	for _, e := range c.SuperAdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
