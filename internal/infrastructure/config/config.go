package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	ControlDB DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Pool      PoolConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds connection settings for the control-plane database.
// Per-tenant databases are described by the tenant registry, not by this struct.
type DatabaseConfig struct {
	Driver          string // postgres or sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings (token blacklist)
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodyBytes     int64
	RateLimit        int           // requests per window per client, 0 disables
	RateLimitWindow  time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// PoolConfig holds tenant handle pool settings
type PoolConfig struct {
	IdleTTL       time.Duration // idle time after which an unreferenced handle is evictable
	SweepInterval time.Duration // how often the janitor scans for evictable handles
	MaxOpenConns  int           // per-tenant handle connection limits
	MaxIdleConns  int
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool // non-TLS collector connection (development only)
	DBTraceEnabled    bool // instrument tenant handles with otelgorm
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with BIZGRID_ prefix (e.g., BIZGRID_CONTROLDB_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("BIZGRID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		ControlDB: DatabaseConfig{
			Driver:          v.GetString("controldb.driver"),
			Host:            v.GetString("controldb.host"),
			Port:            v.GetInt("controldb.port"),
			User:            v.GetString("controldb.user"),
			Password:        v.GetString("controldb.password"),
			DBName:          v.GetString("controldb.dbname"),
			SSLMode:         v.GetString("controldb.sslmode"),
			MaxOpenConns:    v.GetInt("controldb.max_open_conns"),
			MaxIdleConns:    v.GetInt("controldb.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("controldb.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("controldb.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodyBytes:     v.GetInt64("http.max_body_bytes"),
			RateLimit:        v.GetInt("http.rate_limit"),
			RateLimitWindow:  v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Pool: PoolConfig{
			IdleTTL:       v.GetDuration("pool.idle_ttl"),
			SweepInterval: v.GetDuration("pool.sweep_interval"),
			MaxOpenConns:  v.GetInt("pool.max_open_conns"),
			MaxIdleConns:  v.GetInt("pool.max_idle_conns"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "bizgrid-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.ControlDB.Driver == "" {
		cfg.ControlDB.Driver = "postgres"
	}
	if cfg.ControlDB.Host == "" {
		cfg.ControlDB.Host = "localhost"
	}
	if cfg.ControlDB.Port == 0 {
		cfg.ControlDB.Port = 5432
	}
	if cfg.ControlDB.User == "" {
		cfg.ControlDB.User = "postgres"
	}
	if cfg.ControlDB.DBName == "" {
		cfg.ControlDB.DBName = "bizgrid_control"
	}
	if cfg.ControlDB.SSLMode == "" {
		cfg.ControlDB.SSLMode = "disable"
	}
	if cfg.ControlDB.MaxOpenConns == 0 {
		cfg.ControlDB.MaxOpenConns = 10
	}
	if cfg.ControlDB.MaxIdleConns == 0 {
		cfg.ControlDB.MaxIdleConns = 2
	}
	if cfg.ControlDB.ConnMaxLifetime == 0 {
		cfg.ControlDB.ConnMaxLifetime = 60
	}
	if cfg.ControlDB.ConnMaxIdleTime == 0 {
		cfg.ControlDB.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "bizgrid-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodyBytes == 0 {
		cfg.HTTP.MaxBodyBytes = 4 << 20 // 4MB
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID", "X-Company-ID"}
	}
	if cfg.Pool.IdleTTL == 0 {
		cfg.Pool.IdleTTL = 10 * time.Minute
	}
	if cfg.Pool.SweepInterval == 0 {
		cfg.Pool.SweepInterval = time.Minute
	}
	if cfg.Pool.MaxOpenConns == 0 {
		cfg.Pool.MaxOpenConns = 10
	}
	if cfg.Pool.MaxIdleConns == 0 {
		cfg.Pool.MaxIdleConns = 2
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.ControlDB.Driver != "postgres" && c.ControlDB.Driver != "sqlite" {
		return fmt.Errorf("controldb.driver must be postgres or sqlite, got %q", c.ControlDB.Driver)
	}
	if c.ControlDB.MaxOpenConns <= 0 {
		return fmt.Errorf("controldb.max_open_conns must be positive")
	}
	if c.ControlDB.MaxIdleConns < 0 {
		return fmt.Errorf("controldb.max_idle_conns cannot be negative")
	}
	if c.ControlDB.MaxIdleConns > c.ControlDB.MaxOpenConns {
		return fmt.Errorf("controldb.max_idle_conns (%d) cannot exceed controldb.max_open_conns (%d)",
			c.ControlDB.MaxIdleConns, c.ControlDB.MaxOpenConns)
	}
	if c.Pool.IdleTTL < time.Second {
		return fmt.Errorf("pool.idle_ttl must be at least 1s, got %s", c.Pool.IdleTTL)
	}
	if c.Pool.SweepInterval < time.Second {
		return fmt.Errorf("pool.sweep_interval must be at least 1s, got %s", c.Pool.SweepInterval)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.ControlDB.Driver == "postgres" {
			if c.ControlDB.Password == "" {
				return fmt.Errorf("controldb.password is required in production")
			}
			if c.ControlDB.SSLMode == "disable" {
				return fmt.Errorf("controldb.sslmode cannot be 'disable' in production")
			}
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the connection string with properly escaped values.
// For sqlite the DBName field is used as the file path (or ":memory:").
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.DBName
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
