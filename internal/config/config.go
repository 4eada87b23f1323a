package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-agent-registry/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// NATSConfig holds NATS JetStream configuration for entry events.
// An empty URL disables publishing.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// CardanoConfig holds the Blockfrost endpoints per network
type CardanoConfig struct {
	MainnetURL       string        `mapstructure:"mainnet_url"`
	PreviewURL       string        `mapstructure:"preview_url"`
	PreprodURL       string        `mapstructure:"preprod_url"`
	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	RetryInitial     time.Duration `mapstructure:"retry_initial"`
	RetryMaxInterval time.Duration `mapstructure:"retry_max_interval"`
	RetryMaxElapsed  time.Duration `mapstructure:"retry_max_elapsed"`
	// RateLimit is shared by every process using the same project id
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig holds the per-project ledger API request budget
type RateLimitConfig struct {
	RequestsPerSecond int           `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// RedisConfig holds the Redis connection used for distributed rate limiting.
// An empty address limits each process on its own.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BaseURL returns the Blockfrost base URL configured for network
func (c *CardanoConfig) BaseURL(network domain.Network) (string, error) {
	var url string
	switch network {
	case domain.NetworkMainnet:
		url = c.MainnetURL
	case domain.NetworkPreview:
		url = c.PreviewURL
	case domain.NetworkPreprod:
		url = c.PreprodURL
	default:
		return "", fmt.Errorf("unsupported network: %s", network)
	}
	if url == "" {
		return "", fmt.Errorf("no ledger API url configured for network %s", network)
	}
	return strings.TrimRight(url, "/"), nil
}

// BaseURLs returns the configured Blockfrost base URL of every network that has one
func (c *CardanoConfig) BaseURLs() map[domain.Network]string {
	urls := make(map[domain.Network]string, 3)
	for _, network := range []domain.Network{domain.NetworkMainnet, domain.NetworkPreview, domain.NetworkPreprod} {
		if url, err := c.BaseURL(network); err == nil {
			urls[network] = url
		}
	}
	return urls
}

// HealthConfig holds the liveness prober configuration
type HealthConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Path        string        `mapstructure:"path"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	Concurrency int           `mapstructure:"concurrency"`
}

// SyncConfig holds the incremental sync engine configuration
type SyncConfig struct {
	PageSize          int                     `mapstructure:"page_size"`
	SourceConcurrency int                     `mapstructure:"source_concurrency"` // 0 = one worker per source
	AssetConcurrency  int                     `mapstructure:"asset_concurrency"`
	ResumeMissPolicy  domain.ResumeMissPolicy `mapstructure:"resume_miss_policy"`
	RecheckAfterWait  bool                    `mapstructure:"recheck_after_wait"`
	WaitTimeout       time.Duration           `mapstructure:"wait_timeout"` // 0 = wait indefinitely
	RunTimeout        time.Duration           `mapstructure:"run_timeout"`  // 0 = no deadline
}

// SweepConfig holds the deregistration sweep configuration
type SweepConfig struct {
	PageSize    int           `mapstructure:"page_size"`
	WaitTimeout time.Duration `mapstructure:"wait_timeout"`
	RunTimeout  time.Duration `mapstructure:"run_timeout"`
}

// MaintenanceConfig holds the periodic maintenance loop configuration
type MaintenanceConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	SyncMaxAge time.Duration `mapstructure:"sync_max_age"`
}

// SourceConfig describes a registry source seeded at startup
type SourceConfig struct {
	Type       domain.RegistryType `mapstructure:"type"`
	Network    domain.Network      `mapstructure:"network"`
	APIKey     string              `mapstructure:"api_key"`
	Identifier string              `mapstructure:"identifier"`
	URL        string              `mapstructure:"url"`
	Note       string              `mapstructure:"note"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSAllowedOrigins restricts browser origins; empty allows any
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// APIConfig holds configuration for the query API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	Auth       AuthConfig     `mapstructure:"auth"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Cardano    CardanoConfig  `mapstructure:"cardano"`
	Health     HealthConfig   `mapstructure:"health"`
	Sync       SyncConfig     `mapstructure:"sync"`
	Sources    []SourceConfig `mapstructure:"sources"`
}

// SweeperConfig holds configuration for the maintenance program
type SweeperConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Cardano     CardanoConfig     `mapstructure:"cardano"`
	Health      HealthConfig      `mapstructure:"health"`
	Sync        SyncConfig        `mapstructure:"sync"`
	Sweep       SweepConfig       `mapstructure:"sweep"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
	Sources     []SourceConfig    `mapstructure:"sources"`
}

// LoadAPIConfig loads configuration for the query API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("server.idle_timeout", 120)
	setSharedDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateShared(&cfg.Database, &cfg.Sync, cfg.Sources); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadSweeperConfig loads configuration for the maintenance program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("sweep.page_size", domain.SWEEP_PAGE_SIZE)
	v.SetDefault("maintenance.interval", "10m")
	v.SetDefault("maintenance.sync_max_age", "30m")
	setSharedDefaults(v)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg SweeperConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateShared(&cfg.Database, &cfg.Sync, cfg.Sources); err != nil {
		return nil, err
	}
	if cfg.Maintenance.Interval <= 0 {
		return nil, errors.New("maintenance.interval must be positive")
	}
	if cfg.Sweep.PageSize <= 0 {
		return nil, errors.New("sweep.page_size must be positive")
	}

	return &cfg, nil
}

func setSharedDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.stream_name", "REGISTRY_EVENTS")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("cardano.mainnet_url", "https://cardano-mainnet.blockfrost.io/api/v0")
	v.SetDefault("cardano.preview_url", "https://cardano-preview.blockfrost.io/api/v0")
	v.SetDefault("cardano.preprod_url", "https://cardano-preprod.blockfrost.io/api/v0")
	v.SetDefault("cardano.http_timeout", "30s")
	v.SetDefault("cardano.retry_initial", "2s")
	v.SetDefault("cardano.retry_max_interval", "30s")
	v.SetDefault("cardano.retry_max_elapsed", "1m")
	v.SetDefault("cardano.rate_limit.requests_per_second", 10)
	v.SetDefault("cardano.rate_limit.burst", 500)
	v.SetDefault("cardano.rate_limit.max_queue_time", "2m")
	v.SetDefault("health.timeout", "5s")
	v.SetDefault("health.path", domain.DEFAULT_AVAILABILITY_PATH)
	v.SetDefault("health.cache_ttl", "30s")
	v.SetDefault("health.concurrency", 10)
	v.SetDefault("sync.page_size", domain.SYNC_PAGE_SIZE)
	v.SetDefault("sync.source_concurrency", 0)
	v.SetDefault("sync.asset_concurrency", 10)
	v.SetDefault("sync.resume_miss_policy", string(domain.ResumeMissReprocessPage))
	v.SetDefault("sync.recheck_after_wait", true)
	v.SetDefault("sync.wait_timeout", "0s")
	v.SetDefault("sync.run_timeout", "0s")
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func validateShared(db *DatabaseConfig, sync *SyncConfig, sources []SourceConfig) error {
	if db.Host == "" {
		return errors.New("database.host is required")
	}
	if db.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if !domain.IsValidResumeMissPolicy(sync.ResumeMissPolicy) {
		return fmt.Errorf("sync.resume_miss_policy is invalid: %q", sync.ResumeMissPolicy)
	}
	if sync.PageSize <= 0 {
		return errors.New("sync.page_size must be positive")
	}
	for i, s := range sources {
		if !domain.IsValidRegistryType(s.Type) {
			return fmt.Errorf("sources[%d].type is invalid: %q", i, s.Type)
		}
		if !domain.IsValidNetwork(s.Network) {
			return fmt.Errorf("sources[%d].network is invalid: %q", i, s.Network)
		}
		if s.Identifier == "" {
			return fmt.Errorf("sources[%d].identifier is required", i)
		}
		if s.APIKey == "" {
			return fmt.Errorf("sources[%d].api_key is required", i)
		}
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("FF_REGISTRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Cardano
		"cardano.mainnet_url",
		"cardano.preview_url",
		"cardano.preprod_url",
		"cardano.http_timeout",
		"cardano.retry_initial",
		"cardano.retry_max_interval",
		"cardano.retry_max_elapsed",
		"cardano.rate_limit.requests_per_second",
		"cardano.rate_limit.burst",
		"cardano.rate_limit.max_queue_time",
		// Redis
		"redis.addr",
		"redis.password",
		"redis.db",
		// Health
		"health.timeout",
		"health.path",
		"health.cache_ttl",
		"health.concurrency",
		// Sync
		"sync.page_size",
		"sync.source_concurrency",
		"sync.asset_concurrency",
		"sync.resume_miss_policy",
		"sync.recheck_after_wait",
		"sync.wait_timeout",
		"sync.run_timeout",
		// Sweep
		"sweep.page_size",
		"sweep.wait_timeout",
		"sweep.run_timeout",
		// Maintenance
		"maintenance.interval",
		"maintenance.sync_max_age",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile)) // later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
