package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"time"

	"github.com/Psychoriddler/Emergilink-prototype/internal/domain/types"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/configparser"
	"github.com/Psychoriddler/Emergilink-prototype/pkg/logger"
)

// Flags
var (
	modeFlag = flag.String("mode", "", "application mode: emergency-service | notifier-service")
)

// Errors
var (
	ErrModeNotProvided = errors.New("mode flag not provided")
	ErrInvalidMode     = errors.New("unknown mode")
)

// Config contains all configuration variables of the application
type (
	Config struct {
		Mode     types.ServiceMode
		LogLevel string `env:"LOG_LEVEL" default:"INFO"`

		Server      ServerConfig
		Storage     StorageConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		RabbitMQ    RabbitMQConfig
		Matcher     MatcherConfig
		Registry    RegistryConfig
		Notifier    NotifierConfig
		Alerts      AlertsConfig
		Directory   DirectoryConfig
		SOS         SOSConfig
		Auth        Auth
		RateLimit   RateLimitConfig
		Gateway     GatewayConfig
		ExternalAPI ExternalAPIConfig
		Scheduler   SchedulerConfig
	}

	ServerConfig struct {
		Host         string        `env:"SERVER_HOST" default:"0.0.0.0"`
		Port         string        `env:"SERVER_PORT" default:"8080"`
		ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"10s"`
		WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"15s"`
	}

	StorageConfig struct {
		Driver types.StorageDriver `env:"STORAGE_DRIVER" default:"memory"`
	}

	DatabaseConfig struct {
		Host     string `env:"DATABASE_HOST" default:"localhost"`
		Port     string `env:"DATABASE_PORT" default:"5432"`
		User     string `env:"DATABASE_USER" default:"emergilink"`
		Password string `env:"DATABASE_PASSWORD" default:"emergilink"`
		Database string `env:"DATABASE_DATABASE" default:"emergilink"`

		MaxConns int32 `env:"DATABASE_MAXCONNS" default:"20"`
	}

	RedisConfig struct {
		Host     string `env:"REDIS_HOST" default:"localhost"`
		Port     string `env:"REDIS_PORT" default:"6379"`
		Password string `env:"REDIS_PASSWORD"`
		DB       int    `env:"REDIS_DB" default:"0"`
	}

	RabbitMQConfig struct {
		Host     string `env:"RABBITMQ_HOST" default:"localhost"`
		Port     string `env:"RABBITMQ_PORT" default:"5672"`
		User     string `env:"RABBITMQ_USER" default:"guest"`
		Password string `env:"RABBITMQ_PASSWORD" default:"guest"`
		Prefetch int    `env:"RABBITMQ_PREFETCH" default:"16"`
	}

	MatcherConfig struct {
		InitialRadiusKm float64       `env:"MATCHER_INITIAL_RADIUS_KM" default:"5"`
		RadiusSteps     int           `env:"MATCHER_RADIUS_STEPS" default:"3"`
		MaxAttempts     int           `env:"MATCHER_MAX_ATTEMPTS" default:"3"`
		Budget          time.Duration `env:"MATCHER_BUDGET" default:"3s"`
		AvgSpeedKmh     float64       `env:"MATCHER_AVG_SPEED_KMH" default:"40"`
		CostWeight      float64       `env:"MATCHER_COST_WEIGHT" default:"0"`
		CancelWindow    time.Duration `env:"MATCHER_CANCEL_WINDOW" default:"2m"`
		MaxServiceTime  time.Duration `env:"MATCHER_MAX_SERVICE_TIME" default:"6h"`
	}

	RegistryConfig struct {
		HoldTTL time.Duration `env:"REGISTRY_HOLD_TTL" default:"30s"`
	}

	NotifierConfig struct {
		// Ledger is redis | memory, Channel is rabbit | log.
		Ledger      string        `env:"NOTIFIER_LEDGER" default:"memory"`
		Channel     string        `env:"NOTIFIER_CHANNEL" default:"log"`
		LedgerTTL   time.Duration `env:"NOTIFIER_LEDGER_TTL" default:"24h"`
		Attempts    int           `env:"NOTIFIER_RETRY_ATTEMPTS" default:"3"`
		BaseBackoff time.Duration `env:"NOTIFIER_RETRY_BASE" default:"200ms"`
		MaxBackoff  time.Duration `env:"NOTIFIER_RETRY_CAP" default:"2s"`
		Parallelism int           `env:"NOTIFIER_PARALLELISM" default:"8"`
	}

	AlertsConfig struct {
		DefaultRadiusKm float64       `env:"ALERTS_DEFAULT_RADIUS_KM" default:"10"`
		SnapshotTTL     time.Duration `env:"ALERTS_SNAPSHOT_TTL" default:"5s"`
	}

	DirectoryConfig struct {
		CacheTTL time.Duration `env:"DIRECTORY_CACHE_TTL" default:"1m"`
	}

	SOSConfig struct {
		StallAfter time.Duration `env:"SOS_STALL_AFTER" default:"1m"`
	}

	Auth struct {
		Enabled        bool          `env:"AUTH_ENABLED" default:"false"`
		AccessTokenTTL time.Duration `env:"AUTH_ACCESS_TOKEN_TTL" default:"24h"`
		JWTSecret      string        `env:"AUTH_JWT_SECRET" default:"supersecretkey"`
	}

	RateLimitConfig struct {
		// Rate uses the limiter format, e.g. 100-M. Empty disables limiting.
		Rate string `env:"RATE_LIMIT" default:"300-M"`
	}

	GatewayConfig struct {
		URL     string        `env:"GATEWAY_URL" default:"http://localhost:9090/notify"`
		Token   string        `env:"GATEWAY_TOKEN"`
		Timeout time.Duration `env:"GATEWAY_TIMEOUT" default:"5s"`
	}

	ExternalAPIConfig struct {
		LocationIQapiKey  string        `env:"LOCATIONIQ_API_KEY"`
		LocationIQBaseURL string        `env:"LOCATIONIQ_BASE_URL" default:"https://us1.locationiq.com/v1"`
		Timeout           time.Duration `env:"LOCATIONIQ_TIMEOUT" default:"2s"`
	}

	SchedulerConfig struct {
		FeedSync     string `env:"SCHEDULER_FEED_SYNC" default:"@every 15s"`
		HoldSweep    string `env:"SCHEDULER_HOLD_SWEEP" default:"@every 5s"`
		SOSResume    string `env:"SCHEDULER_SOS_RESUME" default:"@every 30s"`
		BookingSweep string `env:"SCHEDULER_BOOKING_SWEEP" default:"@every 1m"`
	}
)

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

func (c DatabaseConfig) GetMaxConns() int32 {
	return c.MaxConns
}

func (c RedisConfig) GetAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c RedisConfig) GetPassword() string {
	return c.Password
}

func (c RedisConfig) GetDB() int {
	return c.DB
}

func (c RabbitMQConfig) GetDSN() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/",
		c.User,
		c.Password,
		c.Host,
		c.Port,
	)
}

func NewConfig(filepath string) (*Config, error) {
	cfg := &Config{}

	// Loading enviromental variables and parsing to config struct.
	if err := configparser.LoadAndParseYaml(filepath, cfg); err != nil {
		return nil, fmt.Errorf("failed to load and parse config: %w", err)
	}

	// Parsing flags
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseFlags(cfg *Config) error {
	if modeFlag == nil || *modeFlag == "" {
		return ErrModeNotProvided
	}

	cfg.Mode = types.ServiceMode(*modeFlag)

	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case types.EmergencyService, types.NotifierService:
	default:
		return fmt.Errorf("%w: %s", ErrInvalidMode, c.Mode)
	}

	switch c.Storage.Driver {
	case types.StoragePostgres, types.StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}

	switch c.Notifier.Ledger {
	case "redis", "memory":
	default:
		return fmt.Errorf("unknown notifier ledger: %s", c.Notifier.Ledger)
	}

	switch c.Notifier.Channel {
	case "rabbit", "log":
	default:
		return fmt.Errorf("unknown notifier channel: %s", c.Notifier.Channel)
	}

	if !logger.ValidateLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.Auth.Enabled && c.Auth.JWTSecret == "" {
		return errors.New("auth is enabled but AUTH_JWT_SECRET is empty")
	}

	return nil
}

// LoadAuth reads only the auth section. Used by -issue-token, which runs without a mode.
func LoadAuth(filepath string) (*Auth, error) {
	auth := &Auth{}
	if err := configparser.LoadAndParseYaml(filepath, auth); err != nil {
		return nil, fmt.Errorf("failed to load and parse auth config: %w", err)
	}
	return auth, nil
}
