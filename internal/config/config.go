package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Kilat-Pet-Delivery/service-trip/internal/domain/trip"
)

// Store and pending-store drivers.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"

	PendingMemory = "memory"
	PendingRedis  = "redis"
)

// ServiceConfig holds all configuration for the trip booking service.
type ServiceConfig struct {
	Port     string            `mapstructure:"service_port"`
	AppEnv   string            `mapstructure:"app_env"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	JWT      JWTConfig         `mapstructure:"jwt"`
	Auth     AuthConfig        `mapstructure:"auth"`
	Booking  BookingConfig     `mapstructure:"booking"`
	Pricing  trip.PricingTable `mapstructure:"pricing"`
	CORS     CORSConfig        `mapstructure:"cors"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN returns the key/value connection string used by gorm.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// DatabaseURL returns the URL form used by golang-migrate.
func (d DatabaseConfig) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Enabled       bool     `mapstructure:"enabled"`
	Brokers       []string `mapstructure:"brokers"`
	GroupPrefix   string   `mapstructure:"group_prefix"`
	BookingTopic  string   `mapstructure:"booking_topic"`
	ScheduleTopic string   `mapstructure:"schedule_topic"`
}

type JWTConfig struct {
	Secret    string        `mapstructure:"secret"`
	AccessTTL time.Duration `mapstructure:"access_ttl"`
}

// AuthConfig lists the emails that sign in with the admin role.
type AuthConfig struct {
	AdminEmails []string `mapstructure:"admin_emails"`
}

// BookingConfig controls the booking lifecycle and its storage.
type BookingConfig struct {
	StoreDriver        string        `mapstructure:"store_driver"`
	FilePath           string        `mapstructure:"file_path"`
	PendingDriver      string        `mapstructure:"pending_driver"`
	PendingTTL         time.Duration `mapstructure:"pending_ttl"`
	ConfirmDelay       time.Duration `mapstructure:"confirm_delay"`
	CancellationCutoff time.Duration `mapstructure:"cancellation_cutoff"`
	TimeZone           string        `mapstructure:"timezone"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from defaults, an optional config.yaml and TRIP_* environment variables.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// TRIP_DATABASE_HOST -> database.host
	v.SetEnvPrefix("TRIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ServiceConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !strings.HasPrefix(cfg.Port, ":") {
		cfg.Port = ":" + cfg.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_port", ":8080")
	v.SetDefault("app_env", "development")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "trip")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "trip_booking")
	v.SetDefault("database.sslmode", "disable")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.group_prefix", "")
	v.SetDefault("kafka.booking_topic", "booking.events")
	v.SetDefault("kafka.schedule_topic", "trip.schedule.events")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.access_ttl", "24h")

	v.SetDefault("auth.admin_emails", []string{})

	v.SetDefault("booking.store_driver", StoreMemory)
	v.SetDefault("booking.file_path", "data/bookings.json")
	v.SetDefault("booking.pending_driver", PendingMemory)
	v.SetDefault("booking.pending_ttl", "30m")
	v.SetDefault("booking.confirm_delay", "0s")
	v.SetDefault("booking.cancellation_cutoff", "2h")
	v.SetDefault("booking.timezone", "UTC")

	p := trip.DefaultPricingTable()
	v.SetDefault("pricing.currency", p.Currency)
	v.SetDefault("pricing.base_fare_cents", p.BaseFareCents)
	v.SetDefault("pricing.per_km_cents", p.PerKmCents)
	v.SetDefault("pricing.per_extra_passenger_cents", p.PerExtraPassengerCents)
	v.SetDefault("pricing.service_fee.fixed_cents", p.ServiceFee.FixedCents)
	v.SetDefault("pricing.service_fee.basis_points", p.ServiceFee.BasisPoints)
	v.SetDefault("pricing.tax.fixed_cents", p.Tax.FixedCents)
	v.SetDefault("pricing.tax.basis_points", p.Tax.BasisPoints)
	v.SetDefault("pricing.nominal_distance_km", p.NominalDistanceKm)
	v.SetDefault("pricing.fast_speed_kmh", p.FastSpeedKmh)
	v.SetDefault("pricing.slow_speed_kmh", p.SlowSpeedKmh)
	v.SetDefault("pricing.min_duration_floor_minutes", p.MinDurationFloor)
	v.SetDefault("pricing.max_duration_floor_minutes", p.MaxDurationFloor)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Location returns the time zone travel dates are interpreted in.
func (c *ServiceConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Booking.TimeZone)
}

// IsAdminEmail returns true if email is configured as an administrator.
func (c *ServiceConfig) IsAdminEmail(email string) bool {
	for _, e := range c.Auth.AdminEmails {
		if strings.EqualFold(strings.TrimSpace(e), strings.TrimSpace(email)) {
			return true
		}
	}
	return false
}

// Validate checks that required configuration fields are present and sane.
func (c *ServiceConfig) Validate() error {
	var errs []string

	if c.JWT.Secret == "" {
		errs = append(errs, "jwt.secret is required")
	}
	if c.JWT.AccessTTL <= 0 {
		errs = append(errs, "jwt.access_ttl must be positive")
	}

	switch c.Booking.StoreDriver {
	case StoreMemory:
	case StoreFile:
		if c.Booking.FilePath == "" {
			errs = append(errs, "booking.file_path is required for the file store")
		}
	case StorePostgres:
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("booking.store_driver must be memory, file or postgres, got %q", c.Booking.StoreDriver))
	}

	switch c.Booking.PendingDriver {
	case PendingMemory:
	case PendingRedis:
		if c.Redis.Addr == "" {
			errs = append(errs, "redis.addr is required for the redis pending store")
		}
	default:
		errs = append(errs, fmt.Sprintf("booking.pending_driver must be memory or redis, got %q", c.Booking.PendingDriver))
	}

	if c.Booking.PendingTTL <= 0 {
		errs = append(errs, "booking.pending_ttl must be positive")
	}
	if c.Booking.ConfirmDelay < 0 {
		errs = append(errs, "booking.confirm_delay must not be negative")
	}
	if c.Booking.CancellationCutoff < 0 {
		errs = append(errs, "booking.cancellation_cutoff must not be negative")
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("booking.timezone: %v", err))
	}

	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, "kafka.brokers is required when kafka is enabled")
	}

	if err := c.Pricing.Validate(); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
