package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Pricing      PricingConfig
	Payment      PaymentConfig
	Download     DownloadConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRAMSHEETS_APP_ENV" required:"true"`
	Port         string `envconfig:"CRAMSHEETS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CRAMSHEETS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRAMSHEETS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CRAMSHEETS_DB_DSN"`
	Driver string `envconfig:"CRAMSHEETS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CRAMSHEETS_DB_HOST"`
	LegacyPort     int    `envconfig:"CRAMSHEETS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CRAMSHEETS_DB_USER"`
	LegacyPassword string `envconfig:"CRAMSHEETS_DB_PASSWORD"`
	LegacyName     string `envconfig:"CRAMSHEETS_DB_NAME"`
	LegacySSLMode  string `envconfig:"CRAMSHEETS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CRAMSHEETS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CRAMSHEETS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CRAMSHEETS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CRAMSHEETS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CRAMSHEETS_REDIS_URL"`
	Address      string        `envconfig:"CRAMSHEETS_REDIS_ADDR"`
	Password     string        `envconfig:"CRAMSHEETS_REDIS_PASSWORD"`
	DB           int           `envconfig:"CRAMSHEETS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CRAMSHEETS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CRAMSHEETS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CRAMSHEETS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CRAMSHEETS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CRAMSHEETS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CRAMSHEETS_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CRAMSHEETS_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"CRAMSHEETS_JWT_EXPIRATION_MINUTES" default:"60"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CRAMSHEETS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CRAMSHEETS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CRAMSHEETS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CRAMSHEETS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CRAMSHEETS_ARGON_KEY_LEN" default:"32"`
}

// PricingConfig drives the bundle discount applied at checkout.
type PricingConfig struct {
	BundleDiscountPercent int `envconfig:"CRAMSHEETS_BUNDLE_DISCOUNT_PERCENT" default:"10"`
}

func (p PricingConfig) validate() error {
	if p.BundleDiscountPercent < 0 || p.BundleDiscountPercent > 100 {
		return fmt.Errorf("bundle discount percent must be between 0 and 100, got %d", p.BundleDiscountPercent)
	}
	return nil
}

// PaymentConfig describes the transfer destination encoded into payment codes.
type PaymentConfig struct {
	BeneficiaryAccount string `envconfig:"CRAMSHEETS_PAYMENT_ACCOUNT" required:"true"`
	BeneficiaryName    string `envconfig:"CRAMSHEETS_PAYMENT_BENEFICIARY" default:"CramSheets"`
	Currency           string `envconfig:"CRAMSHEETS_PAYMENT_CURRENCY" default:"EUR"`
	ReferencePrefix    string `envconfig:"CRAMSHEETS_PAYMENT_REFERENCE_PREFIX" default:"CS"`
}

// DownloadConfig controls signed download link issuance.
type DownloadConfig struct {
	SigningSecret string        `envconfig:"CRAMSHEETS_DOWNLOAD_SIGNING_SECRET" required:"true"`
	BaseURL       string        `envconfig:"CRAMSHEETS_DOWNLOAD_BASE_URL" default:"/files"`
	URLTTL        time.Duration `envconfig:"CRAMSHEETS_DOWNLOAD_URL_TTL" default:"15m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"CRAMSHEETS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
