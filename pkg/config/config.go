package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "SWIFTCART"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SWIFTCART_DB_DSN"
	EnvDBHost = "SWIFTCART_DB_HOST"
	EnvDBUser = "SWIFTCART_DB_USER"
	EnvDBName = "SWIFTCART_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Razorpay     RazorpayConfig
	SMTP         SMTPConfig
	Payments     PaymentsConfig
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
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SWIFTCART_APP_ENV" required:"true"`
	Port         string `envconfig:"SWIFTCART_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SWIFTCART_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SWIFTCART_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SWIFTCART_DB_DSN"`
	Driver string `envconfig:"SWIFTCART_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SWIFTCART_DB_HOST"`
	LegacyPort     int    `envconfig:"SWIFTCART_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SWIFTCART_DB_USER"`
	LegacyPassword string `envconfig:"SWIFTCART_DB_PASSWORD"`
	LegacyName     string `envconfig:"SWIFTCART_DB_NAME"`
	LegacySSLMode  string `envconfig:"SWIFTCART_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SWIFTCART_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SWIFTCART_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SWIFTCART_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SWIFTCART_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SWIFTCART_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SWIFTCART_REDIS_ADDR"`
	Password     string        `envconfig:"SWIFTCART_REDIS_PASSWORD"`
	DB           int           `envconfig:"SWIFTCART_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SWIFTCART_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SWIFTCART_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SWIFTCART_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SWIFTCART_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SWIFTCART_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SWIFTCART_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SWIFTCART_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SWIFTCART_JWT_EXPIRATION_MINUTES" default:"60"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SWIFTCART_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"SWIFTCART_RAZORPAY_KEY_SECRET"`
	BaseURL   string `envconfig:"SWIFTCART_RAZORPAY_BASE_URL" default:"https://api.razorpay.com/v1"`
}

type SMTPConfig struct {
	Host string `envconfig:"SWIFTCART_SMTP_HOST"`
	Port string `envconfig:"SWIFTCART_SMTP_PORT" default:"587"`
	From string `envconfig:"SWIFTCART_SMTP_FROM"`
}

type PaymentsConfig struct {
	VerificationTokenTTL time.Duration `envconfig:"SWIFTCART_PAYMENT_VERIFICATION_TOKEN_TTL" default:"30m"`
	IdempotencyTTL       time.Duration `envconfig:"SWIFTCART_PAYMENT_IDEMPOTENCY_TTL" default:"168h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SWIFTCART_AUTO_MIGRATE" default:"false"`
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
