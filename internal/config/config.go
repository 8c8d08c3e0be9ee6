package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvDev  = "dev"
	EnvProd = "prod"
)

// Configはアプリ全体の設定
type Config struct {
	App       AppConfig
	DB        DBConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port     string `envconfig:"PORT" default:"8080"`
	GoEnv    string `envconfig:"GO_ENV" default:"dev"`
	FEURL    string `envconfig:"FE_URL"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// json / console
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	//warnにもスタックを付ける
	LogWarnStack bool `envconfig:"LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.GoEnv, EnvDev)
}

type DBConfig struct {
	// postgres / sqlite
	Driver string `envconfig:"DB_DRIVER" default:"postgres"`
	URL    string `envconfig:"DATABASE_URL"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:"postgres"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"storefront"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SQLITE_PATH" default:"storefront.db"`

	AutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

// DATABASE_URLがあれば最優先
func (d DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.PostgresHost, d.PostgresPort, d.PostgresUser, d.PostgresPassword, d.PostgresDB, d.PostgresSSLMode,
	)
}

type AuthConfig struct {
	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"`
	AccessTTL     time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTTL    time.Duration `envconfig:"REFRESH_TOKEN_TTL" default:"336h"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	//匿名カートのcookie寿命
	SessionMaxAge time.Duration `envconfig:"SESSION_MAX_AGE" default:"720h"`
	CookieSecure  bool          `envconfig:"COOKIE_SECURE" default:"false"`
	CookieDomain  string        `envconfig:"COOKIE_DOMAIN"`
}

// 空ならレート制限は無効
type RedisConfig struct {
	URL         string        `envconfig:"REDIS_URL"`
	PoolSize    int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
}

type RateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit     int           `envconfig:"RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginUserLimit   int           `envconfig:"RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	RegisterWindow   time.Duration `envconfig:"RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit  int           `envconfig:"RATE_LIMIT_REGISTER_IP_LIMIT" default:"10"`
	AddToCartWindow  time.Duration `envconfig:"RATE_LIMIT_CART_WINDOW" default:"1m"`
	AddToCartIPLimit int           `envconfig:"RATE_LIMIT_CART_IP_LIMIT" default:"120"`
}

// Loadは.env(あれば)と環境変数から設定を読む
func Load() (*Config, error) {
	// .envが無いのは正常
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver)
	}
	// securecookieのハッシュキーは32byte以上を推奨
	if len(c.Auth.SessionSecret) < 32 {
		return errors.New("SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

// cmd/initdb用。管理者はADMIN_PASSWORDがあるときだけ作る
type SeedConfig struct {
	App   AppConfig
	DB    DBConfig
	Admin AdminSeedConfig
}

type AdminSeedConfig struct {
	Username string `envconfig:"ADMIN_USERNAME" default:"admin"`
	Email    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	Password string `envconfig:"ADMIN_PASSWORD"`
}

// JWT/セッションの秘密鍵は不要
func LoadSeed() (*SeedConfig, error) {
	_ = godotenv.Load()

	var cfg SeedConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
