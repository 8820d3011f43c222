package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	Commerce CommerceConfig
	Events   EventsConfig
	Cache    CacheConfig
	Cart     CartConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREFRONT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREFRONT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOREFRONT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREFRONT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type CommerceConfig struct {
	StoreDomain      string        `envconfig:"STOREFRONT_COMMERCE_STORE_DOMAIN"`
	APIVersion       string        `envconfig:"STOREFRONT_COMMERCE_API_VERSION" default:"2024-10"`
	StorefrontToken  string        `envconfig:"STOREFRONT_COMMERCE_STOREFRONT_TOKEN"`
	AdminToken       string        `envconfig:"STOREFRONT_COMMERCE_ADMIN_TOKEN"`
	DefaultCurrency  string        `envconfig:"STOREFRONT_COMMERCE_CURRENCY" default:"USD"`
	RequestTimeout   time.Duration `envconfig:"STOREFRONT_COMMERCE_REQUEST_TIMEOUT" default:"10s"`
	RetryMaxAttempts int           `envconfig:"STOREFRONT_COMMERCE_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay   time.Duration `envconfig:"STOREFRONT_COMMERCE_RETRY_BASE_DELAY" default:"250ms"`
}

// Configured reports whether the storefront API credentials are present.
func (c CommerceConfig) Configured() bool {
	return c.StoreDomain != "" && c.StorefrontToken != ""
}

// AdminConfigured reports whether the admin API (order lookup) is usable.
func (c CommerceConfig) AdminConfigured() bool {
	return c.StoreDomain != "" && c.AdminToken != ""
}

type EventsConfig struct {
	ClientID       string        `envconfig:"STOREFRONT_EVENTS_CLIENT_ID"`
	AccountID      string        `envconfig:"STOREFRONT_EVENTS_ACCOUNT_ID"`
	SiteID         string        `envconfig:"STOREFRONT_EVENTS_SITE_ID"`
	SiteURL        string        `envconfig:"STOREFRONT_EVENTS_SITE_URL"`
	RequestTimeout time.Duration `envconfig:"STOREFRONT_EVENTS_REQUEST_TIMEOUT" default:"10s"`
}

// Configured reports whether the events platform credentials are present.
func (e EventsConfig) Configured() bool {
	return e.ClientID != "" && e.AccountID != ""
}

type CacheConfig struct {
	MaxEntries   int           `envconfig:"STOREFRONT_CACHE_MAX_ENTRIES" default:"1000"`
	DefaultTTL   time.Duration `envconfig:"STOREFRONT_CACHE_DEFAULT_TTL" default:"5m"`
	ProductsTTL  time.Duration `envconfig:"STOREFRONT_CACHE_PRODUCTS_TTL" default:"10m"`
	InventoryTTL time.Duration `envconfig:"STOREFRONT_CACHE_INVENTORY_TTL" default:"2m"`
	CheckoutTTL  time.Duration `envconfig:"STOREFRONT_CACHE_CHECKOUT_TTL" default:"30s"`
	EventsTTL    time.Duration `envconfig:"STOREFRONT_CACHE_EVENTS_TTL" default:"5m"`
}

type CartConfig struct {
	CheckDebounce time.Duration `envconfig:"STOREFRONT_CART_CHECK_DEBOUNCE" default:"200ms"`
	CheckInterval time.Duration `envconfig:"STOREFRONT_CART_CHECK_INTERVAL" default:"30s"`
	FlashDuration time.Duration `envconfig:"STOREFRONT_CART_FLASH_DURATION" default:"1s"`
}

type SessionConfig struct {
	CookieName string        `envconfig:"STOREFRONT_SESSION_COOKIE" default:"storefront_session"`
	IdleTTL    time.Duration `envconfig:"STOREFRONT_SESSION_IDLE_TTL" default:"30m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOREFRONT_REDIS_URL"`
	Address      string        `envconfig:"STOREFRONT_REDIS_ADDR"`
	Password     string        `envconfig:"STOREFRONT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOREFRONT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOREFRONT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOREFRONT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOREFRONT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOREFRONT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Configured reports whether a Redis endpoint is available for session
// persistence. When absent the cart falls back to in-process storage.
func (r RedisConfig) Configured() bool {
	return r.URL != "" || r.Address != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"STOREFRONT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}
