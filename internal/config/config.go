package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server              ServerConfig
	Database            DatabaseConfig
	Redis               RedisConfig
	Kafka               KafkaConfig
	CustomerService     ServiceConfig
	CatalogService      ServiceConfig
	NotificationService ServiceConfig
	Features            FeatureFlags
	Pricing             PricingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
	RateTTL  time.Duration
}

type KafkaConfig struct {
	Brokers        []string
	OrdersTopic    string
	CustomersTopic string
	ConsumerGroup  string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

type FeatureFlags struct {
	EnableOrderCaching  bool
	EnableRateCaching   bool
	EnableOrderEvents   bool
	EnableNotifications bool
}

// PricingConfig carries the pricing policy knobs. The reference width is
// fixed by the trade (rates are always quoted for 44-inch rolls); the tax
// default applies when the catalogue has no rate for a SKU.
type PricingConfig struct {
	DefaultTaxRatePercent float64
	MaxDiscountPercent    float64
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8084),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "paperkart"),
			Password:     getEnvString("DB_PASSWORD", "paperkart"),
			Name:         getEnvString("DB_NAME", "paperkart_sales"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 300)) * time.Second,
			RateTTL:  time.Duration(getEnvInt("REDIS_RATE_TTL", 600)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:        getEnvList("KAFKA_BROKERS", "localhost:9092"),
			OrdersTopic:    getEnvString("KAFKA_ORDERS_TOPIC", "sales.orders"),
			CustomersTopic: getEnvString("KAFKA_CUSTOMERS_TOPIC", "masters.customers"),
			ConsumerGroup:  getEnvString("KAFKA_CONSUMER_GROUP", "sales-service"),
		},
		CustomerService: ServiceConfig{
			BaseURL: getEnvString("CUSTOMER_SERVICE_URL", "http://localhost:8081"),
			Timeout: time.Duration(getEnvInt("CUSTOMER_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("CUSTOMER_SERVICE_API_KEY", ""),
		},
		CatalogService: ServiceConfig{
			BaseURL: getEnvString("CATALOG_SERVICE_URL", "http://localhost:8082"),
			Timeout: time.Duration(getEnvInt("CATALOG_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("CATALOG_SERVICE_API_KEY", ""),
		},
		NotificationService: ServiceConfig{
			BaseURL: getEnvString("NOTIFICATION_SERVICE_URL", "http://localhost:8083"),
			Timeout: time.Duration(getEnvInt("NOTIFICATION_SERVICE_TIMEOUT", 10)) * time.Second,
			APIKey:  getEnvString("NOTIFICATION_SERVICE_API_KEY", ""),
		},
		Features: FeatureFlags{
			EnableOrderCaching:  getEnvBool("FEATURE_ORDER_CACHING", true),
			EnableRateCaching:   getEnvBool("FEATURE_RATE_CACHING", true),
			EnableOrderEvents:   getEnvBool("FEATURE_ORDER_EVENTS", true),
			EnableNotifications: getEnvBool("FEATURE_NOTIFICATIONS", true),
		},
		Pricing: PricingConfig{
			DefaultTaxRatePercent: getEnvFloat("PRICING_DEFAULT_TAX_RATE", 18),
			MaxDiscountPercent:    getEnvFloat("PRICING_MAX_DISCOUNT", 100),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
