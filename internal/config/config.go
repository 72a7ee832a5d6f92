// internal/config/config.go
package config

import (
	"runtime"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	Cache    CacheConfig
	Objects  ObjectStoreConfig
	Risk     RiskConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// DatabaseConfig points at the read-only database holding shipment and batch rows.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SourceConfig names the existing tables the SQL source reads from.
type SourceConfig struct {
	Enabled        bool
	ShipmentsTable string
	BatchesTable   string
	PricesTable    string
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ResultTTLSeconds int
}

// ObjectStoreConfig is the S3-compatible bucket feeds are read from and
// results archived to.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type RiskConfig struct {
	MinDailySales    float64
	MinSeasonalIndex float64
	Workers          int
}

type LogConfig struct {
	Level  string
	Format string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration once per process from .env and the environment.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "inventory")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SOURCE_ENABLED", false)
	v.SetDefault("SOURCE_SHIPMENTS_TABLE", "shipments")
	v.SetDefault("SOURCE_BATCHES_TABLE", "inventory_batches")
	v.SetDefault("SOURCE_PRICES_TABLE", "")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_RESULT_TTL_SECONDS", 300)
	v.SetDefault("OBJECT_STORE_ENDPOINT", "")
	v.SetDefault("OBJECT_STORE_ACCESS_KEY", "")
	v.SetDefault("OBJECT_STORE_SECRET_KEY", "")
	v.SetDefault("OBJECT_STORE_BUCKET", "")
	v.SetDefault("OBJECT_STORE_REGION", "us-east-1")
	v.SetDefault("OBJECT_STORE_USE_SSL", true)
	v.SetDefault("RISK_MIN_DAILY_SALES", 0.5)
	v.SetDefault("RISK_MIN_SEASONAL_INDEX", 0.3)
	v.SetDefault("PIPELINE_WORKERS", runtime.NumCPU())
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

// FromViper builds a Config from v after applying defaults and AutomaticEnv.
func FromViper(v *viper.Viper) *Config {
	SetDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Source: SourceConfig{
			Enabled:        v.GetBool("SOURCE_ENABLED"),
			ShipmentsTable: v.GetString("SOURCE_SHIPMENTS_TABLE"),
			BatchesTable:   v.GetString("SOURCE_BATCHES_TABLE"),
			PricesTable:    v.GetString("SOURCE_PRICES_TABLE"),
		},
		Cache: CacheConfig{
			Enabled:          v.GetBool("CACHE_ENABLED"),
			RedisURL:         v.GetString("REDIS_URL"),
			RedisHost:        v.GetString("REDIS_HOST"),
			RedisPort:        v.GetString("REDIS_PORT"),
			RedisPassword:    v.GetString("REDIS_PASSWORD"),
			RedisDB:          v.GetInt("REDIS_DB"),
			ResultTTLSeconds: v.GetInt("CACHE_RESULT_TTL_SECONDS"),
		},
		Objects: ObjectStoreConfig{
			Endpoint:  v.GetString("OBJECT_STORE_ENDPOINT"),
			AccessKey: v.GetString("OBJECT_STORE_ACCESS_KEY"),
			SecretKey: v.GetString("OBJECT_STORE_SECRET_KEY"),
			Bucket:    v.GetString("OBJECT_STORE_BUCKET"),
			Region:    v.GetString("OBJECT_STORE_REGION"),
			UseSSL:    v.GetBool("OBJECT_STORE_USE_SSL"),
		},
		Risk: RiskConfig{
			MinDailySales:    v.GetFloat64("RISK_MIN_DAILY_SALES"),
			MinSeasonalIndex: v.GetFloat64("RISK_MIN_SEASONAL_INDEX"),
			Workers:          v.GetInt("PIPELINE_WORKERS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// DSN returns the connection string for the source database.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return "host=" + c.Host + " port=" + c.Port + " user=" + c.User +
		" password=" + c.Password + " dbname=" + c.DBName + " sslmode=" + c.SSLMode
}
