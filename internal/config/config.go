package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
	CORS     CORSConfig
	Pools    PoolConfig
}

type ServerConfig struct {
	Host string
	Port int `validate:"min=1,max=65535"`
	Env  string
	// WriteTimeout must outlive a manual rebuild, which runs inside the request.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI    string
	DBName string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret string `validate:"required,min=32"`
}

type LoggingConfig struct {
	Level string `validate:"oneof=debug info warn error"`
}

type MetricsConfig struct {
	Enabled bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type PoolConfig struct {
	StoreDriver      string        `validate:"oneof=postgres mongo"`
	ScanPageSize     int           `validate:"min=1,max=10000"`
	MaxPoolSize      int           `validate:"min=1,max=5000"`
	WriteChunkSize   int           `validate:"min=1"`
	MaxBatchOps      int           `validate:"min=1"`
	OpsPerPool       int           `validate:"min=1"`
	ScheduleInterval time.Duration `validate:"gt=0"`
	RunTimeout       time.Duration `validate:"gt=0"`
	SchedulerEnabled bool
	StatsCacheTTL    time.Duration `validate:"gte=0"`
}

// Load loads configuration from environment variables or .env file
func Load() (*Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, envFile string) (*Config, error) {
	v.SetConfigFile(envFile)
	v.AutomaticEnv()
	setDefaults(v)

	// Try to read from .env file, but don't fail if it doesn't exist
	_ = v.ReadInConfig()

	config := &Config{
		Server: ServerConfig{
			Host:         v.GetString("SERVER_HOST"),
			Port:         v.GetInt("SERVER_PORT"),
			Env:          v.GetString("ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSL_MODE"),
		},
		Mongo: MongoConfig{
			URI:    v.GetString("MONGO_URI"),
			DBName: v.GetString("MONGO_DB"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Logging: LoggingConfig{
			Level: strings.ToLower(v.GetString("LOG_LEVEL")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Pools: PoolConfig{
			StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
			ScanPageSize:     v.GetInt("POOL_SCAN_PAGE_SIZE"),
			MaxPoolSize:      v.GetInt("POOL_MAX_SIZE"),
			WriteChunkSize:   v.GetInt("POOL_WRITE_CHUNK_SIZE"),
			MaxBatchOps:      v.GetInt("POOL_MAX_BATCH_OPS"),
			OpsPerPool:       v.GetInt("POOL_OPS_PER_POOL"),
			ScheduleInterval: v.GetDuration("POOL_SCHEDULE_INTERVAL"),
			RunTimeout:       v.GetDuration("POOL_RUN_TIMEOUT"),
			SchedulerEnabled: v.GetBool("POOL_SCHEDULER_ENABLED"),
			StatsCacheTTL:    v.GetDuration("POOL_STATS_CACHE_TTL"),
		},
	}

	// Validate critical configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8081)
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Minute)

	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("MONGO_DB", "discovery")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("POOL_SCAN_PAGE_SIZE", 500)
	v.SetDefault("POOL_MAX_SIZE", 5000)
	v.SetDefault("POOL_WRITE_CHUNK_SIZE", 250)
	v.SetDefault("POOL_MAX_BATCH_OPS", 500)
	v.SetDefault("POOL_OPS_PER_POOL", 2)
	v.SetDefault("POOL_SCHEDULE_INTERVAL", 10*time.Minute)
	v.SetDefault("POOL_RUN_TIMEOUT", 9*time.Minute)
	v.SetDefault("POOL_SCHEDULER_ENABLED", true)
	v.SetDefault("POOL_STATS_CACHE_TTL", time.Minute)
}

// Validate validates critical configuration values
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Pools.StoreDriver {
	case StoreDriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	case StoreDriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo URI is required")
		}
	}

	if c.Redis.Enabled && c.Redis.Host == "" {
		return fmt.Errorf("redis host is required when redis is enabled")
	}
	if ops := c.Pools.WriteChunkSize * c.Pools.OpsPerPool; ops > c.Pools.MaxBatchOps {
		return fmt.Errorf("pool write chunk of %d pools needs %d operations, batch limit is %d",
			c.Pools.WriteChunkSize, ops, c.Pools.MaxBatchOps)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < c.Pools.RunTimeout {
		return fmt.Errorf("server write timeout %s is shorter than pool run timeout %s",
			c.Server.WriteTimeout, c.Pools.RunTimeout)
	}
	return nil
}

// IsProduction reports whether ENV=production.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// GetAddr returns Redis address
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
