package config

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	RabbitMQ    RabbitMQConfig    `mapstructure:"rabbitmq"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	Eligibility EligibilityConfig `mapstructure:"eligibility"`
	Batch       BatchConfig       `mapstructure:"batch"`
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Auth         AuthConfig      `mapstructure:"auth"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

type RabbitMQConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	ExchangeName   string `mapstructure:"exchangeName"`
	NarrationQueue string `mapstructure:"narrationQueue"`
}

// RedisConfig backs the shared rate limiter. An empty Addr keeps limiting in memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Token      string        `mapstructure:"token"`
	Debug      bool          `mapstructure:"debug"`
	SummaryTTL time.Duration `mapstructure:"summaryTTL"`
}

type EligibilityConfig struct {
	ComputeDelay      time.Duration `mapstructure:"computeDelay"`
	NarrationDelay    time.Duration `mapstructure:"narrationDelay"`
	NarrationLanguage string        `mapstructure:"narrationLanguage"`
	NarrationRate     float64       `mapstructure:"narrationRate"`
	NarrationPitch    float64       `mapstructure:"narrationPitch"`
}

type BatchConfig struct {
	LimiterCleanupSchedule string `mapstructure:"limiterCleanupSchedule"`
	SummaryPruneSchedule   string `mapstructure:"summaryPruneSchedule"`
}

func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 15*time.Second)
	viper.SetDefault("server.writeTimeout", 15*time.Second)
	viper.SetDefault("server.idleTimeout", 60*time.Second)
	viper.SetDefault("server.rateLimit.enabled", true)
	viper.SetDefault("server.rateLimit.rps", 10)
	viper.SetDefault("server.rateLimit.burst", 20)
	viper.SetDefault("server.auth.enabled", false)
	viper.SetDefault("server.auth.jwtSecret", "")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchangeName", "loan-eligibility")
	viper.SetDefault("rabbitmq.narrationQueue", "loan-eligibility.narrations")
	viper.SetDefault("redis.addr", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("telegram.enabled", false)
	viper.SetDefault("telegram.token", "")
	viper.SetDefault("telegram.debug", false)
	viper.SetDefault("telegram.summaryTTL", 24*time.Hour)
	viper.SetDefault("eligibility.computeDelay", 1200*time.Millisecond)
	viper.SetDefault("eligibility.narrationDelay", 500*time.Millisecond)
	viper.SetDefault("eligibility.narrationLanguage", "en-IN")
	viper.SetDefault("eligibility.narrationRate", 0.95)
	viper.SetDefault("eligibility.narrationPitch", 1.0)
	viper.SetDefault("batch.limiterCleanupSchedule", "@every 10m")
	viper.SetDefault("batch.summaryPruneSchedule", "@every 1h")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
