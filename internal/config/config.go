// Package config предоставляет структуры и функции для загрузки конфигурации сервиса.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Режимы проверки токена.
const (
	AuthModeSupabase = "supabase"
	AuthModeJWT      = "jwt"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"DATABASE_URL"`
	// Пустой путь отключает миграции при старте.
	MigrationsPath  string    `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	HTTPServer      `yaml:"http_server"`
	RedisConnection `yaml:"redis_connection"`
	Auth            Auth      `yaml:"auth"`
	LLM             LLM       `yaml:"llm"`
	RabbitMQ        RabbitMQ  `yaml:"rabbitmq"`
	Schema          Schema    `yaml:"schema"`
	RateLimit       RateLimit `yaml:"rate_limit"`
	CORS            CORS      `yaml:"cors"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"60s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес отключает кэш значений слов.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	MeaningTTL   time.Duration `yaml:"meaning_ttl" env-default:"168h"`
}

// Auth настройки проверки токенов.
type Auth struct {
	Mode        string        `yaml:"mode" env:"AUTH_MODE" env-default:"supabase"`
	SupabaseURL string        `yaml:"supabase_url" env:"SUPABASE_URL"`
	ServiceKey  string        `yaml:"service_key" env:"SUPABASE_SERVICE_ROLE_KEY"`
	JWTSecret   string        `yaml:"jwt_secret" env:"SUPABASE_JWT_SECRET"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
}

// LLM настройки провайдера генерации текста.
type LLM struct {
	Provider     string        `yaml:"provider" env:"LLM_PROVIDER"`
	OpenAIKey    string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	AnthropicKey string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	GeminiKey    string        `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	Model        string        `yaml:"model" env:"LLM_MODEL"`
	BaseURL      string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Timeout      time.Duration `yaml:"timeout" env-default:"30s"`
}

// RabbitMQ настройки публикации событий. Пустой URL отключает публикацию.
type RabbitMQ struct {
	URL      string `yaml:"url" env:"RABBITMQ_URL"`
	Exchange string `yaml:"exchange" env-default:"wordbook"`
}

// Schema описывает, какие необязательные части схемы есть в базе.
// По умолчанию флаги определяются запросом к information_schema при старте,
// при Static=true берутся из конфига как есть.
type Schema struct {
	Static       bool `yaml:"static" env:"SCHEMA_STATIC"`
	HasGroupID   bool `yaml:"has_group_id"`
	HasGroups    bool `yaml:"has_groups"`
	HasPlans     bool `yaml:"has_plans"`
	HasUserPlans bool `yaml:"has_user_plans"`
	HasRoles     bool `yaml:"has_roles"`
}

// RateLimit ограничение на запросы к LLM.
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"1"`
	Burst int     `yaml:"burst" env-default:"3"`
}

// CORS список разрешённых источников.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// Load читает конфиг из файла path с переопределением переменными окружения.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file: %s - does not exist", path)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad загружает .env (если есть) и конфиг из CONFIG_PATH, завершая процесс при ошибке.
func MustLoad() *Config {
	// .env необязателен
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func (c *Config) validate() error {
	if c.StorageConnectionString == "" {
		return errors.New("storage_connection_string is required")
	}
	switch c.Auth.Mode {
	case AuthModeSupabase:
		if c.Auth.SupabaseURL == "" || c.Auth.ServiceKey == "" {
			return errors.New("auth: supabase_url and service_key are required in supabase mode")
		}
	case AuthModeJWT:
		if c.Auth.JWTSecret == "" {
			return errors.New("auth: jwt_secret is required in jwt mode")
		}
	default:
		return fmt.Errorf("auth: unknown mode %q", c.Auth.Mode)
	}
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  MeaningTTL: %s\n"+
			"Auth:\n"+
			"  Mode: %s\n"+
			"  SupabaseURL: %s\n"+
			"  ServiceKey: %s\n"+
			"LLM:\n"+
			"  Provider: %s\n"+
			"  Model: %s\n"+
			"  OpenAIKey: %s\n"+
			"  AnthropicKey: %s\n"+
			"  GeminiKey: %s\n"+
			"RabbitMQ:\n"+
			"  Exchange: %s\n"+
			"Schema:\n"+
			"  Static: %t\n",
		c.Env,
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.MeaningTTL,
		c.Auth.Mode,
		c.Auth.SupabaseURL,
		mask(c.Auth.ServiceKey),
		c.LLM.Provider,
		c.LLM.Model,
		mask(c.LLM.OpenAIKey),
		mask(c.LLM.AnthropicKey),
		mask(c.LLM.GeminiKey),
		c.RabbitMQ.Exchange,
		c.Schema.Static,
	)
}
