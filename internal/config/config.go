package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Gemini     GeminiConfig
	Upload     UploadConfig
	RateLimit  RateLimitConfig
	Redis      RedisConfig
	Cache      CacheConfig
	Generation GenerationConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

// GeminiConfig holds the upstream provider settings. An empty APIKey is not a
// load error: requests fail with a configuration error instead.
type GeminiConfig struct {
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	JSONMode bool
}

type UploadConfig struct {
	MaxBytes     int64
	PollAttempts int
	PollInterval time.Duration
	TempDir      string
	// AllowedTypes lists accepted MIME types; "type/*" matches a whole family.
	AllowedTypes []string
}

type RateLimitConfig struct {
	Backend     string // "memory" or "redis"
	MaxRequests int
	Window      time.Duration
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig controls the Redis file status cache, active whenever
// redis.address is set.
type CacheConfig struct {
	FileStatusTTL time.Duration
}

type GenerationConfig struct {
	MinTextLength     int
	FileQuestionCount int
	VerifyFiles       bool
}

type LoggerConfig struct {
	Level string
	Env   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.body_limit", 12*1024*1024)

	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("gemini.timeout", "90s")
	v.SetDefault("gemini.json_mode", false)

	v.SetDefault("upload.max_bytes", 10*1024*1024)
	v.SetDefault("upload.poll_attempts", 10)
	v.SetDefault("upload.poll_interval", "2s")
	v.SetDefault("upload.temp_dir", os.TempDir())
	v.SetDefault("upload.allowed_types", []string{
		"application/pdf", "application/json", "text/*", "image/*", "audio/*", "video/*",
	})

	v.SetDefault("ratelimit.backend", "memory")
	v.SetDefault("ratelimit.max_requests", 10)
	v.SetDefault("ratelimit.window", "15m")

	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.file_status_ttl", "10m")

	v.SetDefault("generation.min_text_length", 50)
	v.SetDefault("generation.file_question_count", 3)
	v.SetDefault("generation.verify_files", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.env", "development")
}

// LoadConfig reads .env.local (preferred) or .env into the process environment,
// then merges an optional config.yaml with environment overrides. Environment
// keys are the upper-cased config keys with dots replaced by underscores
// (GEMINI_API_KEY, SERVER_PORT, REDIS_ADDRESS, ...).
func LoadConfig() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("./configs")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			BodyLimit:    v.GetInt("server.body_limit"),
		},
		Gemini: GeminiConfig{
			APIKey:   v.GetString("gemini.api_key"),
			Model:    v.GetString("gemini.model"),
			BaseURL:  strings.TrimRight(v.GetString("gemini.base_url"), "/"),
			Timeout:  v.GetDuration("gemini.timeout"),
			JSONMode: v.GetBool("gemini.json_mode"),
		},
		Upload: UploadConfig{
			MaxBytes:     v.GetInt64("upload.max_bytes"),
			PollAttempts: v.GetInt("upload.poll_attempts"),
			PollInterval: v.GetDuration("upload.poll_interval"),
			TempDir:      v.GetString("upload.temp_dir"),
			AllowedTypes: v.GetStringSlice("upload.allowed_types"),
		},
		RateLimit: RateLimitConfig{
			Backend:     strings.ToLower(v.GetString("ratelimit.backend")),
			MaxRequests: v.GetInt("ratelimit.max_requests"),
			Window:      v.GetDuration("ratelimit.window"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			FileStatusTTL: v.GetDuration("cache.file_status_ttl"),
		},
		Generation: GenerationConfig{
			MinTextLength:     v.GetInt("generation.min_text_length"),
			FileQuestionCount: v.GetInt("generation.file_question_count"),
			VerifyFiles:       v.GetBool("generation.verify_files"),
		},
		Logger: LoggerConfig{
			Level: v.GetString("logger.level"),
			Env:   v.GetString("logger.env"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("upload.max_bytes must be positive")
	}
	if c.Upload.PollAttempts <= 0 {
		return fmt.Errorf("upload.poll_attempts must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("ratelimit.max_requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("ratelimit.window must be positive")
	}
	switch c.RateLimit.Backend {
	case "memory":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("ratelimit.backend is redis but redis.address is empty")
		}
	default:
		return fmt.Errorf("unsupported ratelimit.backend: %q", c.RateLimit.Backend)
	}
	if c.Generation.FileQuestionCount <= 0 {
		return fmt.Errorf("generation.file_question_count must be positive")
	}
	return nil
}

// HasAPIKey reports whether the upstream credential is configured.
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.Gemini.APIKey) != ""
}

func loadDotEnv() {
	if _, err := os.Stat(".env.local"); err == nil {
		_ = godotenv.Load(".env.local")
		return
	}
	_ = godotenv.Load()
}
