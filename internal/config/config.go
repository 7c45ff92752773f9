package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default location of the YAML config file.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port             string   `yaml:"port"`
	LogLevel         string   `yaml:"logLevel"`
	PublicBaseURL    string   `yaml:"publicBaseURL"`
	DatabaseURL      string   `yaml:"databaseURL"`
	RedisAddr        string   `yaml:"redisAddr"`
	RedisPassword    string   `yaml:"redisPassword"`
	SessionStrategy  string   `yaml:"sessionStrategy"`
	SessionTTL       string   `yaml:"sessionTTL"`
	JWTSecret        string   `yaml:"jwtSecret"`
	SimulatedLatency string   `yaml:"simulatedLatency"`
	TrustedProxies   []string `yaml:"trustedProxies"`
	MinioEndpoint    string   `yaml:"minioEndpoint"`
	MinioAccessKey   string   `yaml:"minioAccessKey"`
	MinioSecretKey   string   `yaml:"minioSecretKey"`
	MinioBucket      string   `yaml:"minioBucket"`
	MinioUseSSL      bool     `yaml:"minioUseSSL"`

	// Per-minute rate limits for the auth endpoints, enforced only when
	// redisAddr is set. Zero falls back to the built-in defaults.
	SignupRateLimitPerMinute   int `yaml:"signupRateLimitPerMinute"`
	LoginRateLimitPerMinute    int `yaml:"loginRateLimitPerMinute"`
	PasswordRateLimitPerMinute int `yaml:"passwordRateLimitPerMinute"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SESSION_STRATEGY"); v != "" {
		cfg.SessionStrategy = strings.TrimSpace(v)
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		cfg.SessionTTL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("SIMULATED_LATENCY"); v != "" {
		cfg.SimulatedLatency = v
	}
	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		cfg.TrustedProxies = splitList(v)
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.MinioEndpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.MinioAccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.MinioSecretKey = v
	}
	if v := os.Getenv("MINIO_BUCKET"); v != "" {
		cfg.MinioBucket = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.MinioUseSSL = b
		}
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if entry := strings.TrimSpace(part); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.PublicBaseURL == "" {
		return errors.New("config: publicBaseURL is required (set in config.yaml or PUBLIC_BASE_URL)")
	}
	switch cfg.SessionStrategy {
	case "", "memory", "redis", "jwt":
	default:
		return fmt.Errorf("config: unknown sessionStrategy %q (memory, redis, jwt)", cfg.SessionStrategy)
	}
	if cfg.SessionStrategy == "redis" && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required for redis session strategy")
	}
	if cfg.SessionStrategy == "jwt" && strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("config: jwtSecret is required for jwt session strategy")
	}
	if cfg.MinioEndpoint != "" && cfg.MinioBucket == "" {
		return errors.New("config: minioBucket is required when minioEndpoint is set")
	}
	return nil
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}

// ParseSimulatedLatency parses the optional cosmetic delay duration string.
func ParseSimulatedLatency(latencyStr string) (time.Duration, error) {
	if latencyStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(latencyStr)
	if err != nil {
		return 0, fmt.Errorf("invalid simulatedLatency duration: %w", err)
	}
	return dur, nil
}
