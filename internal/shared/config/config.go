package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"legal-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	CORSAllowOrigin []string
	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string
	DatabaseURL     string
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	CacheTTL        time.Duration
	RateLimitRPS    float64
	RateLimitBurst  int
	// TrustedProxies may set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string
}

var defaults = map[string]any{
	"port":               "8080",
	"env":                "dev",
	"log_level":          "info",
	"cors_allow_origins": "http://localhost:3000,http://localhost:5173",
	"object_store":       "local",
	"local_store_dir":    "./data",
	"upstream_base_url":  "http://127.0.0.1:5000",
	"upstream_timeout":   "60s",
	"redis_db":           0,
	"cache_ttl":          "10m",
	"rate_limit_rps":     2.0,
	"rate_limit_burst":   10,
	"trusted_proxies":    "",
}

func newViper() *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from defaults, optional .env files and the
// environment, in increasing precedence.
func Load() Config {
	v := newViper()
	mergeEnvFiles(v, ".env", ".env.local", "cmd/.env")
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("env"))
	dbURL := strings.TrimSpace(v.GetString("database_url"))
	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	return Config{
		Port:            v.GetString("port"),
		Env:             env,
		LogLevel:        v.GetString("log_level"),
		CORSAllowOrigin: splitAndTrim(v.GetString("cors_allow_origins")),
		ObjectStoreType: normalizeStoreType(v.GetString("object_store")),
		LocalStoreDir:   v.GetString("local_store_dir"),
		AWSRegion:       v.GetString("aws_region"),
		S3Bucket:        v.GetString("s3_bucket"),
		S3Prefix:        v.GetString("s3_prefix"),
		SSEKMSKeyID:     v.GetString("sse_kms_key_id"),
		DatabaseURL:     dbURL,
		UpstreamBaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("upstream_base_url")), "/"),
		UpstreamTimeout: positiveDuration(v.GetDuration("upstream_timeout"), 60*time.Second),
		RedisAddr:       strings.TrimSpace(v.GetString("redis_addr")),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		CacheTTL:        positiveDuration(v.GetDuration("cache_ttl"), 10*time.Minute),
		RateLimitRPS:    v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:  v.GetInt("rate_limit_burst"),
		TrustedProxies:  splitAndTrim(v.GetString("trusted_proxies")),
	}
}

// IsDevLike reports whether env tolerates missing infrastructure.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func positiveDuration(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
