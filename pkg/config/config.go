package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	CatalogDB DatabaseConfig
	RequestDB DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Keywords  KeywordsConfig
	Exports   ExportsConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// KeywordsConfig tunes the brand keyword cache used by dropdown cascades.
type KeywordsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ExportsConfig toggles CSV/PDF export endpoints.
type ExportsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.CatalogDB = DatabaseConfig{
		Host:         v.GetString("CATALOG_DB_HOST"),
		Port:         v.GetInt("CATALOG_DB_PORT"),
		User:         v.GetString("CATALOG_DB_USER"),
		Password:     v.GetString("CATALOG_DB_PASSWORD"),
		Name:         v.GetString("CATALOG_DB_NAME"),
		SSLMode:      v.GetString("CATALOG_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("CATALOG_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("CATALOG_DB_MAX_IDLE_CONNS"),
	}

	cfg.RequestDB = DatabaseConfig{
		Host:         v.GetString("REQUEST_DB_HOST"),
		Port:         v.GetInt("REQUEST_DB_PORT"),
		User:         v.GetString("REQUEST_DB_USER"),
		Password:     v.GetString("REQUEST_DB_PASSWORD"),
		Name:         v.GetString("REQUEST_DB_NAME"),
		SSLMode:      v.GetString("REQUEST_DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("REQUEST_DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("REQUEST_DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Keywords = KeywordsConfig{
		CacheEnabled: v.GetBool("KEYWORDS_CACHE_ENABLED"),
		CacheTTL:     parseDuration(v.GetString("KEYWORDS_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("CATALOG_DB_HOST", "localhost")
	v.SetDefault("CATALOG_DB_PORT", 5432)
	v.SetDefault("CATALOG_DB_USER", "postgres")
	v.SetDefault("CATALOG_DB_PASSWORD", "postgres")
	v.SetDefault("CATALOG_DB_NAME", "jipjipmoney")
	v.SetDefault("CATALOG_DB_SSL_MODE", "disable")
	v.SetDefault("CATALOG_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("CATALOG_DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REQUEST_DB_HOST", "localhost")
	v.SetDefault("REQUEST_DB_PORT", 5432)
	v.SetDefault("REQUEST_DB_USER", "postgres")
	v.SetDefault("REQUEST_DB_PASSWORD", "postgres")
	v.SetDefault("REQUEST_DB_NAME", "request_model")
	v.SetDefault("REQUEST_DB_SSL_MODE", "disable")
	v.SetDefault("REQUEST_DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("REQUEST_DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("JWT_ISSUER", "keywords-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("KEYWORDS_CACHE_ENABLED", false)
	v.SetDefault("KEYWORDS_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_EXPORTS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
