package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yukikurage/taskquest-api/internal/constants"
)

// Fallback secrets for local development only.
const (
	DefaultSessionSecret = "default-secret-key-change-me"
	DefaultJWTSecret     = "default-jwt-secret-change-me"
)

type Config struct {
	Port    string
	GinMode string
	Env     string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	SessionSecret string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	ResetTokenTTL   time.Duration

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	OpenAIAPIKey string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string
	AppBaseURL   string

	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int

	StreakResetSchedule string
	TierSeedFile        string
}

// Load reads configuration from the environment, after loading the first .env
// file found in the working directory or its parents.
func Load() *Config {
	loadDotenv()

	return &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),
		Env:     getEnv("APP_ENV", "development"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "taskquest"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		DBPath:     getEnv("DB_PATH", "taskquest.db"),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SessionSecret: getEnv("SESSION_SECRET", DefaultSessionSecret),

		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", constants.DefaultAccessTokenTTL),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", constants.DefaultRefreshTokenTTL),
		ResetTokenTTL:   getEnvDuration("RESET_TOKEN_TTL", constants.DefaultResetTokenTTL),

		SupabaseURL:       strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey:   getEnv("SUPABASE_ANON_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "no-reply@taskquest.local"),
		AppBaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),

		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RateLimitRPS:   getEnvInt("AUTH_RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 10),

		StreakResetSchedule: getEnv("STREAK_RESET_SCHEDULE", "5 0 * * *"),
		TierSeedFile:        getEnv("TIER_SEED_FILE", ""),
	}
}

// IsProduction reports whether the server runs in gin release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// UsesDefaultSecrets reports whether a signing secret fell back to its
// development default.
func (c *Config) UsesDefaultSecrets() bool {
	return c.JWTSecret == DefaultJWTSecret || c.SessionSecret == DefaultSessionSecret
}

// Validate rejects configurations that must not run in release mode.
func (c *Config) Validate() error {
	if !c.IsProduction() {
		return nil
	}
	if c.JWTSecret == DefaultJWTSecret {
		return errors.New("JWT_SECRET must be set when GIN_MODE=release")
	}
	if c.SessionSecret == DefaultSessionSecret {
		return errors.New("SESSION_SECRET must be set when GIN_MODE=release")
	}
	return nil
}

// SupabaseEnabled reports whether an external identity provider is configured.
func (c *Config) SupabaseEnabled() bool {
	return c.SupabaseURL != ""
}

func loadDotenv() {
	for _, p := range []string{".env", filepath.Join("..", ".env"), filepath.Join("..", "..", ".env")} {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err != nil {
				log.Printf("failed to load %s: %v", p, err)
			}
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}
