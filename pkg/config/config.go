// Package config loads runtime configuration from environment variables.
// `.env` files are loaded by main before Load runs; every knob has a default
// except the database URL and the JWT signing secret.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	Host string
	Port int

	DatabaseURL    string
	DBMaxConns     int
	DBMaxIdleConns int

	JWTSecret          string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURI  string
	FrontendURL        string

	CORSOrigins []string

	LogLevel string
	LogJSON  bool

	AIProblemsEnabled bool
	LLMProvider       string
	OpenAIAPIKey      string
	LLMModel          string
	AIPoolEasy        int
	AIPoolMedium      int
	AIPoolHard        int
	AITick            time.Duration

	SandboxImage string
	RoomIdleTTL  time.Duration
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		Host:               getEnv("HOST", "0.0.0.0"),
		Port:               getEnvInt("PORT", 8080),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		DBMaxConns:         getEnvInt("DB_MAX_CONNS", 10),
		DBMaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenExpiry:  time.Duration(getEnvInt("ACCESS_TOKEN_EXPIRY_MINUTES", 15)) * time.Minute,
		RefreshTokenExpiry: time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 7)) * 24 * time.Hour,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:8080/auth/callback"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogJSON:            getEnvBool("LOG_JSON", false),
		AIProblemsEnabled:  getEnvBool("AI_PROBLEMS_ENABLED", false),
		LLMProvider:        getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		LLMModel:           getEnv("LLM_MODEL", "gpt-4o-mini"),
		AIPoolEasy:         getEnvInt("AI_POOL_EASY", 10),
		AIPoolMedium:       getEnvInt("AI_POOL_MEDIUM", 10),
		AIPoolHard:         getEnvInt("AI_POOL_HARD", 5),
		AITick:             time.Duration(getEnvInt("AI_TICK_SECONDS", 300)) * time.Second,
		SandboxImage:       getEnv("SANDBOX_IMAGE", "bitbattle-sandbox:latest"),
		RoomIdleTTL:        time.Duration(getEnvInt("ROOM_IDLE_MINUTES", 5)) * time.Minute,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// Addr returns the host:port the HTTP server binds.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// AIPoolFloor returns the minimum pool size for a lowercase difficulty.
func (c *Config) AIPoolFloor(difficulty string) int {
	switch difficulty {
	case "easy":
		return c.AIPoolEasy
	case "medium":
		return c.AIPoolMedium
	case "hard":
		return c.AIPoolHard
	default:
		return 0
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
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
