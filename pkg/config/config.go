package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MaxConcurrency   int
	PageLoadTimeout  time.Duration
	FetchTimeout     time.Duration
	JobTimeout       time.Duration
	WorkerPollPeriod time.Duration

	// Optional YAML workflow definition for the scrape worker. When empty the
	// worker uses its built-in workflow.
	WorkflowFile string

	// Retry policy for workflow steps.
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	ExponentialBase float64
	Jitter          bool

	// Rate limiting stays disabled unless at least one rate is set. Adaptive
	// mode shrinks the rate on upstream pushback and restores it on success.
	RatePerSecond float64
	RatePerMinute float64
	RateBurst     int
	RateAdaptive  bool

	UserAgents []string
	Proxies    []string
}

// RateLimitEnabled reports whether a rate-limit policy was supplied.
func (c *Config) RateLimitEnabled() bool {
	return c.RatePerSecond > 0 || c.RatePerMinute > 0
}

// Load loads configuration from the environment. A .env file in the working
// directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "user"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresDB:       getEnv("POSTGRES_DB", "scrapeflow"),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		MaxConcurrency:   getEnvAsInt("MAX_CONCURRENCY", 10),
		PageLoadTimeout:  getEnvAsSeconds("PAGE_LOAD_TIMEOUT_SECONDS", 60),
		FetchTimeout:     getEnvAsSeconds("FETCH_TIMEOUT_SECONDS", 30),
		JobTimeout:       getEnvAsSeconds("JOB_TIMEOUT_SECONDS", 300),
		WorkerPollPeriod: getEnvAsMillis("WORKER_POLL_PERIOD_MS", 500),
		WorkflowFile:     getEnv("WORKFLOW_FILE", ""),
		MaxRetries:       getEnvAsInt("RETRY_MAX_RETRIES", 3),
		InitialDelay:     getEnvAsMillis("RETRY_INITIAL_DELAY_MS", 1000),
		MaxDelay:         getEnvAsMillis("RETRY_MAX_DELAY_MS", 60000),
		ExponentialBase:  getEnvAsFloat("RETRY_EXPONENTIAL_BASE", 2.0),
		Jitter:           getEnvAsBool("RETRY_JITTER", true),
		RatePerSecond:    getEnvAsFloat("RATE_LIMIT_PER_SECOND", 0),
		RatePerMinute:    getEnvAsFloat("RATE_LIMIT_PER_MINUTE", 0),
		RateBurst:        getEnvAsInt("RATE_LIMIT_BURST", 5),
		RateAdaptive:     getEnvAsBool("RATE_LIMIT_ADAPTIVE", false),
		UserAgents:       getEnvAsList("USER_AGENTS"),
		Proxies:          getEnvAsList("PROXIES"),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return fallback
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}

func getEnvAsMillis(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Millisecond
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
