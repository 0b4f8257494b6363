package config

import (
	"bufio"
	"fmt"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config centralises runtime configuration for both services. The JWT secret
// must be provisioned identically to every service that verifies tokens.
type Config struct {
	HTTPPort    string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	// TokenVerifyMode selects how the history service verifies tokens:
	// "local" (shared secret, default) or "remote" (ask the auth service).
	TokenVerifyMode string

	AllowedOrigins  []string
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int

	AuthServiceURL    string
	HistoryServiceURL string
	ELI5ServiceURL    string
	ClientTimeout     time.Duration
	ClientMaxRetries  int
}

// Load reads configuration from environment variables providing sane
// defaults. defaultPort differs per service binary.
func Load(defaultPort string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	httpPort := getEnv("HTTP_PORT", "")
	if httpPort == "" {
		httpPort = getEnv("PORT", defaultPort)
	}

	cfg := Config{
		HTTPPort:        httpPort,
		DatabaseURL:     resolveDatabaseURL(),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		TokenTTL:        getDurationEnv("JWT_TTL", 30*time.Minute),
		TokenVerifyMode: getEnv("TOKEN_VERIFY_MODE", "local"),
		AllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeoutSec:  getIntEnv("HTTP_READ_TIMEOUT", 15),
		WriteTimeoutSec: getIntEnv("HTTP_WRITE_TIMEOUT", 15),
		IdleTimeoutSec:  getIntEnv("HTTP_IDLE_TIMEOUT", 60),

		AuthServiceURL:    getEnv("AUTH_SERVICE_URL", "http://localhost:8001"),
		HistoryServiceURL: getEnv("HISTORY_SERVICE_URL", "http://localhost:8002"),
		ELI5ServiceURL:    getEnv("ELI5_SERVICE_URL", "http://localhost:8000"),
		ClientTimeout:     getDurationEnv("HTTP_CLIENT_TIMEOUT", 30*time.Second),
		ClientMaxRetries:  getIntEnv("HTTP_MAX_RETRIES", 3),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database configuration missing: provide DATABASE_URL or PG* env vars")
	}
	if cfg.TokenVerifyMode != "local" && cfg.TokenVerifyMode != "remote" {
		return Config{}, fmt.Errorf("TOKEN_VERIFY_MODE must be local or remote, got %q", cfg.TokenVerifyMode)
	}
	return cfg, nil
}

// RequireJWTSecret enforces the shared secret, needed by the token issuer
// and by any service verifying locally.
func (c Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func splitCSV(value string) []string {
	parts := []string{}
	for _, part := range strings.Split(value, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return []string{"*"}
	}
	return parts
}

func resolveDatabaseURL() string {
	if url := strings.TrimSpace(os.Getenv("DATABASE_URL")); url != "" {
		return normalisePostgresScheme(url)
	}

	host := os.Getenv("PGHOST")
	if host == "" {
		return ""
	}
	user := getEnv("PGUSER", "postgres")
	password := os.Getenv("PGPASSWORD")
	database := getEnv("PGDATABASE", user)
	port := getEnv("PGPORT", "5432")
	sslMode := getEnv("PGSSLMODE", "require")

	dsn := &neturl.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + database,
	}
	dsn.User = neturl.User(user)
	if password != "" {
		dsn.User = neturl.UserPassword(user, password)
	}

	query := dsn.Query()
	query.Set("sslmode", sslMode)
	dsn.RawQuery = query.Encode()

	return normalisePostgresScheme(dsn.String())
}

func normalisePostgresScheme(url string) string {
	if strings.HasPrefix(url, "postgresql://") {
		return "postgres://" + strings.TrimPrefix(url, "postgresql://")
	}
	return url
}

func loadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf(".env line %d: missing '='", lineNum)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" {
			return fmt.Errorf(".env line %d: empty key", lineNum)
		}

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf(".env line %d: %w", lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return nil
}
