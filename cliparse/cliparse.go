package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort       = 3318
	DefaultStoreType  = "sqlite"
	DefaultCookieName = "hsid"
	DefaultNotesURL   = "https://www.artsaca.com"
)

var storeTypes = []string{"memory", "sqlite", "postgres", "mongo"}

type Config struct {
	Port      int
	StoreType string
	StoreURL  string

	// AdminName is the display name allowed to vote without limit.
	// Empty disables the bypass, which is the default.
	AdminName string

	CookieName   string
	CookieSecure bool
	LockTTL      time.Duration

	// TrustProxyHeaders lets X-Forwarded-For and X-Real-IP feed the
	// voter fingerprint. Only safe behind a proxy that overwrites them.
	TrustProxyHeaders bool

	// AllowedOrigins may call the API cross-origin with credentials
	AllowedOrigins []string

	TermsFile    string
	NotesBaseURL string

	LogLevel  string
	LogFormat string
}

// ParseFlags reads flags, then an optional .env file, then environment
// variables. Flags win over the environment, and the .env file never
// overrides variables that are already set.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("hammerboard", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.StoreType, "t", "", "Store type (memory, sqlite, postgres or mongo)")
	fs.StringVar(&cfg.StoreURL, "d", "", "Store URL or SQLite path")
	fs.StringVar(&cfg.AdminName, "admin-name", "", "Display name exempt from the one-vote limit (default none, bypass disabled)")
	fs.DurationVar(&cfg.LockTTL, "lock-ttl", -1, "How long a vote lock lasts (0 = forever)")
	fs.StringVar(&cfg.TermsFile, "terms", "", "Moderation term list file (yaml, json or toml)")
	fs.StringVar(&envFile, "env", ".env", "Optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port out of range: %d", cfg.Port)
	}

	if cfg.StoreType == "" {
		cfg.StoreType = envOr("STORE_TYPE", DefaultStoreType)
	}
	if !slices.Contains(storeTypes, cfg.StoreType) {
		return Config{}, fmt.Errorf("unknown store type %q (use %s)", cfg.StoreType, strings.Join(storeTypes, ", "))
	}

	if cfg.StoreURL == "" {
		cfg.StoreURL = os.Getenv("STORE_URL")
	}
	if cfg.StoreURL == "" && cfg.StoreType != "memory" {
		return Config{}, errors.New("store URL required (use -d or STORE_URL env)")
	}

	cfg.AdminName = strings.TrimSpace(cfg.AdminName)
	if cfg.AdminName == "" {
		cfg.AdminName = strings.TrimSpace(os.Getenv("ADMIN_NAME"))
	}

	if cfg.LockTTL < 0 {
		cfg.LockTTL = 0
		if v := os.Getenv("LOCK_TTL"); v != "" {
			ttl, err := time.ParseDuration(v)
			if err != nil || ttl < 0 {
				return Config{}, errors.New("invalid LOCK_TTL env variable")
			}
			cfg.LockTTL = ttl
		}
	}

	if cfg.TermsFile == "" {
		cfg.TermsFile = os.Getenv("TERMS_FILE")
	}

	cfg.CookieName = envOr("HSID_COOKIE", DefaultCookieName)
	cfg.CookieSecure = true
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid COOKIE_SECURE env variable")
		}
		cfg.CookieSecure = secure
	}

	if v := os.Getenv("TRUST_PROXY_HEADERS"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.New("invalid TRUST_PROXY_HEADERS env variable")
		}
		cfg.TrustProxyHeaders = trust
	}

	cfg.AllowedOrigins = splitList(os.Getenv("CORS_ORIGINS"))

	cfg.NotesBaseURL = envOr("NOTES_BASE_URL", DefaultNotesURL)

	cfg.LogLevel = strings.ToLower(envOr("LOG_LEVEL", "info"))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(envOr("LOG_FORMAT", "json"))
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return Config{}, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

// loadEnvFile applies a dotenv file if there is one. A missing file is
// not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitList reads a comma separated list, dropping blanks
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
