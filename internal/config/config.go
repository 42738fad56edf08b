package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"portfolio-terminal/internal/theme"
)

const (
	defaultHost               = "0.0.0.0"
	defaultPort               = 2222
	defaultHostKeyPath        = ".data/host_ed25519"
	defaultIdleTimeout        = 120 * time.Second
	defaultMaxSessions        = 32
	defaultRateLimitPerMinute = 30
	defaultPrefsPath          = ".data/prefs.json"
	defaultTheme              = theme.NameDark
	minimumRateLimit          = 1
	maximumConfiguredSessions = 1024
)

// Config captures startup settings for the serve command.
type Config struct {
	Host               string
	Port               int
	HostKeyPath        string
	IdleTimeout        time.Duration
	MaxSessions        int
	RateLimitPerMinute int

	// HTTPAddr is the preview listener; empty disables it.
	HTTPAddr string
	// ContentPath is the YAML content file; empty serves the embedded default.
	ContentPath string
	PrefsPath   string
	Theme       theme.Name
	// ForceColor and ForceMono override TERM detection for every session.
	ForceColor bool
	ForceMono  bool
	// ThemeDebug logs the detected TERM profile per session.
	ThemeDebug bool
	LogLevel   log.Level
}

// Address is the host:port the SSH listener binds.
func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadFromEnv loads runtime configuration from environment variables.
func LoadFromEnv() (Config, error) {
	host, err := readRequiredOrDefault("PORTFOLIO_SSH_HOST", defaultHost)
	if err != nil {
		return Config{}, err
	}

	port, err := readInt("PORTFOLIO_SSH_PORT", defaultPort, 1, 65535)
	if err != nil {
		return Config{}, err
	}

	hostKeyPath, err := readRequiredOrDefault("PORTFOLIO_SSH_HOST_KEY_PATH", defaultHostKeyPath)
	if err != nil {
		return Config{}, err
	}
	cleanHostKeyPath := filepath.Clean(hostKeyPath)
	if cleanHostKeyPath == "." {
		return Config{}, fmt.Errorf("PORTFOLIO_SSH_HOST_KEY_PATH must not resolve to current directory")
	}

	idleTimeout, err := readDuration("PORTFOLIO_SSH_IDLE_TIMEOUT", defaultIdleTimeout)
	if err != nil {
		return Config{}, err
	}

	maxSessions, err := readInt("PORTFOLIO_SSH_MAX_SESSIONS", defaultMaxSessions, 1, maximumConfiguredSessions)
	if err != nil {
		return Config{}, err
	}

	rateLimitPerMinute, err := readInt("PORTFOLIO_SSH_RATE_LIMIT_PER_MINUTE", defaultRateLimitPerMinute, minimumRateLimit, 10000)
	if err != nil {
		return Config{}, err
	}

	prefsPath, err := readRequiredOrDefault("PORTFOLIO_PREFS_PATH", defaultPrefsPath)
	if err != nil {
		return Config{}, err
	}

	themeName, err := readTheme("PORTFOLIO_THEME", defaultTheme)
	if err != nil {
		return Config{}, err
	}

	forceColor, err := readBool("PORTFOLIO_FORCE_COLOR")
	if err != nil {
		return Config{}, err
	}
	forceMono, err := readBool("PORTFOLIO_FORCE_MONO")
	if err != nil {
		return Config{}, err
	}
	themeDebug, err := readBool("PORTFOLIO_THEME_DEBUG")
	if err != nil {
		return Config{}, err
	}

	level, err := readLevel("PORTFOLIO_LOG_LEVEL", log.InfoLevel)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Host:               host,
		Port:               port,
		HostKeyPath:        cleanHostKeyPath,
		IdleTimeout:        idleTimeout,
		MaxSessions:        maxSessions,
		RateLimitPerMinute: rateLimitPerMinute,
		HTTPAddr:           readOptional("PORTFOLIO_HTTP_ADDR"),
		ContentPath:        readOptional("PORTFOLIO_CONTENT_PATH"),
		PrefsPath:          filepath.Clean(prefsPath),
		Theme:              themeName,
		ForceColor:         forceColor,
		ForceMono:          forceMono,
		ThemeDebug:         themeDebug,
		LogLevel:           level,
	}, nil
}

func readRequiredOrDefault(key, fallback string) (string, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%s must not be empty", key)
	}

	return raw, nil
}

func readOptional(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func readInt(key string, fallback, min, max int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < min || parsed > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}

	return parsed, nil
}

func readDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be greater than 0", key)
	}

	return parsed, nil
}

func readBool(key string) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func readTheme(key string, fallback theme.Name) (theme.Name, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	name, err := theme.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s: %w", key, err)
	}
	return name, nil
}

func readLevel(key string, fallback log.Level) (log.Level, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return level, nil
}
