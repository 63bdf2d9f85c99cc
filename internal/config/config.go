package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Storage backends.
const (
	StorageBadger = "badger"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Render surfaces.
const (
	SurfaceNone = "none"
	SurfaceRod  = "rod"
)

type Config struct {
	ListenAddr      string        // ex: "127.0.0.1:8787"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline on the control API

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Persistence
	Storage      string        // "badger" | "redis" | "memory"
	DataDir      string        // badger directory
	StateKey     string        // key the state blob is stored under
	SaveDebounce time.Duration // quiet period before a snapshot is written

	// Bridge timings
	ThumbnailDelay    time.Duration // wait after a load before capturing
	ZoomReapplyDelay  time.Duration // wait after a load before re-applying zoom
	ThumbnailInterval time.Duration // periodic active-tab recapture (0 = disabled)

	// Render surface
	Surface    string        // "none" | "rod"
	BrowserBin string        // optional Chrome binary
	BrowserURL string        // optional DevTools URL of a running browser
	Headless   bool          // launch Chrome headless
	NavTimeout time.Duration // per-navigation timeout

	// Device emulation
	PresetsFile           string        // optional YAML presets (empty = built-in list)
	PresetsReloadInterval time.Duration // presets file refresh interval
	ViewportWidth         int           // screen size the emulation frame is fitted into
	ViewportHeight        int

	// Optional Homepage bookmarks.yaml merged into bookmarks at startup
	BookmarksImport string

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateLimit    int      // requests per second per client on the API (0 = unlimited)
	CORSOrigins  []string // optional, origins of a browser UI calling the API
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenAddr:      getenv("TABSHELL_LISTEN_ADDR", "127.0.0.1:8787"),
		ShutdownTimeout: mustDuration("TABSHELL_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("TABSHELL_REQUEST_TIMEOUT", 30*time.Second),

		// Logging
		LogLevel:  getenv("TABSHELL_LOG_LEVEL", "info"),
		PrettyLog: mustBool("TABSHELL_PRETTY_LOG", true),

		// Persistence
		Storage:      mustChoice("TABSHELL_STORAGE", StorageBadger, StorageBadger, StorageRedis, StorageMemory),
		DataDir:      getenv("TABSHELL_DATA_DIR", "./data"),
		StateKey:     getenv("TABSHELL_STATE_KEY", "browser-storage"),
		SaveDebounce: mustDuration("TABSHELL_SAVE_DEBOUNCE", 250*time.Millisecond),

		// Bridge timings
		ThumbnailDelay:    mustDuration("TABSHELL_THUMBNAIL_DELAY", time.Second),
		ZoomReapplyDelay:  mustDuration("TABSHELL_ZOOM_REAPPLY_DELAY", 500*time.Millisecond),
		ThumbnailInterval: mustDuration("TABSHELL_THUMBNAIL_INTERVAL", 0),

		// Render surface
		Surface:    mustChoice("TABSHELL_SURFACE", SurfaceNone, SurfaceNone, SurfaceRod),
		BrowserBin: getenv("TABSHELL_BROWSER_BIN", ""),
		BrowserURL: getenv("TABSHELL_BROWSER_URL", ""),
		Headless:   mustBool("TABSHELL_HEADLESS", true),
		NavTimeout: mustDuration("TABSHELL_NAV_TIMEOUT", 30*time.Second),

		// Device emulation
		PresetsFile:           getenv("TABSHELL_PRESETS_FILE", ""),
		PresetsReloadInterval: mustDuration("TABSHELL_PRESETS_RELOAD_INTERVAL", time.Hour),
		ViewportWidth:         getenvInt("TABSHELL_VIEWPORT_WIDTH", 390),
		ViewportHeight:        getenvInt("TABSHELL_VIEWPORT_HEIGHT", 844),

		BookmarksImport: getenv("TABSHELL_BOOKMARKS_IMPORT", ""),

		// Redis settings (required only when storage=redis)
		RedisUser:             getenv("TABSHELL_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("TABSHELL_REDIS_PASSWORD_REQUIRED", true),
		RedisPassword:         getenv("TABSHELL_REDIS_PASSWORD", ""),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("TABSHELL_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("TABSHELL_ALLOWED_CIDRS", "127.0.0.1/32,::1/128")),
		TrustProxy:   mustBool("TABSHELL_TRUST_PROXY", false),
		RateLimit:    getenvInt("TABSHELL_RATE_LIMIT", 0),
		CORSOrigins:  splitAndTrim(getenv("TABSHELL_CORS_ORIGINS", "")),
	}

	if cfg.Storage == StorageRedis {
		cfg.RedisAddr = requireEnv("TABSHELL_REDIS_ADDR")
		cfg.RedisDB = requireEnvInt("TABSHELL_REDIS_DB")

		// Validate Redis password configuration
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: TABSHELL_REDIS_PASSWORD is required when TABSHELL_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		panic(fmt.Sprintf("❌ FATAL: Invalid viewport %dx%d", cfg.ViewportWidth, cfg.ViewportHeight))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func requireEnvInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

// mustChoice returns the lower-cased value of key, or def when unset.
// Values outside allowed are fatal.
func mustChoice(key, def string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	if !slices.Contains(allowed, v) {
		panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %q (want one of %s)", key, v, strings.Join(allowed, ", ")))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
