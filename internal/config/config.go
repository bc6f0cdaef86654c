package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendSheets   = "sheets"
	BackendPostgres = "postgres"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress      string
	ShutdownTimeout time.Duration
	LogLevel        string

	CommerceAPIURL    string
	CommerceStoreID   string
	CommerceToken     string
	CommerceUserAgent string
	HTTPTimeout       time.Duration

	StoreBackend      string
	SheetID           string
	GoogleClientEmail string
	GooglePrivateKey  string
	DatabaseURI       string

	RedisAddr string
	LockTTL   time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	CatalogSyncMode     string
	CatalogSyncInterval time.Duration
	NameLocales         []string
	NameFallback        string
}

const (
	defaultRunAddress        = ":3000"
	defaultShutdownTimeout   = 10 * time.Second
	defaultLogLevel          = "info"
	defaultCommerceAPIURL    = "https://api.tiendanube.com/v1"
	defaultCommerceUserAgent = "tiendanube-webhook"
	defaultHTTPTimeout       = 15 * time.Second
	defaultLockTTL           = 30 * time.Second
	defaultKafkaTopic        = "sheetsync.orders"
	defaultCatalogSyncMode   = "bulk"
)

// Load reads an optional .env file, then parses configuration from flags and
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:          runAddress(lookup),
		ShutdownTimeout:     getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:            getString(lookup, "LOG_LEVEL", defaultLogLevel),
		CommerceAPIURL:      getString(lookup, "TN_API_URL", defaultCommerceAPIURL),
		CommerceStoreID:     getString(lookup, "TIENDANUBE_STORE_ID", ""),
		CommerceToken:       getString(lookup, "TN_TOKEN", ""),
		CommerceUserAgent:   getString(lookup, "TN_USER_AGENT", defaultCommerceUserAgent),
		HTTPTimeout:         getDuration(lookup, "HTTP_TIMEOUT", defaultHTTPTimeout),
		StoreBackend:        getString(lookup, "STORE_BACKEND", BackendSheets),
		SheetID:             getString(lookup, "SHEET_ID", ""),
		GoogleClientEmail:   getString(lookup, "GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:    strings.ReplaceAll(getString(lookup, "GOOGLE_PRIVATE_KEY", ""), `\n`, "\n"),
		DatabaseURI:         getString(lookup, "DATABASE_URI", ""),
		RedisAddr:           getString(lookup, "REDIS_ADDR", ""),
		LockTTL:             getDuration(lookup, "LOCK_TTL", defaultLockTTL),
		KafkaBrokers:        getList(lookup, "KAFKA_BROKERS"),
		KafkaTopic:          getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		CatalogSyncMode:     getString(lookup, "CATALOG_SYNC_MODE", defaultCatalogSyncMode),
		CatalogSyncInterval: getDuration(lookup, "CATALOG_SYNC_INTERVAL", 0),
		NameLocales:         getList(lookup, "NAME_LOCALES"),
		NameFallback:        getString(lookup, "NAME_FALLBACK", ""),
	}

	fs := flag.NewFlagSet("sheetsync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		httpTimeoutStr     = cfg.HTTPTimeout.String()
		catalogIntervalStr = cfg.CatalogSyncInterval.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.StoreBackend, "backend", cfg.StoreBackend, "Store backend: sheets or postgres")
	fs.StringVar(&cfg.SheetID, "sheet", cfg.SheetID, "Spreadsheet id")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.CommerceAPIURL, "tn-api", cfg.CommerceAPIURL, "Commerce API base URL")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for distributed locks")
	fs.StringVar(&cfg.CatalogSyncMode, "catalog-mode", cfg.CatalogSyncMode, "Catalog write mode: bulk or upsert")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&httpTimeoutStr, "http-timeout", httpTimeoutStr, "Commerce API request timeout")
	fs.StringVar(&catalogIntervalStr, "catalog-interval", catalogIntervalStr, "Interval between scheduled catalog syncs, 0 disables")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.HTTPTimeout, err = time.ParseDuration(httpTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid http timeout: %w", err)
	}

	if cfg.CatalogSyncInterval, err = time.ParseDuration(catalogIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid catalog interval: %w", err)
	}

	if keyFile, ok := lookup("GOOGLE_PRIVATE_KEY_FILE"); ok && keyFile != "" {
		content, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read google private key file: %w", err)
		}
		cfg.GooglePrivateKey = string(content)
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}

	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}

	if cfg.CatalogSyncInterval < 0 {
		cfg.CatalogSyncInterval = 0
	}

	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.CatalogSyncMode = strings.ToLower(strings.TrimSpace(cfg.CatalogSyncMode))
	cfg.CommerceAPIURL = strings.TrimRight(cfg.CommerceAPIURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.CommerceStoreID == "" {
		return fmt.Errorf("store id must be provided")
	}

	if c.CommerceToken == "" {
		return fmt.Errorf("commerce api token must be provided")
	}

	switch c.StoreBackend {
	case BackendSheets:
		if c.SheetID == "" {
			return fmt.Errorf("sheet id must be provided")
		}
		if c.GoogleClientEmail == "" || c.GooglePrivateKey == "" {
			return fmt.Errorf("google service account credentials must be provided")
		}
	case BackendPostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("database URI must be provided")
		}
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}

	switch c.CatalogSyncMode {
	case "bulk", "upsert":
	default:
		return fmt.Errorf("unknown catalog sync mode %q", c.CatalogSyncMode)
	}

	return nil
}

// runAddress honours PORT for platforms that only inject a port number.
func runAddress(lookup envLookup) string {
	if v, ok := lookup("RUN_ADDRESS"); ok && v != "" {
		return v
	}
	if port, ok := lookup("PORT"); ok && port != "" {
		return ":" + port
	}
	return defaultRunAddress
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getList(lookup envLookup, key string) []string {
	v, ok := lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
