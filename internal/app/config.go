package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Source: exactly one of InputPath and ListingID drives a one-shot run.
	InputPath string
	ListingID int
	BaseURL   string

	// Output
	OutputPath    string
	OutputPDFPath string
	PDFFontPath   string

	// Fetch
	UserAgent      string
	MaxAttempts    int
	RequestTimeout time.Duration
	IgnoreRobots   bool

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	BypassCache      bool

	// Serve mode listens on Listen instead of running once.
	Serve  bool
	Listen string

	Verbose bool
}

// Defaults shared by flag parsing and config overlays.
const (
	DefaultOutputPath     = "-"
	DefaultUserAgent      = "p2pscrape/1.0 (+https://github.com/hyperifyio/p2pscrape)"
	DefaultCacheDir       = ".p2pscrape-cache"
	DefaultMaxAttempts    = 3
	DefaultRequestTimeout = 15 * time.Second
	DefaultListen         = "0.0.0.0:8002"
)
