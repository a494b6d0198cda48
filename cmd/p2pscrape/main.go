package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/p2pscrape/internal/app"
	"github.com/hyperifyio/p2pscrape/internal/extract"
	"github.com/hyperifyio/p2pscrape/internal/numeric"
)

// Exit codes.
const (
	exitOK         = 0
	exitUsage      = 1
	exitExtraction = 2
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		cfg        app.Config
		configPath string
		envFiles   string
		version    bool
	)
	flag.StringVar(&configPath, "config", os.Getenv("P2P_CONFIG"), "Path to YAML or JSON config file")
	flag.StringVar(&envFiles, "env", ".env", "Dotenv file loaded before reading the environment")
	flag.StringVar(&cfg.InputPath, "input", "", "Path to a saved listing page")
	flag.IntVar(&cfg.ListingID, "id", 0, "Listing id to fetch from the platform")
	flag.StringVar(&cfg.BaseURL, "base", "", "Listing page URL prefix (default https://8percent.kr/deals/)")
	flag.StringVar(&cfg.OutputPath, "output", app.DefaultOutputPath, "Path for the JSON result, - for stdout")
	flag.StringVar(&cfg.OutputPDFPath, "pdf", "", "Optional path for a PDF repayment schedule")
	flag.StringVar(&cfg.PDFFontPath, "pdf.font", "", "UTF-8 TrueType font for the PDF")
	flag.StringVar(&cfg.UserAgent, "ua", app.DefaultUserAgent, "User-Agent for page requests")
	flag.IntVar(&cfg.MaxAttempts, "fetch.attempts", app.DefaultMaxAttempts, "Attempts per page including the first")
	flag.DurationVar(&cfg.RequestTimeout, "fetch.timeout", app.DefaultRequestTimeout, "Timeout per page request")
	flag.BoolVar(&cfg.IgnoreRobots, "robots.ignore", false, "Fetch pages even when robots.txt disallows them")
	flag.StringVar(&cfg.CacheDir, "cache.dir", app.DefaultCacheDir, "Page cache directory; empty disables caching")
	flag.DurationVar(&cfg.CacheMaxAge, "cache.maxAge", 0, "Serve cached pages younger than this and purge older ones; 0 disables")
	flag.BoolVar(&cfg.CacheClear, "cache.clear", false, "Clear the page cache before running")
	flag.BoolVar(&cfg.CacheStrictPerms, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&cfg.BypassCache, "cache.bypass", false, "Always refetch pages, still storing the result")
	flag.BoolVar(&cfg.Serve, "serve", false, "Serve listings over HTTP instead of running once")
	flag.StringVar(&cfg.Listen, "listen", app.DefaultListen, "Listen address in serve mode")
	flag.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	flag.BoolVar(&version, "version", false, "Print version and exit")
	flag.Parse()

	if version {
		fmt.Printf("p2pscrape %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if err := app.LoadEnvFiles(envFiles); err != nil {
		log.Error().Err(err).Str("path", envFiles).Msg("load env file")
		os.Exit(exitUsage)
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("load config")
			os.Exit(exitUsage)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfg)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg app.Config) int {
	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return exitUsage
	}
	if cfg.Serve {
		if err := a.Serve(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
			return exitUsage
		}
		return exitOK
	}
	if _, err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps extraction failures to exitExtraction and everything else to
// exitUsage.
func exitCode(err error) int {
	var (
		pe *extract.ParseError
		ce *numeric.ConversionError
	)
	if errors.As(err, &pe) || errors.As(err, &ce) {
		return exitExtraction
	}
	return exitUsage
}
