package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/p2pscrape/internal/cache"
	"github.com/hyperifyio/p2pscrape/internal/extract"
	"github.com/hyperifyio/p2pscrape/internal/fetch"
	"github.com/hyperifyio/p2pscrape/internal/listing"
	"github.com/hyperifyio/p2pscrape/internal/report"
	"github.com/hyperifyio/p2pscrape/internal/robots"
	"github.com/hyperifyio/p2pscrape/internal/server"
)

// ErrNoSource is returned when a one-shot run has neither an input file nor
// a listing id.
var ErrNoSource = errors.New("no input file or listing id")

// App owns the fetch client and extractor for one process.
type App struct {
	cfg       Config
	client    *fetch.Client
	extractor extract.Extractor
}

// New validates cfg and prepares the page cache and HTTP client.
func New(cfg Config) (*App, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	a := &App{
		cfg:       cfg,
		extractor: extract.PageExtractor{},
		client: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			MaxAttempts:       cfg.MaxAttempts,
			PerRequestTimeout: cfg.RequestTimeout,
			CacheMaxAge:       cfg.CacheMaxAge,
			BypassCache:       cfg.BypassCache,
		},
	}
	if !cfg.IgnoreRobots {
		a.client.Robots = &robots.Policy{UserAgent: cfg.UserAgent, HTTPClient: &http.Client{Timeout: cfg.RequestTimeout}}
	}
	if cfg.CacheDir != "" {
		pages := &cache.PageCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
		if cfg.CacheClear {
			if err := pages.Clear(); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
			}
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := pages.Purge(context.Background(), cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged expired cache entries")
			}
		}
		a.client.Cache = pages
	}
	return a, nil
}

// Run performs one extraction from the configured source and writes the
// requested outputs.
func (a *App) Run(ctx context.Context) (listing.Listing, error) {
	page, source, err := a.load(ctx)
	if err != nil {
		return listing.Listing{}, err
	}
	l, err := a.extractor.Extract(string(page))
	if err != nil {
		return listing.Listing{}, fmt.Errorf("extract %s: %w", source, err)
	}
	log.Info().Str("source", source).Str("name", l.Name).Int("records", len(l.Records)).Msg("listing extracted")

	if err := report.WriteJSONFile(a.cfg.OutputPath, l); err != nil {
		return l, err
	}
	if a.cfg.OutputPDFPath != "" {
		if err := report.WritePDFFile(a.cfg.OutputPDFPath, l, report.PDFOptions{FontPath: a.cfg.PDFFontPath}); err != nil {
			return l, err
		}
		log.Info().Str("path", a.cfg.OutputPDFPath).Msg("pdf schedule written")
	}
	return l, nil
}

func (a *App) load(ctx context.Context) ([]byte, string, error) {
	if a.cfg.InputPath != "" {
		b, err := os.ReadFile(a.cfg.InputPath)
		if err != nil {
			return nil, "", fmt.Errorf("read input: %w", err)
		}
		return b, a.cfg.InputPath, nil
	}
	if a.cfg.ListingID <= 0 {
		return nil, "", ErrNoSource
	}
	url := fetch.ListingURL(a.cfg.BaseURL, a.cfg.ListingID)
	b, err := a.client.Get(ctx, url)
	if err != nil {
		return nil, "", fmt.Errorf("fetch listing %d: %w", a.cfg.ListingID, err)
	}
	return b, url, nil
}

// Serve runs the HTTP surface until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	srv := &server.Server{
		Pages:     a.client,
		Extractor: a.extractor,
		BaseURL:   a.cfg.BaseURL,
		Version:   BuildVersion,
	}
	app := srv.New()

	errc := make(chan error, 1)
	go func() { errc <- app.Listen(a.cfg.Listen) }()
	log.Info().Str("listen", a.cfg.Listen).Msg("serving listings")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
