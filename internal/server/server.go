// Package server exposes listing extraction over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/p2pscrape/internal/extract"
	"github.com/hyperifyio/p2pscrape/internal/fetch"
	"github.com/hyperifyio/p2pscrape/internal/numeric"
)

// PageSource returns the markup at a URL; *fetch.Client satisfies it.
type PageSource interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Server wires HTTP routes to a page source and an extractor.
type Server struct {
	Pages     PageSource
	Extractor extract.Extractor
	// BaseURL is the listing page prefix passed to fetch.ListingURL.
	BaseURL string
	// Version is reported by /health.
	Version string
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

// New builds the fiber app with all routes registered.
func (s *Server) New() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "p2pscrape",
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          s.handleError,
	})
	app.Use(s.logRequests)
	app.Get("/health", s.health)
	app.Get("/listings/:id", s.getListing)
	app.Post("/listings/extract", s.extractBody)
	return app
}

func (s *Server) extractor() extract.Extractor {
	if s.Extractor == nil {
		return extract.PageExtractor{}
	}
	return s.Extractor
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "version": s.Version})
}

func (s *Server) getListing(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "listing id must be a positive integer", Kind: "request"})
	}
	if s.Pages == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "no page source configured")
	}
	url := fetch.ListingURL(s.BaseURL, id)
	page, err := s.Pages.Get(c.UserContext(), url)
	if err != nil {
		return fetchFailure(err)
	}
	l, err := s.extractor().Extract(string(page))
	if err != nil {
		return err
	}
	log.Debug().Int("id", id).Int("records", len(l.Records)).Msg("listing extracted")
	return c.JSON(l)
}

func (s *Server) extractBody(c *fiber.Ctx) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "empty body", Kind: "request"})
	}
	l, err := s.extractor().Extract(string(body))
	if err != nil {
		return err
	}
	return c.JSON(l)
}

type upstreamError struct {
	status int
	err    error
}

func (e *upstreamError) Error() string { return e.err.Error() }
func (e *upstreamError) Unwrap() error { return e.err }

func fetchFailure(err error) error {
	var se *fetch.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return &upstreamError{status: fiber.StatusNotFound, err: err}
	}
	return &upstreamError{status: fiber.StatusBadGateway, err: err}
}

// handleError maps extraction and fetch failures to status codes.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var (
		pe *extract.ParseError
		ce *numeric.ConversionError
		ue *upstreamError
		fe *fiber.Error
	)
	resp := ErrorResponse{Error: err.Error()}
	status := fiber.StatusInternalServerError
	switch {
	case errors.As(err, &pe):
		status, resp.Kind, resp.Field = fiber.StatusUnprocessableEntity, "parse", pe.Field
	case errors.As(err, &ce):
		status, resp.Kind = fiber.StatusUnprocessableEntity, "conversion"
	case errors.As(err, &ue):
		status, resp.Kind = ue.status, "upstream"
	case errors.As(err, &fe):
		status, resp.Kind = fe.Code, "request"
	default:
		resp.Kind = "internal"
	}
	if status >= 500 {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
	}
	return c.Status(status).JSON(resp)
}

// logRequests resolves handler errors before logging so the logged status is
// the one sent.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		err = s.handleError(c, err)
	}
	log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}
