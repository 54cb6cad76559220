// Package server exposes the collected reports over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/naka-gawa/github-trending/internal/config"
	"github.com/naka-gawa/github-trending/internal/logging"
	"github.com/naka-gawa/github-trending/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Runner performs one collection run.
type Runner interface {
	Run(ctx context.Context) (*usecase.RunSummary, error)
}

// Reports is the read side of the report store.
type Reports interface {
	Read(name string) (string, error)
	Exists(name string) bool
	List() ([]string, error)
	Latest(language string) (string, error)
}

// Server serves the latest report, a markdown viewer and the report listing.
type Server struct {
	echo      *echo.Echo
	runner    Runner
	reports   Reports
	settings  config.ServerSettings
	logger    *logging.Logger
	validator *validator.Validate
	runs      singleflight.Group
	now       func() time.Time
}

// New wires the routes and middleware.
func New(runner Runner, reports Reports, settings config.ServerSettings, logger *logging.Logger) (*Server, error) {
	v := validator.New()
	if err := v.RegisterValidation("reportname", validReportName); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		runner:    runner,
		reports:   reports,
		settings:  settings,
		logger:    logger,
		validator: v,
		now:       time.Now,
	}

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{Output: logger.Writer()}))
	e.Use(middleware.Recover())
	e.Use(allowAnyOrigin)
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	e.Match([]string{http.MethodGet, http.MethodOptions}, "/latest-update", s.LatestUpdate)
	e.GET("/view-markdown", s.ViewMarkdown)
	e.GET("/list-markdown-files", s.ListMarkdownFiles)
	return s, nil
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Infof("Report server listening on %s", s.settings.Addr)
		if err := s.echo.Start(s.settings.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Infof("Shutting down report server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// allowAnyOrigin stamps the permissive origin header on every response,
// including requests that carry no Origin header.
func allowAnyOrigin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
		return next(c)
	}
}
