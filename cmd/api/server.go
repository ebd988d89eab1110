package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	cdomain "github.com/lom3e/Formingo/internal/clients/domain"
	clientsmw "github.com/lom3e/Formingo/internal/clients/middleware"
	"github.com/lom3e/Formingo/internal/config"
	"github.com/lom3e/Formingo/internal/contact"
	contactdomain "github.com/lom3e/Formingo/internal/contact/domain"
	"github.com/lom3e/Formingo/internal/metrics"
	"github.com/lom3e/Formingo/internal/version"
)

type server struct {
	echo    *echo.Echo
	contact contactdomain.Service
}

func newServer(cfg config.Config, repo cdomain.Repository, log zerolog.Logger) *server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middlewares
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, clientsmw.HeaderAPIKey},
	}))
	e.Use(metrics.HTTPMiddleware("/metrics"))

	metrics.SetClientsLoaded(repo.Len())
	svc := contact.Register(e, cfg, repo, log)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "ok",
			"time":        time.Now().UTC().Format(time.RFC3339),
			"version":     version.String(),
			"tenant_mode": cfg.TenantMode,
			"clients":     repo.Len(),
			"dispatch":    cfg.DispatchMode,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &server{echo: e, contact: svc}
}

// shutdown stops the listener and then waits for detached notifications.
func (s *server) shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	return s.contact.Drain(ctx)
}
