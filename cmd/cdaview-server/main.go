package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ehr/cdaview/internal/config"
	"github.com/ehr/cdaview/internal/platform/auth"
	"github.com/ehr/cdaview/internal/platform/cda"
	"github.com/ehr/cdaview/internal/platform/middleware"
	"github.com/ehr/cdaview/internal/platform/terminology"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "cdaview-server",
		Short: "CDA extraction API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the CDA extraction API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the server version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// Terminology resolver, optional
	var resolver cda.DisplayResolver
	if cfg.TerminologyURL != "" {
		resolver = terminology.NewHTTPResolver(
			cfg.TerminologyURL,
			time.Duration(cfg.TerminologyTimeoutMS)*time.Millisecond,
			logger,
		)
		logger.Info().Str("url", cfg.TerminologyURL).Msg("terminology service configured")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.BodyLimit(cfg.MaxBodySize))
	e.Use(echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
			Rate:  rate.Limit(cfg.RateLimitRPS),
			Burst: cfg.RateLimitBurst,
		}),
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})

	// API group
	apiV1 := e.Group("/api/v1")
	if cfg.IsDev() {
		logger.Warn().Msg("development mode: authentication disabled")
		apiV1.Use(auth.DevMiddleware())
	} else {
		apiV1.Use(auth.Middleware(auth.Config{
			SigningKey: []byte(cfg.AuthSecret),
			Issuer:     cfg.AuthIssuer,
		}))
	}

	handler := cda.NewHandler(cda.NewExtractor(), resolver, logger)
	handler.RegisterRoutes(apiV1)

	// Start server
	addr := ":" + cfg.Port
	go func() {
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
