package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/flowdeck-app/flowdeck/api"
	"github.com/flowdeck-app/flowdeck/config"
	"github.com/flowdeck-app/flowdeck/db"
	"github.com/flowdeck-app/flowdeck/library"
	"github.com/flowdeck-app/flowdeck/log"
	"github.com/flowdeck-app/flowdeck/notifications"
	"github.com/flowdeck-app/flowdeck/staging"
	"github.com/flowdeck-app/flowdeck/store"
)

func main() {
	cfg := config.Get()

	// Initialize database
	_ = db.GetDB()

	// Apply persisted log level, if any
	if level, err := db.GetSetting("log_level"); err == nil && level != "" {
		log.SetLevel(level)
		log.Info().Str("level", level).Msg("log level set from settings")
	}

	// Ensure the staging directory exists before watching it
	if err := os.MkdirAll(cfg.StagingDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.StagingDir).Msg("failed to create staging directory")
	}

	// Wire the engine: library backend -> session store -> staging importer
	lib := library.NewService(cfg)
	sessionStore := store.New(lib)
	importer := staging.New(lib, sessionStore)
	notifier := notifications.GetService()

	worker := staging.NewWorker(importer, cfg.StagingDir, cfg.PollInterval)
	worker.SetPollHandler(func() {
		notifier.Notify(notifications.EventStagingChanged, nil)
	})

	// Set Gin to release mode to disable its default debug logging;
	// the zerolog request logger is used instead
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinLogger())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/raw/", "/thumb/", "/api/notifications/stream"})))

	// CORS for development
	if cfg.IsDevelopment() {
		r.Use(corsMiddleware())
	}

	// Security headers (production only)
	if !cfg.IsDevelopment() {
		r.Use(securityHeadersMiddleware())
	}

	r.SetTrustedProxies(nil)

	server := api.NewServer(cfg, sessionStore, lib, importer, notifier)
	api.SetupRoutes(r, server)

	// Start the staging worker
	if err := worker.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start staging worker")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:     addr,
		Handler:  r,
		ErrorLog: log.StdLogger(zerolog.ErrorLevel),
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Msg("server starting")

		printNetworkAddresses(cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop the worker first (it may hold db connections)
	worker.Stop()

	// Shutdown notification service to close all SSE connections
	notifier.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("database close error")
	}

	log.Info().Msg("server stopped")
}

// corsMiddleware creates a CORS middleware for Gin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:12380": true,
			"http://localhost:12381": true,
		}

		if allowedOrigins[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Requested-With")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to all responses
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "SAMEORIGIN")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}

func printNetworkAddresses(port int) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok {
				if ip4 := ipnet.IP.To4(); ip4 != nil {
					log.Info().Str("url", fmt.Sprintf("http://%s:%d", ip4.String(), port)).Msg("network")
				}
			}
		}
	}
}
