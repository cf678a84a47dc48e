package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neuralblades/platinum-V1-sub000/internal/cache"
	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/database"
	"github.com/neuralblades/platinum-V1-sub000/internal/ratelimit"
	"github.com/neuralblades/platinum-V1-sub000/internal/services"
	"github.com/neuralblades/platinum-V1-sub000/internal/storage"
)

const (
	shutdownTimeout = 30 * time.Second
	readTimeout     = 15 * time.Second
	writeTimeout    = 15 * time.Second
	idleTimeout     = 60 * time.Second
	sweepInterval   = 5 * time.Minute
)

func main() {
	// Initialize structured logging
	log.SetPrefix("[API] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate critical configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	log.Printf("Starting %s v%s", cfg.App.Name, cfg.App.Version)
	log.Printf("Environment: debug=%v, port=%s, host=%s", cfg.App.Debug, cfg.App.Port, cfg.App.Host)

	// Initialize database
	log.Println("Initializing database connection...")
	if err := database.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		log.Println("Closing database connections...")
		if sqlDB, err := database.GetDB().DB(); err == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				log.Printf("Error closing database: %v", closeErr)
			}
		}
	}()

	// Shared infrastructure
	var store cache.Store
	if cfg.Cache.Enabled {
		store = cache.NewMemory(cfg.Cache.MaxEntries)
		log.Printf("Response cache enabled (max %d entries)", cfg.Cache.MaxEntries)
	}

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		memLimiter := ratelimit.NewMemory()
		limiter = memLimiter
		go func() {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for range ticker.C {
				memLimiter.Sweep()
			}
		}()
		log.Println("Rate limiting enabled")
	}

	uploads, err := storage.NewLocal(cfg.Uploads.Dir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Build the router and wrap it with the outer middleware chain:
	// Security -> Logging -> Router (CORS is handled inside the router)
	log.Println("Mounting HTTP handlers...")
	router := services.NewRouter(cfg, services.RouterDeps{
		DB:      database.GetDB(),
		Cache:   store,
		Limiter: limiter,
		Uploads: uploads,
	})
	handler := setupSecurityHeaders(requestLogging(router), cfg)

	// Create HTTP server with timeouts
	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		ErrorLog:     log.New(os.Stderr, "[HTTP] ", log.LstdFlags),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatalf("Server failed to start: %v", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v. Starting graceful shutdown...", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during graceful shutdown: %v", err)
		if err == context.DeadlineExceeded {
			log.Println("Shutdown timeout exceeded, forcing close...")
			httpServer.Close()
		}
	}

	log.Println("Server shutdown complete")
}

// validateConfig validates critical configuration values
func validateConfig(cfg *config.Config) error {
	if cfg.Auth.SecretKey == "" || cfg.Auth.SecretKey == "your-secret-key-change-in-production" {
		return fmt.Errorf("SECRET_KEY must be set and changed from default value")
	}
	if len(cfg.Auth.SecretKey) < 32 {
		return fmt.Errorf("SECRET_KEY must be at least 32 characters for security")
	}
	if cfg.App.Port == "" {
		return fmt.Errorf("PORT must be set")
	}
	return nil
}

// setupSecurityHeaders adds security headers to responses
func setupSecurityHeaders(handler http.Handler, cfg *config.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		// Remove server identification
		w.Header().Set("Server", "")

		// HSTS (only in production with HTTPS)
		if !cfg.App.Debug && r.TLS != nil {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		handler.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// requestLogging logs all incoming requests and their responses
func requestLogging(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Skip logging for health checks to reduce noise
		if r.URL.Path == "/health" {
			handler.ServeHTTP(w, r)
			return
		}

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log.Printf("[REQUEST] %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		handler.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		statusText := "OK"
		if wrapped.statusCode >= 400 {
			statusText = "ERROR"
		}
		log.Printf("[RESPONSE] %s %s -> %d %s (%v)", r.Method, r.URL.Path, wrapped.statusCode, statusText, duration)
	})
}
