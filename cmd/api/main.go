// Package main is the entry point for the chat server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/travelers-buddy/internal/config"
	"github.com/capitalize-ai/travelers-buddy/internal/handler"
	"github.com/capitalize-ai/travelers-buddy/internal/llm"
	natsclient "github.com/capitalize-ai/travelers-buddy/internal/nats"
	"github.com/capitalize-ai/travelers-buddy/internal/session"
	"github.com/capitalize-ai/travelers-buddy/pkg/logger"
	"github.com/capitalize-ai/travelers-buddy/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chat server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tracing if enabled
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "travelers-buddy", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(context.Background(), tp)
		}
	}

	persona, err := config.LoadPersona(cfg.PersonaFile)
	if err != nil {
		log.Error("failed to load persona", zap.Error(err))
		os.Exit(1)
	}

	// Connect to NATS when configured
	var natsClient *natsclient.Client
	var events session.EventPublisher
	if cfg.NATSURL != "" {
		natsClient, err = natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()
		events = natsclient.NewPublisher(natsClient)
	}

	// Initialize completion client
	var client llm.Client
	if provider := cfg.Provider(); provider != "" {
		client, err = llm.NewClient(llm.Provider(provider), cfg.APIKey(provider), cfg.LLMModel)
		if err != nil {
			log.Warn("failed to create completion client, replies disabled", zap.String("provider", provider), zap.Error(err))
		} else {
			client = llm.Instrument(client)
			log.Info("completion client ready", zap.String("provider", client.Name()))
		}
	} else {
		log.Warn("no completion provider configured, replies disabled")
	}

	// One controller and archive per browser session
	registry := session.NewRegistry(func(id string) *session.Controller {
		opts := []session.Option{
			session.WithSessionID(id),
			session.WithLogger(log),
		}
		if events != nil {
			opts = append(opts, session.WithEvents(events))
		}
		return session.NewController(session.NewStore(), client, opts...)
	}, cfg.SessionIdleTimeout, log)
	go registry.Run(ctx)

	router := handler.NewRouter(handler.RouterConfig{
		Registry:     registry,
		Persona:      persona,
		NATS:         natsClient,
		Logger:       log,
		CookieSecure: cfg.SessionCookieSecure,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
