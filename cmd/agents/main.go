// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command agents runs the multi-agent workflow system, either as an
// HTTP service or as a one-shot CLI query.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianAgents/pkg/logging"
	"github.com/AleutianAI/AleutianAgents/services/agents"
	"github.com/AleutianAI/AleutianAgents/services/agents/api"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	configPath string
	logLevel   string
	logJSON    bool
)

func main() {
	root := &cobra.Command{
		Use:   "agents",
		Short: "Multi-agent workflow orchestration",
		Long: "Runs user queries through a plan, execute, validate, and " +
			"conditionally correct pipeline backed by a tool registry and " +
			"tiered memory.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Init(logging.Config{
				Level:   logging.ParseLevel(logLevel),
				JSON:    logJSON,
				Service: "agents",
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "emit JSON log records")

	root.AddCommand(serveCmd(), runCmd(), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("agents version %s\n", Version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (agents.Config, error) {
	if configPath != "" {
		return agents.LoadConfigFile(configPath)
	}
	return agents.ConfigFromEnv(), nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cleanup, err := initTracer()
			if err != nil {
				slog.Warn("Tracing disabled, OTLP exporter unavailable", "error", err)
			} else {
				defer cleanup(context.Background())
			}

			system, err := agents.NewSystem(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("building system: %w", err)
			}

			router := gin.New()
			router.Use(gin.Recovery())
			router.Use(otelgin.Middleware("agents-service"))
			api.SetupRoutes(router, system)

			srv := &http.Server{
				Addr:              cfg.ListenAddr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("HTTP service listening", "addr", cfg.ListenAddr, "provider", system.Provider())
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-stop:
				slog.Info("Shutting down", "signal", sig)
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [query]",
		Short: "Process a single query and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			system, err := agents.NewSystem(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("building system: %w", err)
			}

			result, err := system.Run(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Println("Plan:")
			for i, subtask := range result.Plan {
				fmt.Printf("  %d. %s\n", i+1, subtask)
			}
			fmt.Println("\nOutput:")
			fmt.Println(result.Output)
			return nil
		},
	}
}

// initTracer wires the OTLP gRPC exporter. The returned cleanup
// flushes and shuts the exporter down.
func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4317"
	}
	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("agents-service")))
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(exporter)))
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := exporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}
